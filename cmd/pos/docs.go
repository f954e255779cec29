package main

// @title Station POS API
// @version 1.0
// @description Transaction settlement and inventory ledger for a convenience store point of sale

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Transactions
// @tag.description Sale settlement and voids

// @tag.name Reports
// @tag.description Sales reporting

// @tag.name Inventory
// @tag.description Stock, restocks, adjustments and the ledger

// @tag.name Lottery
// @tag.description Lottery ticket stock

// @tag.name Health
// @tag.description Health check endpoints
