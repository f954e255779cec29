// Package migrations embeds the versioned SQL schema.
package migrations

import "embed"

// FS holds every *.sql migration, named for golang-migrate
//
//go:embed *.sql
var FS embed.FS
