package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tair/station-pos/internal/config"
	"github.com/tair/station-pos/migrations"
	"github.com/tair/station-pos/pkg/database"
	"github.com/tair/station-pos/pkg/logger"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back the PostgreSQL schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply every pending migration",
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *database.Migrator) error { return m.Up() })
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					return withMigrator(c, func(m *database.Migrator) error { return m.Down(c.Int("steps")) })
				},
			},
		},
	}
}

func withMigrator(c *cli.Context, fn func(*database.Migrator) error) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	logger.Init(cfg.ServiceName, cfg.IsDevelopment(), cfg.LogLevel)

	m, err := database.NewMigrator(migrations.FS, databaseConfig(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close migrator")
		}
	}()

	if err := fn(m); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func databaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.Name,
		SSLMode:  cfg.Database.SSLMode,
	}
}
