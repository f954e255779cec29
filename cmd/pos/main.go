package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tair/station-pos/pkg/logger"
	"github.com/tair/station-pos/pkg/tracing"
)

var version = "dev"

func main() {
	tracing.Version = version

	app := &cli.App{
		Name:    "pos",
		Usage:   "convenience store point of sale: settlement and inventory ledger",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "optional .env file loaded before the environment",
				Value:   ".env",
				EnvVars: []string{"POS_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Logger.Fatal().Err(err).Msg("pos exited with error")
	}
}
