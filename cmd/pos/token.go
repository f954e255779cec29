package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tair/station-pos/internal/config"
	"github.com/tair/station-pos/pkg/auth"
)

// tokenCommand issues a staff token signed with JWT_SECRET. Staff accounts
// live outside this service, so this is how operators mint credentials.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue a bearer token for a staff member",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "user-id", Required: true},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "role", Value: string(auth.RoleCashier), Usage: "cashier, manager or admin"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("env-file"))
			if err != nil {
				return err
			}

			role := auth.Role(c.String("role"))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL).Generate(c.Uint("user-id"), c.String("username"), role)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
