package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/nutribridge-backend/internal/app"
	types "github.com/yungbote/nutribridge-backend/internal/domain"
	"github.com/yungbote/nutribridge-backend/internal/pkg/dbctx"
)

var (
	envFile string
	theApp  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "dietctl",
	Short: "Operational commands for the nutribridge backend",
	Long: `dietctl runs maintenance tasks against the nutribridge database.

  $ dietctl migrate                          # create or update tables
  $ dietctl sync-user-data --all-users       # rebuild analytics snapshots
  $ dietctl sync-user-data --user a@b.com    # one user
  $ dietctl recompute --user a@b.com         # rerun the health profile cascade
  $ dietctl worker                           # run only the job worker
  $ dietctl recipes load --limit 200         # fill the recipe library from MealDB
  $ dietctl recipes embed                    # embed library recipes for search

Configuration comes from the environment, .env and CONFIG_FILE, the same
way the API server reads it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		if err := app.LoadEnvFiles(files...); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
		a, err := app.New()
		if err != nil {
			return err
		}
		theApp = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if theApp != nil {
			theApp.Close()
			theApp = nil
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load variables from this file instead of .env")
}

// findUser resolves an email, or the first registered user when email is
// empty.
func findUser(ctx context.Context, email string) (*types.User, error) {
	dbc := dbctx.New(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		u   *types.User
		err error
	)
	if email == "" {
		u, err = theApp.Repos.User.First(dbc)
	} else {
		u, err = theApp.Repos.User.GetByEmail(dbc, email)
	}
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID == uuid.Nil {
		if email == "" {
			return nil, fmt.Errorf("no users registered")
		}
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return u, nil
}
