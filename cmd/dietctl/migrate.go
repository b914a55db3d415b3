package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := theApp.Migrate(); err != nil {
			return err
		}
		color.Green("✓ Database migrated (%s)", theApp.DB.Dialector.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
