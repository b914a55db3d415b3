package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/yungbote/nutribridge-backend/internal/services"
)

var (
	syncEmail    string
	syncAllUsers bool
)

var syncCmd = &cobra.Command{
	Use:   "sync-user-data",
	Short: "Rebuild analytics snapshots",
	Long: `Rewrite the health and diet summaries and append a current snapshot.

Without --user or --all-users the first registered user is synced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if syncAllUsers && syncEmail != "" {
			return fmt.Errorf("--user and --all-users are mutually exclusive")
		}
		out := cmd.OutOrStdout()
		if syncAllUsers {
			reports, err := theApp.Services.Analytics.SyncAll(ctx)
			if err != nil {
				return err
			}
			failed := 0
			for _, rep := range reports {
				if printReport(out, rep) {
					failed++
				}
			}
			total, err := theApp.Services.Analytics.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d users synced, %d with errors, %d snapshots stored\n", len(reports), failed, total)
			return nil
		}

		u, err := findUser(ctx, syncEmail)
		if err != nil {
			return err
		}
		rep, err := theApp.Services.Analytics.SyncUser(ctx, u.ID)
		if err != nil {
			return err
		}
		rep.Email = u.Email
		printReport(out, rep)
		return nil
	},
}

// printReport writes one line per user and reports whether either summary
// failed.
func printReport(w io.Writer, rep services.SyncReport) bool {
	if rep.HealthError != "" || rep.DietError != "" {
		fmt.Fprintf(w, "%s %s", color.RedString("✗"), rep.Email)
		if rep.HealthError != "" {
			fmt.Fprintf(w, " health: %s", rep.HealthError)
		}
		if rep.DietError != "" {
			fmt.Fprintf(w, " diet: %s", rep.DietError)
		}
		fmt.Fprintln(w)
		return true
	}
	fmt.Fprintf(w, "%s %s", color.GreenString("✓"), rep.Email)
	if rep.WellnessScore != nil {
		fmt.Fprintf(w, " score=%d", *rep.WellnessScore)
	}
	if rep.BMI != nil {
		fmt.Fprintf(w, " bmi=%.1f", *rep.BMI)
	}
	if rep.SavedMeals != nil {
		fmt.Fprintf(w, " saved_meals=%d", *rep.SavedMeals)
	}
	if rep.PlannedMeals != nil {
		fmt.Fprintf(w, " planned_meals=%d", *rep.PlannedMeals)
	}
	if rep.Adherence != nil {
		fmt.Fprintf(w, " adherence=%.2f", *rep.Adherence)
	}
	fmt.Fprintln(w)
	return false
}

func init() {
	syncCmd.Flags().StringVar(&syncEmail, "user", "", "email of the user to sync")
	syncCmd.Flags().BoolVar(&syncAllUsers, "all-users", false, "sync every user")
	rootCmd.AddCommand(syncCmd)
}
