package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var recomputeEmail string

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Run the health profile cascade synchronously",
	Long: `Reclassify the user's profile, rewrite the insight, score and weight
history and mark the goal plan stale, without going through the job queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recomputeEmail == "" {
			return fmt.Errorf("--user is required")
		}
		ctx := cmd.Context()
		u, err := findUser(ctx, recomputeEmail)
		if err != nil {
			return err
		}
		out, err := theApp.Services.Health.RecomputeNow(ctx, u.ID)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if out.ClassificationErr != "" {
			color.Yellow("⚠ classification failed: %s", out.ClassificationErr)
		}
		fmt.Fprintf(w, "%s %s wellness score %d\n", color.GreenString("✓"), u.Email, out.Score)
		if out.GoalPlanMarked {
			fmt.Fprintln(w, "  goal plan marked stale")
		}
		if out.GoalPlanEnqueued {
			fmt.Fprintln(w, "  goal plan regeneration queued")
		}
		if _, err := theApp.Services.Analytics.SyncUser(ctx, u.ID); err != nil {
			color.Yellow("⚠ analytics sync failed: %v", err)
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeEmail, "user", "", "email of the user to recompute")
	rootCmd.AddCommand(recomputeCmd)
}
