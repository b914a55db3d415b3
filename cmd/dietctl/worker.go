package main

import (
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the job worker",
	Long: `Poll job_run and execute queued jobs until interrupted. Events are
published on the SSE bus, so use Redis when the API runs in another process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if err := theApp.Migrate(); err != nil {
			return err
		}
		color.Green("✓ Worker started")
		theApp.StartWorker(ctx)
		<-ctx.Done()
		theApp.Services.JobWorker.Wait()
		color.Yellow("Worker stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
