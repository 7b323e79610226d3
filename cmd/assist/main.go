package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"basegraph.app/assist/common/logger"
)

var rootCmd = &cobra.Command{
	Use:   "assist",
	Short: "Task assistant from the command line",
	Long: `assist runs the task-assistance features (subtask breakdown, time
prediction, bottleneck detection, smart assignment) against the configured
model without starting the HTTP server.

Configuration is read from the same environment variables as the server,
with .env.cli or .env loaded in development.`,
	SilenceUsage: true,
}

func main() {
	// Keep stdout for results; diagnostics go to stderr.
	slog.SetDefault(slog.New(logger.NewTraceHandler(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(runCmd)
}
