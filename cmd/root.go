// Package cmd implements the ludo command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ludobot/ludo/internal/log"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "ludo",
	Short: "Ludo - game platform support chatbot",
	Long: `Ludo answers player questions about the game platform and its games.
It retrieves the closest piece of curated knowledge from a vector corpus and
grounds a language model answer on it.

Running ludo without a subcommand starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// newLogger builds the process logger from the persistent flags and installs
// it as the slog default.
func newLogger() *slog.Logger {
	logger := log.New(log.Config{Level: parseLevel(logLevel), JSON: logJSON})
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
