package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ludobot/ludo/internal/app"
	"github.com/ludobot/ludo/internal/config"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the guidance corpus and exit",
	Long: `Sync reconciles the guidance partition of the knowledge corpus with the
configured seed file, then exits. The serve command performs the same
reconciliation at startup; sync exists for seeding a database ahead of a
deployment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync()
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Setup runs the corpus synchronization as part of initialization.
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("synchronizing corpus: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	logger.Info("guidance corpus synchronized")
	return nil
}
