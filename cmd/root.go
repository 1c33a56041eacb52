package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/energyadvisor/app"
	"github.com/kilianp07/energyadvisor/config"
	coremon "github.com/kilianp07/energyadvisor/core/monitoring"
	"github.com/kilianp07/energyadvisor/infra/logger"
	"github.com/kilianp07/energyadvisor/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "energyadvisor",
	Short:        "Schedules flexible activities into the cheapest price slots",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return err
	}
	coremon.Init(mon)
	defer coremon.Flush(2 * time.Second)

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
