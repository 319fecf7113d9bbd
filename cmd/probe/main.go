// Command probe checks every configured service once and appends the
// results to history/<slug>.yml. Run it from cron or CI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/statushistory/internal/config"
	"github.com/hamed0406/statushistory/internal/logging"
	"github.com/hamed0406/statushistory/internal/notify"
	"github.com/hamed0406/statushistory/internal/probe"
	"github.com/hamed0406/statushistory/internal/repo/yamlfile"
	"github.com/hamed0406/statushistory/internal/runner"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile  string
		historyDir  string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:          "probe",
		Short:        "Probe configured services once and record their status history",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("history-dir") {
				cfg.HistoryDir = historyDir
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Concurrency = concurrency
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "services document (default $CONFIG_FILE or config.json)")
	cmd.Flags().StringVar(&historyDir, "history-dir", "history", "directory holding <slug>.yml logs")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "services probed at once")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := yamlfile.New(cfg.HistoryDir, logger)
	r := runner.NewRunner(logger, probe.NewHTTPChecker(), store, cfg.Concurrency)
	if n := notify.FromWebhooks(cfg.SlackWebhookURLs...); n != nil {
		r.Notifier = n
		r.AlertOnRecovery = cfg.AlertOnRecovery
	}

	logger.Info("run_start",
		zap.String("config", cfg.ConfigFile),
		zap.String("history_dir", cfg.HistoryDir),
		zap.Int("services", len(cfg.Services)),
		zap.Int("concurrency", r.Concurrency),
	)
	if err := r.Run(ctx, cfg.Services); err != nil {
		logger.Error("run_failed", zap.Error(err))
		return err
	}
	logger.Info("run_done")
	return nil
}
