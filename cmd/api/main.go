package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statushistory/internal/config"
	"github.com/hamed0406/statushistory/internal/httpapi"
	apimw "github.com/hamed0406/statushistory/internal/httpapi/middleware"
	"github.com/hamed0406/statushistory/internal/logging"
	"github.com/hamed0406/statushistory/internal/notify"
	"github.com/hamed0406/statushistory/internal/probe"
	"github.com/hamed0406/statushistory/internal/repo/yamlfile"
	"github.com/hamed0406/statushistory/internal/runner"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := yamlfile.New(cfg.HistoryDir, logger)
	r := runner.NewRunner(logger, probe.NewHTTPChecker(), store, cfg.Concurrency)
	if n := notify.FromWebhooks(cfg.SlackWebhookURLs...); n != nil {
		r.Notifier = n
		r.AlertOnRecovery = cfg.AlertOnRecovery
	}

	api := httpapi.NewServer(logger, store, cfg.Services, r)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Int("services", len(cfg.Services)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("api_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("api_shutdown_error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_listen_error", zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
	}
}
