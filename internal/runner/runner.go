// Package runner probes every configured service once and records the
// results in their history logs.
package runner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statushistory/internal/domain"
	"github.com/hamed0406/statushistory/internal/notify"
	"github.com/hamed0406/statushistory/internal/probe"
	"github.com/hamed0406/statushistory/internal/repo"
)

type Runner struct {
	Logger      *zap.Logger
	Prober      probe.Prober
	Store       repo.HistoryStore
	Concurrency int

	// Notifier, when set, is told about up/down transitions.
	Notifier        notify.Notifier
	AlertOnRecovery bool
}

func NewRunner(logger *zap.Logger, p probe.Prober, store repo.HistoryStore, concurrency int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		Logger:      logger,
		Prober:      p,
		Store:       store,
		Concurrency: concurrency,
	}
}

// Run checks services in declared order. A failure for one service does not
// stop the others; all failures are returned combined.
func (r *Runner) Run(ctx context.Context, services []domain.ServiceConfig) error {
	if len(services) == 0 {
		r.Logger.Info("no_services_configured")
		return nil
	}
	if r.Concurrency <= 1 {
		var errs error
		for _, svc := range services {
			if err := ctx.Err(); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", svc.Name, err))
				continue
			}
			errs = multierr.Append(errs, r.check(ctx, svc))
		}
		return errs
	}

	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	sem := make(chan struct{}, r.Concurrency)
	for _, svc := range services {
		if err := ctx.Err(); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", svc.Name, err))
			mu.Unlock()
			continue
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()
			if err := r.check(ctx, svc); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return errs
}

func (r *Runner) check(ctx context.Context, svc domain.ServiceConfig) error {
	rec := r.Prober.Probe(ctx, svc)
	// A probe cut short by cancellation says nothing about the service.
	if err := ctx.Err(); err != nil {
		r.Logger.Warn("service_check_cancelled", zap.String("service", svc.Name), zap.Error(err))
		return fmt.Errorf("%s: %w", svc.Name, err)
	}

	h, err := r.Store.Record(ctx, svc.Name, rec)
	if err != nil {
		r.Logger.Error("history_record_error",
			zap.String("service", svc.Name),
			zap.String("slug", svc.Slug()),
			zap.Error(err),
		)
		return fmt.Errorf("record %s: %w", svc.Name, err)
	}

	r.Logger.Info("service_checked",
		zap.String("service", svc.Name),
		zap.String("slug", svc.Slug()),
		zap.String("status", string(rec.Status)),
		zap.Int64("response_time_ms", rec.ResponseTime),
		zap.Int("entries", len(h)),
	)
	r.alert(ctx, svc, h)
	return nil
}

// alert compares the two newest records of h. A first-ever record only
// alerts when it is down.
func (r *Runner) alert(ctx context.Context, svc domain.ServiceConfig, h domain.HistoryLog) {
	if r.Notifier == nil || len(h) == 0 {
		return
	}
	cur := h[len(h)-1]
	var prev *domain.StatusRecord
	if len(h) > 1 {
		prev = &h[len(h)-2]
	}

	var title string
	switch {
	case cur.Status == domain.StatusDown && (prev == nil || prev.Status == domain.StatusUp):
		title = "🔴 Service DOWN"
	case cur.Status == domain.StatusUp && prev != nil && prev.Status == domain.StatusDown && r.AlertOnRecovery:
		title = "🟢 Service RECOVERED"
	default:
		return
	}

	text := fmt.Sprintf("Service: %s\nURL: %s\nResponse time: %d ms\nChecked: %s",
		svc.Name, svc.URL, cur.ResponseTime, cur.Timestamp)
	// Best-effort: a failed notification never fails the run.
	if err := r.Notifier.Send(ctx, title, text); err != nil {
		r.Logger.Warn("notify_error", zap.String("service", svc.Name), zap.Error(err))
	}
}
