// Package worker contains background processes that run alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"libris/config"
	"libris/internal/delivery"
	"libris/internal/usecase"

	"go.uber.org/fx"
)

const defaultJanitorInterval = time.Hour

// janitor periodically purges session and reset-token rows that stopped
// mattering long enough ago. Expired state is already inert on the read path;
// this only reclaims storage.
type janitor struct {
	sessionUC usecase.SessionUsecase
	resetUC   usecase.ResetUsecase
	interval  time.Duration
	logger    *slog.Logger
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

// JanitorParams holds dependencies for the janitor worker
type JanitorParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	SessionUC usecase.SessionUsecase
	ResetUC   usecase.ResetUsecase
}

// NewJanitor creates the cleanup worker.
func NewJanitor(params JanitorParams) (delivery.Delivery, error) {
	interval := defaultJanitorInterval
	if params.Cfg.Janitor != nil && params.Cfg.Janitor.Interval > 0 {
		interval = params.Cfg.Janitor.Interval
	}

	j := &janitor{
		sessionUC: params.SessionUC,
		resetUC:   params.ResetUC,
		interval:  interval,
		logger:    params.Logger,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: j.stop,
	})

	return j, nil
}

// Serve runs the cleanup loop until the worker is stopped.
func (j *janitor) Serve(ctx context.Context) error {
	defer close(j.done)

	j.logger.Info("Starting janitor", slog.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.stopCh:
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *janitor) sweep(ctx context.Context) {
	if _, err := j.sessionUC.CleanupInactiveSessions(ctx); err != nil {
		j.logger.Error("Session cleanup failed", slog.Any("error", err))
	}

	if _, err := j.resetUC.CleanupExpiredTokens(ctx); err != nil {
		j.logger.Error("Reset token cleanup failed", slog.Any("error", err))
	}
}

func (j *janitor) stop(ctx context.Context) error {
	j.logger.Info("Shutting down janitor")

	j.stopOnce.Do(func() { close(j.stopCh) })

	select {
	case <-j.done:
	case <-ctx.Done():
	}

	return nil
}
