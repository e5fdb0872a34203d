// Package refresh keeps the cached profile view warm while the preview
// server runs.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/metrics"
	"github.com/kalambet/dietfit/internal/profile"
)

// Refresher reloads the profile view. Implemented by profile.Manager.
type Refresher interface {
	Refresh(ctx context.Context) (profile.View, error)
}

// Result labels for the refresh counter.
const (
	ResultOK    = "ok"
	ResultStale = "stale"
	ResultError = "error"
)

// Worker refreshes the view every interval, retrying sooner after a failure.
type Worker struct {
	source   Refresher
	interval time.Duration
	retry    time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker. If interval is <= 0 it defaults to 5 minutes.
func NewWorker(source Refresher, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	retry := 30 * time.Second
	if retry > interval {
		retry = interval
	}
	return &Worker{
		source:   source,
		interval: interval,
		retry:    retry,
		logger:   slog.Default(),
	}
}

// Run refreshes until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		wait := w.interval
		result, err := w.RunOnce(ctx)
		switch {
		case errors.Is(err, apiclient.ErrUnauthenticated):
			w.logger.Warn("profile refresh paused: session expired, run `dietfit login`")
		case err != nil:
			w.logger.Error("profile refresh failed", "error", err)
			wait = w.retry
		case result == ResultStale:
			wait = w.retry
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// RunOnce performs a single refresh and reports its outcome.
func (w *Worker) RunOnce(ctx context.Context) (string, error) {
	start := time.Now()
	v, err := w.source.Refresh(ctx)
	if err != nil {
		metrics.IncProfileRefresh(ResultError)
		return ResultError, fmt.Errorf("refreshing profile: %w", err)
	}
	if v.Stale {
		metrics.IncProfileRefresh(ResultStale)
		w.logger.Info("profile refresh served from snapshot", "user_id", v.User.ID, "fetched_at", v.FetchedAt)
		return ResultStale, nil
	}
	metrics.IncProfileRefresh(ResultOK)
	w.logger.Debug("profile refreshed", "user_id", v.User.ID, "duration_ms", time.Since(start).Milliseconds())
	return ResultOK, nil
}
