// Package scheduler periodically warms the weather cache for every
// configured location so interactive reads usually hit fresh data.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/nunatech/sila/internal/weather"
)

// Refresher periodically fetches weather for the configured locations.
type Refresher struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Refresher. interval <= 0 disables it.
func New(service *weather.Service, interval, timeout time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		r.logger.Info("background refresh disabled")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(func() {
		r.logger.Debug("running refresh job")

		// Locations refresh sequentially: the orchestrator supersedes
		// in-flight fetches, so firing them in parallel through one service
		// would cancel each other's state commits.
		for _, loc := range r.service.Locations() {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			// Never force: a valid cache entry means nothing to do.
			if _, err := r.service.Fetch(ctx, loc, false); err != nil {
				r.logger.Warn("refresh failed",
					zap.String("location", loc.Key()), zap.Error(err))
			}
			cancel()
		}

		r.logger.Debug("completed refresh job")
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
