package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
	"github.com/guttosm/drawdownpulse/internal/logger"
	"github.com/guttosm/drawdownpulse/internal/service"
)

// Sink receives the results of every refresh cycle.
type Sink func(ctx context.Context, results []models.DrawdownResult)

// Refresher re-aggregates the watchlist on a fixed interval.
type Refresher struct {
	svc      service.DrawdownService
	cron     *cron.Cron
	interval time.Duration
	sink     Sink
}

// NewRefresher builds a Refresher. Overlapping cycles are skipped, not queued,
// since a slow provider can make one cycle outlast the interval.
func NewRefresher(svc service.DrawdownService, interval time.Duration, sink Sink) *Refresher {
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	return &Refresher{svc: svc, cron: c, interval: interval, sink: sink}
}

// Start schedules a refresh every interval and runs a first cycle right away.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.interval)
	}

	logger.L().Info().Dur("interval", r.interval).Msg("starting drawdown refresher")

	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.interval), func() {
		r.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	r.cron.Start()

	// Run initial refresh
	go r.RunOnce(ctx)

	return nil
}

// Stop halts scheduling and returns a context done once a running cycle finishes.
func (r *Refresher) Stop() context.Context {
	logger.L().Info().Msg("stopping drawdown refresher")
	return r.cron.Stop()
}

// RunOnce performs a single refresh cycle and hands the results to the sink.
func (r *Refresher) RunOnce(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}

	start := time.Now()
	results := r.svc.GetDrawdowns(ctx)

	logger.L().Info().
		Int("tickers", len(r.svc.Tickers())).
		Int("resolved", len(results)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("refresh cycle completed")

	if r.sink != nil {
		r.sink(ctx, results)
	}
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.L().Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	if err == nil {
		err = errors.New(msg)
	}
	logger.L().Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
