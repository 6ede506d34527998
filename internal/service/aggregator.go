package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
	"github.com/guttosm/drawdownpulse/internal/logger"
	"github.com/guttosm/drawdownpulse/internal/marketdata"
)

const (
	DefaultWindowDays   = 365
	DefaultFetchTimeout = 15 * time.Second
)

// Aggregator computes each ticker's drawdown from its trailing high.
//
// Responsibilities:
//   - Fetch one window of daily bars per ticker from a marketdata.Provider.
//   - Derive the window high and latest close from that single fetch.
//   - Drop tickers without usable data; failures never escape a ticker.
//
// Results keep the input order. Duplicated tickers are fetched and reported twice.
type Aggregator struct {
	provider     marketdata.Provider
	pacer        marketdata.Pacer
	location     *time.Location
	windowDays   int
	fetchTimeout time.Duration
	parallel     int
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithPacer sets the delay policy applied before every provider call.
func WithPacer(p marketdata.Pacer) AggregatorOption {
	return func(a *Aggregator) {
		if p != nil {
			a.pacer = p
		}
	}
}

// WithLocation sets the exchange timezone bars are interpreted in.
func WithLocation(loc *time.Location) AggregatorOption {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// WithWindowDays sets the trailing window length in calendar days.
func WithWindowDays(days int) AggregatorOption {
	return func(a *Aggregator) {
		if days > 0 {
			a.windowDays = days
		}
	}
}

// WithFetchTimeout bounds each provider call. Zero disables the per-call deadline.
func WithFetchTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if d >= 0 {
			a.fetchTimeout = d
		}
	}
}

// WithParallel sets how many tickers are fetched concurrently (1 = sequential).
func WithParallel(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.parallel = n
		}
	}
}

// NewAggregator builds an Aggregator over provider.
// Defaults: no delay, UTC, 365-day window, 15s fetch timeout, sequential fetches.
func NewAggregator(provider marketdata.Provider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		provider:     provider,
		pacer:        marketdata.NoDelay{},
		location:     time.UTC,
		windowDays:   DefaultWindowDays,
		fetchTimeout: DefaultFetchTimeout,
		parallel:     1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Window returns the [start, end) range used for asOf, in the exchange timezone.
func (a *Aggregator) Window(asOf time.Time) (time.Time, time.Time) {
	end := asOf.In(a.location)
	return end.AddDate(0, 0, -a.windowDays), end
}

// outcome is the per-ticker result before it is collapsed into the output list.
type outcome struct {
	result models.DrawdownResult
	skip   models.SkipReason
	err    error
}

// Aggregate resolves every ticker and returns the successful results in input order.
// It never fails as a whole: skipped tickers are logged and left out.
func (a *Aggregator) Aggregate(ctx context.Context, tickers []string, asOf time.Time) []models.DrawdownResult {
	start := time.Now()
	outcomes := a.resolveAll(ctx, tickers, asOf)

	results := make([]models.DrawdownResult, 0, len(tickers))
	for i, o := range outcomes {
		if o.skip != models.SkipNone {
			logger.L().Warn().
				Str("ticker", tickers[i]).
				Str("reason", string(o.skip)).
				Err(o.err).
				Msg("ticker skipped")
			continue
		}
		results = append(results, o.result)
	}

	logger.L().Info().
		Str("provider", a.provider.Name()).
		Int("tickers", len(tickers)).
		Int("resolved", len(results)).
		Int("skipped", len(tickers)-len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("drawdown aggregation done")

	return results
}

// resolveAll returns one outcome per ticker, index-aligned with tickers.
func (a *Aggregator) resolveAll(ctx context.Context, tickers []string, asOf time.Time) []outcome {
	from, to := a.Window(asOf)
	outcomes := make([]outcome, len(tickers))

	if a.parallel <= 1 {
		for i, ticker := range tickers {
			outcomes[i] = a.resolve(ctx, ticker, from, to)
		}
		return outcomes
	}

	// Each goroutine owns one slot of outcomes, so no locking is needed.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallel)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			outcomes[i] = a.resolve(gctx, ticker, from, to)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// resolve fetches and evaluates one ticker. Panics raised by a provider are
// converted into a provider error for that ticker only.
func (a *Aggregator) resolve(ctx context.Context, ticker string, from, to time.Time) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = outcome{skip: models.SkipProviderError, err: fmt.Errorf("provider panic: %v", r)}
		}
	}()

	if err := a.pacer.Wait(ctx); err != nil {
		return outcome{skip: models.SkipProviderError, err: err}
	}

	fetchCtx := ctx
	if a.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.fetchTimeout)
		defer cancel()
	}

	bars, err := a.provider.History(fetchCtx, ticker, from, to)
	if err != nil {
		if errors.Is(err, marketdata.ErrNoData) {
			return outcome{skip: models.SkipNoData, err: err}
		}
		return outcome{skip: models.SkipProviderError, err: err}
	}

	return computeDrawdown(ticker, bars, from, to, a.location)
}

// computeDrawdown derives the window high, latest close and drawdown from bars.
// Bars are localized to loc and restricted to [from, to) before evaluation;
// bars without a finite high are ignored.
func computeDrawdown(ticker string, bars []models.Bar, from, to time.Time, loc *time.Location) outcome {
	window := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		b.Date = b.Date.In(loc)
		if b.Date.Before(from) || !b.Date.Before(to) || !isFinite(b.High) {
			continue
		}
		window = append(window, b)
	}
	if len(window) == 0 {
		return outcome{skip: models.SkipNoData, err: marketdata.ErrNoData}
	}

	slices.SortStableFunc(window, func(x, y models.Bar) int { return x.Date.Compare(y.Date) })

	high := window[0].High
	for _, b := range window[1:] {
		if b.High > high {
			high = b.High
		}
	}

	last := window[len(window)-1]
	if last.Close.IsNone() || !isFinite(last.Close.Unwrap()) {
		return outcome{skip: models.SkipNoClose, err: fmt.Errorf("no close for %s", last.Date.Format(time.DateOnly))}
	}
	current := last.Close.Unwrap()

	if high == 0 {
		return outcome{skip: models.SkipZeroHigh, err: errors.New("12-month high is zero")}
	}

	return outcome{result: models.DrawdownResult{
		Ticker:       ticker,
		CurrentPrice: roundPrice(current),
		High12M:      roundPrice(high),
		Drawdown:     1 - current/high,
	}}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundPrice rounds half away from zero to cents.
func roundPrice(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
