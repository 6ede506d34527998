package marketdata

import (
	"context"
	"fmt"
	"time"

	alpacamd "github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/moznion/go-optional"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

// barGetter is the slice of the Alpaca market data client used here.
type barGetter interface {
	GetBars(symbol string, req alpacamd.GetBarsRequest) ([]alpacamd.Bar, error)
}

// AlpacaProvider reads daily bars from the Alpaca market data API (IEX feed).
type AlpacaProvider struct {
	client barGetter
}

// NewAlpacaProvider returns a provider for the given key pair.
// dataURL overrides the API host and may be empty.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string) (*AlpacaProvider, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("%w: ALPACA_API_KEY and ALPACA_API_SECRET are required", ErrMissingCredentials)
	}
	client := alpacamd.NewClient(alpacamd.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   dataURL,
	})
	return &AlpacaProvider{client: client}, nil
}

func (p *AlpacaProvider) Name() string { return ProviderAlpaca }

// History fetches raw daily bars for symbol over [start, end).
// The Alpaca client has no context support, so the call runs in its own
// goroutine and History returns early when ctx is done.
func (p *AlpacaProvider) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	type result struct {
		bars []alpacamd.Bar
		err  error
	}
	done := make(chan result, 1)

	go func() {
		bars, err := p.client.GetBars(symbol, alpacamd.GetBarsRequest{
			TimeFrame:  alpacamd.OneDay,
			Adjustment: alpacamd.Raw,
			Feed:       alpacamd.IEX,
			Start:      start,
			End:        end,
		})
		done <- result{bars: bars, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("alpaca bars %s: %w", symbol, res.err)
		}
		bars := alpacaBars(res.bars, end)
		if len(bars) == 0 {
			return nil, ErrNoData
		}
		return bars, nil
	}
}

func alpacaBars(in []alpacamd.Bar, end time.Time) []models.Bar {
	bars := make([]models.Bar, 0, len(in))
	for _, b := range in {
		if !b.Timestamp.Before(end) {
			continue
		}
		bars = append(bars, models.Bar{
			Date:  b.Timestamp.UTC(),
			High:  b.High,
			Close: optional.Some(b.Close),
		})
	}
	return bars
}
