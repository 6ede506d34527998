package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	domain "github.com/guttosm/drawdownpulse/internal/domain/models"
)

// PolygonProvider reads daily aggregates from the Polygon.io REST API.
type PolygonProvider struct {
	client *polygon.Client
}

// NewPolygonProvider returns a provider authenticated with apiKey.
func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: POLYGON_API_KEY is required", ErrMissingCredentials)
	}
	return &PolygonProvider{client: polygon.New(apiKey)}, nil
}

func (p *PolygonProvider) Name() string { return ProviderPolygon }

// History lists unadjusted daily aggregates for symbol over [start, end).
func (p *PolygonProvider) History(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(false).WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var aggs []models.Agg
	for iter.Next() {
		aggs = append(aggs, iter.Item())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs %s: %w", symbol, err)
	}

	bars := polygonBars(aggs, end)
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// polygonBars converts aggregates, dropping any that start at or after end
// since Polygon treats the To bound as inclusive.
func polygonBars(aggs []models.Agg, end time.Time) []domain.Bar {
	bars := make([]domain.Bar, 0, len(aggs))
	for _, agg := range aggs {
		ts := time.Time(agg.Timestamp).UTC()
		if !ts.Before(end) {
			continue
		}
		bars = append(bars, domain.Bar{
			Date:  ts,
			High:  agg.High,
			Close: optional.Some(agg.Close),
		})
	}
	return bars
}
