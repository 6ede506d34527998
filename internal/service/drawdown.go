package service

import (
	"context"
	"time"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

// DrawdownService exposes the configured watchlist's drawdowns to the presentation layer.
type DrawdownService interface {
	GetDrawdowns(ctx context.Context) []models.DrawdownResult
	Tickers() []string
}

type drawdownService struct {
	agg     *Aggregator
	tickers []string
	now     func() time.Time
}

// NewDrawdownService binds an Aggregator to a fixed ticker list.
// The list is copied so later changes by the caller have no effect.
func NewDrawdownService(agg *Aggregator, tickers []string) DrawdownService {
	return &drawdownService{
		agg:     agg,
		tickers: append([]string(nil), tickers...),
		now:     time.Now,
	}
}

// GetDrawdowns re-fetches every ticker as of now. Nothing is cached between calls.
func (s *drawdownService) GetDrawdowns(ctx context.Context) []models.DrawdownResult {
	return s.agg.Aggregate(ctx, s.tickers, s.now())
}

func (s *drawdownService) Tickers() []string {
	return append([]string(nil), s.tickers...)
}
