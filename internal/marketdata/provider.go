package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

// Provider names accepted by New.
const (
	ProviderYahoo   = "yahoo"
	ProviderPolygon = "polygon"
	ProviderAlpaca  = "alpaca"
)

var (
	// ErrNoData is returned when a provider answers successfully but has no bars for the range.
	ErrNoData = errors.New("no data for symbol")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown market data provider")
	// ErrMissingCredentials is returned by New when a provider requires an API key that is not set.
	ErrMissingCredentials = errors.New("missing provider credentials")
)

// Provider retrieves daily price history for a single symbol.
//
// History returns the bars whose session falls inside [start, end) in
// chronological order, or an error. Callers treat an error and an empty
// slice the same way: no data for this symbol.
type Provider interface {
	Name() string
	History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)
}

// Options carries the settings every provider constructor may need.
type Options struct {
	YahooBaseURL    string
	PolygonAPIKey   string
	AlpacaAPIKey    string
	AlpacaAPISecret string
	AlpacaDataURL   string
	Timeout         time.Duration
}

// New builds the provider registered under name.
func New(name string, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderYahoo:
		return NewYahooProvider(opts.YahooBaseURL, opts.Timeout), nil
	case ProviderPolygon:
		p, err := NewPolygonProvider(opts.PolygonAPIKey)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderAlpaca:
		p, err := NewAlpacaProvider(opts.AlpacaAPIKey, opts.AlpacaAPISecret, opts.AlpacaDataURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}
