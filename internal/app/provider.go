package app

import (
	"fmt"

	"github.com/guttosm/drawdownpulse/config"
	"github.com/guttosm/drawdownpulse/internal/marketdata"
)

// InitProvider builds the market data provider selected by cfg.Provider.Name.
//
// Behavior:
//   - Maps the provider section of the configuration onto marketdata.Options.
//   - The HTTP timeout of the underlying client follows FETCH_TIMEOUT.
//   - Missing credentials or an unknown name are returned as errors, not fatal exits.
//
// Example usage:
//
//	p, err := app.InitProvider(config.AppConfig)
//	if err != nil {
//	    log.Fatalf("❌ provider: %v", err)
//	}
func InitProvider(cfg config.Config) (marketdata.Provider, error) {
	p, err := marketdata.New(cfg.Provider.Name, marketdata.Options{
		YahooBaseURL:    cfg.Provider.YahooBaseURL,
		PolygonAPIKey:   cfg.Provider.PolygonAPIKey,
		AlpacaAPIKey:    cfg.Provider.AlpacaAPIKey,
		AlpacaAPISecret: cfg.Provider.AlpacaAPISecret,
		AlpacaDataURL:   cfg.Provider.AlpacaDataURL,
		Timeout:         cfg.Provider.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %q provider: %w", cfg.Provider.Name, err)
	}
	return p, nil
}

// providerOpener is an indirection used by BuildService; overridden in tests to avoid real network clients.
var providerOpener = InitProvider
