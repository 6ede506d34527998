package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/drawdownpulse/config"
	"github.com/guttosm/drawdownpulse/internal/api"
	"github.com/guttosm/drawdownpulse/internal/logger"
	"github.com/guttosm/drawdownpulse/internal/marketdata"
	"github.com/guttosm/drawdownpulse/internal/service"
)

var errNoTickers = errors.New("no tickers configured")

// BuildService wires provider, pacing and aggregation settings into a DrawdownService.
//
// Shared by the HTTP server and the console modes (once, watch).
func BuildService(cfg config.Config) (service.DrawdownService, error) {
	loc, err := time.LoadLocation(cfg.Watchlist.ExchangeTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange timezone %q: %w", cfg.Watchlist.ExchangeTimezone, err)
	}

	// indirection for unit testing
	provider, err := providerOpener(cfg)
	if err != nil {
		return nil, err
	}

	agg := service.NewAggregator(provider,
		service.WithPacer(marketdata.NewFixedDelay(cfg.Provider.RequestDelay)),
		service.WithLocation(loc),
		service.WithWindowDays(cfg.Watchlist.WindowDays),
		service.WithFetchTimeout(cfg.Provider.FetchTimeout),
		service.WithParallel(cfg.Provider.Parallel),
	)

	logger.L().Info().
		Str("provider", provider.Name()).
		Strs("tickers", cfg.Watchlist.Tickers).
		Str("timezone", loc.String()).
		Dur("request_delay", cfg.Provider.RequestDelay).
		Int("parallel", cfg.Provider.Parallel).
		Msg("drawdown service ready")

	return service.NewDrawdownService(agg, cfg.Watchlist.Tickers), nil
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the market data provider and the drawdown service (BuildService).
//   - Creates the HTTP handler layer with the highlight threshold and refresh interval.
//   - Configures the Gin router with the dashboard and API routes.
//   - Registers health and readiness probes.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	svc, err := BuildService(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize drawdown service: %w", err)
	}

	handler := api.NewHandler(svc, cfg.Dashboard.HighlightThreshold, cfg.Dashboard.RefreshInterval)
	router := api.NewRouter(handler, cfg.Server.RequestTimeout)

	healthHandler := api.NewHealthHandler(func() error {
		if len(svc.Tickers()) == 0 {
			return errNoTickers
		}
		return nil
	})
	healthHandler.Register(router)

	cleanup := func() {
		logger.L().Info().Msg("drawdown service stopped")
	}

	return router, cleanup, nil
}
