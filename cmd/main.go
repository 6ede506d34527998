package main

//
//  @title           drawdownpulse API
//  @version         1.0
//  @description     Drawdown of US equities from their trailing 12-month high.
//  @termsOfService  https://github.com/guttosm/drawdownpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/drawdownpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:10000
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        drawdowns
//  @tag.description Drawdown of each watched ticker from its 12-month high
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/drawdownpulse/config"
	_ "github.com/guttosm/drawdownpulse/docs" // swagger docs
	"github.com/guttosm/drawdownpulse/internal/app"
	"github.com/guttosm/drawdownpulse/internal/domain/models"
	"github.com/guttosm/drawdownpulse/internal/logger"
	"github.com/guttosm/drawdownpulse/internal/report"
	"github.com/guttosm/drawdownpulse/internal/scheduler"
	"github.com/guttosm/drawdownpulse/internal/service"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - host (string): Interface to bind; empty means all interfaces.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, host, port string) *http.Server {
	server := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// A dashboard render waits for a full aggregation.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runOnce aggregates the watchlist a single time and prints the table to w.
func runOnce(ctx context.Context, svc service.DrawdownService, w io.Writer, threshold float64) error {
	results := svc.GetDrawdowns(ctx)
	return report.Render(w, results, threshold, time.Now())
}

// runWatch refreshes the watchlist every interval, printing a table each cycle,
// until ctx is cancelled.
func runWatch(ctx context.Context, svc service.DrawdownService, w io.Writer, threshold float64, interval time.Duration) error {
	refresher := scheduler.NewRefresher(svc, interval, func(_ context.Context, results []models.DrawdownResult) {
		if err := report.Render(w, results, threshold, time.Now()); err != nil {
			logger.L().Error().Err(err).Msg("render failed")
		}
	})
	if err := refresher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	<-refresher.Stop().Done()
	return nil
}

// main is the entry point of the drawdownpulse application.
//
// Modes (selected via --mode flag):
//   - api:   Serves the HTML dashboard and the JSON drawdown list (default).
//   - once:  Aggregates the watchlist once and prints a console table.
//   - watch: Prints a console table every REFRESH_INTERVAL until interrupted.
//
// Flags:
//   - --mode: Execution mode ("api", "once" or "watch"). Default: "api".
//   - --host: Interface for API mode. Defaults to SERVER_HOST.
//   - --port: Port for API mode. Defaults to SERVER_PORT.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	mode := flag.String("mode", "api", "Mode: api, once or watch")
	host := flag.String("host", config.AppConfig.Server.Host, "Host for API mode")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	cfg := config.AppConfig

	switch *mode {
	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *host, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "once":
		svc, err := app.BuildService(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}
		if err := runOnce(ctx, svc, os.Stdout, cfg.Dashboard.HighlightThreshold); err != nil {
			logger.L().Fatal().Err(err).Msg("report failed")
		}

	case "watch":
		svc, err := app.BuildService(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runWatch(sigCtx, svc, os.Stdout, cfg.Dashboard.HighlightThreshold, cfg.Dashboard.RefreshInterval); err != nil {
			logger.L().Fatal().Err(err).Msg("watch failed")
		}
		logger.L().Info().Msg("watch stopped")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
