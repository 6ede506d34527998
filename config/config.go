package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // EXCHANGE_TIMEZONE must resolve in minimal containers

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/guttosm/drawdownpulse/internal/domain/dto"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, the watched tickers and the market data provider.
//
// Example ENV equivalent:
//
//	SERVER_HOST=0.0.0.0
//	SERVER_PORT=10000
//	TICKERS=AAPL,MSFT,NVDA,AMZN,META,GOOGL,SPY
//	PROVIDER=yahoo
//	REQUEST_DELAY=1s
//	HIGHLIGHT_THRESHOLD=0.30
//	REFRESH_INTERVAL=2h
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Watchlist WatchlistConfig // Tickers and aggregation window
	Provider  ProviderConfig  // Market data provider selection and credentials
	Dashboard DashboardConfig // Presentation settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `validate:"omitempty,hostname|ip"`
	Port           string        `validate:"required,numeric"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

// WatchlistConfig describes what is aggregated.
//
// Fields:
//   - Tickers: ordered, non-empty list of symbols. Order is the display order.
//   - WindowDays: trailing window length in calendar days (default 365).
//   - ExchangeTimezone: IANA zone provider timestamps are interpreted in.
type WatchlistConfig struct {
	Tickers          []string `validate:"required,min=1,dive,required"`
	WindowDays       int      `validate:"gt=0"`
	ExchangeTimezone string   `validate:"required,timezone"`
}

// ProviderConfig selects the historical price provider.
//
// Fields:
//   - Name: yahoo, polygon or alpaca.
//   - RequestDelay: minimum spacing between successive provider calls.
//   - FetchTimeout: deadline for a single ticker's history request.
//   - Parallel: tickers fetched concurrently (1 = sequential).
type ProviderConfig struct {
	Name            string        `validate:"required,oneof=yahoo polygon alpaca"`
	RequestDelay    time.Duration `validate:"gte=0"`
	FetchTimeout    time.Duration `validate:"gt=0"`
	Parallel        int           `validate:"gte=1,lte=16"`
	YahooBaseURL    string        `validate:"omitempty,url"`
	PolygonAPIKey   string        `validate:"required_if=Name polygon"`
	AlpacaAPIKey    string        `validate:"required_if=Name alpaca"`
	AlpacaAPISecret string        `validate:"required_if=Name alpaca"`
	AlpacaDataURL   string        `validate:"omitempty,url"`
}

// DashboardConfig holds presentation settings.
//
// RefreshInterval drives the page's setInterval, which holds at most ~24.8 days
// of milliseconds; it is capped at a week.
type DashboardConfig struct {
	HighlightThreshold float64       `validate:"gte=0"`
	RefreshInterval    time.Duration `validate:"gt=0,lte=168h"`
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// envNames maps struct namespaces reported by the validator back to env variables.
var envNames = map[string]string{
	"Config.Server.Host":                  "SERVER_HOST",
	"Config.Server.Port":                  "SERVER_PORT",
	"Config.Server.RequestTimeout":        "HTTP_REQUEST_TIMEOUT",
	"Config.Watchlist.Tickers":            "TICKERS",
	"Config.Watchlist.WindowDays":         "WINDOW_DAYS",
	"Config.Watchlist.ExchangeTimezone":   "EXCHANGE_TIMEZONE",
	"Config.Provider.Name":                "PROVIDER",
	"Config.Provider.RequestDelay":        "REQUEST_DELAY",
	"Config.Provider.FetchTimeout":        "FETCH_TIMEOUT",
	"Config.Provider.Parallel":            "FETCH_PARALLEL",
	"Config.Provider.YahooBaseURL":        "YAHOO_BASE_URL",
	"Config.Provider.PolygonAPIKey":       "POLYGON_API_KEY",
	"Config.Provider.AlpacaAPIKey":        "ALPACA_API_KEY",
	"Config.Provider.AlpacaAPISecret":     "ALPACA_API_SECRET",
	"Config.Provider.AlpacaDataURL":       "ALPACA_DATA_URL",
	"Config.Dashboard.HighlightThreshold": "HIGHLIGHT_THRESHOLD",
	"Config.Dashboard.RefreshInterval":    "REFRESH_INTERVAL",
}

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If the configuration is invalid, validateConfig() terminates the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "10000")
	viper.SetDefault("HTTP_REQUEST_TIMEOUT", "90s")

	viper.SetDefault("TICKERS", "AAPL,MSFT,NVDA,AMZN,META,GOOGL,SPY")
	viper.SetDefault("WINDOW_DAYS", 365)
	viper.SetDefault("EXCHANGE_TIMEZONE", "America/New_York")

	viper.SetDefault("PROVIDER", "yahoo")
	viper.SetDefault("REQUEST_DELAY", "1s")
	viper.SetDefault("FETCH_TIMEOUT", "15s")
	viper.SetDefault("FETCH_PARALLEL", 1)
	viper.SetDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com")

	viper.SetDefault("HIGHLIGHT_THRESHOLD", dto.DefaultHighlightThreshold)
	viper.SetDefault("REFRESH_INTERVAL", "2h")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Host:           viper.GetString("SERVER_HOST"),
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("HTTP_REQUEST_TIMEOUT"),
		},
		Watchlist: WatchlistConfig{
			Tickers:          ParseTickers(viper.GetString("TICKERS")),
			WindowDays:       viper.GetInt("WINDOW_DAYS"),
			ExchangeTimezone: viper.GetString("EXCHANGE_TIMEZONE"),
		},
		Provider: ProviderConfig{
			Name:            strings.ToLower(strings.TrimSpace(viper.GetString("PROVIDER"))),
			RequestDelay:    viper.GetDuration("REQUEST_DELAY"),
			FetchTimeout:    viper.GetDuration("FETCH_TIMEOUT"),
			Parallel:        viper.GetInt("FETCH_PARALLEL"),
			YahooBaseURL:    viper.GetString("YAHOO_BASE_URL"),
			PolygonAPIKey:   viper.GetString("POLYGON_API_KEY"),
			AlpacaAPIKey:    viper.GetString("ALPACA_API_KEY"),
			AlpacaAPISecret: viper.GetString("ALPACA_API_SECRET"),
			AlpacaDataURL:   viper.GetString("ALPACA_DATA_URL"),
		},
		Dashboard: DashboardConfig{
			HighlightThreshold: viper.GetFloat64("HIGHLIGHT_THRESHOLD"),
			RefreshInterval:    viper.GetDuration("REFRESH_INTERVAL"),
		},
	}

	validateConfig()
}

// ParseTickers splits a comma separated list, trimming blanks and upper-casing symbols.
// Order and duplicates are preserved.
func ParseTickers(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks cfg and returns an error naming every offending env variable.
func Validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	seen := make(map[string]struct{})
	var bad []string
	for _, fe := range verrs {
		name := envName(fe.Namespace())
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		bad = append(bad, name)
	}
	return fmt.Errorf("invalid or missing configuration: %v", bad)
}

// envName strips slice indexes ("Tickers[2]") before looking the field up.
func envName(namespace string) string {
	if i := strings.IndexByte(namespace, '['); i >= 0 {
		namespace = namespace[:i]
	}
	if name, ok := envNames[namespace]; ok {
		return name
	}
	return namespace
}

// validateConfig terminates the application when AppConfig is unusable.
//
// This avoids unexpected runtime failures due to incomplete configuration,
// e.g. an empty TICKERS list or a provider without its API key.
func validateConfig() {
	if err := Validate(AppConfig); err != nil {
		log.Fatalf("❌ %v\n", err)
	}
}
