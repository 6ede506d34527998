package config

import (
	"os"
	"os/exec"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/guttosm/drawdownpulse/internal/domain/dto"
)

// TestLoadConfig_Defaults verifies that defaults are loaded when no env is set.
func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_HOST", "SERVER_PORT", "TICKERS", "PROVIDER", "REQUEST_DELAY", "WINDOW_DAYS", "HIGHLIGHT_THRESHOLD", "REFRESH_INTERVAL", "EXCHANGE_TIMEZONE"} {
		_ = os.Unsetenv(k)
	}

	LoadConfig()

	if AppConfig.Server.Port != "10000" || AppConfig.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server defaults: %+v", AppConfig.Server)
	}
	want := []string{"AAPL", "MSFT", "NVDA", "AMZN", "META", "GOOGL", "SPY"}
	if !reflect.DeepEqual(AppConfig.Watchlist.Tickers, want) {
		t.Fatalf("tickers=%v want %v", AppConfig.Watchlist.Tickers, want)
	}
	if AppConfig.Watchlist.WindowDays != 365 || AppConfig.Watchlist.ExchangeTimezone != "America/New_York" {
		t.Fatalf("unexpected watchlist defaults: %+v", AppConfig.Watchlist)
	}
	if AppConfig.Provider.Name != "yahoo" || AppConfig.Provider.RequestDelay != time.Second || AppConfig.Provider.Parallel != 1 {
		t.Fatalf("unexpected provider defaults: %+v", AppConfig.Provider)
	}
	if AppConfig.Dashboard.HighlightThreshold != dto.DefaultHighlightThreshold || AppConfig.Dashboard.RefreshInterval != 2*time.Hour {
		t.Fatalf("unexpected dashboard defaults: %+v", AppConfig.Dashboard)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TICKERS", "spy, qqq ,,SPY")
	t.Setenv("REQUEST_DELAY", "250ms")

	LoadConfig()

	if !reflect.DeepEqual(AppConfig.Watchlist.Tickers, []string{"SPY", "QQQ", "SPY"}) {
		t.Fatalf("unexpected tickers: %v", AppConfig.Watchlist.Tickers)
	}
	if AppConfig.Provider.RequestDelay != 250*time.Millisecond {
		t.Fatalf("unexpected delay: %v", AppConfig.Provider.RequestDelay)
	}
}

func TestParseTickers(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{" , ,", nil},
		{"aapl", []string{"AAPL"}},
		{"AAPL,MSFT,AAPL", []string{"AAPL", "MSFT", "AAPL"}},
	}
	for _, c := range cases {
		if got := ParseTickers(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseTickers(%q)=%v, want %v", c.in, got, c.want)
		}
	}
}

func validConfig() Config {
	return Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: "10000", RequestTimeout: time.Minute},
		Watchlist: WatchlistConfig{Tickers: []string{"AAPL"}, WindowDays: 365, ExchangeTimezone: "America/New_York"},
		Provider:  ProviderConfig{Name: "yahoo", RequestDelay: time.Second, FetchTimeout: 15 * time.Second, Parallel: 1},
		Dashboard: DashboardConfig{HighlightThreshold: 0.3, RefreshInterval: 2 * time.Hour},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantEnv string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty tickers", mutate: func(c *Config) { c.Watchlist.Tickers = nil }, wantEnv: "TICKERS"},
		{name: "blank ticker", mutate: func(c *Config) { c.Watchlist.Tickers = []string{"AAPL", ""} }, wantEnv: "TICKERS"},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider.Name = "bloomberg" }, wantEnv: "PROVIDER"},
		{name: "polygon without key", mutate: func(c *Config) { c.Provider.Name = "polygon" }, wantEnv: "POLYGON_API_KEY"},
		{name: "alpaca without secret", mutate: func(c *Config) {
			c.Provider.Name = "alpaca"
			c.Provider.AlpacaAPIKey = "k"
		}, wantEnv: "ALPACA_API_SECRET"},
		{name: "bad timezone", mutate: func(c *Config) { c.Watchlist.ExchangeTimezone = "Mars/Olympus" }, wantEnv: "EXCHANGE_TIMEZONE"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantEnv: "SERVER_PORT"},
		{name: "negative threshold", mutate: func(c *Config) { c.Dashboard.HighlightThreshold = -1 }, wantEnv: "HIGHLIGHT_THRESHOLD"},
		{name: "zero refresh", mutate: func(c *Config) { c.Dashboard.RefreshInterval = 0 }, wantEnv: "REFRESH_INTERVAL"},
		{name: "week refresh", mutate: func(c *Config) { c.Dashboard.RefreshInterval = 168 * time.Hour }},
		{name: "refresh beyond browser timer range", mutate: func(c *Config) { c.Dashboard.RefreshInterval = 30 * 24 * time.Hour }, wantEnv: "REFRESH_INTERVAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if tc.wantEnv == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantEnv) {
				t.Fatalf("expected error naming %s, got %v", tc.wantEnv, err)
			}
		})
	}
}

// TestValidateConfig_Fatal uses a subprocess to assert that validateConfig triggers a fatal exit
// when required fields are missing.
func TestValidateConfig_Fatal(t *testing.T) {
	if os.Getenv("RUN_VALIDATE_FATAL") == "1" {
		// In child process: set empty AppConfig and call validateConfig() to trigger log.Fatalf (os.Exit)
		AppConfig = Config{}
		validateConfig()
		t.Fatalf("validateConfig should have exited the process")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run", "TestValidateConfig_Fatal")
	cmd.Env = append(os.Environ(), "RUN_VALIDATE_FATAL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected process to exit with error, got nil")
	}
}
