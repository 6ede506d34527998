package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/moznion/go-optional"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const yahooChartPath = "/v8/finance/chart/{symbol}"

// yahooChartResponse is the subset of the v8 chart payload we read.
// Quote arrays are index-aligned with Timestamp and may contain nulls.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type yahooResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			High  []*float64 `json:"high"`
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooProvider reads daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	client *resty.Client
}

// NewYahooProvider returns a provider talking to baseURL (DefaultYahooBaseURL when empty).
func NewYahooProvider(baseURL string, timeout time.Duration) *YahooProvider {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)
	// Yahoo answers 429 to clients without a browser-like agent.
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; drawdownpulse/1.0)")

	return &YahooProvider{client: client}
}

func (p *YahooProvider) Name() string { return ProviderYahoo }

// History fetches daily bars for symbol over [start, end).
func (p *YahooProvider) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	var out yahooChartResponse

	resp, err := p.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		SetResult(&out).
		SetError(&out).
		Get(yahooChartPath)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %s", symbol, out.Chart.Error.Code, out.Chart.Error.Description)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo chart %s: unexpected status %d", symbol, resp.StatusCode())
	}
	if len(out.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	bars := yahooBars(out.Chart.Result[0])
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

// yahooBars zips timestamps with quote columns. Sessions without a high are
// dropped; a missing close is kept as None so the caller can decide.
func yahooBars(res yahooResult) []models.Bar {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.High) || q.High[i] == nil {
			continue
		}
		bar := models.Bar{
			Date:  time.Unix(ts, 0).UTC(),
			High:  *q.High[i],
			Close: optional.None[float64](),
		}
		if i < len(q.Close) && q.Close[i] != nil {
			bar.Close = optional.Some(*q.Close[i])
		}
		bars = append(bars, bar)
	}
	return bars
}
