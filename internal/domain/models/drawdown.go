package models

// DrawdownResult is the per-ticker output of one aggregation run.
//
// Fields:
//   - Ticker: the symbol exactly as configured (e.g., "AAPL").
//   - CurrentPrice: close of the most recent bar in the window, rounded to 2 decimals.
//   - High12M: maximum high across the window, rounded to 2 decimals.
//   - Drawdown: 1 - CurrentPrice/High12M computed from the unrounded prices.
//     0 means the ticker trades at its high, 0.25 means 25% below it.
//
// A result is only ever built when every field is known; tickers without
// usable data are omitted instead of being represented with zero values.
type DrawdownResult struct {
	Ticker       string  `json:"ticker" example:"AAPL"`
	CurrentPrice float64 `json:"current_price" example:"120.00"`
	High12M      float64 `json:"high_12m" example:"160.00"`
	Drawdown     float64 `json:"drawdown" example:"0.25"`
}

// SkipReason explains why a ticker produced no DrawdownResult.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipProviderError SkipReason = "provider_error"
	SkipNoData        SkipReason = "no_data"
	SkipNoClose       SkipReason = "missing_close"
	SkipZeroHigh      SkipReason = "zero_high"
)
