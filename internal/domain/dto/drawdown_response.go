package dto

import (
	"fmt"

	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

// DefaultHighlightThreshold is the drawdown above which a row is flagged.
const DefaultHighlightThreshold = 0.30

// DrawdownResponse is one element of the JSON array returned by
// GET /api/v1/drawdowns. It mirrors the field names polled by the dashboard.
type DrawdownResponse struct {
	Ticker       string  `json:"ticker" example:"AAPL"`
	CurrentPrice float64 `json:"current_price" example:"120.00"`
	High12M      float64 `json:"high_12m" example:"160.00"`
	Drawdown     float64 `json:"drawdown" example:"0.25"`
}

// NewDrawdownResponses maps aggregation results to the API contract.
// It never returns nil so an empty run serializes as [].
func NewDrawdownResponses(results []models.DrawdownResult) []DrawdownResponse {
	out := make([]DrawdownResponse, 0, len(results))
	for _, r := range results {
		out = append(out, DrawdownResponse{
			Ticker:       r.Ticker,
			CurrentPrice: r.CurrentPrice,
			High12M:      r.High12M,
			Drawdown:     r.Drawdown,
		})
	}
	return out
}

// DrawdownRow is the display form of a result, shared by the HTML page and the console table.
type DrawdownRow struct {
	Ticker       string
	CurrentPrice string // "$120.00"
	High12M      string // "$160.00"
	DrawdownPct  string // "25.00%"
	Flagged      bool
}

// IsFlagged reports whether a drawdown must be highlighted.
// The comparison is strict: a drawdown equal to the threshold is not flagged.
func IsFlagged(drawdown, threshold float64) bool {
	return drawdown > threshold
}

// NewDrawdownRows formats results for display, flagging rows above threshold.
func NewDrawdownRows(results []models.DrawdownResult, threshold float64) []DrawdownRow {
	rows := make([]DrawdownRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, DrawdownRow{
			Ticker:       r.Ticker,
			CurrentPrice: fmt.Sprintf("$%.2f", r.CurrentPrice),
			High12M:      fmt.Sprintf("$%.2f", r.High12M),
			DrawdownPct:  fmt.Sprintf("%.2f%%", r.Drawdown*100),
			Flagged:      IsFlagged(r.Drawdown, threshold),
		})
	}
	return rows
}
