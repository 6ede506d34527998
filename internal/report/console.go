// Package report renders drawdown results for terminals.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/guttosm/drawdownpulse/internal/domain/dto"
	"github.com/guttosm/drawdownpulse/internal/domain/models"
)

const (
	Caption  = "Stock Drawdown from 12-Month High"
	FlagMark = "*"
	colGap   = "  "
)

// Style definitions.
var (
	captionStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#007acc"))
	flaggedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	plainStyle   = lipgloss.NewStyle()
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

var headers = []string{"Ticker", "Current Price", "12-Month High", "Drawdown (%)"}

// Render writes a table of results to w. Rows whose drawdown is above
// threshold are drawn in the flagged style and marked with FlagMark.
func Render(w io.Writer, results []models.DrawdownResult, threshold float64, asOf time.Time) error {
	rows := dto.NewDrawdownRows(results, threshold)

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.Ticker, r.CurrentPrice, r.High12M, r.DrawdownPct})
	}
	widths := columnWidths(headers, cells)

	var b strings.Builder
	b.WriteString(captionStyle.Render(Caption))
	b.WriteString("\n")
	b.WriteString(line(headers, widths, headerStyle))
	b.WriteString("\n")

	for i, r := range rows {
		style := plainStyle
		mark := ""
		if r.Flagged {
			style = flaggedStyle
			mark = colGap + FlagMark
		}
		b.WriteString(line(cells[i], widths, style))
		b.WriteString(mark)
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(footerStyle.Render("no data"))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf("%d tickers, threshold %.0f%%, as of %s",
		len(rows), threshold*100, asOf.Format(time.RFC3339))))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := lipgloss.Width(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func line(cols []string, widths []int, style lipgloss.Style) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = style.Width(widths[i]).Render(c)
	}
	return strings.Join(parts, colGap)
}
