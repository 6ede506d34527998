package api

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/drawdownpulse/internal/domain/dto"
	"github.com/guttosm/drawdownpulse/internal/service"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const dashboardTemplate = "index.html.tmpl"

// parseTemplates loads the embedded dashboard page.
func parseTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
}

// Handler serves the drawdown dashboard and its JSON feed.
//
// Responsibilities:
//   - Ask the DrawdownService for a fresh aggregation on every request
//   - Translate results into response DTOs (JSON) or display rows (HTML)
//   - Flag rows whose drawdown is strictly above the configured threshold
//
// Both endpoints always answer 200: tickers that failed are simply absent.
type Handler struct {
	svc       service.DrawdownService
	threshold float64
	refresh   time.Duration
	now       func() time.Time
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc: source of drawdown results.
//   - threshold: rows with drawdown > threshold are highlighted (e.g. 0.30).
//   - refresh: how often the page polls /api/v1/drawdowns.
func NewHandler(svc service.DrawdownService, threshold float64, refresh time.Duration) *Handler {
	return &Handler{svc: svc, threshold: threshold, refresh: refresh, now: time.Now}
}

// GetDrawdowns godoc
// @Summary      List drawdowns
// @Description  Fetches the trailing 12-month high and latest close of every configured ticker and returns the drawdown from that high. Tickers without usable data are omitted.
// @Tags         drawdowns
// @Produce      json
// @Success      200  {array}   dto.DrawdownResponse  "Success"
// @Failure      429  {object}  dto.ErrorResponse     "Too Many Requests"
// @Failure      500  {object}  dto.ErrorResponse     "Internal Error"
// @Router       /api/v1/drawdowns [get]
func (h *Handler) GetDrawdowns(c *gin.Context) {
	results := h.svc.GetDrawdowns(c.Request.Context())
	c.JSON(http.StatusOK, dto.NewDrawdownResponses(results))
}

// Dashboard godoc
// @Summary      Drawdown dashboard
// @Description  HTML table of drawdowns; rows above the highlight threshold carry the "highlight" class. The page refreshes itself from /api/v1/drawdowns.
// @Tags         drawdowns
// @Produce      html
// @Success      200  {string}  string  "HTML page"
// @Router       / [get]
func (h *Handler) Dashboard(c *gin.Context) {
	results := h.svc.GetDrawdowns(c.Request.Context())

	c.HTML(http.StatusOK, dashboardTemplate, gin.H{
		"Rows":      dto.NewDrawdownRows(results, h.threshold),
		"Threshold": h.threshold,
		"RefreshMs": h.refresh.Milliseconds(),
		"UpdatedAt": h.now().UTC().Format(time.RFC3339),
	})
}
