package analytics

import (
	"strconv"
	"time"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles analytics API requests
type Handler struct {
	analytics *service.AnalyticsService
}

// NewHandler creates an analytics handler
func NewHandler(analytics *service.AnalyticsService) *Handler {
	return &Handler{analytics: analytics}
}

// Dashboard returns the live analytics dashboard
// GET /api/v1/sites/:siteId/analytics/dashboard?since=...&until=...
func (h *Handler) Dashboard(c *gin.Context) {
	until := time.Now()
	since := until.AddDate(0, 0, -7)

	if v := c.Query("since"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.FailErr(c, httpx.ErrValidation("since must be RFC3339"))
			return
		}
		since = parsed
	}
	if v := c.Query("until"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.FailErr(c, httpx.ErrValidation("until must be RFC3339"))
			return
		}
		until = parsed
	}

	dash, err := h.analytics.Dashboard(c.Request.Context(), c.Param("siteId"), since, until)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, dash)
}

// History returns stored daily snapshots
// GET /api/v1/sites/:siteId/analytics/history?days=30
func (h *Handler) History(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	rows, err := h.analytics.History(c.Param("siteId"), days)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rows)
}

// Snapshot records yesterday's totals for the site
// POST /api/v1/sites/:siteId/analytics/snapshot
func (h *Handler) Snapshot(c *gin.Context) {
	day := time.Now().AddDate(0, 0, -1)
	if v := c.Query("day"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.FailErr(c, httpx.ErrValidation("day must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	row, err := h.analytics.Snapshot(c.Request.Context(), c.Param("siteId"), day)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, row)
}
