package pagerules

import (
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles page rule API requests
type Handler struct {
	rules *service.PageRulesService
}

// NewHandler creates a page rules handler
func NewHandler(rules *service.PageRulesService) *Handler {
	return &Handler{rules: rules}
}

// List returns the mirrored page rules
// GET /api/v1/sites/:siteId/page-rules
func (h *Handler) List(c *gin.Context) {
	rules, err := h.rules.List(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rules)
}

// Sync refreshes the mirror from Cloudflare
// POST /api/v1/sites/:siteId/page-rules/sync
func (h *Handler) Sync(c *gin.Context) {
	rules, err := h.rules.Sync(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rules)
}

// Create creates a page rule
// POST /api/v1/sites/:siteId/page-rules
func (h *Handler) Create(c *gin.Context) {
	var in service.PageRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("url and actions are required"))
		return
	}

	rule, err := h.rules.Create(c.Request.Context(), c.Param("siteId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// Update updates a page rule
// PUT /api/v1/sites/:siteId/page-rules/:ruleId
func (h *Handler) Update(c *gin.Context) {
	var in service.PageRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("url and actions are required"))
		return
	}

	rule, err := h.rules.Update(c.Request.Context(), c.Param("siteId"), c.Param("ruleId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// Delete deletes a page rule
// DELETE /api/v1/sites/:siteId/page-rules/:ruleId
func (h *Handler) Delete(c *gin.Context) {
	if err := h.rules.Delete(c.Request.Context(), c.Param("siteId"), c.Param("ruleId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}
