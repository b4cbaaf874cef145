package settings

import (
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles plugin settings API requests
type Handler struct {
	settings *service.SettingsService
}

// NewHandler creates a settings handler
func NewHandler(settings *service.SettingsService) *Handler {
	return &Handler{settings: settings}
}

// Get returns the site's settings (defaults when none stored)
// GET /api/v1/sites/:siteId/settings
func (h *Handler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, settings)
}

// Update replaces the site's settings
// PUT /api/v1/sites/:siteId/settings
func (h *Handler) Update(c *gin.Context) {
	var in model.PluginSettings
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("invalid settings payload"))
		return
	}

	updated, err := h.settings.Update(c.Param("siteId"), &in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, updated)
}

// Reset restores the defaults
// POST /api/v1/sites/:siteId/settings/reset
func (h *Handler) Reset(c *gin.Context) {
	settings, err := h.settings.Reset(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, settings)
}
