package zonesettings

import (
	"encoding/json"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles zone setting API requests
type Handler struct {
	settings *service.ZoneSettingsService
}

// NewHandler creates a zone settings handler
func NewHandler(settings *service.ZoneSettingsService) *Handler {
	return &Handler{settings: settings}
}

// List returns all zone settings
// GET /api/v1/sites/:siteId/zone-settings
func (h *Handler) List(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, settings)
}

// Get returns one setting
// GET /api/v1/sites/:siteId/zone-settings/:settingId
func (h *Handler) Get(c *gin.Context) {
	setting, err := h.settings.Get(c.Request.Context(), c.Param("siteId"), c.Param("settingId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, setting)
}

// UpdateRequest carries the new value as raw JSON, since settings mix
// strings, numbers and objects
type UpdateRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// Update patches one allowlisted setting
// PUT /api/v1/sites/:siteId/zone-settings/:settingId
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("value is required"))
		return
	}

	setting, err := h.settings.Update(c.Request.Context(), c.Param("siteId"), c.Param("settingId"), req.Value)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, setting)
}
