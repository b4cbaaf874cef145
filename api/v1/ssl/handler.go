package ssl

import (
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles SSL API requests
type Handler struct {
	ssl *service.SSLService
}

// NewHandler creates an SSL handler
func NewHandler(ssl *service.SSLService) *Handler {
	return &Handler{ssl: ssl}
}

// GetMode returns the zone's SSL mode
// GET /api/v1/sites/:siteId/ssl/mode
func (h *Handler) GetMode(c *gin.Context) {
	mode, err := h.ssl.GetMode(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"mode": mode})
}

// SetModeRequest is the SSL mode payload
type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetMode updates the zone's SSL mode
// PUT /api/v1/sites/:siteId/ssl/mode
func (h *Handler) SetMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("mode is required"))
		return
	}

	if err := h.ssl.SetMode(c.Request.Context(), c.Param("siteId"), req.Mode); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"mode": req.Mode})
}

// Certificates lists certificate packs, refreshing the mirror
// GET /api/v1/sites/:siteId/ssl/certificates
func (h *Handler) Certificates(c *gin.Context) {
	certs, err := h.ssl.ListCertificates(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, certs)
}
