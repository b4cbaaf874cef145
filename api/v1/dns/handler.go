package dns

import (
	"cf_bridge/internal/credential"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles DNS record API requests
type Handler struct {
	dns   *service.DNSService
	creds *credential.Store
}

// NewHandler creates a DNS handler
func NewHandler(dns *service.DNSService, creds *credential.Store) *Handler {
	return &Handler{dns: dns, creds: creds}
}

// List returns the mirrored DNS records
// GET /api/v1/sites/:siteId/dns/records
func (h *Handler) List(c *gin.Context) {
	records, err := h.dns.List(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, records)
}

// Sync refreshes the mirror from Cloudflare
// POST /api/v1/sites/:siteId/dns/sync
func (h *Handler) Sync(c *gin.Context) {
	records, err := h.dns.Sync(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, records)
}

// Create creates a DNS record
// POST /api/v1/sites/:siteId/dns/records
func (h *Handler) Create(c *gin.Context) {
	var in service.DNSRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("type, name and content are required"))
		return
	}

	record, err := h.dns.Create(c.Request.Context(), c.Param("siteId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, record)
}

// Update updates a DNS record
// PUT /api/v1/sites/:siteId/dns/records/:recordId
func (h *Handler) Update(c *gin.Context) {
	var in service.DNSRecordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("type, name and content are required"))
		return
	}

	record, err := h.dns.Update(c.Request.Context(), c.Param("siteId"), c.Param("recordId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, record)
}

// Delete deletes a DNS record
// DELETE /api/v1/sites/:siteId/dns/records/:recordId
func (h *Handler) Delete(c *gin.Context) {
	if err := h.dns.Delete(c.Request.Context(), c.Param("siteId"), c.Param("recordId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// Export renders the mirror as a BIND zone file
// GET /api/v1/sites/:siteId/dns/export
func (h *Handler) Export(c *gin.Context) {
	siteID := c.Param("siteId")

	cred, err := h.creds.Get(siteID)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	if cred == nil || cred.ZoneName == "" {
		httpx.FailErr(c, httpx.ErrNotConnected(""))
		return
	}

	zone, err := h.dns.ExportZone(siteID, cred.ZoneName)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+cred.ZoneName+`.zone"`)
	c.String(200, zone)
}
