package security

import (
	"strconv"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles security API requests
type Handler struct {
	security *service.SecurityService
}

// NewHandler creates a security handler
func NewHandler(security *service.SecurityService) *Handler {
	return &Handler{security: security}
}

// GetLevel returns the zone's security level
// GET /api/v1/sites/:siteId/security/level
func (h *Handler) GetLevel(c *gin.Context) {
	level, err := h.security.GetSecurityLevel(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"level": level})
}

// SetLevelRequest is the security level payload
type SetLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

// SetLevel updates the zone's security level
// PUT /api/v1/sites/:siteId/security/level
func (h *Handler) SetLevel(c *gin.Context) {
	var req SetLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("level is required"))
		return
	}

	if err := h.security.SetSecurityLevel(c.Request.Context(), c.Param("siteId"), req.Level); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"level": req.Level})
}

// UnderAttackRequest toggles under-attack mode
type UnderAttackRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UnderAttack toggles under-attack mode
// PUT /api/v1/sites/:siteId/security/under-attack
func (h *Handler) UnderAttack(c *gin.Context) {
	var req UnderAttackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("enabled is required"))
		return
	}

	if err := h.security.SetUnderAttack(c.Request.Context(), c.Param("siteId"), *req.Enabled); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"under_attack": *req.Enabled})
}

// ListFirewallRules returns the mirrored firewall rules
// GET /api/v1/sites/:siteId/security/firewall-rules
func (h *Handler) ListFirewallRules(c *gin.Context) {
	rules, err := h.security.ListFirewallRules(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rules)
}

// SyncFirewallRules refreshes the firewall rule mirror from Cloudflare
// POST /api/v1/sites/:siteId/security/firewall-rules/sync
func (h *Handler) SyncFirewallRules(c *gin.Context) {
	rules, err := h.security.SyncFirewallRules(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rules)
}

// CreateFirewallRule creates a firewall rule
// POST /api/v1/sites/:siteId/security/firewall-rules
func (h *Handler) CreateFirewallRule(c *gin.Context) {
	var in service.FirewallRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("action and expression are required"))
		return
	}

	rule, err := h.security.CreateFirewallRule(c.Request.Context(), c.Param("siteId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// UpdateFirewallRule updates a firewall rule
// PUT /api/v1/sites/:siteId/security/firewall-rules/:ruleId
func (h *Handler) UpdateFirewallRule(c *gin.Context) {
	var in service.FirewallRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("action and expression are required"))
		return
	}

	rule, err := h.security.UpdateFirewallRule(c.Request.Context(), c.Param("siteId"), c.Param("ruleId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// DeleteFirewallRule deletes a firewall rule
// DELETE /api/v1/sites/:siteId/security/firewall-rules/:ruleId
func (h *Handler) DeleteFirewallRule(c *gin.Context) {
	if err := h.security.DeleteFirewallRule(c.Request.Context(), c.Param("siteId"), c.Param("ruleId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListIPRules returns the mirrored IP access rules
// GET /api/v1/sites/:siteId/security/ip-rules
func (h *Handler) ListIPRules(c *gin.Context) {
	rules, err := h.security.ListIPAccessRules(c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rules)
}

// CreateIPRule creates an IP access rule
// POST /api/v1/sites/:siteId/security/ip-rules
func (h *Handler) CreateIPRule(c *gin.Context) {
	var in service.IPAccessRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("mode and value are required"))
		return
	}

	rule, err := h.security.CreateIPAccessRule(c.Request.Context(), c.Param("siteId"), in)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// DeleteIPRule deletes an IP access rule
// DELETE /api/v1/sites/:siteId/security/ip-rules/:ruleId
func (h *Handler) DeleteIPRule(c *gin.Context) {
	if err := h.security.DeleteIPAccessRule(c.Request.Context(), c.Param("siteId"), c.Param("ruleId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListWAFPackages lists the zone's WAF packages
// GET /api/v1/sites/:siteId/security/waf/packages
func (h *Handler) ListWAFPackages(c *gin.Context) {
	packages, err := h.security.ListWAFPackages(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, packages)
}

// SetWAFRuleModeRequest is the WAF rule toggle payload
type SetWAFRuleModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetWAFRuleMode toggles one WAF rule
// PUT /api/v1/sites/:siteId/security/waf/packages/:packageId/rules/:ruleId
func (h *Handler) SetWAFRuleMode(c *gin.Context) {
	var req SetWAFRuleModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("mode is required"))
		return
	}

	rule, err := h.security.SetWAFRuleMode(c.Request.Context(), c.Param("siteId"),
		c.Param("packageId"), c.Param("ruleId"), req.Mode)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, rule)
}

// Events fetches and snapshots recent firewall activity
// GET /api/v1/sites/:siteId/security/events
func (h *Handler) Events(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.security.FetchSecurityEvents(c.Request.Context(), c.Param("siteId"), limit)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, events)
}
