package connection

import (
	"cf_bridge/internal/credential"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles credential and SSO flow requests
type Handler struct {
	store    *credential.Store
	notifier service.Notifier
}

// NewHandler creates a connection handler. notifier may be nil.
func NewHandler(store *credential.Store, notifier service.Notifier) *Handler {
	return &Handler{store: store, notifier: notifier}
}

// StatusResponse is the connection status payload
type StatusResponse struct {
	Status         model.ConnectionStatus `json:"status"`
	AccountID      string                 `json:"account_id,omitempty"`
	ZoneID         string                 `json:"zone_id,omitempty"`
	ZoneName       string                 `json:"zone_name,omitempty"`
	LastVerifiedAt interface{}            `json:"last_verified_at,omitempty"`
}

// Status returns the site's connection state
// GET /api/v1/sites/:siteId/connection
func (h *Handler) Status(c *gin.Context) {
	siteID := c.Param("siteId")

	cred, err := h.store.Get(siteID)
	if err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}
	if cred == nil {
		httpx.OK(c, StatusResponse{Status: model.ConnectionDisconnected})
		return
	}

	httpx.OK(c, StatusResponse{
		Status:         cred.Status,
		AccountID:      cred.AccountID,
		ZoneID:         cred.ZoneID,
		ZoneName:       cred.ZoneName,
		LastVerifiedAt: cred.LastVerifiedAt,
	})
}

// ConnectRequest is the manual token connect payload
type ConnectRequest struct {
	Token     string `json:"token" binding:"required"`
	AccountID string `json:"account_id" binding:"required"`
	ZoneID    string `json:"zone_id" binding:"required"`
}

// Connect stores a manually supplied API token
// POST /api/v1/sites/:siteId/connection/connect
func (h *Handler) Connect(c *gin.Context) {
	siteID := c.Param("siteId")

	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("token, account_id and zone_id are required"))
		return
	}

	cred, err := h.store.Connect(c.Request.Context(), siteID, req.Token, req.AccountID, req.ZoneID)
	if err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}

	h.publish("connected", siteID, cred.ZoneName)
	httpx.OK(c, cred)
}

// Disconnect drops the stored credential
// POST /api/v1/sites/:siteId/connection/disconnect
func (h *Handler) Disconnect(c *gin.Context) {
	siteID := c.Param("siteId")

	if err := h.store.Disconnect(siteID); err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}

	h.publish("disconnected", siteID, "")
	httpx.OK(c, gin.H{"status": model.ConnectionDisconnected})
}

// SSOInitiate starts the SSO flow
// POST /api/v1/sites/:siteId/connection/sso/initiate
func (h *Handler) SSOInitiate(c *gin.Context) {
	siteID := c.Param("siteId")

	authURL, state, err := h.store.SSOInitiate(siteID)
	if err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}

	httpx.OK(c, gin.H{
		"auth_url": authURL,
		"state":    state,
	})
}

// SSOCallbackRequest carries the access token obtained from the OAuth leg
type SSOCallbackRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// SSOCallback handles the return leg of the SSO flow
// POST /api/v1/sites/:siteId/connection/sso/callback
func (h *Handler) SSOCallback(c *gin.Context) {
	siteID := c.Param("siteId")

	var req SSOCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("access_token is required"))
		return
	}

	result, err := h.store.SSOCallback(c.Request.Context(), siteID, req.AccessToken)
	if err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}

	if result.Status == model.ConnectionConnected {
		h.publish("connected", siteID, result.ZoneName)
	}
	httpx.OK(c, result)
}

// SSOCompleteRequest finishes a parked SSO flow
type SSOCompleteRequest struct {
	ExchangeToken string `json:"exchange_token" binding:"required"`
	AccountID     string `json:"account_id" binding:"required"`
	ZoneID        string `json:"zone_id" binding:"required"`
}

// SSOComplete consumes the exchange token and persists the selection
// POST /api/v1/sites/:siteId/connection/sso/complete
func (h *Handler) SSOComplete(c *gin.Context) {
	siteID := c.Param("siteId")

	var req SSOCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("exchange_token, account_id and zone_id are required"))
		return
	}

	cred, err := h.store.SSOComplete(c.Request.Context(), siteID, req.ExchangeToken, req.AccountID, req.ZoneID)
	if err != nil {
		httpx.FailErr(c, service.MapError(err))
		return
	}

	h.publish("connected", siteID, cred.ZoneName)
	httpx.OK(c, cred)
}

func (h *Handler) publish(eventType, siteID, zoneName string) {
	if h.notifier == nil {
		return
	}
	h.notifier.Publish("connection", eventType, gin.H{
		"site_id":   siteID,
		"zone_name": zoneName,
	})
}
