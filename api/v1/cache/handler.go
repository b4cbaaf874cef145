package cache

import (
	"strconv"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"
	"cf_bridge/internal/service"
	"cf_bridge/internal/warming"

	"github.com/gin-gonic/gin"
)

// Handler handles cache purge and warming requests
type Handler struct {
	cache  *service.CacheService
	warmer *warming.Warmer
	// siteURL is the fallback root URL used for warming when the
	// request does not carry one
	siteURL string
}

// NewHandler creates a cache handler. warmer may be nil when warming
// is disabled globally.
func NewHandler(cache *service.CacheService, warmer *warming.Warmer, siteURL string) *Handler {
	return &Handler{cache: cache, warmer: warmer, siteURL: siteURL}
}

// PurgeAll purges the entire zone cache
// POST /api/v1/sites/:siteId/cache/purge-all
func (h *Handler) PurgeAll(c *gin.Context) {
	siteID := c.Param("siteId")

	if err := h.cache.PurgeAll(c.Request.Context(), siteID, model.PurgeTriggerUser); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"purged": "all"})
}

// PurgeURLsRequest is the purge-by-URL payload
type PurgeURLsRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// PurgeURLs purges a list of URLs
// POST /api/v1/sites/:siteId/cache/purge-urls
func (h *Handler) PurgeURLs(c *gin.Context) {
	siteID := c.Param("siteId")

	var req PurgeURLsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("urls is required"))
		return
	}

	if err := h.cache.PurgeURLs(c.Request.Context(), siteID, req.URLs, model.PurgeTriggerUser); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"purged": len(req.URLs)})
}

// PurgeTagsRequest is the purge-by-tag payload
type PurgeTagsRequest struct {
	Tags []string `json:"tags" binding:"required"`
}

// PurgeTags purges by cache tag
// POST /api/v1/sites/:siteId/cache/purge-tags
func (h *Handler) PurgeTags(c *gin.Context) {
	siteID := c.Param("siteId")

	var req PurgeTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("tags is required"))
		return
	}

	if err := h.cache.PurgeTags(c.Request.Context(), siteID, req.Tags, model.PurgeTriggerUser); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"purged": len(req.Tags)})
}

// PurgePrefixesRequest is the purge-by-prefix payload
type PurgePrefixesRequest struct {
	Prefixes []string `json:"prefixes" binding:"required"`
}

// PurgePrefixes purges by URL prefix
// POST /api/v1/sites/:siteId/cache/purge-prefixes
func (h *Handler) PurgePrefixes(c *gin.Context) {
	siteID := c.Param("siteId")

	var req PurgePrefixesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("prefixes is required"))
		return
	}

	if err := h.cache.PurgePrefixes(c.Request.Context(), siteID, req.Prefixes, model.PurgeTriggerUser); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"purged": len(req.Prefixes)})
}

// History returns recent purge events
// GET /api/v1/sites/:siteId/cache/history
func (h *Handler) History(c *gin.Context) {
	siteID := c.Param("siteId")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.cache.History(siteID, limit)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, events)
}

// Stats returns aggregated purge statistics
// GET /api/v1/sites/:siteId/cache/stats
func (h *Handler) Stats(c *gin.Context) {
	siteID := c.Param("siteId")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	stats, err := h.cache.Stats(siteID, days)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, stats)
}

// WarmRequest optionally overrides the site root used for warming
type WarmRequest struct {
	SiteURL string `json:"site_url"`
}

// Warm triggers a detached cache warming run
// POST /api/v1/sites/:siteId/cache/warm
func (h *Handler) Warm(c *gin.Context) {
	siteID := c.Param("siteId")

	if h.warmer == nil {
		httpx.FailErr(c, httpx.ErrValidation("cache warming is disabled"))
		return
	}

	var req WarmRequest
	_ = c.ShouldBindJSON(&req)
	siteURL := req.SiteURL
	if siteURL == "" {
		siteURL = h.siteURL
	}
	if siteURL == "" {
		httpx.FailErr(c, httpx.ErrValidation("site_url is required"))
		return
	}

	if err := h.warmer.Trigger(siteID, siteURL); err != nil {
		if err == warming.ErrAlreadyRunning {
			httpx.FailErr(c, httpx.ErrValidation("a warming run is already in progress"))
			return
		}
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"started": true})
}
