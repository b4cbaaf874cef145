package events

import (
	"cf_bridge/internal/events"
	"cf_bridge/internal/httpx"

	"github.com/gin-gonic/gin"
)

// Handler receives content change events from the CMS side
type Handler struct {
	worker *events.Worker
}

// NewHandler creates an events handler. worker may be nil when the
// auto-purge worker is disabled.
func NewHandler(worker *events.Worker) *Handler {
	return &Handler{worker: worker}
}

// Report enqueues one content event for the auto-purge worker.
// Accepted means queued, not purged: the purge happens asynchronously
// and its outcome lands in the purge audit log.
// POST /api/v1/sites/:siteId/events
func (h *Handler) Report(c *gin.Context) {
	var e events.Event
	if err := c.ShouldBindJSON(&e); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("kind is required"))
		return
	}
	e.SiteID = c.Param("siteId")

	if !e.Kind.Valid() {
		httpx.FailErr(c, httpx.ErrValidation("unknown event kind '"+string(e.Kind)+"'"))
		return
	}

	if h.worker == nil {
		httpx.FailErr(c, httpx.ErrValidation("auto-purge is disabled"))
		return
	}

	queued := h.worker.Enqueue(e)
	httpx.OK(c, gin.H{"queued": queued})
}
