package stream

import (
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles Cloudflare Stream API requests
type Handler struct {
	stream *service.StreamService
}

// NewHandler creates a Stream handler
func NewHandler(stream *service.StreamService) *Handler {
	return &Handler{stream: stream}
}

// ListVideos lists the account's videos with playback URLs
// GET /api/v1/sites/:siteId/stream/videos
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.stream.ListVideos(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, videos)
}

// GetVideo returns one video
// GET /api/v1/sites/:siteId/stream/videos/:videoId
func (h *Handler) GetVideo(c *gin.Context) {
	video, err := h.stream.GetVideo(c.Request.Context(), c.Param("siteId"), c.Param("videoId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, video)
}

// DeleteVideo removes a video
// DELETE /api/v1/sites/:siteId/stream/videos/:videoId
func (h *Handler) DeleteVideo(c *gin.Context) {
	err := h.stream.DeleteVideo(c.Request.Context(), c.Param("siteId"), c.Param("videoId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListLiveInputs lists live ingest points
// GET /api/v1/sites/:siteId/stream/live-inputs
func (h *Handler) ListLiveInputs(c *gin.Context) {
	inputs, err := h.stream.ListLiveInputs(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, inputs)
}

// CreateLiveInputRequest optionally names the new input
type CreateLiveInputRequest struct {
	Name string `json:"name"`
}

// CreateLiveInput creates a live ingest point
// POST /api/v1/sites/:siteId/stream/live-inputs
func (h *Handler) CreateLiveInput(c *gin.Context) {
	var req CreateLiveInputRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpx.FailErr(c, httpx.ErrValidation("invalid request body"))
		return
	}

	input, err := h.stream.CreateLiveInput(c.Request.Context(), c.Param("siteId"), req.Name)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, input)
}

// Stats summarizes the video library
// GET /api/v1/sites/:siteId/stream/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.stream.Stats(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, stats)
}
