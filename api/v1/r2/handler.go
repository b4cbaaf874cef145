package r2

import (
	"io"
	"strings"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// maxObjectSize caps single-call uploads; larger files belong in a
// multipart flow outside this API.
const maxObjectSize = 100 << 20

// Handler handles R2 bucket API requests
type Handler struct {
	r2 *service.R2Service
}

// NewHandler creates an R2 handler
func NewHandler(r2 *service.R2Service) *Handler {
	return &Handler{r2: r2}
}

// List lists buckets, refreshing the mirror
// GET /api/v1/sites/:siteId/r2/buckets
func (h *Handler) List(c *gin.Context) {
	buckets, err := h.r2.ListBuckets(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, buckets)
}

// CreateRequest names a new bucket
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create creates a bucket
// POST /api/v1/sites/:siteId/r2/buckets
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("name is required"))
		return
	}

	bucket, err := h.r2.CreateBucket(c.Request.Context(), c.Param("siteId"), req.Name)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, bucket)
}

// Delete deletes a bucket
// DELETE /api/v1/sites/:siteId/r2/buckets/:name
func (h *Handler) Delete(c *gin.Context) {
	if err := h.r2.DeleteBucket(c.Request.Context(), c.Param("siteId"), c.Param("name")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListObjects lists a bucket's objects
// GET /api/v1/sites/:siteId/r2/buckets/:name/objects?prefix=...
func (h *Handler) ListObjects(c *gin.Context) {
	objects, err := h.r2.ListObjects(c.Request.Context(),
		c.Param("siteId"), c.Param("name"), c.Query("prefix"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, objects)
}

// UploadObject stores the request body as an object. The key is the
// wildcard remainder of the path.
// PUT /api/v1/sites/:siteId/r2/buckets/:name/objects/*key
func (h *Handler) UploadObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxObjectSize+1))
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation("failed to read request body"))
		return
	}
	if len(body) > maxObjectSize {
		httpx.FailErr(c, httpx.ErrValidation("object exceeds the 100 MB single-upload limit"))
		return
	}

	contentType := c.GetHeader("Content-Type")
	err = h.r2.UploadObject(c.Request.Context(),
		c.Param("siteId"), c.Param("name"), key, contentType, body)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"key": key, "size": len(body)})
}

// DeleteObject removes one object
// DELETE /api/v1/sites/:siteId/r2/buckets/:name/objects/*key
func (h *Handler) DeleteObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	err := h.r2.DeleteObject(c.Request.Context(), c.Param("siteId"), c.Param("name"), key)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true, "key": key})
}
