package workers

import (
	"io"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// maxScriptSize caps uploaded worker scripts at 1 MB
const maxScriptSize = 1 << 20

// Handler handles Workers API requests
type Handler struct {
	workers *service.WorkersService
}

// NewHandler creates a workers handler
func NewHandler(workers *service.WorkersService) *Handler {
	return &Handler{workers: workers}
}

// ListScripts lists deployed scripts, refreshing the mirror
// GET /api/v1/sites/:siteId/workers/scripts
func (h *Handler) ListScripts(c *gin.Context) {
	scripts, err := h.workers.ListScripts(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, scripts)
}

// GetScript returns a script's source as plain text
// GET /api/v1/sites/:siteId/workers/scripts/:name
func (h *Handler) GetScript(c *gin.Context) {
	source, err := h.workers.GetScript(c.Request.Context(), c.Param("siteId"), c.Param("name"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	c.Header("Content-Type", "application/javascript")
	c.String(200, source)
}

// DeployScript uploads a script. The body is the raw JavaScript source.
// PUT /api/v1/sites/:siteId/workers/scripts/:name
func (h *Handler) DeployScript(c *gin.Context) {
	source, err := io.ReadAll(io.LimitReader(c.Request.Body, maxScriptSize+1))
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation("failed to read script body"))
		return
	}
	if len(source) > maxScriptSize {
		httpx.FailErr(c, httpx.ErrValidation("script exceeds the 1 MB limit"))
		return
	}

	worker, err := h.workers.DeployScript(c.Request.Context(), c.Param("siteId"), c.Param("name"), string(source))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, worker)
}

// DeployTemplateRequest picks a built-in template
type DeployTemplateRequest struct {
	Template string `json:"template" binding:"required"`
}

// DeployTemplate deploys a built-in template under the given name
// POST /api/v1/sites/:siteId/workers/scripts/:name/from-template
func (h *Handler) DeployTemplate(c *gin.Context) {
	var req DeployTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("template is required"))
		return
	}

	worker, err := h.workers.DeployTemplate(c.Request.Context(), c.Param("siteId"), c.Param("name"), req.Template)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, worker)
}

// ListTemplates returns the built-in template names
// GET /api/v1/sites/:siteId/workers/templates
func (h *Handler) ListTemplates(c *gin.Context) {
	httpx.OK(c, h.workers.ListTemplates())
}

// DeleteScript deletes a deployed script
// DELETE /api/v1/sites/:siteId/workers/scripts/:name
func (h *Handler) DeleteScript(c *gin.Context) {
	if err := h.workers.DeleteScript(c.Request.Context(), c.Param("siteId"), c.Param("name")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListRoutes lists worker routes, refreshing the mirror
// GET /api/v1/sites/:siteId/workers/routes
func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.workers.ListRoutes(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, routes)
}

// CreateRouteRequest binds a pattern to a script
type CreateRouteRequest struct {
	Pattern string `json:"pattern" binding:"required"`
	Script  string `json:"script"`
}

// CreateRoute creates a worker route
// POST /api/v1/sites/:siteId/workers/routes
func (h *Handler) CreateRoute(c *gin.Context) {
	var req CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("pattern is required"))
		return
	}

	route, err := h.workers.CreateRoute(c.Request.Context(), c.Param("siteId"), req.Pattern, req.Script)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, route)
}

// DeleteRoute deletes a worker route
// DELETE /api/v1/sites/:siteId/workers/routes/:routeId
func (h *Handler) DeleteRoute(c *gin.Context) {
	if err := h.workers.DeleteRoute(c.Request.Context(), c.Param("siteId"), c.Param("routeId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListKVNamespaces lists KV namespaces, refreshing the mirror
// GET /api/v1/sites/:siteId/workers/kv
func (h *Handler) ListKVNamespaces(c *gin.Context) {
	namespaces, err := h.workers.ListKVNamespaces(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, namespaces)
}

// CreateKVNamespaceRequest names a new namespace
type CreateKVNamespaceRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateKVNamespace creates a KV namespace
// POST /api/v1/sites/:siteId/workers/kv
func (h *Handler) CreateKVNamespace(c *gin.Context) {
	var req CreateKVNamespaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("title is required"))
		return
	}

	ns, err := h.workers.CreateKVNamespace(c.Request.Context(), c.Param("siteId"), req.Title)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, ns)
}

// DeleteKVNamespace deletes a KV namespace
// DELETE /api/v1/sites/:siteId/workers/kv/:namespaceId
func (h *Handler) DeleteKVNamespace(c *gin.Context) {
	if err := h.workers.DeleteKVNamespace(c.Request.Context(), c.Param("siteId"), c.Param("namespaceId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// ListKVKeys lists keys in a namespace
// GET /api/v1/sites/:siteId/workers/kv/:namespaceId/keys
func (h *Handler) ListKVKeys(c *gin.Context) {
	keys, err := h.workers.ListKVKeys(c.Request.Context(), c.Param("siteId"), c.Param("namespaceId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, keys)
}

// ReadKVValue reads one value
// GET /api/v1/sites/:siteId/workers/kv/:namespaceId/values/:key
func (h *Handler) ReadKVValue(c *gin.Context) {
	value, err := h.workers.ReadKVValue(c.Request.Context(), c.Param("siteId"), c.Param("namespaceId"), c.Param("key"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	c.String(200, value)
}

// WriteKVValue writes one value; the body is the raw value
// PUT /api/v1/sites/:siteId/workers/kv/:namespaceId/values/:key
func (h *Handler) WriteKVValue(c *gin.Context) {
	value, err := io.ReadAll(io.LimitReader(c.Request.Body, maxScriptSize))
	if err != nil {
		httpx.FailErr(c, httpx.ErrValidation("failed to read value body"))
		return
	}

	if err := h.workers.WriteKVValue(c.Request.Context(), c.Param("siteId"),
		c.Param("namespaceId"), c.Param("key"), string(value)); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"written": true})
}

// DeleteKVValue deletes one key
// DELETE /api/v1/sites/:siteId/workers/kv/:namespaceId/values/:key
func (h *Handler) DeleteKVValue(c *gin.Context) {
	if err := h.workers.DeleteKVValue(c.Request.Context(), c.Param("siteId"),
		c.Param("namespaceId"), c.Param("key")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}
