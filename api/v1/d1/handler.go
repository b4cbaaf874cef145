package d1

import (
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler handles D1 database API requests
type Handler struct {
	d1 *service.D1Service
}

// NewHandler creates a D1 handler
func NewHandler(d1 *service.D1Service) *Handler {
	return &Handler{d1: d1}
}

// List lists the account's databases
// GET /api/v1/sites/:siteId/d1/databases
func (h *Handler) List(c *gin.Context) {
	databases, err := h.d1.List(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, databases)
}

// Get returns one database
// GET /api/v1/sites/:siteId/d1/databases/:dbId
func (h *Handler) Get(c *gin.Context) {
	database, err := h.d1.Get(c.Request.Context(), c.Param("siteId"), c.Param("dbId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, database)
}

// CreateRequest names a new database
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create creates a database
// POST /api/v1/sites/:siteId/d1/databases
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("name is required"))
		return
	}

	database, err := h.d1.Create(c.Request.Context(), c.Param("siteId"), req.Name)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, database)
}

// Delete deletes a database
// DELETE /api/v1/sites/:siteId/d1/databases/:dbId
func (h *Handler) Delete(c *gin.Context) {
	if err := h.d1.Delete(c.Request.Context(), c.Param("siteId"), c.Param("dbId")); err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

// QueryRequest carries one SQL statement
type QueryRequest struct {
	SQL string `json:"sql" binding:"required"`
}

// Query runs a SQL statement against a database
// POST /api/v1/sites/:siteId/d1/databases/:dbId/query
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrValidation("sql is required"))
		return
	}

	results, err := h.d1.Query(c.Request.Context(), c.Param("siteId"), c.Param("dbId"), req.SQL)
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, results)
}

// Tables lists a database's user tables
// GET /api/v1/sites/:siteId/d1/databases/:dbId/tables
func (h *Handler) Tables(c *gin.Context) {
	tables, err := h.d1.ListTables(c.Request.Context(), c.Param("siteId"), c.Param("dbId"))
	if err != nil {
		httpx.FailAny(c, err)
		return
	}
	httpx.OK(c, tables)
}
