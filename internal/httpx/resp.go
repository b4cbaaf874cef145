package httpx

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the uniform success envelope
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Meta    any  `json:"meta,omitempty"`
}

// ErrorResponse is the uniform error envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody carries the error code, message and optional details
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// OK sends a successful response
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// OKMeta sends a successful response with meta (pagination etc.)
func OKMeta(c *gin.Context, data, meta any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// Fail sends an error response with the given HTTP status, code and message
func Fail(c *gin.Context, httpStatus int, code, message string) {
	c.JSON(httpStatus, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// FailErr sends an error response from an AppError.
// If AppError.Err is not nil it is logged but not returned to the client.
func FailErr(c *gin.Context, err *AppError) {
	if err.Err != nil {
		log.Printf("[ERROR] %s (code=%s, internal_err=%v)", err.Message, err.Code, err.Err)
	}

	c.JSON(err.HTTPStatus, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
	})
}

// FailAny sends an error response from any error, unwrapping AppError when present
func FailAny(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		FailErr(c, appErr)
		return
	}
	FailErr(c, ErrInternal("", err))
}

// ListMeta is the standard pagination meta block
type ListMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// OKList sends a successful list response with pagination meta
func OKList(c *gin.Context, items any, total int64, page, pageSize int) {
	OKMeta(c, items, ListMeta{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}
