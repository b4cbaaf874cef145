package httpx

import (
	"fmt"
	"net/http"
)

// API error codes returned in the error envelope
const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodePlanRestriction    = "PLAN_RESTRICTION"
	CodeAPIError           = "API_ERROR"
	CodeNetworkError       = "NETWORK_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeExpiredOrUsedToken = "EXPIRED_OR_USED_TOKEN"
	CodeNotConnected       = "NOT_CONNECTED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeDatabaseError      = "DATABASE_ERROR"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
)

// AppError represents an application error with HTTP status and API error code
type AppError struct {
	HTTPStatus int            // HTTP status code
	Code       string         // API error code
	Message    string         // User-facing error message
	Err        error          // Internal error (for logging only, not returned to client)
	Details    map[string]any // Additional details returned to the client
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code=%s, message=%s, err=%v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("code=%s, message=%s", e.Code, e.Message)
}

// WithDetails adds detail fields to the error
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new AppError
func NewAppError(httpStatus int, code, message string, err error) *AppError {
	return &AppError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
		Err:        err,
	}
}

// ErrUnauthorized creates a 401 unauthorized error
func ErrUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

// ErrInvalidToken creates a 401 invalid token error
func ErrInvalidToken(message string) *AppError {
	if message == "" {
		message = "invalid token"
	}
	return NewAppError(http.StatusUnauthorized, CodeInvalidToken, message, nil)
}

// ErrTokenExpired creates a 401 token expired error
func ErrTokenExpired(message string) *AppError {
	if message == "" {
		message = "token expired"
	}
	return NewAppError(http.StatusUnauthorized, CodeTokenExpired, message, nil)
}

// ErrNotFound creates a 404 not found error
func ErrNotFound(message string) *AppError {
	if message == "" {
		message = "resource not found"
	}
	return NewAppError(http.StatusNotFound, CodeNotFound, message, nil)
}

// ErrRateLimited creates a 429 rate limited error carrying the retry-after seconds
func ErrRateLimited(message string, retryAfterSec int) *AppError {
	if message == "" {
		message = "rate limited by Cloudflare"
	}
	e := NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, nil)
	e.Details = map[string]any{"retry_after": retryAfterSec}
	return e
}

// ErrPlanRestriction creates a 403 plan restriction error
func ErrPlanRestriction(message string) *AppError {
	if message == "" {
		message = "operation not available on the current Cloudflare plan"
	}
	return NewAppError(http.StatusForbidden, CodePlanRestriction, message, nil)
}

// ErrValidation creates a 400 validation error
func ErrValidation(message string) *AppError {
	if message == "" {
		message = "invalid input"
	}
	return NewAppError(http.StatusBadRequest, CodeValidationError, message, nil)
}

// ErrExpiredOrUsedToken creates a 410 error for a consumed or expired SSO exchange token
func ErrExpiredOrUsedToken(message string) *AppError {
	if message == "" {
		message = "exchange token expired or already used"
	}
	return NewAppError(http.StatusGone, CodeExpiredOrUsedToken, message, nil)
}

// ErrNotConnected creates a 409 error for operations requiring a connected credential
func ErrNotConnected(message string) *AppError {
	if message == "" {
		message = "Cloudflare is not connected for this site"
	}
	return NewAppError(http.StatusConflict, CodeNotConnected, message, nil)
}

// ErrNetwork creates a 502 network error
func ErrNetwork(message string, err error) *AppError {
	if message == "" {
		message = "Cloudflare is unreachable"
	}
	return NewAppError(http.StatusBadGateway, CodeNetworkError, message, err)
}

// ErrAPI creates a 502 error for a Cloudflare success:false envelope
func ErrAPI(message string, err error) *AppError {
	if message == "" {
		message = "Cloudflare API error"
	}
	return NewAppError(http.StatusBadGateway, CodeAPIError, message, err)
}

// ErrInternal creates a 500 internal error
func ErrInternal(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, err)
}

// ErrDatabase creates a 500 database error
func ErrDatabase(message string, err error) *AppError {
	if message == "" {
		message = "database error"
	}
	return NewAppError(http.StatusInternalServerError, CodeDatabaseError, message, err)
}
