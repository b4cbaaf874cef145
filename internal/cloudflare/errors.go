package cloudflare

import (
	"errors"
	"fmt"
	"time"
)

// APIError is a Cloudflare success:false envelope, carrying the first
// error code/message Cloudflare returned.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudflare API error: [%d] %s", e.Code, e.Message)
}

// RateLimitError is an HTTP 429 from Cloudflare. The client never retries;
// RetryAfter is surfaced so callers can apply their own backoff budget.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("cloudflare rate limit exceeded, retry after %s", e.RetryAfter)
}

// NetworkError is a transport-level failure (timeout, refused connection,
// DNS failure), distinct from API-level errors.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cloudflare request failed (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Cloudflare error codes that indicate an invalid or revoked token
var unauthorizedCodes = map[int]bool{
	6003:  true, // invalid request headers
	6111:  true, // invalid format for Authorization header
	9103:  true, // unknown X-Auth-Key or X-Auth-Email
	9106:  true, // missing X-Auth-Key, X-Auth-Email or Authorization headers
	9109:  true, // invalid access token
	10000: true, // authentication error
}

// Cloudflare error codes that indicate a missing resource
var notFoundCodes = map[int]bool{
	1001:  true, // invalid zone identifier
	7000:  true, // no route for that URI
	7003:  true, // could not route; resource does not exist
	81044: true, // DNS record not found
	81043: true, // identical record already deleted
}

// Cloudflare error codes that indicate a plan entitlement failure,
// e.g. tag/prefix purge outside Enterprise.
var planRestrictionCodes = map[int]bool{
	1106: true, // not entitled to use this feature
	1212: true, // purge by tag/host/prefix requires Enterprise
}

// IsUnauthorized reports whether err means the stored token is invalid,
// expired or revoked.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == 401 || unauthorizedCodes[apiErr.Code]
	}
	return false
}

// IsNotFound reports whether err means the resource does not exist upstream.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatus == 404 || notFoundCodes[apiErr.Code]
	}
	return false
}

// IsPlanRestriction reports whether err means the account's plan does not
// allow the operation.
func IsPlanRestriction(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return planRestrictionCodes[apiErr.Code]
	}
	return false
}

// IsRateLimited reports whether err is a 429, and returns the retry-after
// duration Cloudflare asked for.
func IsRateLimited(err error) (time.Duration, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr.RetryAfter, true
	}
	return 0, false
}

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
