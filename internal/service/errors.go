package service

import (
	"errors"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/credential"
	"cf_bridge/internal/httpx"

	"gorm.io/gorm"
)

// ClientProvider yields a zone-scoped Cloudflare client for a site and
// tracks credential health. Satisfied by credential.Store.
type ClientProvider interface {
	ClientFor(siteID string) (*cloudflare.Client, error)
	RecordAuthFailure(siteID string) error
}

// Notifier pushes console notifications. Implementations must not block.
type Notifier interface {
	Publish(topic, eventType string, payload interface{})
}

// MapError translates errors from the Cloudflare client, the credential
// store, and the database into API errors with stable codes. Plan
// restriction messages pass through verbatim so the caller sees exactly
// what Cloudflare said.
func MapError(err error) *httpx.AppError {
	var appErr *httpx.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, credential.ErrNotConnected):
		return httpx.ErrNotConnected("site is not connected to Cloudflare")
	case errors.Is(err, credential.ErrExchangeTokenInvalid):
		return httpx.ErrExpiredOrUsedToken("exchange token is expired or already used")
	case errors.Is(err, credential.ErrInvalidSelection):
		return httpx.ErrValidation(err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return httpx.ErrNotFound("resource not found")
	}

	if retryAfter, ok := cloudflare.IsRateLimited(err); ok {
		return httpx.ErrRateLimited("Cloudflare rate limit reached", int(retryAfter.Seconds()))
	}
	if cloudflare.IsUnauthorized(err) {
		return httpx.ErrUnauthorized("Cloudflare rejected the credential")
	}
	if cloudflare.IsNotFound(err) {
		return httpx.ErrNotFound("resource not found on Cloudflare")
	}
	if cloudflare.IsNetwork(err) {
		return httpx.ErrNetwork("Cloudflare API is unreachable", err)
	}

	var apiErr *cloudflare.APIError
	if errors.As(err, &apiErr) {
		if cloudflare.IsPlanRestriction(err) {
			return httpx.ErrPlanRestriction(apiErr.Message)
		}
		return httpx.ErrAPI(apiErr.Message, err)
	}

	return httpx.ErrInternal("unexpected error", err)
}

// clientOrErr fetches a client and maps failures, bumping the auth
// failure counter when Cloudflare rejects the stored token.
func mapClientError(clients ClientProvider, siteID string, err error) *httpx.AppError {
	if cloudflare.IsUnauthorized(err) {
		_ = clients.RecordAuthFailure(siteID)
	}
	return MapError(err)
}
