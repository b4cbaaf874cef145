package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cf_bridge/internal/cloudflare"
)

func TestRetryRead_RetriesNetworkError(t *testing.T) {
	calls := 0
	err := retryRead(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &cloudflare.NetworkError{Op: "GET /zones", Err: errors.New("timeout")}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestRetryRead_SingleRetryOnly(t *testing.T) {
	calls := 0
	netErr := &cloudflare.NetworkError{Op: "GET /zones", Err: errors.New("timeout")}
	err := retryRead(context.Background(), func() error {
		calls++
		return netErr
	})
	if err == nil {
		t.Error("Expected error after exhausting the retry")
	}
	if calls != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", calls)
	}
}

func TestRetryRead_NoRetryOnOtherErrors(t *testing.T) {
	calls := 0
	err := retryRead(context.Background(), func() error {
		calls++
		return &cloudflare.APIError{HTTPStatus: 400, Code: 9999, Message: "bad request"}
	})
	if err == nil {
		t.Error("Expected error to surface")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestRetryRead_HonorsShortRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	err := retryRead(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &cloudflare.RateLimitError{RetryAfter: 10 * time.Millisecond}
		}
		return nil
	})
	if err != nil {
		t.Errorf("Expected success after waiting out the rate limit, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("Retry did not wait for the Retry-After window")
	}
}

func TestRetryRead_SurfacesLongRetryAfter(t *testing.T) {
	calls := 0
	err := retryRead(context.Background(), func() error {
		calls++
		return &cloudflare.RateLimitError{RetryAfter: time.Minute}
	})
	if err == nil {
		t.Error("Expected the rate limit to surface")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for a long Retry-After, got %d", calls)
	}
}
