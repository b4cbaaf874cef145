package service

import (
	"context"
	"encoding/json"
	"testing"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
)

type stubProvider struct{}

func (stubProvider) ClientFor(string) (*cloudflare.Client, error) { return nil, nil }
func (stubProvider) RecordAuthFailure(string) error               { return nil }

func TestZoneSettingsUpdate_RejectsNonWritable(t *testing.T) {
	svc := NewZoneSettingsService(stubProvider{})

	_, err := svc.Update(context.Background(), "site-1", "ssl_universal", json.RawMessage(`"on"`))
	if err == nil {
		t.Fatal("Expected non-allowlisted setting to be rejected")
	}
	appErr := MapError(err)
	if appErr.Code != httpx.CodeValidationError {
		t.Errorf("Expected VALIDATION_ERROR, got %s", appErr.Code)
	}
}

func TestZoneSettingsUpdate_RejectsEmptyValue(t *testing.T) {
	svc := NewZoneSettingsService(stubProvider{})

	if _, err := svc.Update(context.Background(), "site-1", "cache_level", nil); err == nil {
		t.Error("Expected empty value to be rejected")
	}
}

func TestWritableZoneSettingsAllowlist(t *testing.T) {
	for _, id := range []string{"cache_level", "always_use_https", "development_mode", "browser_cache_ttl"} {
		if !writableZoneSettings[id] {
			t.Errorf("Expected '%s' to be writable", id)
		}
	}
	for _, id := range []string{"ssl_universal", "advanced_ddos", ""} {
		if writableZoneSettings[id] {
			t.Errorf("Did not expect '%s' to be writable", id)
		}
	}
}
