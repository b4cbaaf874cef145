package service

import (
	"context"
	"encoding/json"
	"fmt"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"

	"github.com/sirupsen/logrus"
)

// writableZoneSettings is the allowlist of settings this service will
// patch. Everything else is read-only through this API even if the
// token could technically change it.
var writableZoneSettings = map[string]bool{
	"always_online":            true,
	"always_use_https":         true,
	"automatic_https_rewrites": true,
	"brotli":                   true,
	"browser_cache_ttl":        true,
	"cache_level":              true,
	"development_mode":         true,
	"early_hints":              true,
	"email_obfuscation":        true,
	"http3":                    true,
	"ipv6":                     true,
	"min_tls_version":          true,
	"minify":                   true,
	"rocket_loader":            true,
	"websockets":               true,
	"0rtt":                     true,
}

// ZoneSettingsService reads and patches zone-level settings
type ZoneSettingsService struct {
	clients ClientProvider
	log     *logrus.Entry
}

// NewZoneSettingsService creates a zone settings service
func NewZoneSettingsService(clients ClientProvider) *ZoneSettingsService {
	return &ZoneSettingsService{
		clients: clients,
		log:     logrus.WithField("component", "zonesettings"),
	}
}

// List returns all zone settings as Cloudflare reports them
func (s *ZoneSettingsService) List(ctx context.Context, siteID string) ([]cloudflare.ZoneSetting, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var settings []cloudflare.ZoneSetting
	err = retryRead(ctx, func() error {
		settings, err = client.ListZoneSettings(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return settings, nil
}

// Get returns one setting by id
func (s *ZoneSettingsService) Get(ctx context.Context, siteID, settingID string) (*cloudflare.ZoneSetting, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var setting *cloudflare.ZoneSetting
	err = retryRead(ctx, func() error {
		setting, err = client.GetZoneSetting(ctx, settingID)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}
	return setting, nil
}

// Update patches one setting. Only allowlisted settings are writable.
func (s *ZoneSettingsService) Update(ctx context.Context, siteID, settingID string, value json.RawMessage) (*cloudflare.ZoneSetting, error) {
	if !writableZoneSettings[settingID] {
		return nil, httpx.ErrValidation(fmt.Sprintf("setting '%s' is not writable through this API", settingID))
	}
	if len(value) == 0 {
		return nil, httpx.ErrValidation("value must not be empty")
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	setting, err := client.UpdateZoneSetting(ctx, settingID, value)
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	s.log.WithFields(logrus.Fields{
		"site_id": siteID,
		"setting": settingID,
	}).Info("Zone setting updated")
	return setting, nil
}
