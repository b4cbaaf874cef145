package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var sslModes = map[string]bool{
	"off":      true,
	"flexible": true,
	"full":     true,
	"strict":   true,
}

// SSLService manages the zone's SSL mode and mirrors certificate packs
type SSLService struct {
	db      *gorm.DB
	clients ClientProvider
	log     *logrus.Entry
}

// NewSSLService creates an SSL service
func NewSSLService(db *gorm.DB, clients ClientProvider) *SSLService {
	return &SSLService{
		db:      db,
		clients: clients,
		log:     logrus.WithField("component", "ssl"),
	}
}

// GetMode returns the zone's current SSL mode
func (s *SSLService) GetMode(ctx context.Context, siteID string) (string, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return "", MapError(err)
	}

	var setting *cloudflare.ZoneSetting
	err = retryRead(ctx, func() error {
		setting, err = client.GetSSLSetting(ctx)
		return err
	})
	if err != nil {
		return "", mapClientError(s.clients, siteID, err)
	}

	var mode string
	if err := json.Unmarshal(setting.Value, &mode); err != nil {
		return "", httpx.ErrAPI("unexpected SSL setting payload", err)
	}
	return mode, nil
}

// SetMode updates the zone's SSL mode
func (s *SSLService) SetMode(ctx context.Context, siteID, mode string) error {
	if !sslModes[mode] {
		return httpx.ErrValidation(fmt.Sprintf("unknown SSL mode '%s'", mode))
	}

	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return MapError(err)
	}
	if _, err := client.UpdateSSLMode(ctx, mode); err != nil {
		return mapClientError(s.clients, siteID, err)
	}
	return nil
}

// ListCertificates fetches the zone's certificate packs and refreshes
// the local mirror in the same call.
func (s *SSLService) ListCertificates(ctx context.Context, siteID string) ([]model.Certificate, error) {
	client, err := s.clients.ClientFor(siteID)
	if err != nil {
		return nil, MapError(err)
	}

	var packs []cloudflare.CertificatePack
	err = retryRead(ctx, func() error {
		packs, err = client.ListCertificatePacks(ctx)
		return err
	})
	if err != nil {
		return nil, mapClientError(s.clients, siteID, err)
	}

	now := time.Now()
	rows := make([]model.Certificate, 0, len(packs))
	for _, p := range packs {
		row := model.Certificate{
			SiteID:       siteID,
			CloudflareID: p.ID,
			Type:         p.Type,
			Status:       p.Status,
			Authority:    p.CertificateAuthority,
			SyncedAt:     &now,
		}
		if raw, err := json.Marshal(p.Hosts); err == nil {
			row.Hosts = datatypes.JSON(raw)
		}
		rows = append(rows, row)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", siteID).Delete(&model.Certificate{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, httpx.ErrDatabase("failed to refresh certificate mirror", err)
	}
	return rows, nil
}
