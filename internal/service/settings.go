package service

import (
	"errors"

	"cf_bridge/internal/httpx"
	"cf_bridge/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettingsService manages per-site plugin settings. One row per site;
// reading a site that has none returns the defaults without creating
// the row.
type SettingsService struct {
	db  *gorm.DB
	log *logrus.Entry
}

// NewSettingsService creates a settings service
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{
		db:  db,
		log: logrus.WithField("component", "settings"),
	}
}

// Get returns the site's settings, falling back to defaults
func (s *SettingsService) Get(siteID string) (*model.PluginSettings, error) {
	var settings model.PluginSettings
	err := s.db.Where("site_id = ?", siteID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.DefaultPluginSettings(siteID), nil
	}
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load settings", err)
	}
	return &settings, nil
}

// Update replaces the site's settings, creating the row on first write
func (s *SettingsService) Update(siteID string, in *model.PluginSettings) (*model.PluginSettings, error) {
	if in.AnalyticsRetentionDays < 0 || in.AnalyticsRetentionDays > 365 {
		return nil, httpx.ErrValidation("analytics_retention_days must be between 0 and 365")
	}

	var existing model.PluginSettings
	err := s.db.Where("site_id = ?", siteID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		in.SiteID = siteID
		in.ID = 0
		if err := s.db.Create(in).Error; err != nil {
			return nil, httpx.ErrDatabase("failed to create settings", err)
		}
		return in, nil
	}
	if err != nil {
		return nil, httpx.ErrDatabase("failed to load settings", err)
	}

	in.ID = existing.ID
	in.SiteID = siteID
	in.CreatedAt = existing.CreatedAt
	if err := s.db.Save(in).Error; err != nil {
		return nil, httpx.ErrDatabase("failed to update settings", err)
	}
	return in, nil
}

// Reset restores the defaults for a site
func (s *SettingsService) Reset(siteID string) (*model.PluginSettings, error) {
	defaults := model.DefaultPluginSettings(siteID)
	return s.Update(siteID, defaults)
}
