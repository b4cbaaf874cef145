package model

import "gorm.io/datatypes"

// PluginSettings is the per-site behavior configuration. Singleton per
// site; read by the auto-purge and cache warming workers to gate behavior.
type PluginSettings struct {
	BaseModel
	SiteID                 string         `gorm:"type:varchar(64);uniqueIndex:uk_settings_site;not null" json:"site_id"`
	AutoPurgeEnabled       bool           `gorm:"type:tinyint;default:1" json:"auto_purge_enabled"`
	PurgeOnPostUpdate      bool           `gorm:"type:tinyint;default:1" json:"purge_on_post_update"`
	PurgeOnMediaUpload     bool           `gorm:"type:tinyint;default:1" json:"purge_on_media_upload"`
	PurgeOnThemeChange     bool           `gorm:"type:tinyint;default:1" json:"purge_on_theme_change"`
	WarmingEnabled         bool           `gorm:"type:tinyint;default:0" json:"warming_enabled"`
	WarmingSchedule        string         `gorm:"type:varchar(64)" json:"warming_schedule"`
	WarmingManualURLs      datatypes.JSON `json:"warming_manual_urls"`
	NotifyConfig           datatypes.JSON `json:"notify_config"`
	R2DefaultBucket        string         `gorm:"type:varchar(64)" json:"r2_default_bucket"`
	WorkersEnabled         bool           `gorm:"type:tinyint;default:0" json:"workers_enabled"`
	AnalyticsRetentionDays int            `gorm:"default:30" json:"analytics_retention_days"`
}

// TableName specifies the table name for PluginSettings model
func (PluginSettings) TableName() string {
	return "plugin_settings"
}

// DefaultPluginSettings returns the settings a site starts with
func DefaultPluginSettings(siteID string) *PluginSettings {
	return &PluginSettings{
		SiteID:                 siteID,
		AutoPurgeEnabled:       true,
		PurgeOnPostUpdate:      true,
		PurgeOnMediaUpload:     true,
		PurgeOnThemeChange:     true,
		WarmingEnabled:         false,
		AnalyticsRetentionDays: 30,
	}
}
