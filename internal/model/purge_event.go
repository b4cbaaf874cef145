package model

import "gorm.io/datatypes"

// PurgeType represents the kind of purge issued
type PurgeType string

const (
	PurgeTypeAll    PurgeType = "all"
	PurgeTypeURLs   PurgeType = "urls"
	PurgeTypeTags   PurgeType = "tags"
	PurgeTypePrefix PurgeType = "prefix"
)

// PurgeTrigger represents what initiated a purge
type PurgeTrigger string

const (
	PurgeTriggerUser        PurgeTrigger = "user"
	PurgeTriggerPostUpdate  PurgeTrigger = "post_update"
	PurgeTriggerMediaUpload PurgeTrigger = "media_upload"
	PurgeTriggerThemeChange PurgeTrigger = "theme_change"
)

// PurgeEvent is the append-only audit log of every purge attempt,
// including failures.
type PurgeEvent struct {
	BaseModel
	SiteID      string         `gorm:"type:varchar(64);index:idx_purge_site;not null" json:"site_id"`
	PurgeType   PurgeType      `gorm:"type:enum('all','urls','tags','prefix');not null" json:"purge_type"`
	Targets     datatypes.JSON `json:"targets"`
	Trigger     PurgeTrigger   `gorm:"column:trigger_source;type:enum('user','post_update','media_upload','theme_change');not null" json:"trigger_source"`
	Success     bool           `gorm:"type:tinyint;not null" json:"success"`
	ErrorDetail string         `gorm:"type:varchar(1024)" json:"error_detail"`
}

// TableName specifies the table name for PurgeEvent model
func (PurgeEvent) TableName() string {
	return "purge_events"
}
