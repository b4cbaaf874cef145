package model

import (
	"time"

	"gorm.io/datatypes"
)

// Certificate is the local mirror of an edge certificate pack
type Certificate struct {
	BaseModel
	SiteID       string         `gorm:"type:varchar(64);index:idx_cert_site;not null" json:"site_id"`
	CloudflareID string         `gorm:"type:varchar(64);uniqueIndex:uk_cert_cf_id;not null" json:"cloudflare_id"`
	Type         string         `gorm:"type:varchar(32)" json:"type"`
	Hosts        datatypes.JSON `json:"hosts"`
	Status       string         `gorm:"type:varchar(32)" json:"status"`
	Authority    string         `gorm:"type:varchar(64)" json:"authority"`
	SyncedAt     *time.Time     `json:"synced_at"`
}

// TableName specifies the table name for Certificate model
func (Certificate) TableName() string {
	return "certificates"
}
