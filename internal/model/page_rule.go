package model

import (
	"time"

	"gorm.io/datatypes"
)

// PageRule is the local mirror of a zone page rule. Targets and Actions
// are kept as raw JSON so unknown Cloudflare action kinds survive a
// round-trip unchanged.
type PageRule struct {
	BaseModel
	SiteID       string         `gorm:"type:varchar(64);index:idx_page_rule_site;not null" json:"site_id"`
	CloudflareID string         `gorm:"type:varchar(64);uniqueIndex:uk_page_rule_cf_id;not null" json:"cloudflare_id"`
	Targets      datatypes.JSON `json:"targets"`
	Actions      datatypes.JSON `json:"actions"`
	Priority     int            `gorm:"default:1" json:"priority"`
	Status       string         `gorm:"type:enum('active','disabled');default:'active'" json:"status"`
	SyncedAt     *time.Time     `json:"synced_at"`
}

// TableName specifies the table name for PageRule model
func (PageRule) TableName() string {
	return "page_rules"
}
