package model

import "time"

// IPAccessRule is the local mirror of an IP access rule
type IPAccessRule struct {
	BaseModel
	SiteID       string     `gorm:"type:varchar(64);index:idx_ip_rule_site;not null" json:"site_id"`
	CloudflareID string     `gorm:"type:varchar(64);uniqueIndex:uk_ip_rule_cf_id;not null" json:"cloudflare_id"`
	Mode         string     `gorm:"type:enum('block','challenge','whitelist','js_challenge','managed_challenge');not null" json:"mode"`
	Target       string     `gorm:"type:varchar(16);not null" json:"target"`
	Value        string     `gorm:"type:varchar(64);not null" json:"value"`
	Notes        string     `gorm:"type:varchar(255)" json:"notes"`
	SyncedAt     *time.Time `json:"synced_at"`
}

// TableName specifies the table name for IPAccessRule model
func (IPAccessRule) TableName() string {
	return "ip_access_rules"
}
