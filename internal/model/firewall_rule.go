package model

import "time"

// FirewallRule is the local mirror of a zone firewall rule
type FirewallRule struct {
	BaseModel
	SiteID       string     `gorm:"type:varchar(64);index:idx_fw_site;not null" json:"site_id"`
	CloudflareID string     `gorm:"type:varchar(64);uniqueIndex:uk_fw_cf_id;not null" json:"cloudflare_id"`
	Action       string     `gorm:"type:varchar(32);not null" json:"action"`
	Expression   string     `gorm:"type:varchar(2048);not null" json:"expression"`
	Description  string     `gorm:"type:varchar(255)" json:"description"`
	Paused       bool       `gorm:"type:tinyint;default:0" json:"paused"`
	Priority     *int       `json:"priority"`
	SyncedAt     *time.Time `json:"synced_at"`
}

// TableName specifies the table name for FirewallRule model
func (FirewallRule) TableName() string {
	return "firewall_rules"
}
