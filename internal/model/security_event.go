package model

import "time"

// SecurityEvent is a fetched firewall activity entry. Read-mostly; rows
// are snapshots of Cloudflare's log, never locally authoritative.
type SecurityEvent struct {
	BaseModel
	SiteID     string    `gorm:"type:varchar(64);index:idx_sec_event_site;not null" json:"site_id"`
	Action     string    `gorm:"type:varchar(32);not null" json:"action"`
	ClientIP   string    `gorm:"type:varchar(64)" json:"client_ip"`
	Country    string    `gorm:"type:varchar(8)" json:"country"`
	RuleID     string    `gorm:"type:varchar(64)" json:"rule_id"`
	UserAgent  string    `gorm:"type:varchar(512)" json:"user_agent"`
	URI        string    `gorm:"type:varchar(1024)" json:"uri"`
	OccurredAt time.Time `gorm:"index:idx_sec_event_time" json:"occurred_at"`
}

// TableName specifies the table name for SecurityEvent model
func (SecurityEvent) TableName() string {
	return "security_events"
}
