package model

import "time"

// ConnectionStatus represents the credential connection lifecycle state
type ConnectionStatus string

const (
	ConnectionDisconnected    ConnectionStatus = "disconnected"
	ConnectionAwaitingAccount ConnectionStatus = "awaiting_account"
	ConnectionAwaitingZone    ConnectionStatus = "awaiting_zone"
	ConnectionConnected       ConnectionStatus = "connected"
)

// Credential holds one site's Cloudflare credential. The API token is
// stored encrypted; at most one row per site.
type Credential struct {
	BaseModel
	SiteID         string           `gorm:"type:varchar(64);uniqueIndex:uk_credentials_site;not null" json:"site_id"`
	TokenEncrypted string           `gorm:"type:varchar(1024);not null" json:"-"`
	AccountID      string           `gorm:"type:varchar(64)" json:"account_id"`
	ZoneID         string           `gorm:"type:varchar(64)" json:"zone_id"`
	ZoneName       string           `gorm:"type:varchar(255)" json:"zone_name"`
	Status         ConnectionStatus `gorm:"type:enum('disconnected','awaiting_account','awaiting_zone','connected');default:'disconnected'" json:"status"`
	AuthFailures   int              `gorm:"default:0" json:"auth_failures"`
	LastVerifiedAt *time.Time       `json:"last_verified_at"`
}

// TableName specifies the table name for Credential model
func (Credential) TableName() string {
	return "credentials"
}
