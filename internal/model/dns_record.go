package model

import "time"

// DNSRecordType represents a supported DNS record type
type DNSRecordType string

const (
	DNSRecordTypeA     DNSRecordType = "A"
	DNSRecordTypeAAAA  DNSRecordType = "AAAA"
	DNSRecordTypeCNAME DNSRecordType = "CNAME"
	DNSRecordTypeTXT   DNSRecordType = "TXT"
	DNSRecordTypeMX    DNSRecordType = "MX"
	DNSRecordTypeNS    DNSRecordType = "NS"
	DNSRecordTypeSRV   DNSRecordType = "SRV"
)

// DNSRecord is the local mirror of a Cloudflare DNS record. It is never
// authoritative; SyncedAt says when it last matched upstream, and a nil
// SyncedAt marks the row stale pending re-sync.
type DNSRecord struct {
	BaseModel
	SiteID       string        `gorm:"type:varchar(64);index:idx_dns_site;not null" json:"site_id"`
	CloudflareID string        `gorm:"type:varchar(64);uniqueIndex:uk_dns_cf_id;not null" json:"cloudflare_id"`
	Type         DNSRecordType `gorm:"type:enum('A','AAAA','CNAME','TXT','MX','NS','SRV');not null" json:"type"`
	Name         string        `gorm:"type:varchar(255);not null" json:"name"`
	Content      string        `gorm:"type:varchar(2048);not null" json:"content"`
	Proxied      bool          `gorm:"type:tinyint;default:0" json:"proxied"`
	TTL          int           `gorm:"default:1" json:"ttl"`
	Priority     *int          `json:"priority"`
	SyncedAt     *time.Time    `json:"synced_at"`
}

// TableName specifies the table name for DNSRecord model
func (DNSRecord) TableName() string {
	return "dns_records"
}
