package model

import "time"

// R2Bucket is the local mirror of an R2 bucket reference. R2 buckets have
// no separate Cloudflare ID; the name is the identifier.
type R2Bucket struct {
	BaseModel
	SiteID   string     `gorm:"type:varchar(64);index:idx_r2_site;not null" json:"site_id"`
	Name     string     `gorm:"type:varchar(64);uniqueIndex:uk_r2_name;not null" json:"name"`
	Location string     `gorm:"type:varchar(32)" json:"location"`
	SyncedAt *time.Time `json:"synced_at"`
}

// TableName specifies the table name for R2Bucket model
func (R2Bucket) TableName() string {
	return "r2_buckets"
}
