package model

import "time"

// AnalyticsSnapshot is one day's aggregated zone analytics, retained for
// the configured number of days.
type AnalyticsSnapshot struct {
	BaseModel
	SiteID            string    `gorm:"type:varchar(64);uniqueIndex:uk_analytics_site_day;not null" json:"site_id"`
	Day               time.Time `gorm:"type:date;uniqueIndex:uk_analytics_site_day;not null" json:"day"`
	Requests          int64     `gorm:"default:0" json:"requests"`
	CachedRequests    int64     `gorm:"default:0" json:"cached_requests"`
	UncachedRequests  int64     `gorm:"default:0" json:"uncached_requests"`
	Bandwidth         int64     `gorm:"default:0" json:"bandwidth"`
	CachedBandwidth   int64     `gorm:"default:0" json:"cached_bandwidth"`
	UncachedBandwidth int64     `gorm:"default:0" json:"uncached_bandwidth"`
	Threats           int64     `gorm:"default:0" json:"threats"`
	Pageviews         int64     `gorm:"default:0" json:"pageviews"`
	Uniques           int64     `gorm:"default:0" json:"uniques"`
}

// TableName specifies the table name for AnalyticsSnapshot model
func (AnalyticsSnapshot) TableName() string {
	return "analytics_snapshots"
}
