package model

import "time"

// Worker is the local mirror of a deployed Worker script. The script
// name is the Cloudflare-side identifier.
type Worker struct {
	BaseModel
	SiteID     string     `gorm:"type:varchar(64);index:idx_worker_site;not null" json:"site_id"`
	Name       string     `gorm:"type:varchar(128);uniqueIndex:uk_worker_name;not null" json:"name"`
	ETag       string     `gorm:"type:varchar(64)" json:"etag"`
	UsageModel string     `gorm:"type:varchar(32)" json:"usage_model"`
	SyncedAt   *time.Time `json:"synced_at"`
}

// TableName specifies the table name for Worker model
func (Worker) TableName() string {
	return "workers"
}

// WorkerRoute is the local mirror of a Worker route
type WorkerRoute struct {
	BaseModel
	SiteID       string     `gorm:"type:varchar(64);index:idx_worker_route_site;not null" json:"site_id"`
	CloudflareID string     `gorm:"type:varchar(64);uniqueIndex:uk_worker_route_cf_id;not null" json:"cloudflare_id"`
	Pattern      string     `gorm:"type:varchar(255);not null" json:"pattern"`
	Script       string     `gorm:"type:varchar(128)" json:"script"`
	SyncedAt     *time.Time `json:"synced_at"`
}

// TableName specifies the table name for WorkerRoute model
func (WorkerRoute) TableName() string {
	return "worker_routes"
}

// KVNamespace is the local mirror of a Workers KV namespace
type KVNamespace struct {
	BaseModel
	SiteID       string     `gorm:"type:varchar(64);index:idx_kv_ns_site;not null" json:"site_id"`
	CloudflareID string     `gorm:"type:varchar(64);uniqueIndex:uk_kv_ns_cf_id;not null" json:"cloudflare_id"`
	Title        string     `gorm:"type:varchar(128);not null" json:"title"`
	SyncedAt     *time.Time `json:"synced_at"`
}

// TableName specifies the table name for KVNamespace model
func (KVNamespace) TableName() string {
	return "kv_namespaces"
}
