package cloudflare

import (
	"encoding/json"
	"time"
)

// envelope is the standard Cloudflare API response wrapper
type envelope struct {
	Success    bool            `json:"success"`
	Result     json.RawMessage `json:"result"`
	Errors     []envelopeError `json:"errors"`
	ResultInfo *ResultInfo     `json:"result_info"`
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ResultInfo is Cloudflare's pagination block
type ResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Zone is a Cloudflare-managed domain
type Zone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Paused      bool       `json:"paused"`
	NameServers []string   `json:"name_servers"`
	Plan        *ZonePlan  `json:"plan,omitempty"`
	CreatedOn   *time.Time `json:"created_on,omitempty"`
	ModifiedOn  *time.Time `json:"modified_on,omitempty"`
}

// ZonePlan is the plan attached to a zone
type ZonePlan struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LegacyID     string `json:"legacy_id,omitempty"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ZoneSetting is a single zone-level setting. Value is kept raw because
// settings mix strings, numbers and objects.
type ZoneSetting struct {
	ID         string          `json:"id"`
	Value      json.RawMessage `json:"value"`
	Editable   bool            `json:"editable"`
	ModifiedOn *time.Time      `json:"modified_on,omitempty"`
}

// TokenVerifyResult is the result of GET /user/tokens/verify
type TokenVerifyResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Account is a Cloudflare account visible to a token
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ZoneRef is a zone summary used during account/zone selection
type ZoneRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// PurgeResult is the result of a purge_cache call
type PurgeResult struct {
	ID string `json:"id"`
}

// purgeRequest is the body of POST /zones/:id/purge_cache
type purgeRequest struct {
	PurgeEverything bool     `json:"purge_everything,omitempty"`
	Files           []string `json:"files,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Prefixes        []string `json:"prefixes,omitempty"`
}

// DNSRecord is a Cloudflare DNS record
type DNSRecord struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	Content    string     `json:"content"`
	Proxiable  bool       `json:"proxiable"`
	Proxied    bool       `json:"proxied"`
	TTL        int        `json:"ttl"`
	Priority   *int       `json:"priority,omitempty"`
	ZoneID     string     `json:"zone_id"`
	ZoneName   string     `json:"zone_name"`
	CreatedOn  *time.Time `json:"created_on,omitempty"`
	ModifiedOn *time.Time `json:"modified_on,omitempty"`
}

// DNSRecordParams is the create/update body for a DNS record
type DNSRecordParams struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl,omitempty"`
	Proxied  *bool  `json:"proxied,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

// DeleteResult is Cloudflare's delete confirmation
type DeleteResult struct {
	ID string `json:"id"`
}

// CertificatePack is an edge certificate pack
type CertificatePack struct {
	ID                   string   `json:"id"`
	Type                 string   `json:"type"`
	Hosts                []string `json:"hosts"`
	Status               string   `json:"status"`
	ValidationMethod     string   `json:"validation_method,omitempty"`
	ValidityDays         int      `json:"validity_days,omitempty"`
	CertificateAuthority string   `json:"certificate_authority,omitempty"`
}

// FirewallRule is a zone firewall rule
type FirewallRule struct {
	ID          string         `json:"id"`
	Paused      bool           `json:"paused"`
	Description string         `json:"description,omitempty"`
	Action      string         `json:"action"`
	Priority    *int           `json:"priority,omitempty"`
	Filter      FirewallFilter `json:"filter"`
	CreatedOn   *time.Time     `json:"created_on,omitempty"`
	ModifiedOn  *time.Time     `json:"modified_on,omitempty"`
}

// FirewallFilter holds the rule expression
type FirewallFilter struct {
	ID          string `json:"id,omitempty"`
	Expression  string `json:"expression"`
	Paused      bool   `json:"paused"`
	Description string `json:"description,omitempty"`
}

// FirewallRuleParams is the create/update body for a firewall rule
type FirewallRuleParams struct {
	Action      string         `json:"action"`
	Filter      FirewallFilter `json:"filter"`
	Description string         `json:"description,omitempty"`
	Paused      bool           `json:"paused,omitempty"`
	Priority    *int           `json:"priority,omitempty"`
}

// IPAccessRule is an IP/CIDR/country access rule
type IPAccessRule struct {
	ID            string          `json:"id"`
	Mode          string          `json:"mode"`
	Notes         string          `json:"notes,omitempty"`
	Configuration IPConfiguration `json:"configuration"`
	CreatedOn     *time.Time      `json:"created_on,omitempty"`
	ModifiedOn    *time.Time      `json:"modified_on,omitempty"`
}

// IPConfiguration is the target of an access rule (ip, ip_range, country)
type IPConfiguration struct {
	Target string `json:"target"`
	Value  string `json:"value"`
}

// IPAccessRuleParams is the create body for an IP access rule
type IPAccessRuleParams struct {
	Mode          string          `json:"mode"`
	Configuration IPConfiguration `json:"configuration"`
	Notes         string          `json:"notes,omitempty"`
}

// WAFPackage is a legacy WAF rule package
type WAFPackage struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	DetectionMode string `json:"detection_mode"`
	Status        string `json:"status,omitempty"`
}

// WAFRule is a single rule inside a WAF package
type WAFRule struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode"`
	PackageID   string `json:"package_id"`
}

// SecurityEvent is one firewall activity log entry
type SecurityEvent struct {
	Action      string    `json:"action"`
	ClientIP    string    `json:"clientIP"`
	Country     string    `json:"clientCountryName"`
	RuleID      string    `json:"ruleId"`
	UserAgent   string    `json:"userAgent"`
	ClientURI   string    `json:"clientRequestPath"`
	OccurredAt  time.Time `json:"datetime"`
	Source      string    `json:"source,omitempty"`
	Description string    `json:"description,omitempty"`
}

// PageRule is a zone page rule. Action values stay raw so unknown action
// kinds round-trip verbatim.
type PageRule struct {
	ID         string           `json:"id"`
	Targets    []PageRuleTarget `json:"targets"`
	Actions    []PageRuleAction `json:"actions"`
	Priority   int              `json:"priority"`
	Status     string           `json:"status"`
	CreatedOn  *time.Time       `json:"created_on,omitempty"`
	ModifiedOn *time.Time       `json:"modified_on,omitempty"`
}

// PageRuleTarget is the URL pattern a page rule matches
type PageRuleTarget struct {
	Target     string             `json:"target"`
	Constraint PageRuleConstraint `json:"constraint"`
}

// PageRuleConstraint is the operator/value pair of a target
type PageRuleConstraint struct {
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// PageRuleAction is a single action; Value is raw JSON because each action
// kind carries a different shape.
type PageRuleAction struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value,omitempty"`
}

// PageRuleParams is the create/update body for a page rule
type PageRuleParams struct {
	Targets  []PageRuleTarget `json:"targets"`
	Actions  []PageRuleAction `json:"actions"`
	Priority *int             `json:"priority,omitempty"`
	Status   string           `json:"status,omitempty"`
}

// WorkerScript is a deployed Worker script
type WorkerScript struct {
	ID         string     `json:"id"`
	ETag       string     `json:"etag,omitempty"`
	CreatedOn  *time.Time `json:"created_on,omitempty"`
	ModifiedOn *time.Time `json:"modified_on,omitempty"`
	UsageModel string     `json:"usage_model,omitempty"`
}

// WorkerRoute maps a URL pattern to a Worker script
type WorkerRoute struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Script  string `json:"script,omitempty"`
}

// KVNamespace is a Workers KV namespace
type KVNamespace struct {
	ID                  string `json:"id"`
	Title               string `json:"title"`
	SupportsURLEncoding bool   `json:"supports_url_encoding,omitempty"`
}

// KVKey is a key within a KV namespace
type KVKey struct {
	Name       string          `json:"name"`
	Expiration int64           `json:"expiration,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// R2Bucket is an R2 object storage bucket
type R2Bucket struct {
	Name         string     `json:"name"`
	Location     string     `json:"location,omitempty"`
	CreationDate *time.Time `json:"creation_date,omitempty"`
}

// R2Object is one object inside an R2 bucket
type R2Object struct {
	Key          string     `json:"key"`
	Size         int64      `json:"size"`
	ETag         string     `json:"etag,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// D1Database is a D1 serverless SQL database
type D1Database struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Version   string     `json:"version,omitempty"`
	NumTables int        `json:"num_tables,omitempty"`
	FileSize  int64      `json:"file_size,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// D1QueryMeta carries per-statement execution statistics
type D1QueryMeta struct {
	Duration    float64 `json:"duration,omitempty"`
	Changes     int64   `json:"changes,omitempty"`
	LastRowID   int64   `json:"last_row_id,omitempty"`
	RowsRead    int64   `json:"rows_read,omitempty"`
	RowsWritten int64   `json:"rows_written,omitempty"`
}

// D1QueryResult is the outcome of one SQL statement
type D1QueryResult struct {
	Success bool                     `json:"success"`
	Results []map[string]interface{} `json:"results"`
	Meta    *D1QueryMeta             `json:"meta,omitempty"`
}

// StreamVideo is a video hosted on Cloudflare Stream
type StreamVideo struct {
	UID           string                 `json:"uid"`
	Thumbnail     string                 `json:"thumbnail,omitempty"`
	ReadyToStream bool                   `json:"readyToStream"`
	Duration      float64                `json:"duration,omitempty"`
	Size          int64                  `json:"size,omitempty"`
	Created       *time.Time             `json:"created,omitempty"`
	Meta          map[string]interface{} `json:"meta,omitempty"`
}

// LiveInputEndpoint is one ingest endpoint of a live input
type LiveInputEndpoint struct {
	URL       string `json:"url,omitempty"`
	StreamKey string `json:"streamKey,omitempty"`
	StreamID  string `json:"streamId,omitempty"`
}

// LiveInput is a Cloudflare Stream live ingest point
type LiveInput struct {
	UID    string                 `json:"uid"`
	Status string                 `json:"status,omitempty"`
	RTMPS  *LiveInputEndpoint     `json:"rtmps,omitempty"`
	SRT    *LiveInputEndpoint     `json:"srt,omitempty"`
	WebRTC *LiveInputEndpoint     `json:"webRTC,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// LiveInputParams is the create payload for a live input
type LiveInputParams struct {
	Meta      map[string]interface{} `json:"meta,omitempty"`
	Recording map[string]interface{} `json:"recording,omitempty"`
}

// AnalyticsDashboard is the zone analytics dashboard payload
type AnalyticsDashboard struct {
	Totals     AnalyticsTotals       `json:"totals"`
	Timeseries []AnalyticsTimeseries `json:"timeseries,omitempty"`
}

// AnalyticsTotals aggregates requests/bandwidth/threats over the window
type AnalyticsTotals struct {
	Requests  AnalyticsCounter `json:"requests"`
	Bandwidth AnalyticsCounter `json:"bandwidth"`
	Threats   struct {
		All int64 `json:"all"`
	} `json:"threats"`
	Pageviews struct {
		All int64 `json:"all"`
	} `json:"pageviews"`
	Uniques struct {
		All int64 `json:"all"`
	} `json:"uniques"`
}

// AnalyticsCounter splits a metric into cached and uncached portions
type AnalyticsCounter struct {
	All      int64 `json:"all"`
	Cached   int64 `json:"cached"`
	Uncached int64 `json:"uncached"`
}

// AnalyticsTimeseries is one bucket of the analytics window
type AnalyticsTimeseries struct {
	Since     time.Time        `json:"since"`
	Until     time.Time        `json:"until"`
	Requests  AnalyticsCounter `json:"requests"`
	Bandwidth AnalyticsCounter `json:"bandwidth"`
}
