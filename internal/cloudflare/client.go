package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.cloudflare.com/client/v4"
	requestTimeout = 30 * time.Second

	// defaultRetryAfter is used when a 429 arrives without a Retry-After header
	defaultRetryAfter = 30 * time.Second
)

// Client is a typed Cloudflare API client scoped to one credential
// (token + account + zone). It is safe for concurrent use and never
// retries; retry policy belongs to the calling service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	accountID  string
	zoneID     string
}

// New creates a new Cloudflare API client. The token must be non-empty;
// account and zone IDs may be empty for token-scoped discovery calls
// (verify, list accounts, list zones).
func New(token, accountID, zoneID string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("cloudflare: API token is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
		accountID:  accountID,
		zoneID:     zoneID,
	}, nil
}

// WithBaseURL overrides the API base URL. Used by tests to point the
// client at a mock server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// ZoneID returns the zone this client is scoped to
func (c *Client) ZoneID() string {
	return c.zoneID
}

// AccountID returns the account this client is scoped to
func (c *Client) AccountID() string {
	return c.accountID
}

// do performs one API call and decodes the Cloudflare envelope into out.
// success:false with HTTP 200 is an error, not a success.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: parseRetryAfter(resp)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: "unknown API error"}
		if len(env.Errors) > 0 {
			apiErr.Code = env.Errors[0].Code
			apiErr.Message = env.Errors[0].Message
		}
		return apiErr
	}

	if out != nil && len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("failed to parse result: %w", err)
		}
	}
	return nil
}

// doRaw performs a call whose response is a raw body rather than the
// Cloudflare envelope (KV values, Worker script content).
func (c *Client) doRaw(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Raw endpoints still report failures in the envelope shape.
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && len(env.Errors) > 0 {
			return nil, &APIError{
				HTTPStatus: resp.StatusCode,
				Code:       env.Errors[0].Code,
				Message:    env.Errors[0].Message,
			}
		}
		return nil, &APIError{HTTPStatus: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return respBody, nil
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return defaultRetryAfter
}

// =========================================================================
// Token / zone operations
// =========================================================================

// VerifyToken checks the API token against /user/tokens/verify
func (c *Client) VerifyToken(ctx context.Context) (*TokenVerifyResult, error) {
	var result TokenVerifyResult
	if err := c.do(ctx, http.MethodGet, "/user/tokens/verify", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAccounts lists the accounts visible to the token
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.do(ctx, http.MethodGet, "/accounts?per_page=50", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// ListZones lists zones visible to the token, optionally filtered by account
func (c *Client) ListZones(ctx context.Context, accountID string) ([]ZoneRef, error) {
	path := "/zones?per_page=50"
	if accountID != "" {
		path += "&account.id=" + url.QueryEscape(accountID)
	}
	var zones []ZoneRef
	if err := c.do(ctx, http.MethodGet, path, nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// GetZone fetches details for the client's zone
func (c *Client) GetZone(ctx context.Context) (*Zone, error) {
	var zone Zone
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID, nil, &zone); err != nil {
		return nil, err
	}
	return &zone, nil
}

// ListZoneSettings lists all settings for the zone
func (c *Client) ListZoneSettings(ctx context.Context) ([]ZoneSetting, error) {
	var settings []ZoneSetting
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/settings", nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetZoneSetting fetches a single zone setting by id
func (c *Client) GetZoneSetting(ctx context.Context, settingID string) (*ZoneSetting, error) {
	var setting ZoneSetting
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/settings/"+settingID, nil, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpdateZoneSetting patches a single zone setting
func (c *Client) UpdateZoneSetting(ctx context.Context, settingID string, value json.RawMessage) (*ZoneSetting, error) {
	body := map[string]json.RawMessage{"value": value}
	var setting ZoneSetting
	if err := c.do(ctx, http.MethodPatch, "/zones/"+c.zoneID+"/settings/"+settingID, body, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// =========================================================================
// Cache operations
// =========================================================================

// PurgeEverything purges the entire zone cache
func (c *Client) PurgeEverything(ctx context.Context) (*PurgeResult, error) {
	return c.purge(ctx, purgeRequest{PurgeEverything: true})
}

// PurgeFiles purges specific URLs. Cloudflare caps URLs per call; chunking
// is the caller's responsibility.
func (c *Client) PurgeFiles(ctx context.Context, urls []string) (*PurgeResult, error) {
	return c.purge(ctx, purgeRequest{Files: urls})
}

// PurgeTags purges by cache tag (Enterprise only)
func (c *Client) PurgeTags(ctx context.Context, tags []string) (*PurgeResult, error) {
	return c.purge(ctx, purgeRequest{Tags: tags})
}

// PurgePrefixes purges by URL prefix (Enterprise only)
func (c *Client) PurgePrefixes(ctx context.Context, prefixes []string) (*PurgeResult, error) {
	return c.purge(ctx, purgeRequest{Prefixes: prefixes})
}

func (c *Client) purge(ctx context.Context, req purgeRequest) (*PurgeResult, error) {
	var result PurgeResult
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/purge_cache", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =========================================================================
// DNS operations
// =========================================================================

// ListDNSRecords lists all DNS records for the zone
func (c *Client) ListDNSRecords(ctx context.Context) ([]DNSRecord, error) {
	var records []DNSRecord
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/dns_records?per_page=1000", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetDNSRecord fetches a single DNS record by id
func (c *Client) GetDNSRecord(ctx context.Context, recordID string) (*DNSRecord, error) {
	var record DNSRecord
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/dns_records/"+recordID, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateDNSRecord creates a DNS record
func (c *Client) CreateDNSRecord(ctx context.Context, params DNSRecordParams) (*DNSRecord, error) {
	var record DNSRecord
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/dns_records", params, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateDNSRecord replaces a DNS record
func (c *Client) UpdateDNSRecord(ctx context.Context, recordID string, params DNSRecordParams) (*DNSRecord, error) {
	var record DNSRecord
	if err := c.do(ctx, http.MethodPut, "/zones/"+c.zoneID+"/dns_records/"+recordID, params, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteDNSRecord deletes a DNS record
func (c *Client) DeleteDNSRecord(ctx context.Context, recordID string) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/zones/"+c.zoneID+"/dns_records/"+recordID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =========================================================================
// SSL operations
// =========================================================================

// GetSSLSetting fetches the zone's SSL mode setting
func (c *Client) GetSSLSetting(ctx context.Context) (*ZoneSetting, error) {
	return c.GetZoneSetting(ctx, "ssl")
}

// UpdateSSLMode sets the zone's SSL mode (off, flexible, full, strict)
func (c *Client) UpdateSSLMode(ctx context.Context, mode string) (*ZoneSetting, error) {
	value, _ := json.Marshal(mode)
	return c.UpdateZoneSetting(ctx, "ssl", value)
}

// ListCertificatePacks lists the zone's edge certificate packs
func (c *Client) ListCertificatePacks(ctx context.Context) ([]CertificatePack, error) {
	var packs []CertificatePack
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/ssl/certificate_packs", nil, &packs); err != nil {
		return nil, err
	}
	return packs, nil
}

// =========================================================================
// Security / WAF operations
// =========================================================================

// GetSecurityLevel fetches the zone's security level
func (c *Client) GetSecurityLevel(ctx context.Context) (*ZoneSetting, error) {
	return c.GetZoneSetting(ctx, "security_level")
}

// SetSecurityLevel sets the zone's security level
func (c *Client) SetSecurityLevel(ctx context.Context, level string) (*ZoneSetting, error) {
	value, _ := json.Marshal(level)
	return c.UpdateZoneSetting(ctx, "security_level", value)
}

// ListFirewallRules lists the zone's firewall rules
func (c *Client) ListFirewallRules(ctx context.Context) ([]FirewallRule, error) {
	var rules []FirewallRule
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/firewall/rules", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateFirewallRule creates one firewall rule. The endpoint takes and
// returns arrays; the first element is the created rule.
func (c *Client) CreateFirewallRule(ctx context.Context, params FirewallRuleParams) (*FirewallRule, error) {
	var rules []FirewallRule
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/firewall/rules", []FirewallRuleParams{params}, &rules); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("cloudflare: firewall rule create returned empty result")
	}
	return &rules[0], nil
}

// UpdateFirewallRule replaces a firewall rule
func (c *Client) UpdateFirewallRule(ctx context.Context, ruleID string, params FirewallRuleParams) (*FirewallRule, error) {
	var rule FirewallRule
	if err := c.do(ctx, http.MethodPut, "/zones/"+c.zoneID+"/firewall/rules/"+ruleID, params, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteFirewallRule deletes a firewall rule
func (c *Client) DeleteFirewallRule(ctx context.Context, ruleID string) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/zones/"+c.zoneID+"/firewall/rules/"+ruleID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListIPAccessRules lists the zone's IP access rules
func (c *Client) ListIPAccessRules(ctx context.Context) ([]IPAccessRule, error) {
	var rules []IPAccessRule
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/firewall/access_rules/rules?per_page=100", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreateIPAccessRule creates an IP access rule
func (c *Client) CreateIPAccessRule(ctx context.Context, params IPAccessRuleParams) (*IPAccessRule, error) {
	var rule IPAccessRule
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/firewall/access_rules/rules", params, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeleteIPAccessRule deletes an IP access rule
func (c *Client) DeleteIPAccessRule(ctx context.Context, ruleID string) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/zones/"+c.zoneID+"/firewall/access_rules/rules/"+ruleID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListWAFPackages lists the zone's WAF rule packages
func (c *Client) ListWAFPackages(ctx context.Context) ([]WAFPackage, error) {
	var packages []WAFPackage
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/firewall/waf/packages", nil, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// UpdateWAFRuleMode toggles a single WAF rule inside a package
func (c *Client) UpdateWAFRuleMode(ctx context.Context, packageID, ruleID, mode string) (*WAFRule, error) {
	body := map[string]string{"mode": mode}
	var rule WAFRule
	path := "/zones/" + c.zoneID + "/firewall/waf/packages/" + packageID + "/rules/" + ruleID
	if err := c.do(ctx, http.MethodPatch, path, body, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListSecurityEvents fetches recent firewall activity entries
func (c *Client) ListSecurityEvents(ctx context.Context, limit int) ([]SecurityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []SecurityEvent
	path := fmt.Sprintf("/zones/%s/security/events?limit=%d", c.zoneID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// =========================================================================
// Page rule operations
// =========================================================================

// ListPageRules lists the zone's page rules
func (c *Client) ListPageRules(ctx context.Context) ([]PageRule, error) {
	var rules []PageRule
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/pagerules", nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CreatePageRule creates a page rule
func (c *Client) CreatePageRule(ctx context.Context, params PageRuleParams) (*PageRule, error) {
	var rule PageRule
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/pagerules", params, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// UpdatePageRule replaces a page rule
func (c *Client) UpdatePageRule(ctx context.Context, ruleID string, params PageRuleParams) (*PageRule, error) {
	var rule PageRule
	if err := c.do(ctx, http.MethodPut, "/zones/"+c.zoneID+"/pagerules/"+ruleID, params, &rule); err != nil {
		return nil, err
	}
	return &rule, nil
}

// DeletePageRule deletes a page rule
func (c *Client) DeletePageRule(ctx context.Context, ruleID string) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/zones/"+c.zoneID+"/pagerules/"+ruleID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =========================================================================
// Workers operations
// =========================================================================

// ListWorkers lists the account's Worker scripts
func (c *Client) ListWorkers(ctx context.Context) ([]WorkerScript, error) {
	var scripts []WorkerScript
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/workers/scripts", nil, &scripts); err != nil {
		return nil, err
	}
	return scripts, nil
}

// GetWorkerScript downloads a Worker script body
func (c *Client) GetWorkerScript(ctx context.Context, name string) (string, error) {
	body, err := c.doRaw(ctx, http.MethodGet, "/accounts/"+c.accountID+"/workers/scripts/"+name, "", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// UploadWorkerScript creates or replaces a Worker script
func (c *Client) UploadWorkerScript(ctx context.Context, name, script string) error {
	_, err := c.doRaw(ctx, http.MethodPut, "/accounts/"+c.accountID+"/workers/scripts/"+name,
		"application/javascript", bytes.NewReader([]byte(script)))
	return err
}

// DeleteWorker deletes a Worker script
func (c *Client) DeleteWorker(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+c.accountID+"/workers/scripts/"+name, nil, nil)
}

// ListWorkerRoutes lists the zone's Worker routes
func (c *Client) ListWorkerRoutes(ctx context.Context) ([]WorkerRoute, error) {
	var routes []WorkerRoute
	if err := c.do(ctx, http.MethodGet, "/zones/"+c.zoneID+"/workers/routes", nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// CreateWorkerRoute maps a URL pattern to a Worker script
func (c *Client) CreateWorkerRoute(ctx context.Context, pattern, script string) (*WorkerRoute, error) {
	body := map[string]string{"pattern": pattern, "script": script}
	var route WorkerRoute
	if err := c.do(ctx, http.MethodPost, "/zones/"+c.zoneID+"/workers/routes", body, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// DeleteWorkerRoute deletes a Worker route
func (c *Client) DeleteWorkerRoute(ctx context.Context, routeID string) (*DeleteResult, error) {
	var result DeleteResult
	if err := c.do(ctx, http.MethodDelete, "/zones/"+c.zoneID+"/workers/routes/"+routeID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =========================================================================
// Workers KV operations
// =========================================================================

// ListKVNamespaces lists the account's KV namespaces
func (c *Client) ListKVNamespaces(ctx context.Context) ([]KVNamespace, error) {
	var namespaces []KVNamespace
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/storage/kv/namespaces?per_page=100", nil, &namespaces); err != nil {
		return nil, err
	}
	return namespaces, nil
}

// CreateKVNamespace creates a KV namespace
func (c *Client) CreateKVNamespace(ctx context.Context, title string) (*KVNamespace, error) {
	body := map[string]string{"title": title}
	var namespace KVNamespace
	if err := c.do(ctx, http.MethodPost, "/accounts/"+c.accountID+"/storage/kv/namespaces", body, &namespace); err != nil {
		return nil, err
	}
	return &namespace, nil
}

// DeleteKVNamespace deletes a KV namespace
func (c *Client) DeleteKVNamespace(ctx context.Context, namespaceID string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+c.accountID+"/storage/kv/namespaces/"+namespaceID, nil, nil)
}

// ListKVKeys lists keys in a namespace
func (c *Client) ListKVKeys(ctx context.Context, namespaceID string) ([]KVKey, error) {
	var keys []KVKey
	path := "/accounts/" + c.accountID + "/storage/kv/namespaces/" + namespaceID + "/keys"
	if err := c.do(ctx, http.MethodGet, path, nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// ReadKVValue reads a raw KV value
func (c *Client) ReadKVValue(ctx context.Context, namespaceID, key string) (string, error) {
	path := "/accounts/" + c.accountID + "/storage/kv/namespaces/" + namespaceID + "/values/" + url.PathEscape(key)
	body, err := c.doRaw(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// WriteKVValue writes a raw KV value
func (c *Client) WriteKVValue(ctx context.Context, namespaceID, key, value string) error {
	path := "/accounts/" + c.accountID + "/storage/kv/namespaces/" + namespaceID + "/values/" + url.PathEscape(key)
	_, err := c.doRaw(ctx, http.MethodPut, path, "text/plain", bytes.NewReader([]byte(value)))
	return err
}

// DeleteKVValue deletes a KV value
func (c *Client) DeleteKVValue(ctx context.Context, namespaceID, key string) error {
	path := "/accounts/" + c.accountID + "/storage/kv/namespaces/" + namespaceID + "/values/" + url.PathEscape(key)
	_, err := c.doRaw(ctx, http.MethodDelete, path, "", nil)
	return err
}

// =========================================================================
// R2 operations
// =========================================================================

// ListR2Buckets lists the account's R2 buckets
func (c *Client) ListR2Buckets(ctx context.Context) ([]R2Bucket, error) {
	var result struct {
		Buckets []R2Bucket `json:"buckets"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/r2/buckets", nil, &result); err != nil {
		return nil, err
	}
	return result.Buckets, nil
}

// CreateR2Bucket creates an R2 bucket
func (c *Client) CreateR2Bucket(ctx context.Context, name string) (*R2Bucket, error) {
	body := map[string]string{"name": name}
	var bucket R2Bucket
	if err := c.do(ctx, http.MethodPost, "/accounts/"+c.accountID+"/r2/buckets", body, &bucket); err != nil {
		return nil, err
	}
	return &bucket, nil
}

// DeleteR2Bucket deletes an R2 bucket (must be empty upstream)
func (c *Client) DeleteR2Bucket(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+c.accountID+"/r2/buckets/"+name, nil, nil)
}

// ListR2Objects lists objects in a bucket, optionally filtered by prefix
func (c *Client) ListR2Objects(ctx context.Context, bucket, prefix string) ([]R2Object, error) {
	path := "/accounts/" + c.accountID + "/r2/buckets/" + bucket + "/objects?per_page=1000"
	if prefix != "" {
		path += "&prefix=" + url.QueryEscape(prefix)
	}
	var objects []R2Object
	if err := c.do(ctx, http.MethodGet, path, nil, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// PutR2Object uploads an object body to a bucket under the given key
func (c *Client) PutR2Object(ctx context.Context, bucket, key, contentType string, body []byte) error {
	path := "/accounts/" + c.accountID + "/r2/buckets/" + bucket + "/objects/" + url.PathEscape(key)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.doRaw(ctx, http.MethodPut, path, contentType, bytes.NewReader(body))
	return err
}

// DeleteR2Object removes one object from a bucket
func (c *Client) DeleteR2Object(ctx context.Context, bucket, key string) error {
	path := "/accounts/" + c.accountID + "/r2/buckets/" + bucket + "/objects/" + url.PathEscape(key)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// =========================================================================
// D1 operations
// =========================================================================

// ListD1Databases lists the account's D1 databases
func (c *Client) ListD1Databases(ctx context.Context) ([]D1Database, error) {
	var databases []D1Database
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/d1/database", nil, &databases); err != nil {
		return nil, err
	}
	return databases, nil
}

// CreateD1Database creates a D1 database
func (c *Client) CreateD1Database(ctx context.Context, name string) (*D1Database, error) {
	body := map[string]string{"name": name}
	var database D1Database
	if err := c.do(ctx, http.MethodPost, "/accounts/"+c.accountID+"/d1/database", body, &database); err != nil {
		return nil, err
	}
	return &database, nil
}

// DeleteD1Database deletes a D1 database by UUID
func (c *Client) DeleteD1Database(ctx context.Context, databaseID string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+c.accountID+"/d1/database/"+databaseID, nil, nil)
}

// QueryD1 runs one SQL statement against a D1 database. The API returns
// one result set per statement.
func (c *Client) QueryD1(ctx context.Context, databaseID, sql string) ([]D1QueryResult, error) {
	body := map[string]string{"sql": sql}
	var results []D1QueryResult
	path := "/accounts/" + c.accountID + "/d1/database/" + databaseID + "/query"
	if err := c.do(ctx, http.MethodPost, path, body, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// =========================================================================
// Stream operations
// =========================================================================

// ListStreamVideos lists the account's Stream videos
func (c *Client) ListStreamVideos(ctx context.Context) ([]StreamVideo, error) {
	var videos []StreamVideo
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/stream", nil, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// GetStreamVideo fetches one Stream video by UID
func (c *Client) GetStreamVideo(ctx context.Context, videoID string) (*StreamVideo, error) {
	var video StreamVideo
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/stream/"+videoID, nil, &video); err != nil {
		return nil, err
	}
	return &video, nil
}

// DeleteStreamVideo deletes a Stream video
func (c *Client) DeleteStreamVideo(ctx context.Context, videoID string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/"+c.accountID+"/stream/"+videoID, nil, nil)
}

// ListLiveInputs lists the account's Stream live inputs
func (c *Client) ListLiveInputs(ctx context.Context) ([]LiveInput, error) {
	var inputs []LiveInput
	if err := c.do(ctx, http.MethodGet, "/accounts/"+c.accountID+"/stream/live_inputs", nil, &inputs); err != nil {
		return nil, err
	}
	return inputs, nil
}

// CreateLiveInput creates a Stream live ingest point
func (c *Client) CreateLiveInput(ctx context.Context, params LiveInputParams) (*LiveInput, error) {
	var input LiveInput
	if err := c.do(ctx, http.MethodPost, "/accounts/"+c.accountID+"/stream/live_inputs", params, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// =========================================================================
// Analytics operations
// =========================================================================

// GetAnalyticsDashboard fetches zone analytics for the given window
func (c *Client) GetAnalyticsDashboard(ctx context.Context, since, until time.Time) (*AnalyticsDashboard, error) {
	path := fmt.Sprintf("/zones/%s/analytics/dashboard?since=%s&until=%s",
		c.zoneID,
		url.QueryEscape(since.UTC().Format(time.RFC3339)),
		url.QueryEscape(until.UTC().Format(time.RFC3339)))
	var dashboard AnalyticsDashboard
	if err := c.do(ctx, http.MethodGet, path, nil, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}
