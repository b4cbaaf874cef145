package credential

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"cf_bridge/internal/cloudflare"
	"cf_bridge/internal/config"
	"cf_bridge/internal/model"
	"cf_bridge/internal/secret"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// authFailureLimit is how many consecutive auth failures a credential
// survives before it is forced back to disconnected.
const authFailureLimit = 3

var (
	// ErrNotConnected means the site has no usable credential
	ErrNotConnected = errors.New("site is not connected to Cloudflare")
	// ErrExchangeTokenInvalid means the SSO exchange token is expired,
	// already consumed, or was never issued
	ErrExchangeTokenInvalid = errors.New("exchange token is expired or already used")
	// ErrInvalidSelection means the completed selection does not match
	// what the token grants access to
	ErrInvalidSelection = errors.New("selected account or zone is not accessible with this token")
)

// Store manages per-site Cloudflare credentials and the connection
// state machine (manual token connect and the SSO flow).
type Store struct {
	db       *gorm.DB
	exchange ExchangeStore
	cipher   secret.Cipher
	sso      config.SSOConfig
	log      *logrus.Entry

	// apiBase overrides the Cloudflare API base URL in tests
	apiBase string
}

// NewStore creates a credential store
func NewStore(db *gorm.DB, exchange ExchangeStore, cipher secret.Cipher, sso config.SSOConfig) *Store {
	return &Store{
		db:       db,
		exchange: exchange,
		cipher:   cipher,
		sso:      sso,
		log:      logrus.WithField("component", "credential"),
	}
}

// WithAPIBase points newly built Cloudflare clients at a different API
// base URL. Used by tests.
func (s *Store) WithAPIBase(base string) *Store {
	s.apiBase = base
	return s
}

func (s *Store) newClient(token, accountID, zoneID string) (*cloudflare.Client, error) {
	client, err := cloudflare.New(token, accountID, zoneID)
	if err != nil {
		return nil, err
	}
	if s.apiBase != "" {
		client = client.WithBaseURL(s.apiBase)
	}
	return client, nil
}

// Get returns the credential row for a site, or nil when none exists
func (s *Store) Get(siteID string) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.Where("site_id = ?", siteID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// ClientFor builds a Cloudflare client scoped to the site's zone.
// Fails with ErrNotConnected unless the site is in the connected state.
func (s *Store) ClientFor(siteID string) (*cloudflare.Client, error) {
	cred, err := s.Get(siteID)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.Status != model.ConnectionConnected {
		return nil, ErrNotConnected
	}

	token, err := s.cipher.Decrypt(cred.TokenEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt stored token: %w", err)
	}
	return s.newClient(token, cred.AccountID, cred.ZoneID)
}

// Connect stores a manually supplied API token for a site. The token is
// verified against the API and the zone is resolved before anything is
// persisted; a bad token never overwrites a working credential.
func (s *Store) Connect(ctx context.Context, siteID, token, accountID, zoneID string) (*model.Credential, error) {
	client, err := s.newClient(token, accountID, zoneID)
	if err != nil {
		return nil, err
	}

	if _, err := client.VerifyToken(ctx); err != nil {
		return nil, err
	}
	zone, err := client.GetZone(ctx)
	if err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt token: %w", err)
	}

	now := time.Now()
	cred, err := s.upsert(siteID, func(c *model.Credential) {
		c.TokenEncrypted = encrypted
		c.AccountID = accountID
		c.ZoneID = zoneID
		c.ZoneName = zone.Name
		c.Status = model.ConnectionConnected
		c.AuthFailures = 0
		c.LastVerifiedAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"site_id": siteID, "zone": zone.Name}).Info("Site connected with API token")
	return cred, nil
}

// Disconnect drops the stored credential and returns the site to the
// disconnected state. Mirrored resource rows are left for the caller to
// clean up.
func (s *Store) Disconnect(siteID string) error {
	result := s.db.Model(&model.Credential{}).
		Where("site_id = ?", siteID).
		Updates(map[string]interface{}{
			"token_encrypted":  "",
			"account_id":       "",
			"zone_id":          "",
			"zone_name":        "",
			"status":           model.ConnectionDisconnected,
			"auth_failures":    0,
			"last_verified_at": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.WithField("site_id", siteID).Info("Site disconnected")
	}
	return nil
}

// SSOInitiate builds the Cloudflare authorization URL for a site.
// The state parameter ties the callback back to this initiation.
func (s *Store) SSOInitiate(siteID string) (authURL string, state string, err error) {
	if s.sso.ClientID == "" || s.sso.RedirectURI == "" {
		return "", "", fmt.Errorf("SSO is not configured")
	}

	state = uuid.NewString()
	q := url.Values{}
	q.Set("client_id", s.sso.ClientID)
	q.Set("redirect_uri", s.sso.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "zone:read zone:edit dns:edit cache:purge")
	q.Set("state", state)

	authURL = "https://dash.cloudflare.com/oauth2/authorize?" + q.Encode()
	return authURL, state, nil
}

// CallbackResult is the outcome of the SSO callback. When the token
// grants exactly one account and one zone the flow completes in place
// and Status is connected; otherwise the caller presents the choices
// and finishes with SSOComplete using ExchangeToken.
type CallbackResult struct {
	Status        model.ConnectionStatus `json:"status"`
	ExchangeToken string                 `json:"exchange_token,omitempty"`
	Accounts      []cloudflare.Account   `json:"accounts,omitempty"`
	Zones         []cloudflare.ZoneRef   `json:"zones,omitempty"`
	ZoneName      string                 `json:"zone_name,omitempty"`
}

// SSOCallback handles the return leg of the SSO flow: enumerates what
// the token can reach, then either completes immediately or parks the
// site awaiting a selection behind a single-use exchange token.
func (s *Store) SSOCallback(ctx context.Context, siteID, accessToken string) (*CallbackResult, error) {
	client, err := s.newClient(accessToken, "", "")
	if err != nil {
		return nil, err
	}

	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("token has no accessible accounts")
	}

	// With a single account the zone list can be resolved right away
	var zones []cloudflare.ZoneRef
	if len(accounts) == 1 {
		zones, err = client.ListZones(ctx, accounts[0].ID)
		if err != nil {
			return nil, err
		}
	}

	if len(accounts) == 1 && len(zones) == 1 {
		cred, err := s.complete(siteID, accessToken, accounts[0].ID, zones[0].ID, zones[0].Name)
		if err != nil {
			return nil, err
		}
		return &CallbackResult{Status: cred.Status, ZoneName: cred.ZoneName}, nil
	}

	ttl := time.Duration(s.sso.ExchangeTTLSec) * time.Second
	token, err := s.exchange.Create(ctx, &ExchangeData{
		SiteID:      siteID,
		AccessToken: accessToken,
		Accounts:    accounts,
		Zones:       zones,
	}, ttl)
	if err != nil {
		return nil, err
	}

	status := model.ConnectionAwaitingAccount
	if len(accounts) == 1 {
		status = model.ConnectionAwaitingZone
	}
	if _, err := s.upsert(siteID, func(c *model.Credential) {
		c.Status = status
	}); err != nil {
		return nil, err
	}

	return &CallbackResult{
		Status:        status,
		ExchangeToken: token,
		Accounts:      accounts,
		Zones:         zones,
	}, nil
}

// SSOComplete finishes a parked SSO flow: consumes the exchange token
// and persists the selected account and zone. The token is single-use;
// a failed completion burns it and the flow must restart.
func (s *Store) SSOComplete(ctx context.Context, siteID, exchangeToken, accountID, zoneID string) (*model.Credential, error) {
	data, err := s.exchange.Consume(ctx, exchangeToken)
	if err != nil {
		return nil, err
	}
	if data == nil || data.SiteID != siteID {
		return nil, ErrExchangeTokenInvalid
	}

	if !containsAccount(data.Accounts, accountID) {
		return nil, ErrInvalidSelection
	}

	zoneName := zoneNameIn(data.Zones, zoneID)
	if zoneName == "" {
		// Zones were not enumerated at callback time (multi-account
		// token), so resolve the selection against the API now.
		client, err := s.newClient(data.AccessToken, accountID, zoneID)
		if err != nil {
			return nil, err
		}
		zone, err := client.GetZone(ctx)
		if err != nil {
			if cloudflare.IsNotFound(err) || cloudflare.IsUnauthorized(err) {
				return nil, ErrInvalidSelection
			}
			return nil, err
		}
		zoneName = zone.Name
	}

	return s.complete(siteID, data.AccessToken, accountID, zoneID, zoneName)
}

func (s *Store) complete(siteID, token, accountID, zoneID, zoneName string) (*model.Credential, error) {
	encrypted, err := s.cipher.Encrypt(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt token: %w", err)
	}

	now := time.Now()
	cred, err := s.upsert(siteID, func(c *model.Credential) {
		c.TokenEncrypted = encrypted
		c.AccountID = accountID
		c.ZoneID = zoneID
		c.ZoneName = zoneName
		c.Status = model.ConnectionConnected
		c.AuthFailures = 0
		c.LastVerifiedAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"site_id": siteID, "zone": zoneName}).Info("Site connected via SSO")
	return cred, nil
}

// RecordAuthFailure bumps the failure counter after an unauthorized API
// response. Hitting the limit forces the site back to disconnected so
// callers stop hammering the API with a dead token.
func (s *Store) RecordAuthFailure(siteID string) error {
	var cred model.Credential
	err := s.db.Where("site_id = ?", siteID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	cred.AuthFailures++
	if cred.AuthFailures >= authFailureLimit {
		cred.Status = model.ConnectionDisconnected
		s.log.WithFields(logrus.Fields{
			"site_id":  siteID,
			"failures": cred.AuthFailures,
		}).Warn("Auth failure limit reached, site disconnected")
	}
	return s.db.Save(&cred).Error
}

// RecordVerified resets the failure counter after a successful call
func (s *Store) RecordVerified(siteID string) error {
	now := time.Now()
	return s.db.Model(&model.Credential{}).
		Where("site_id = ?", siteID).
		Updates(map[string]interface{}{
			"auth_failures":    0,
			"last_verified_at": &now,
		}).Error
}

// upsert loads or creates the site's credential row and applies mutate
// before saving. At most one row per site.
func (s *Store) upsert(siteID string, mutate func(*model.Credential)) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.Where("site_id = ?", siteID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cred = model.Credential{SiteID: siteID, Status: model.ConnectionDisconnected}
	} else if err != nil {
		return nil, err
	}

	mutate(&cred)
	if err := s.db.Save(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

func containsAccount(accounts []cloudflare.Account, id string) bool {
	for _, a := range accounts {
		if a.ID == id {
			return true
		}
	}
	return false
}

func zoneNameIn(zones []cloudflare.ZoneRef, id string) string {
	for _, z := range zones {
		if z.ID == id {
			return z.Name
		}
	}
	return ""
}
