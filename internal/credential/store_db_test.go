package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_bridge/internal/config"
	"cf_bridge/internal/model"
	"cf_bridge/internal/secret"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const credentialsDDL = `CREATE TABLE credentials (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME,
	updated_at DATETIME,
	site_id TEXT NOT NULL UNIQUE,
	token_encrypted TEXT NOT NULL DEFAULT '',
	account_id TEXT,
	zone_id TEXT,
	zone_name TEXT,
	status TEXT DEFAULT 'disconnected',
	auth_failures INTEGER DEFAULT 0,
	last_verified_at DATETIME
)`

const testCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testStore builds a store over an in-memory sqlite database and the
// in-process exchange store, pointed at the given fake API.
func testStore(t *testing.T, apiBase string, ttlSec int) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	// The credentials table carries a MySQL enum column, so it is
	// declared here instead of via AutoMigrate.
	if err := db.Exec(credentialsDDL).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	cipher, err := secret.NewAESCipher(testCipherKey)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}

	store := NewStore(db, NewMemoryExchangeStore(), cipher, config.SSOConfig{
		ClientID:       "client-abc",
		RedirectURI:    "https://bridge.example.com/callback",
		ExchangeTTLSec: ttlSec,
	}).WithAPIBase(apiBase)
	return store, db
}

// fakeAPI serves the discovery endpoints the connection flows touch
func fakeAPI(t *testing.T, accounts, zones string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/user/tokens/verify"):
			fmt.Fprint(w, `{"success":true,"errors":[],"result":{"id":"tok-1","status":"active"}}`)
		case strings.HasSuffix(r.URL.Path, "/accounts"):
			fmt.Fprintf(w, `{"success":true,"errors":[],"result":%s}`, accounts)
		case strings.HasSuffix(r.URL.Path, "/zones"):
			fmt.Fprintf(w, `{"success":true,"errors":[],"result":%s}`, zones)
		case strings.Contains(r.URL.Path, "/zones/"):
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			fmt.Fprintf(w, `{"success":true,"errors":[],"result":{"id":"%s","name":"example.com","status":"active"}}`, id)
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnect_PersistsVerifiedCredential(t *testing.T) {
	srv := fakeAPI(t, `[]`, `[]`)
	store, db := testStore(t, srv.URL, 600)

	cred, err := store.Connect(context.Background(), "site-1", "secret-token", "acct-1", "zone-1")
	if err != nil {
		t.Fatalf("Connect() failed: %v", err)
	}
	if cred.Status != model.ConnectionConnected {
		t.Errorf("Expected connected, got %s", cred.Status)
	}
	if cred.ZoneName != "example.com" {
		t.Errorf("Expected resolved zone name, got %q", cred.ZoneName)
	}
	if cred.AuthFailures != 0 || cred.LastVerifiedAt == nil {
		t.Error("Expected a fresh verification state")
	}

	var stored model.Credential
	if err := db.Where("site_id = ?", "site-1").First(&stored).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	if stored.TokenEncrypted == "" || stored.TokenEncrypted == "secret-token" {
		t.Error("Token must be stored encrypted")
	}

	// ClientFor must be able to decrypt it back into a working client
	if _, err := store.ClientFor("site-1"); err != nil {
		t.Errorf("ClientFor() after connect failed: %v", err)
	}
}

func TestConnect_BadTokenNeverPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"success":false,"errors":[{"code":10000,"message":"Authentication error"}]}`)
	}))
	defer srv.Close()
	store, db := testStore(t, srv.URL, 600)

	if _, err := store.Connect(context.Background(), "site-1", "bad-token", "acct-1", "zone-1"); err == nil {
		t.Fatal("Expected Connect to fail on an invalid token")
	}

	var count int64
	if err := db.Model(&model.Credential{}).Count(&count).Error; err != nil {
		t.Fatalf("count credentials: %v", err)
	}
	if count != 0 {
		t.Errorf("A rejected token must not create a credential row, found %d", count)
	}
}

func TestSSOCallback_AutoSelectsSingleAccountAndZone(t *testing.T) {
	srv := fakeAPI(t,
		`[{"id":"acct-1","name":"Only Account"}]`,
		`[{"id":"zone-1","name":"example.com","status":"active"}]`)
	store, db := testStore(t, srv.URL, 600)

	result, err := store.SSOCallback(context.Background(), "site-1", "access-token")
	if err != nil {
		t.Fatalf("SSOCallback() failed: %v", err)
	}
	if result.Status != model.ConnectionConnected {
		t.Errorf("Expected immediate completion, got %s", result.Status)
	}
	if result.ExchangeToken != "" {
		t.Error("No exchange token expected when the flow completes in place")
	}

	var stored model.Credential
	if err := db.Where("site_id = ?", "site-1").First(&stored).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	if stored.Status != model.ConnectionConnected || stored.ZoneID != "zone-1" {
		t.Errorf("Unexpected stored state: status=%s zone=%s", stored.Status, stored.ZoneID)
	}
}

func TestSSOCallback_ParksMultiAccountSelection(t *testing.T) {
	srv := fakeAPI(t,
		`[{"id":"acct-1","name":"First"},{"id":"acct-2","name":"Second"}]`,
		`[]`)
	store, db := testStore(t, srv.URL, 600)

	result, err := store.SSOCallback(context.Background(), "site-1", "access-token")
	if err != nil {
		t.Fatalf("SSOCallback() failed: %v", err)
	}
	if result.Status != model.ConnectionAwaitingAccount {
		t.Errorf("Expected awaiting_account, got %s", result.Status)
	}
	if result.ExchangeToken == "" {
		t.Error("Expected an exchange token for the parked selection")
	}
	if len(result.Accounts) != 2 {
		t.Errorf("Expected both accounts in the result, got %d", len(result.Accounts))
	}

	var stored model.Credential
	if err := db.Where("site_id = ?", "site-1").First(&stored).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	if stored.Status != model.ConnectionAwaitingAccount {
		t.Errorf("Expected the row parked awaiting_account, got %s", stored.Status)
	}
	if stored.TokenEncrypted != "" {
		t.Error("No token may be persisted before the selection completes")
	}
}

func TestSSOComplete_TokenIsSingleUse(t *testing.T) {
	srv := fakeAPI(t,
		`[{"id":"acct-1","name":"Only Account"}]`,
		`[{"id":"zone-1","name":"example.com","status":"active"},{"id":"zone-2","name":"example.org","status":"active"}]`)
	store, db := testStore(t, srv.URL, 600)

	result, err := store.SSOCallback(context.Background(), "site-1", "access-token")
	if err != nil {
		t.Fatalf("SSOCallback() failed: %v", err)
	}
	if result.Status != model.ConnectionAwaitingZone {
		t.Fatalf("Expected awaiting_zone, got %s", result.Status)
	}

	cred, err := store.SSOComplete(context.Background(), "site-1", result.ExchangeToken, "acct-1", "zone-2")
	if err != nil {
		t.Fatalf("First SSOComplete() failed: %v", err)
	}
	if cred.Status != model.ConnectionConnected || cred.ZoneName != "example.org" {
		t.Errorf("Unexpected completion: status=%s zone=%s", cred.Status, cred.ZoneName)
	}

	// Replaying the token with a different selection must fail and must
	// not touch the stored credential.
	_, err = store.SSOComplete(context.Background(), "site-1", result.ExchangeToken, "acct-1", "zone-1")
	if !errors.Is(err, ErrExchangeTokenInvalid) {
		t.Fatalf("Expected ErrExchangeTokenInvalid on replay, got %v", err)
	}

	var stored model.Credential
	if err := db.Where("site_id = ?", "site-1").First(&stored).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	if stored.ZoneID != "zone-2" || stored.Status != model.ConnectionConnected {
		t.Errorf("Replay must not mutate the credential: status=%s zone=%s", stored.Status, stored.ZoneID)
	}
}

func TestSSOComplete_ExpiredTokenLeavesStoreUntouched(t *testing.T) {
	srv := fakeAPI(t,
		`[{"id":"acct-1","name":"Only Account"}]`,
		`[{"id":"zone-1","name":"example.com","status":"active"},{"id":"zone-2","name":"example.org","status":"active"}]`)
	// Zero TTL: the exchange token is already expired when consumed
	store, db := testStore(t, srv.URL, 0)

	result, err := store.SSOCallback(context.Background(), "site-1", "access-token")
	if err != nil {
		t.Fatalf("SSOCallback() failed: %v", err)
	}

	_, err = store.SSOComplete(context.Background(), "site-1", result.ExchangeToken, "acct-1", "zone-1")
	if !errors.Is(err, ErrExchangeTokenInvalid) {
		t.Fatalf("Expected ErrExchangeTokenInvalid for an expired token, got %v", err)
	}

	var stored model.Credential
	if err := db.Where("site_id = ?", "site-1").First(&stored).Error; err != nil {
		t.Fatalf("load credential: %v", err)
	}
	if stored.Status != model.ConnectionAwaitingZone {
		t.Errorf("Expected the row still parked, got %s", stored.Status)
	}
	if stored.TokenEncrypted != "" || stored.ZoneID != "" {
		t.Error("An expired token must not mutate the stored credential")
	}
}
