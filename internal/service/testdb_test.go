package service

import (
	"sync"
	"testing"

	"cf_bridge/internal/cloudflare"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an in-memory sqlite database and creates the given
// tables from raw DDL. The model enum columns are MySQL-specific, so
// tables are declared here instead of via AutoMigrate.
func openTestDB(t *testing.T, ddl ...string) *gorm.DB {
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
	// One connection so every statement sees the same :memory: database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range ddl {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

const purgeEventsDDL = `CREATE TABLE purge_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME,
	updated_at DATETIME,
	site_id TEXT NOT NULL,
	purge_type TEXT NOT NULL,
	targets TEXT,
	trigger_source TEXT NOT NULL,
	success INTEGER NOT NULL,
	error_detail TEXT
)`

const dnsRecordsDDL = `CREATE TABLE dns_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at DATETIME,
	updated_at DATETIME,
	site_id TEXT NOT NULL,
	cloudflare_id TEXT NOT NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	content TEXT NOT NULL,
	proxied INTEGER NOT NULL DEFAULT 0,
	ttl INTEGER NOT NULL DEFAULT 1,
	priority INTEGER,
	synced_at DATETIME
)`

// cfProvider hands out clients pointed at a test server and counts
// recorded auth failures.
type cfProvider struct {
	baseURL string

	mu           sync.Mutex
	authFailures int
}

func (p *cfProvider) ClientFor(string) (*cloudflare.Client, error) {
	client, err := cloudflare.New("test-token", "acct-1", "zone-1")
	if err != nil {
		return nil, err
	}
	return client.WithBaseURL(p.baseURL), nil
}

func (p *cfProvider) RecordAuthFailure(string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authFailures++
	return nil
}
