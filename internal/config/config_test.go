package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testCipherKey = "0000000000000000000000000000000000000000000000000000000000000000"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/cf_bridge")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CF_TOKEN_CIPHER_KEY", testCipherKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.JWT.ExpireMinutes != 1440 {
		t.Errorf("JWT.ExpireMinutes = %d", cfg.JWT.ExpireMinutes)
	}
	if !cfg.AutoPurge.Enabled || cfg.AutoPurge.QueueSize != 256 {
		t.Errorf("AutoPurge = %+v", cfg.AutoPurge)
	}
	if cfg.Warming.BudgetSec != 300 || cfg.Warming.DelayMs != 500 {
		t.Errorf("Warming = %+v", cfg.Warming)
	}
	if cfg.SSO.ExchangeTTLSec != 600 {
		t.Errorf("SSO.ExchangeTTLSec = %d", cfg.SSO.ExchangeTTLSec)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CF_TOKEN_CIPHER_KEY", testCipherKey)

	if _, err := Load(); err == nil {
		t.Fatal("expected error when MYSQL_DSN is missing")
	}

	t.Setenv("MYSQL_DSN", "dsn")
	t.Setenv("CF_TOKEN_CIPHER_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when CF_TOKEN_CIPHER_KEY is missing")
	}
}

func TestLoadFromINI_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "cf_bridge.ini")
	ini := `[mysql]
dsn = ini-user:pass@tcp(db:3306)/cf_bridge

[jwt]
secret = ini-secret
expire_minutes = 60

[http]
addr = :9999

[warming]
enabled = false
delay_ms = 250

[secret]
cipher_key = ` + testCipherKey + `
`
	if err := os.WriteFile(iniPath, []byte(ini), 0o600); err != nil {
		t.Fatalf("write ini: %v", err)
	}

	// ENV wins over INI, INI wins over default
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("CF_TOKEN_CIPHER_KEY", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("WARMING_ENABLED", "")
	t.Setenv("WARMING_DELAY_MS", "")
	t.Setenv("JWT_EXPIRE_MINUTES", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadFromINI(iniPath)
	if err != nil {
		t.Fatalf("LoadFromINI: %v", err)
	}

	if cfg.JWT.Secret != "env-secret" {
		t.Errorf("env should override ini, got %q", cfg.JWT.Secret)
	}
	if cfg.MySQL.DSN != "ini-user:pass@tcp(db:3306)/cf_bridge" {
		t.Errorf("MySQL.DSN = %q", cfg.MySQL.DSN)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.JWT.ExpireMinutes != 60 {
		t.Errorf("JWT.ExpireMinutes = %d", cfg.JWT.ExpireMinutes)
	}
	if cfg.Warming.Enabled {
		t.Error("warming should be disabled by ini")
	}
	if cfg.Warming.DelayMs != 250 {
		t.Errorf("Warming.DelayMs = %d", cfg.Warming.DelayMs)
	}
	// Not in ini, not in env: default applies
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadFromINI_MissingFile(t *testing.T) {
	if _, err := LoadFromINI(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatal("expected error for missing ini file")
	}
}
