package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Config holds all configuration
type Config struct {
	MySQL     MySQLConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Migrate   bool
	HTTPAddr  string
	SiteURL   string
	Secret    SecretConfig
	SSO       SSOConfig
	AutoPurge AutoPurgeConfig
	Warming   WarmingConfig
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// SecretConfig holds the token cipher configuration
type SecretConfig struct {
	// CipherKey is the hex-encoded 32-byte AES key used to encrypt
	// stored Cloudflare API tokens.
	CipherKey string
}

// SSOConfig holds the Cloudflare SSO (OAuth) configuration
type SSOConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// ExchangeTTLSec bounds how long an SSO exchange token stays valid.
	ExchangeTTLSec int
}

// AutoPurgeConfig holds auto-purge worker configuration
type AutoPurgeConfig struct {
	Enabled   bool
	QueueSize int
}

// WarmingConfig holds cache warming worker configuration
type WarmingConfig struct {
	Enabled           bool
	RecentCount       int
	DelayMs           int
	RequestTimeoutSec int
	BudgetSec         int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "cf_bridge"),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		SiteURL:  getEnv("SITE_URL", ""),
		Secret: SecretConfig{
			CipherKey: getEnv("CF_TOKEN_CIPHER_KEY", ""),
		},
		SSO: SSOConfig{
			ClientID:       getEnv("CF_SSO_CLIENT_ID", ""),
			ClientSecret:   getEnv("CF_SSO_CLIENT_SECRET", ""),
			RedirectURI:    getEnv("CF_SSO_REDIRECT_URI", ""),
			ExchangeTTLSec: getEnvInt("CF_SSO_EXCHANGE_TTL_SEC", 600),
		},
		AutoPurge: AutoPurgeConfig{
			Enabled:   getEnv("AUTO_PURGE_ENABLED", "1") == "1",
			QueueSize: getEnvInt("AUTO_PURGE_QUEUE_SIZE", 256),
		},
		Warming: WarmingConfig{
			Enabled:           getEnv("WARMING_ENABLED", "1") == "1",
			RecentCount:       getEnvInt("WARMING_RECENT_COUNT", 10),
			DelayMs:           getEnvInt("WARMING_DELAY_MS", 500),
			RequestTimeoutSec: getEnvInt("WARMING_REQUEST_TIMEOUT_SEC", 10),
			BudgetSec:         getEnvInt("WARMING_BUDGET_SEC", 300),
		},
	}

	// Validate required fields
	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Secret.CipherKey == "" {
		return nil, fmt.Errorf("CF_TOKEN_CIPHER_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Helper function: get value with priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "cf_bridge"),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
		SiteURL:  getValue("SITE_URL", "app", "site_url", ""),
		Secret: SecretConfig{
			CipherKey: getValue("CF_TOKEN_CIPHER_KEY", "secret", "cipher_key", ""),
		},
		SSO: SSOConfig{
			ClientID:       getValue("CF_SSO_CLIENT_ID", "sso", "client_id", ""),
			ClientSecret:   getValue("CF_SSO_CLIENT_SECRET", "sso", "client_secret", ""),
			RedirectURI:    getValue("CF_SSO_REDIRECT_URI", "sso", "redirect_uri", ""),
			ExchangeTTLSec: getValueInt("CF_SSO_EXCHANGE_TTL_SEC", "sso", "exchange_ttl_sec", 600),
		},
		AutoPurge: AutoPurgeConfig{
			Enabled:   getValueBool("AUTO_PURGE_ENABLED", "auto_purge", "enabled", true),
			QueueSize: getValueInt("AUTO_PURGE_QUEUE_SIZE", "auto_purge", "queue_size", 256),
		},
		Warming: WarmingConfig{
			Enabled:           getValueBool("WARMING_ENABLED", "warming", "enabled", true),
			RecentCount:       getValueInt("WARMING_RECENT_COUNT", "warming", "recent_count", 10),
			DelayMs:           getValueInt("WARMING_DELAY_MS", "warming", "delay_ms", 500),
			RequestTimeoutSec: getValueInt("WARMING_REQUEST_TIMEOUT_SEC", "warming", "request_timeout_sec", 10),
			BudgetSec:         getValueInt("WARMING_BUDGET_SEC", "warming", "budget_sec", 300),
		},
	}

	if cfg.MySQL.DSN == "" {
		return nil, fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Secret.CipherKey == "" {
		return nil, fmt.Errorf("CF_TOKEN_CIPHER_KEY is required")
	}

	return cfg, nil
}
