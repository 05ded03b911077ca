package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// ストアバックエンドの種類。
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// セッションストアの種類。
const (
	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	StoreBackend string `env:"STORE_BACKEND, default=postgres"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Session
	SessionStore  string `env:"SESSION_STORE, default=database"`
	SessionSecret string `env:"SESSION_SECRET"`
	Redis         RedisConfig

	// Rate Limit（req/min）
	RateLimitGeneral    int `env:"RATE_LIMIT_GENERAL, default=120"`
	RateLimitNoteCreate int `env:"RATE_LIMIT_NOTE_CREATE, default=30"`
	RateLimitLogin      int `env:"RATE_LIMIT_LOGIN, default=20"`

	// Logging
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Server
	ServerPort string `env:"SERVER_PORT, default=8080"`
	BaseURL    string `env:"BASE_URL, default=http://localhost:8080"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS（空の場合はCORSヘッダーを付与しない）
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`
}

// RedisConfig はセッションストアとしてRedisを使う場合の接続設定。
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	var missing []string

	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreBackendMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND: %q", cfg.StoreBackend)
	}

	switch cfg.SessionStore {
	case SessionStoreDatabase, SessionStoreRedis:
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE: %q", cfg.SessionStore)
	}

	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return cfg, nil
}
