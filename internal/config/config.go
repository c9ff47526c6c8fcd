package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ストアの種別。
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// EnvProduction は本番環境を示すAPP_ENVの値。
const EnvProduction = "production"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Token
	AccessTokenSecret string
	TokenTTL          time.Duration

	// Store
	StoreDriver       string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Server
	ServerPort string
	AppEnv     string

	// Cookie
	CookieSecure   bool
	CookieSameSite http.SameSite

	// CORS
	CORSAllowedOrigins []string

	// Rate Limit
	RateLimitGeneral int

	// Booking
	BookingOwnerChecks bool

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は、不足している変数をまとめてエラーとして返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.StoreDriver = strings.ToLower(getEnvString("STORE_DRIVER", StoreDriverPostgres))
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q: must be %q or %q",
			cfg.StoreDriver, StoreDriverPostgres, StoreDriverMemory)
	}

	// Required fields
	var missing []string

	cfg.AccessTokenSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	if cfg.AccessTokenSecret == "" {
		missing = append(missing, "ACCESS_TOKEN_SECRET")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.StoreDriver == StoreDriverPostgres {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 365*24*time.Hour)
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DBConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", 10*time.Minute)
	cfg.ServerPort = getEnvString("SERVER_PORT", "5000")
	cfg.AppEnv = getEnvString("APP_ENV", "development")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.BookingOwnerChecks = getEnvBool("BOOKING_OWNER_CHECKS", true)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	// 本番はクロスサイトのフロントエンドから送信するためSameSite=Noneとする
	if cfg.IsProduction() {
		cfg.CookieSecure = true
		cfg.CookieSameSite = http.SameSiteNoneMode
	} else {
		cfg.CookieSameSite = http.SameSiteStrictMode
	}

	return cfg, nil
}

// IsProduction は本番環境の場合にtrueを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの値を空要素を除いて返す。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
