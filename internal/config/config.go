package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// maxJWTExpirationMs はtime.Durationで表現できるミリ秒の上限。
const maxJWTExpirationMs = math.MaxInt64 / int64(time.Millisecond)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// JWT
	JWTSecretKey  string
	JWTExpiration time.Duration

	// Password
	BcryptCost int

	// Redis（空の場合は呼び出し元IDキャッシュを無効化する）
	RedisURL       string
	CallerCacheTTL time.Duration

	// Server
	ServerPort string
	StaticDir  string

	// CORS
	CORSAllowedOrigins []string

	// Logging
	LogLevel string
}

// defaultCORSAllowedOrigins はCORS_ALLOWED_ORIGINS未設定時に許可するオリジン。
var defaultCORSAllowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、または値が範囲外の場合はエラーを返す。
// 数値として解釈できない値は警告を出してデフォルト値を使う。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	if cfg.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	expirationMs := getEnvInt64("JWT_EXPIRATION_MS", 3600000)
	if expirationMs <= 0 || expirationMs > maxJWTExpirationMs {
		return nil, fmt.Errorf("JWT_EXPIRATION_MS must be between 1 and %d: %d", maxJWTExpirationMs, expirationMs)
	}
	cfg.JWTExpiration = time.Duration(expirationMs) * time.Millisecond

	cfg.BcryptCost = getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d: %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
	}

	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.CallerCacheTTL = getEnvDuration("CALLER_CACHE_TTL", 10*time.Minute)
	if cfg.CallerCacheTTL <= 0 {
		return nil, fmt.Errorf("CALLER_CACHE_TTL must be positive: %s", cfg.CallerCacheTTL)
	}
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.StaticDir = getEnvString("STATIC_DIR", "")
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", defaultCORSAllowedOrigins)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
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
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		warnInvalid(key, v, defaultVal)
		return defaultVal
	}
	return d
}

func warnInvalid(key, value string, defaultVal any) {
	slog.Warn("invalid environment variable, using default",
		slog.String("key", key),
		slog.String("value", value),
		slog.Any("default", defaultVal),
	)
}

// getEnvList はカンマ区切りの環境変数をスライスとして読み込む。
// 空要素は除外し、結果が空の場合はデフォルト値を返す。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), defaultVal...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultVal...)
	}
	return out
}
