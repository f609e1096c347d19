package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AllowedDomains        string
	NotaryPublicKeyPem    string
	NotaryURL             string
	NotaryKeyCacheTTLSecs int

	RecentTransfersDefault int
	VerifyTimeoutSeconds   int
	MaxBodyBytes           int

	RateLimitRequests      int
	RateLimitWindowSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EnableMetrics bool
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		AllowedDomains:         envDefault("ALLOWED_DOMAINS", "wise.com,transferwise.com"),
		NotaryPublicKeyPem:     os.Getenv("NOTARY_PUBLIC_KEY_PEM"),
		NotaryURL:              os.Getenv("NOTARY_URL"),
		NotaryKeyCacheTTLSecs:  envIntDefault("NOTARY_KEY_CACHE_TTL_SECONDS", 300),
		RecentTransfersDefault: envIntDefault("RECENT_TRANSFERS_DEFAULT", 5),
		VerifyTimeoutSeconds:   envIntDefault("VERIFY_TIMEOUT_SECONDS", 30),
		MaxBodyBytes:           envIntDefault("MAX_BODY_BYTES", 1<<20),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
		EnableMetrics:          envBoolDefault("ENABLE_METRICS", true),
	}
}

// AllowedDomainList parses the comma-separated allow-list, trimmed and
// lowercased, dropping empty entries.
func (c Config) AllowedDomainList() []string {
	var out []string
	for _, entry := range strings.Split(c.AllowedDomains, ",") {
		trimmed := strings.ToLower(strings.TrimSpace(entry))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func (c Config) NotaryKeyCacheTTL() time.Duration {
	if c.NotaryKeyCacheTTLSecs <= 0 {
		return 0
	}
	return time.Duration(c.NotaryKeyCacheTTLSecs) * time.Second
}

func (c Config) VerifyTimeout() time.Duration {
	if c.VerifyTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.VerifyTimeoutSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
