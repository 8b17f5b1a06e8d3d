package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DBPath     string
	ServerPort string
	LogLevel   string

	CacheEnabled bool
	CachePath    string
	CacheTTL     time.Duration

	// Source IPs allowed through the allowlist middleware.
	AllowedIPs []string

	RequestLogPath string
	DeniedLogPath  string

	// Token verification for private endpoints.
	JWKSURL     string
	APIAudience string
	Issuer      string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "surftimer.db"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CacheEnabled:   getEnvBool("CACHE_ENABLED", true),
		CachePath:      getEnv("CACHE_PATH", "surftimer-cache"),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),
		AllowedIPs:     splitList(getEnv("WHITELISTED_IPS", "127.0.0.1,::1")),
		RequestLogPath: getEnv("REQUEST_LOG_PATH", "requests.log"),
		DeniedLogPath:  getEnv("DENIED_LOG_PATH", "denied.log"),
		JWKSURL:        getEnv("AUTH_JWKS_URL", ""),
		APIAudience:    getEnv("AUTH_API_AUDIENCE", ""),
		Issuer:         getEnv("AUTH_ISSUER", ""),
	}

	if len(cfg.AllowedIPs) == 0 {
		return nil, fmt.Errorf("WHITELISTED_IPS must contain at least one address")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Bool("cache_enabled", cfg.CacheEnabled).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("allowed_ips", len(cfg.AllowedIPs)).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var Module = fx.Provide(Load)
