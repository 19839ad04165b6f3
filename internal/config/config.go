// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"ACCOUNTD_DB_PATH" envDefault:"./data/accountd.db"`
	MySQLDSN      string `env:"ACCOUNTD_MYSQL_DSN"` // Optional MySQL DSN; takes precedence over DBPath
	SessionSecret string `env:"ACCOUNTD_SESSION_SECRET,required"`
	ServerHost    string `env:"ACCOUNTD_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ACCOUNTD_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ACCOUNTD_ENV" envDefault:"development"`
	LogLevel      string `env:"ACCOUNTD_LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"ACCOUNTD_LOG_FORMAT" envDefault:"text"` // text|json

	// Session configuration
	SessionCookie   string `env:"ACCOUNTD_SESSION_COOKIE" envDefault:"accountd_session"`
	SessionLifetime int    `env:"ACCOUNTD_SESSION_LIFETIME" envDefault:"24"` // Hours

	// Cache configuration
	RedisURL    string `env:"ACCOUNTD_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix string `env:"ACCOUNTD_CACHE_PREFIX" envDefault:"accountd:"` // Redis key prefix
	CacheTTL    int    `env:"ACCOUNTD_CACHE_TTL" envDefault:"300"`       // Default cache TTL in seconds

	// CORS configuration
	CORSOrigins []string `env:"ACCOUNTD_CORS_ORIGINS" envSeparator:"," envDefault:"*"` // Allowed origins; "*" allows any

	// Pagination configuration
	DefaultPageSize int `env:"ACCOUNTD_DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"ACCOUNTD_MAX_PAGE_SIZE" envDefault:"100"`

	// Seeding configuration
	DoSeed        bool   `env:"ACCOUNTD_DO_SEED" envDefault:"false"` // Enable admin account seeding
	AdminEmail    string `env:"ACCOUNTD_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ACCOUNTD_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseMySQL returns true if a MySQL DSN is configured.
func (c Config) UseMySQL() bool {
	return c.MySQLDSN != ""
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret,
// which keys the HMAC applied to session tokens at rest.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("ACCOUNTD_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ACCOUNTD_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ACCOUNTD_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.SessionLifetime < 1 {
		return nil, fmt.Errorf("ACCOUNTD_SESSION_LIFETIME must be at least 1 hour, got %d", cfg.SessionLifetime)
	}

	if cfg.DoSeed && cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ACCOUNTD_ADMIN_PASSWORD is required when ACCOUNTD_DO_SEED is enabled")
	}

	if cfg.DefaultPageSize < 1 || cfg.MaxPageSize < cfg.DefaultPageSize {
		return nil, fmt.Errorf("invalid pagination bounds: default %d, max %d",
			cfg.DefaultPageSize, cfg.MaxPageSize)
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
