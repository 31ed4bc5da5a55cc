// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath          string        `env:"WF_DB_PATH" envDefault:"./data/weforward.db"`
	SessionSecret   string        `env:"WF_SESSION_SECRET,required"`
	SessionLifetime time.Duration `env:"WF_SESSION_LIFETIME" envDefault:"24h"`
	ServerHost      string        `env:"WF_SERVER_HOST" envDefault:"localhost"`
	ServerPort      int           `env:"WF_SERVER_PORT" envDefault:"8080"`
	Env             string        `env:"WF_ENV" envDefault:"development"`
	LogLevel        string        `env:"WF_LOG_LEVEL" envDefault:"info"`
	UploadsDir      string        `env:"WF_UPLOADS_DIR" envDefault:"./uploads"`

	// PublicBaseURL prefixes media locators so they resolve from the
	// frontend's origin (e.g. https://weforward.ge).
	PublicBaseURL string `env:"WF_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// AdminEmails is the fixed allow-list of editors permitted to mutate
	// content. Configured out-of-band; not editable at runtime.
	AdminEmails []string `env:"WF_ADMIN_EMAILS" envSeparator:","`

	// Cache configuration
	RedisURL     string `env:"WF_REDIS_URL"`                        // Optional Redis URL for distributed caching
	CachePrefix  string `env:"WF_CACHE_PREFIX" envDefault:"wf:"`    // Redis key prefix
	CacheTTL     int    `env:"WF_CACHE_TTL" envDefault:"300"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"WF_CACHE_MAX_SIZE" envDefault:"1000"` // Max memory cache entries

	// Seeding configuration
	DoSeed            bool   `env:"WF_DO_SEED" envDefault:"false"` // Enable database seeding
	SeedAdminEmail    string `env:"WF_SEED_ADMIN_EMAIL" envDefault:"admin@weforward.ge"`
	SeedAdminPassword string `env:"WF_SEED_ADMIN_PASSWORD" envDefault:"changeme"` // Rotate after first login
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// IsAdminEmail reports whether the given email is on the admin allow-list.
// Comparison is case-insensitive; an empty email never matches.
func (c Config) IsAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("WF_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("WF_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("WF_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if len(cfg.AdminEmails) == 0 {
		slog.Warn("WF_ADMIN_EMAILS is empty; no account will be able to mutate content")
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
