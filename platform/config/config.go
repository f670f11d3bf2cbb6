// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// PartnerConfig provides settings for the partner ticketing API.
type PartnerConfig interface {
	GetPartnerBaseURL() string
	GetPartnerClientID() string
	GetPartnerClientSecret() string
	GetPartnerTimeout() time.Duration
	IsPartnerEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	PartnerBaseURL      string
	PartnerClientID     string
	PartnerClientSecret string
	PartnerTimeout      time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// PartnerConfig implementation
func (c *Config) GetPartnerBaseURL() string        { return c.PartnerBaseURL }
func (c *Config) GetPartnerClientID() string       { return c.PartnerClientID }
func (c *Config) GetPartnerClientSecret() string   { return c.PartnerClientSecret }
func (c *Config) GetPartnerTimeout() time.Duration { return c.PartnerTimeout }
func (c *Config) IsPartnerEnabled() bool           { return c.PartnerBaseURL != "" }

// Load reads configuration from the environment, with .env as a fallback
// for local development.
func Load() (*Config, error) {
	// .env is optional; real environments inject variables directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTAccessSecret:     os.Getenv("JWT_ACCESS_SECRET"),
		CORSAllowAll:        getBool("CORS_ALLOW_ALL", false),
		CORSOrigins:         getList("CORS_ORIGINS"),
		CORSAllowCreds:      getBool("CORS_ALLOW_CREDENTIALS", true),
		PartnerBaseURL:      os.Getenv("PARTNER_API_URL"),
		PartnerClientID:     os.Getenv("PARTNER_CLIENT_ID"),
		PartnerClientSecret: os.Getenv("PARTNER_CLIENT_SECRET"),
		PartnerTimeout:      getDuration("PARTNER_TIMEOUT", 10*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.PartnerBaseURL != "" && cfg.PartnerClientID == "" {
		return nil, fmt.Errorf("PARTNER_CLIENT_ID is required when PARTNER_API_URL is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
