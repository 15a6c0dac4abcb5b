// Copyright (c) 2026 Atrium. All rights reserved.
// Author: vo.hoangminh.dev@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, TokenCodec) via constructors.
  - Zero Hidden State: No global variables are used to store config.

Security-critical fields (the token signing secret, issuer, audience) are
marked required so a misconfigured deployment fails at startup instead of
silently minting tokens with a defaulted secret.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Atrium API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing. All three are required: tokens signed without a real
	// secret or scoped to an empty issuer/audience are forgeable garbage.
	AuthSecret   string `env:"AUTH_SECRET,required"`
	AuthIssuer   string `env:"AUTH_ISSUER,required"`
	AuthAudience string `env:"AUTH_AUDIENCE,required"`

	// Token lifetimes, expressed in hours to match the deployment contract.
	AccessTTLHours  int `env:"TOKEN_TTL_HOURS"   envDefault:"2"`
	RefreshTTLHours int `env:"REFRESH_TTL_HOURS" envDefault:"168"`

	// Session cookie names. Defaults match the public API contract.
	AccessCookie        string `env:"ACCESS_COOKIE"         envDefault:"access_token"`
	AccessExpireCookie  string `env:"ACCESS_EXPIRE_COOKIE"  envDefault:"access_token_expire"`
	RefreshCookie       string `env:"REFRESH_COOKIE"        envDefault:"refresh_token"`
	RefreshExpireCookie string `env:"REFRESH_EXPIRE_COOKIE" envDefault:"refresh_token_expire"`

	// Password reset flow
	ResetCodeLength     int `env:"RESET_CODE_LENGTH"      envDefault:"6"`
	ResetCodeTTLMinutes int `env:"RESET_CODE_TTL_MINUTES" envDefault:"5"`

	// Outbound transactional email (Postmark). When the server token is
	// empty the mailer falls back to a log-only sender for local work.
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	MailSender           string `env:"MAIL_SENDER" envDefault:"no-reply@atrium.dev"`

	// Cross-Origin Resource Sharing: origins with this suffix are allowed
	// in production (development allows everything).
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX" envDefault:"atrium.dev"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.AccessTTLHours <= 0 || cfg.RefreshTTLHours <= 0 {
		return nil, fmt.Errorf("config: token TTLs must be positive (got access=%dh refresh=%dh)",
			cfg.AccessTTLHours, cfg.RefreshTTLHours)
	}

	return cfg, nil
}

// # Derived Values

// AccessTokenTTL returns the access token lifetime as a [time.Duration].
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTTLHours) * time.Hour
}

// RefreshTokenTTL returns the refresh token lifetime as a [time.Duration].
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTTLHours) * time.Hour
}

// ResetCodeTTL returns the one-time reset code lifetime as a [time.Duration].
func (c *Config) ResetCodeTTL() time.Duration {
	return time.Duration(c.ResetCodeTTLMinutes) * time.Minute
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOriginSuffix returns the origin suffix accepted by CORS in production.
func (c *Config) AllowedOriginSuffix() string {
	return c.CORSOriginSuffix
}
