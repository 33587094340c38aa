package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			DSN:      "postgres://localhost:5432/slf",
			MaxConns: 25,
			MinConns: 5,
		},
		Auth: AuthConfig{
			JWTSecret:      "0123456789abcdef0123456789abcdef",
			JWTIssuer:      "slf-backend",
			AccessTokenTTL: 12 * time.Hour,
		},
		Audit: AuditConfig{RecentLimit: 50, MaxLimit: 500},
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfig_Validate_ShortJWTSecret(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Auth.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short jwt secret")
	}
}

func TestConfig_Validate_BadPort(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero port")
	}
}

func TestConfig_Validate_PoolBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Database.MinConns = 50
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when min_conns exceeds max_conns")
	}
}

func TestConfig_Validate_AuditLimits(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Audit.MaxLimit = 10
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max_limit < recent_limit")
	}
}
