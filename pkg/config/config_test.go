package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("MaxConns = %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 1 {
		t.Errorf("MinConns = %d", cfg.Database.MinConns)
	}
	if cfg.Database.MaxLifetime != time.Hour {
		t.Errorf("MaxLifetime = %v", cfg.Database.MaxLifetime)
	}
	if cfg.Auth.AccessTokenTTL != 24*time.Hour {
		t.Errorf("AccessTokenTTL = %v", cfg.Auth.AccessTokenTTL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "5")
	t.Setenv("DB_MAX_LIFETIME", "30m")

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("MaxConns = %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 5 {
		t.Errorf("MinConns = %d", cfg.Database.MinConns)
	}
	if cfg.Database.MaxLifetime != 30*time.Minute {
		t.Errorf("MaxLifetime = %v", cfg.Database.MaxLifetime)
	}
}
