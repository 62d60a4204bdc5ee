package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Service.Name != "crm-service" {
		t.Errorf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.Service.Port != "8080" {
		t.Errorf("Service.Port = %q", cfg.Service.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing must default off")
	}
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Database.MaxConns = %d", cfg.Database.MaxConns)
	}
	if cfg.Session.TokenTTL != 24*time.Hour {
		t.Errorf("Session.TokenTTL = %v", cfg.Session.TokenTTL)
	}
	if cfg.Session.RequireConfirmation {
		t.Error("confirmation must default off")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/crm")
	t.Setenv("SERVICE_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")
	t.Setenv("DATABASE_MAX_CONNS", "32")
	t.Setenv("SESSION_TOKEN_TTL", "90m")
	t.Setenv("SESSION_REQUIRE_CONFIRMATION", "true")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "25")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Service.Port != "9090" {
		t.Errorf("Service.Port = %q", cfg.Service.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	if cfg.Database.MaxConns != 32 {
		t.Errorf("Database.MaxConns = %d", cfg.Database.MaxConns)
	}
	if cfg.Session.TokenTTL != 90*time.Minute {
		t.Errorf("Session.TokenTTL = %v", cfg.Session.TokenTTL)
	}
	if !cfg.Session.RequireConfirmation {
		t.Error("Session.RequireConfirmation = false")
	}
	if cfg.GetShutdownTimeoutDuration() != 25*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.GetShutdownTimeoutDuration())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"sample rate above one", func(c *Config) { c.Tracing.SampleRate = 1.5 }},
		{"negative sample rate", func(c *Config) { c.Tracing.SampleRate = -0.1 }},
		{"zero token ttl", func(c *Config) { c.Session.TokenTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/crm")
			cfg := Load()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestEnvParseFailuresFallBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("DATABASE_MAX_CONNS", "lots")
	t.Setenv("TRACING_ENABLED", "yep")
	t.Setenv("SESSION_TOKEN_TTL", "soon")

	cfg := Load()
	if cfg.Database.MaxConns != 10 {
		t.Errorf("Database.MaxConns = %d, want fallback 10", cfg.Database.MaxConns)
	}
	if cfg.Tracing.Enabled {
		t.Error("unparseable bool must fall back to false")
	}
	if cfg.Session.TokenTTL != 24*time.Hour {
		t.Errorf("Session.TokenTTL = %v, want fallback 24h", cfg.Session.TokenTTL)
	}
}
