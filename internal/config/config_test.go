package config

import (
	"testing"
	"time"
)

func TestLoad_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "production", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "phonebank", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "phonebank", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth:  AuthConfig{JWTSecret: "secret"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Engine.ReserveMaxRetries != 3 {
		t.Fatalf("expected reserve retry default 3, got %d", c.Engine.ReserveMaxRetries)
	}
	if c.Engine.CallHoursEnforced {
		t.Fatalf("call hours must default to advisory")
	}
	if c.Engine.ResetCodeTTL != 15*time.Minute {
		t.Fatalf("expected reset code ttl default 15m, got %v", c.Engine.ResetCodeTTL)
	}
	if c.Auth.LoginMaxAttempts != 5 {
		t.Fatalf("expected login attempt default 5, got %d", c.Auth.LoginMaxAttempts)
	}
}
