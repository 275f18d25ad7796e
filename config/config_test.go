package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// empty values count as unset
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_SECRET", "SESSION_TTL", "RESET_WINDOW_TTL", "SMTP_HOST", "FROM_EMAIL"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "sqlite" {
		t.Errorf("Port = %q, DBDriver = %q", cfg.Port, cfg.DBDriver)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.ResetWindowTTL != 10*time.Minute {
		t.Errorf("SessionTTL = %v, ResetWindowTTL = %v", cfg.SessionTTL, cfg.ResetWindowTTL)
	}
	if !cfg.UsingDevSecret() {
		t.Error("UsingDevSecret() = false with no JWT_SECRET")
	}
	if cfg.Email.Configured() {
		t.Error("Email.Configured() = true with no SMTP_HOST")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("SITE_URL", "https://food.example.com/")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("FROM_EMAIL", "noreply@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UsingDevSecret() || cfg.DBDriver != "mysql" || cfg.SiteURL != "https://food.example.com" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.Email.Configured() {
		t.Error("Email.Configured() = false")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SESSION_TTL", "soon"},
		{"TOKEN_TTL", "-1h"},
		{"BCRYPT_COST", "99"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded", tt.key, tt.value)
			}
		})
	}
}

func TestOpenDB(t *testing.T) {
	db, err := OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	for _, table := range []string{"users", "vendors", "opening_hours", "orders", "ordered_foods", "order_vendors"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s not migrated", table)
		}
	}

	if _, err := OpenDB("postgres", "x"); err == nil {
		t.Error("OpenDB(postgres) succeeded")
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	got, err := normalizeMySQLDSN("user:pass@tcp(localhost:3306)/foodonline")
	if err != nil {
		t.Fatalf("normalizeMySQLDSN() error = %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("dsn = %q, want parseTime=true", got)
	}
	if _, err := normalizeMySQLDSN("not a dsn"); err == nil {
		t.Error("normalizeMySQLDSN(garbage) succeeded")
	}
}
