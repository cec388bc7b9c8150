//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearEnv blanks the overlay variables so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "QSTASH_TOKEN", "QSTASH_URL", "SERVER_URL", "REMINDER_DRIVER", "PORT", "JWT_EXPIRES_IN"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	t.Run("should apply defaults on top of a minimal file", func(t *testing.T) {
		// --- Arrange ---
		path := writeConfig(t, `
database:
  url: postgres://localhost/subs
auth:
  jwt_secret: s3cret
`)

		// --- Act ---
		cfg, err := LoadConfig(path, true)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if cfg.Server.Port != 5500 || cfg.Reminder.Driver != "noop" {
			t.Errorf("unexpected defaults: port=%d driver=%s", cfg.Server.Port, cfg.Reminder.Driver)
		}
		if cfg.CallbackURL() != "http://localhost:5500/api/v1/workflows/subscription/reminder" {
			t.Errorf("unexpected callback url %q", cfg.CallbackURL())
		}
		if cfg.Reminder.AcceptTimeout != 3*time.Second {
			t.Errorf("unexpected accept timeout %s", cfg.Reminder.AcceptTimeout)
		}
		if !cfg.Runtime.Dev {
			t.Error("expected dev flag to be carried")
		}
	})

	t.Run("should let environment variables override the file", func(t *testing.T) {
		// --- Arrange ---
		path := writeConfig(t, `
server:
  port: 8080
database:
  url: postgres://file/subs
auth:
  jwt_secret: from-file
`)
		t.Setenv("DATABASE_URL", "postgres://env/subs")
		t.Setenv("PORT", "9090")
		t.Setenv("SERVER_URL", "https://subs.example.com/")
		t.Setenv("JWT_EXPIRES_IN", "1d")

		// --- Act ---
		cfg, err := LoadConfig(path, false)

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if cfg.Database.URL != "postgres://env/subs" || cfg.Server.Port != 9090 {
			t.Errorf("env overlay not applied: %+v", cfg.Server)
		}
		if cfg.Auth.ExpiresIn != 24*time.Hour {
			t.Errorf("expected 24h expiry, got %s", cfg.Auth.ExpiresIn)
		}
		if cfg.CallbackURL() != "https://subs.example.com/api/v1/workflows/subscription/reminder" {
			t.Errorf("unexpected callback url %q", cfg.CallbackURL())
		}
	})

	t.Run("should require workflow credentials for the workflow driver", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost/subs
auth:
  jwt_secret: s3cret
reminder:
  driver: workflow
`)
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected an error for missing qstash settings")
		}
	})

	t.Run("should reject an unknown reminder driver", func(t *testing.T) {
		path := writeConfig(t, `
database:
  url: postgres://localhost/subs
auth:
  jwt_secret: s3cret
reminder:
  driver: carrier-pigeon
`)
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected an error for an unknown driver")
		}
	})

	t.Run("should fail without a database url", func(t *testing.T) {
		path := writeConfig(t, "auth:\n  jwt_secret: s3cret\n")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected an error")
		}
	})
}
