package app

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: test-token
database:
  host: db
  port: "5432"
  user: bot
  name: expenses
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Core.Telegram.Token != "test-token" {
		t.Errorf("token = %q", cfg.Core.Telegram.Token)
	}
	if cfg.Core.Telegram.RunMode != "longpoll" {
		t.Errorf("run mode = %q, want longpoll default", cfg.Core.Telegram.RunMode)
	}
	if cfg.Core.Storage.Dir != "receipts" {
		t.Errorf("storage dir = %q, want default", cfg.Core.Storage.Dir)
	}
	if cfg.Database.Host != "db" || cfg.Database.Name != "expenses" {
		t.Errorf("database = %+v", cfg.Database)
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	if v, ok := os.LookupEnv("BOT_TOKEN"); ok {
		os.Unsetenv("BOT_TOKEN")
		defer os.Setenv("BOT_TOKEN", v)
	}
	path := writeConfig(t, "telegram:\n  run_mode: longpoll\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
