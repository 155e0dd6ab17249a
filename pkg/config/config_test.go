package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
data_dir: ` + dir + `
templates_dir: ` + filepath.Join(dir, "templates") + `
log_level: debug
postgres:
  host: db.internal
  port: 6543
github:
  org: acme-co
registry:
  rps: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KITFORGE_POSTGRES_USER", "scaffold")
	t.Setenv("KITFORGE_TEST_MODE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" {
		t.Errorf("log = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Postgres.Host != "db.internal" || cfg.Postgres.Port != 6543 || cfg.Postgres.User != "scaffold" {
		t.Errorf("postgres = %+v", cfg.Postgres)
	}
	if cfg.GitHub.Org != "acme-co" || cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("github = %+v", cfg.GitHub)
	}
	if cfg.Registry.RPS != 2 {
		t.Errorf("registry rps = %v", cfg.Registry.RPS)
	}
	if !cfg.TestMode {
		t.Fatal("test mode should be enabled from env")
	}
	if want := filepath.Join(dir, "test", "projects.db"); cfg.DBPath() != want {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath(), want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_format: xml\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDBPath_Normal(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if cfg.DBPath() != filepath.Join("/data", "projects.db") {
		t.Errorf("DBPath = %s", cfg.DBPath())
	}
}
