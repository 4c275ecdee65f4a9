package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LISTEN_ADDR", "DATABASE_PATH", "GIN_MODE", "UPLOAD_DIR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q，期望 8080", cfg.Port)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q，期望 :8080", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "devfolio.db" {
		t.Errorf("DatabasePath = %q，期望 devfolio.db", cfg.DatabasePath)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q，期望 release", cfg.GinMode)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q，期望 info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "/tmp/site.db")
	t.Setenv("ADMIN_USERNAME", " admin ")

	cfg := Load()
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q，期望跟随 PORT 的 :9090", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "/tmp/site.db" {
		t.Errorf("DatabasePath = %q，期望 /tmp/site.db", cfg.DatabasePath)
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("AdminUsername = %q，期望修剪后的 admin", cfg.AdminUsername)
	}
}
