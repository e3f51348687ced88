package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Backend: got %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Storage.DataDir != "data" {
		t.Errorf("DataDir: got %q, want %q", cfg.Storage.DataDir, "data")
	}
	if cfg.Auth.LockoutThreshold != 3 {
		t.Errorf("LockoutThreshold: got %d, want 3", cfg.Auth.LockoutThreshold)
	}
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("LOCKOUT_THRESHOLD", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port: got %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Backend: got %q, want %q", cfg.Storage.Backend, BackendMemory)
	}
	if cfg.Auth.LockoutThreshold != 5 {
		t.Errorf("LockoutThreshold: got %d, want 5", cfg.Auth.LockoutThreshold)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "etcd")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with unknown backend: got nil, want error")
	}
}

func TestLoadPostgresRequiresPassword(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() without DB_PASSWORD: got nil, want error")
	}

	t.Setenv("DB_PASSWORD", "secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("Password: got %q, want %q", cfg.Database.Password, "secret")
	}
}

func TestLoadRejectsZeroThreshold(t *testing.T) {
	t.Setenv("LOCKOUT_THRESHOLD", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with zero threshold: got nil, want error")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "chartline", SSLMode: "disable",
	}

	want := "host=db port=5433 user=app password=pw dbname=chartline sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
