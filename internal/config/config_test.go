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
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
databaseURL: "postgres://localhost/chapterly"
sessionBackend: redis
redisAddr: "localhost:6379"
sessionTTL: 24h
`)
	t.Setenv("DATABASE_URL", "postgres://db:5432/chapterly")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://db:5432/chapterly" {
		t.Fatalf("env override lost: %q", cfg.DatabaseURL)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("env override lost: %q", cfg.RedisAddr)
	}
	ttl, err := ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		t.Fatalf("ParseSessionTTL: %v", err)
	}
	if ttl != 24*time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
}

func TestLoadRejectsMissingPort(t *testing.T) {
	path := writeConfig(t, `logLevel: debug`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing port")
	}
}

func TestLoadRejectsUnknownSessionBackend(t *testing.T) {
	path := writeConfig(t, "port: \"8080\"\nsessionBackend: etcd\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown session backend")
	}
}

func TestLoadRequiresSecretForJWTBackend(t *testing.T) {
	path := writeConfig(t, "port: \"8080\"\nsessionBackend: jwt\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for jwt backend without secret")
	}

	t.Setenv("CHAPTERLY_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load with env secret: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("secret not picked up from env")
	}
}

func TestLoadRequiresMinioCredentialsWithEndpoint(t *testing.T) {
	path := writeConfig(t, "port: \"8080\"\nminioEndpoint: \"minio:9000\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for minio endpoint without credentials")
	}
}
