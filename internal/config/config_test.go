package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func noEnvFile() Option { return WithEnvFile("") }

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer(noEnvFile())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8000" || cfg.Store != "memory" || cfg.DefaultTemp != 180 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWTTTL != 7*24*time.Hour {
		t.Fatalf("unexpected jwt ttl: %s", cfg.JWTTTL)
	}
	if !cfg.LocalMode() {
		t.Fatal("no google client id means local mode")
	}
}

func TestLoadServerEnv(t *testing.T) {
	t.Setenv("COOKSYNC_ADDR", ":9090")
	t.Setenv("COOKSYNC_STORE", "badger")
	t.Setenv("COOKSYNC_DEFAULT_TEMP", "170")
	t.Setenv("COOKSYNC_JWT_TTL", "2h")
	t.Setenv("COOKSYNC_SEED", "true")

	cfg, err := LoadServer(noEnvFile())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Store != "badger" || cfg.DefaultTemp != 170 {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.JWTTTL != 2*time.Hour || !cfg.Seed {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadServerConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "addr: \":7000\"\nlog_format: json\ncors_origins:\n  - http://localhost:3000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("COOKSYNC_ADDR", ":7001")

	cfg, err := LoadServer(noEnvFile(), WithConfigFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7001" {
		t.Fatalf("env should win over the file, got %s", cfg.Addr)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("file value not applied: %s", cfg.LogFormat)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadServerEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("COOKSYNC_DATA_DIR=/tmp/cooksync-env-test\n"), 0o644); err != nil {
		t.Fatalf("writing env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("COOKSYNC_DATA_DIR") })

	cfg, err := LoadServer(WithEnvFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/cooksync-env-test" {
		t.Fatalf("env file not applied: %s", cfg.DataDir)
	}
}

func TestServerValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Server
		wantErr bool
	}{
		{"valid", Server{Store: "memory", LogFormat: "console", DefaultTemp: 180}, false},
		{"bad store", Server{Store: "sqlite", LogFormat: "console", DefaultTemp: 180}, true},
		{"bad format", Server{Store: "memory", LogFormat: "xml", DefaultTemp: 180}, true},
		{"google without secret", Server{Store: "memory", LogFormat: "console", DefaultTemp: 180, GoogleClientID: "id"}, true},
		{"zero temp", Server{Store: "memory", LogFormat: "console"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadClient(t *testing.T) {
	t.Setenv("COOKSYNC_SERVER_URL", "http://kitchen:8000/")
	t.Setenv("COOKSYNC_MINUTE", "1s")

	cfg, err := LoadClient(noEnvFile())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://kitchen:8000" {
		t.Fatalf("trailing slash should be trimmed, got %s", cfg.ServerURL)
	}
	if cfg.Minute != time.Second || cfg.Sound != "tone" || cfg.Appliance != "Fan" {
		t.Fatalf("unexpected client config: %+v", cfg)
	}

	t.Setenv("COOKSYNC_SOUND", "trumpet")
	if _, err := LoadClient(noEnvFile()); err == nil {
		t.Fatal("expected an error for an unknown sound")
	}
}
