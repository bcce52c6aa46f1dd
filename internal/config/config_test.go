package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", "")
	t.Setenv("CIAA_API_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %s, want %s", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.Kafka.Enabled() {
		t.Error("Kafka should be disabled without brokers")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	content := `
api_url: http://backend.internal:8000
listen_addr: ":9000"
session_idle_timeout: 5m
kafka:
  brokers: ["kafka-1:9092"]
  topic: file-topic
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DASHBOARD_CONFIG", path)
	t.Setenv("CIAA_API_URL", "")
	t.Setenv("KAFKA_TOPIC", "env-topic")
	t.Setenv("UPSTREAM_PROBE_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := Default()
	want.APIURL = "http://backend.internal:8000"
	want.ListenAddr = ":9000"
	want.SessionIdleTimeout = 5 * time.Minute
	want.UpstreamProbeTimeout = 3 * time.Second
	want.Kafka.Brokers = []string{"kafka-1:9092"}
	want.Kafka.Topic = "env-topic"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad duration", "SESSION_IDLE_TIMEOUT", "soon"},
		{"bad limit", "PAGE_LIMIT", "ten"},
		{"zero limit", "PAGE_LIMIT", "0"},
		{"bad url", "CIAA_API_URL", "ftp://backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DASHBOARD_CONFIG", "")
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
