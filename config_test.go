package softnav

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softnav.yaml")
	// Durations are integer nanoseconds in yaml.
	data := `
user_agent: "navtest/2.0"
max_bytes: 4096
sanitize: true
session_id: "abc"
history_db: "/tmp/nav.db"
settle_interval: 500000000
transition_delay: 150000000
preserve_root_attrs: [lang, dir]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.UserAgent != "navtest/2.0" {
		t.Errorf("user_agent = %q", cfg.UserAgent)
	}
	if cfg.MaxBytes != 4096 {
		t.Errorf("max_bytes = %d", cfg.MaxBytes)
	}
	if !cfg.Sanitize {
		t.Error("sanitize not set")
	}
	if cfg.SettleInterval != 500*time.Millisecond {
		t.Errorf("settle_interval = %v", cfg.SettleInterval)
	}
	if cfg.TransitionDelay != 150*time.Millisecond {
		t.Errorf("transition_delay = %v", cfg.TransitionDelay)
	}
	if len(cfg.PreserveRootAttrs) != 2 || cfg.PreserveRootAttrs[0] != "lang" {
		t.Errorf("preserve_root_attrs = %v", cfg.PreserveRootAttrs)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()
	if cfg.UserAgent == "" {
		t.Error("no default user agent")
	}
	if cfg.MaxBytes <= 0 {
		t.Error("no default body cap")
	}
	if cfg.SettleInterval <= 0 {
		t.Error("no default settle interval")
	}
}
