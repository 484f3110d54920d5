package softnav

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config configures a Session.
type Config struct {
	// UserAgent sent with replacement-document requests.
	UserAgent string `yaml:"user_agent"`
	// MaxBytes caps fetched response bodies. Default: 10MB.
	MaxBytes int64 `yaml:"max_bytes"`
	// Sanitize runs arriving body content through a bluemonday UGC policy
	// before it is swapped in. Off by default; meant for sessions pointed
	// at content the embedder does not fully control.
	Sanitize bool `yaml:"sanitize"`
	// SessionID keys persisted history state. Default: a fresh UUID.
	SessionID string `yaml:"session_id"`
	// HistoryDB is the sqlite path for persisted entry state. Empty
	// disables persistence.
	HistoryDB string `yaml:"history_db"`
	// SettleInterval is the scroll-settle polling period. Default: 200ms.
	SettleInterval time.Duration `yaml:"settle_interval"`
	// TransitionDelay approximates the visual transition duration for the
	// simulated primitive. Default: 0 (resolve immediately).
	TransitionDelay time.Duration `yaml:"transition_delay"`
	// PreserveRootAttrs lists extra root attributes that survive swaps.
	PreserveRootAttrs []string `yaml:"preserve_root_attrs"`
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "softnav/1.0"
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.SettleInterval <= 0 {
		c.SettleInterval = 200 * time.Millisecond
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("softnav: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("softnav: parse config %s: %w", path, err)
	}
	return &cfg, nil
}
