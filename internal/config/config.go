// Package config loads the service configuration from YAML, with sane
// defaults and environment overrides for secrets.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML string parsing ("30m", "1h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Redis configures the session store backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Session configures persistence behavior.
type Session struct {
	TTL       Duration `yaml:"ttl"`
	KeyPrefix string   `yaml:"key_prefix"`

	// EncryptionKey enables encryption at rest when set: a base64-encoded
	// 32-byte AES-256 key. KONVO_SESSION_KEY overrides it.
	EncryptionKey string `yaml:"encryption_key"`

	// PIIMask lists regex patterns for dashboard and flow.data keys whose
	// values are masked before persisting.
	PIIMask []string `yaml:"pii_mask"`
}

// EncryptionKeyBytes decodes the configured key. Returns nil when encryption
// is disabled.
func (s Session) EncryptionKeyBytes() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid session.encryption_key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("session.encryption_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Accounts configures the external API collaborator.
type Accounts struct {
	BaseURL string `yaml:"base_url"`
}

// Log configures the structured logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Config is the full service configuration.
type Config struct {
	Listen      string   `yaml:"listen"`
	MetricsPath string   `yaml:"metrics_path"`
	Flows       string   `yaml:"flows"`
	Redis       Redis    `yaml:"redis"`
	Session     Session  `yaml:"session"`
	Accounts    Accounts `yaml:"accounts"`
	Log         Log      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:      ":8080",
		MetricsPath: "/metrics",
		Flows:       "flows.yaml",
		Redis: Redis{
			Addr: "localhost:6379",
		},
		Session: Session{
			TTL:       Duration(30 * time.Minute),
			KeyPrefix: "konvo:session:",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file, layering it over defaults. A missing
// path yields the defaults. Secrets may be provided via environment
// (KONVO_REDIS_PASSWORD) and take precedence over the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if pw := os.Getenv("KONVO_REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if key := os.Getenv("KONVO_SESSION_KEY"); key != "" {
		cfg.Session.EncryptionKey = key
	}

	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("session.ttl must be positive")
	}
	if _, err := cfg.Session.EncryptionKeyBytes(); err != nil {
		return nil, err
	}
	return cfg, nil
}
