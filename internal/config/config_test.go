package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "konvo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL.Std())
	assert.Equal(t, "konvo:session:", cfg.Session.KeyPrefix)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
redis:
  addr: redis.internal:6379
  db: 2
session:
  ttl: 1h
accounts:
  base_url: https://accounts.example.com
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Session.TTL.Std())
	assert.Equal(t, "https://accounts.example.com", cfg.Accounts.BaseURL)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, "/metrics", cfg.MetricsPath)
	assert.Equal(t, "konvo:session:", cfg.Session.KeyPrefix)
}

func TestLoad_EnvPasswordWinsOverFile(t *testing.T) {
	path := writeConfig(t, `
redis:
  password: from-file
`)
	t.Setenv("KONVO_REDIS_PASSWORD", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Redis.Password)
}

func TestLoad_SessionEncryptionKey(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	path := writeConfig(t, "session:\n  encryption_key: "+key+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	decoded, err := cfg.Session.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
}

func TestLoad_EnvSessionKeyWinsOverFile(t *testing.T) {
	fileKey := base64.StdEncoding.EncodeToString(make([]byte, 32))
	envKey := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	path := writeConfig(t, "session:\n  encryption_key: "+fileKey+"\n")
	t.Setenv("KONVO_SESSION_KEY", envKey)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, envKey, cfg.Session.EncryptionKey)
}

func TestLoad_RejectsWrongSizeEncryptionKey(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	path := writeConfig(t, "session:\n  encryption_key: "+short+"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestEncryptionKeyBytes_DisabledWhenUnset(t *testing.T) {
	key, err := Session{}.EncryptionKeyBytes()
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, `
session:
  ttl: soon
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NonPositiveTTL(t *testing.T) {
	path := writeConfig(t, `
session:
  ttl: 0s
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ttl")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "listen: [not, a, string")
	_, err := Load(path)
	assert.Error(t, err)
}
