package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: kasir-pos
  http_addr: ":8080"
backend:
  base_url: http://localhost:3000/api
  timeout: 10s
snap:
  script_url: https://app.sandbox.midtrans.com/snap/snap.js
  client_key: pk-base
scanner:
  notice_ttl: 3s
idempotency:
  ttl: 10m
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadBase(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})

	cfg, err := Load(dir, "dev")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "http://localhost:3000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Scanner.NoticeTTL)
	assert.Equal(t, 10*time.Minute, cfg.Idempotency.TTL)
}

func TestEnvFileOverridesBase(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base.yaml": baseYAML,
		"prod.yaml": "snap:\n  client_key: pk-prod\n",
	})

	cfg, err := Load(dir, "prod")
	require.NoError(t, err)
	assert.Equal(t, "pk-prod", cfg.Snap.ClientKey)
}

func TestEnvVarsOverrideFiles(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})
	t.Setenv("KASIRPOS_SNAP__CLIENT_KEY", "pk-env")

	cfg, err := Load(dir, "dev")
	require.NoError(t, err)
	assert.Equal(t, "pk-env", cfg.Snap.ClientKey)
}

func TestValidateRequiredKeys(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base.yaml": "app:\n  http_addr: \":8080\"\n",
	})

	_, err := Load(dir, "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url")
}
