package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL.Std())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadforms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
formsDir: ./forms
watch: true
theme: leadforms
variant: dark
logFormat: console
rateLimit:
  rps: 2.5
  burst: 4
sessionTTL: 5m
`), 0o644))

	t.Setenv("LEADFORMS_ADDR", "127.0.0.1:7000")
	t.Setenv("LEADFORMS_RATE_LIMIT_BURST", "9")
	t.Setenv("LEADFORMS_RETAIN_SNAPSHOT_ON_FAILURE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "./forms", cfg.FormsDir)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "dark", cfg.Variant)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 9, cfg.RateLimit.Burst)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL.Std())
	assert.Equal(t, 10*time.Second, cfg.ShutdownGrace.Std())
	assert.True(t, cfg.RetainSnapshotOnFailure)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sessionTTL: soon\n"), 0o644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "invalid duration")

	t.Setenv("LEADFORMS_WATCH", "maybe")
	_, err = Load("")
	assert.ErrorContains(t, err, "LEADFORMS_WATCH")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	cfg.SessionTTL = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logFormat")
	assert.Contains(t, err.Error(), "sessionTTL")
}

func TestApplyEnvOverrides_IgnoresBlankValues(t *testing.T) {
	env := map[string]string{
		"LEADFORMS_ADDR":           "  ",
		"LEADFORMS_SESSION_TTL":    "1h",
		"LEADFORMS_RATE_LIMIT_RPS": "0.5",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnvOverrides(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}))
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.SessionTTL.Std())
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "leadforms.yaml")
	cfg := Default()
	cfg.Variant = "dark"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
