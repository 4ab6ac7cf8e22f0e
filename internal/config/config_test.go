package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.BaseURL)
	assert.InDelta(t, 1.0, cfg.Geocode.RateLimit, 0.001)
	assert.Equal(t, time.Second, cfg.Geocode.DelayMin())
	assert.Equal(t, 3*time.Second, cfg.Geocode.DelayMax())
	assert.Equal(t, time.Second, cfg.Geocode.ExtraDelay())
	assert.Equal(t, "osm_json_responses.txt", cfg.Geocode.AuditLogPath)
	assert.Equal(t, "http://localhost:9000", cfg.Scorer.BaseURL)
	assert.Equal(t, 30, cfg.Scorer.TimeoutSecs)
	assert.Contains(t, cfg.Scrape.PageURLTemplate, "%d")
	assert.Equal(t, "dataset_frame.csv", cfg.Dataset.CSVPath)
	assert.Equal(t, "dataset_frame.json", cfg.Dataset.JSONPath)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	yaml := `
geocode:
  base_url: http://localhost:8108
  delay_min_secs: 0
  delay_max_secs: 0
cache:
  enabled: true
  path: /tmp/geo.db
log:
  level: debug
  format: console
server:
  port: 9999
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8108", cfg.Geocode.BaseURL)
	assert.Zero(t, cfg.Geocode.DelayMin())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/geo.db", cfg.Cache.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "shouting", Format: "json"}))
}
