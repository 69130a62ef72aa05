package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty dir so no config.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)

	// The scoring thresholds are contract values.
	assert.InDelta(t, 0.5, cfg.Scoring.SimilarityThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.Scoring.JobsWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Scoring.PainsWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Scoring.GainsWeight, 1e-9)
	assert.InDelta(t, 50, cfg.Scoring.NeutralScore, 1e-9)
	assert.InDelta(t, 60, cfg.Scoring.GapScoreThreshold, 1e-9)
	assert.InDelta(t, 50, cfg.Scoring.SeverityHighBelow, 1e-9)
	assert.InDelta(t, 40, cfg.Scoring.SeverityCriticalBelow, 1e-9)
	assert.InDelta(t, 0.3, cfg.Scoring.GapFulfillmentThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.Scoring.GapSentimentThreshold, 1e-9)
	assert.InDelta(t, 30, cfg.Scoring.FreqCriticalPct, 1e-9)
	assert.InDelta(t, 15, cfg.Scoring.FreqHighPct, 1e-9)
	assert.InDelta(t, 5, cfg.Scoring.FreqMediumPct, 1e-9)
	assert.Equal(t, 385, cfg.Scoring.SampleSize95)
	assert.Equal(t, 200, cfg.Scoring.SampleSize90)
	assert.InDelta(t, 0.95, cfg.Scoring.Significance95, 1e-9)
	assert.InDelta(t, 0.90, cfg.Scoring.Significance90, 1e-9)
	assert.InDelta(t, 0.85, cfg.Scoring.SignificanceBase, 1e-9)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
store:
  driver: sqlite
  database_url: audit.db
server:
  port: 9999
scoring:
  gap_score_threshold: 70
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "audit.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.InDelta(t, 70, cfg.Scoring.GapScoreThreshold, 1e-9)
	// Untouched defaults survive.
	assert.InDelta(t, 0.5, cfg.Scoring.SimilarityThreshold, 1e-9)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
