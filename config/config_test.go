package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ACCESS_CODE", "letmein")
}

func clearOptional(t *testing.T) {
	for _, key := range []string{"RESELLER_DB_PATH", "GEMINI_MODEL", "GENERATION_CACHE", "BATCH_LIMIT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "letmein", cfg.AccessCode)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultModel, cfg.GeminiModel)
	assert.True(t, cfg.GenerationCache)
	assert.Equal(t, DefaultBatchLimit, cfg.BatchLimit)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RESELLER_DB_PATH", "/tmp/x.db")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GENERATION_CACHE", "false")
	t.Setenv("BATCH_LIMIT", "5")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.False(t, cfg.GenerationCache)
	assert.Equal(t, 5, cfg.BatchLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_ReportsAllMissingKeys(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("ACCESS_CODE", "  ")

	_, err := Load()
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"BOT_TOKEN", "ACCESS_CODE"}, missing.Keys)
	assert.EqualError(t, err, "missing required config: BOT_TOKEN, ACCESS_CODE")
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	t.Setenv("BATCH_LIMIT", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("BATCH_LIMIT", "")
	t.Setenv("GENERATION_CACHE", "maybe")
	_, err = Load()
	assert.Error(t, err)
}
