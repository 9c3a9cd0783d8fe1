package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash-001", cfg.Model)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, 6000, cfg.MaxChunkBytes)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.True(t, cfg.MixedScript)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "1. AI검수요청", cfg.Sheet.RequestedStatus)
	assert.Equal(t, "2. AI검수완료", cfg.Sheet.CompletedStatus)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnvThenFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	saved := Default()
	saved.Provider = "ollama"
	saved.Model = "llama3.3"
	saved.Concurrency = 2
	require.NoError(t, Save(saved))

	t.Setenv("REDPEN_MODEL", "qwen2.5")

	cfg, err := Load(map[string]string{"concurrency": "8"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Provider, "file value survives")
	assert.Equal(t, "qwen2.5", cfg.Model, "env beats file")
	assert.Equal(t, 8, cfg.Concurrency, "flag beats file")
}

func TestLoad_SheetEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDPEN_SPREADSHEET_ID", "sheet-123")
	t.Setenv("REDPEN_WORKSHEET", "Reviews")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "sheet-123", cfg.Sheet.SpreadsheetID)
	assert.Equal(t, "Reviews", cfg.Sheet.Worksheet)
}

func TestSaveLoadFile_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Sheet.SpreadsheetID = "abc"
	cfg.RawLogDir = "/tmp/rawlogs"
	require.NoError(t, Save(cfg))

	loaded, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSetField(t *testing.T) {
	cfg := Default()

	require.NoError(t, SetField(&cfg, "provider", "openai"))
	assert.Equal(t, "openai", cfg.Provider)

	require.NoError(t, SetField(&cfg, "maxChunkBytes", "4000"))
	assert.Equal(t, 4000, cfg.MaxChunkBytes)

	require.NoError(t, SetField(&cfg, "sheet.worksheet", "Batch"))
	assert.Equal(t, "Batch", cfg.Sheet.Worksheet)

	assert.Error(t, SetField(&cfg, "concurrency", "not-a-number"))
	assert.Error(t, SetField(&cfg, "no.such.key", "x"))
}
