package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// UNIFIED CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ATHENA_MODEL", "")
	t.Setenv("ATHENA_DATA_DIR", "")
	os.Unsetenv("ATHENA_PIN")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Athena", cfg.Name)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.LLM.GetBackoff())
	assert.Equal(t, 5*time.Second, cfg.GetQuoteTimeout())
	assert.Equal(t, "BTCBRL", cfg.Quote.Pair)
	assert.Equal(t, "1234", cfg.Security.PIN)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "file-key"
	cfg.LLM.Backoff = "3s"
	cfg.Security.PIN = ""

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", loaded.LLM.APIKey)
	assert.Equal(t, 3*time.Second, loaded.LLM.GetBackoff())
	assert.Equal(t, "", loaded.Security.PIN)
}

func TestConfig_LoadMissingReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_LoadPartialKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gemini-2.0-flash\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, "v1beta", cfg.LLM.APIVersion)
	assert.True(t, cfg.Ledger.Enabled)
}

func TestConfig_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unterminated"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing api key is allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, cfg.Validate())
		assert.False(t, cfg.LLM.HasAPIKey())
	})

	t.Run("negative retries", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.MaxRetries = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad quote url", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Quote.URL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("pin without attempts", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Security.Attempts = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_Paths(t *testing.T) {
	cfg := DefaultConfig()
	ws := filepath.Join("ws")

	assert.Equal(t, filepath.Join("ws", "athena_save.txt"), cfg.StatePath(ws))
	assert.Equal(t, filepath.Join("ws", "diario_athena.txt"), cfg.JournalPath(ws))
	assert.Equal(t, filepath.Join("ws", ".athena", "ledger.db"), cfg.LedgerPath(ws))
	assert.Equal(t, filepath.Join("ws", ".athena", "config.yaml"), DefaultPath(ws))

	cfg.DataDir = string(filepath.Separator) + "data"
	assert.Equal(t, filepath.Join(cfg.DataDir, "athena_save.txt"), cfg.StatePath(ws))
}

func TestLLMConfig_DurationFallbacks(t *testing.T) {
	c := LLMConfig{Timeout: "garbage", Backoff: "-1s"}
	assert.Equal(t, 120*time.Second, c.GetTimeout())
	assert.Equal(t, 10*time.Second, c.GetBackoff())

	c.Backoff = "0s"
	assert.Equal(t, time.Duration(0), c.GetBackoff())
}

func TestLoggingConfig_Options(t *testing.T) {
	c := LoggingConfig{Level: "warn"}
	assert.False(t, c.Options(false).DebugMode)

	o := c.Options(true)
	assert.True(t, o.DebugMode)
	assert.Equal(t, "debug", o.Level)
}
