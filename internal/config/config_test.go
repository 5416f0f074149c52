package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "GEMINI_API_KEY", "GEMINI_MODEL", "AI_PROVIDER",
		"LOCAL_LLM_URL", "LOCAL_LLM_MODEL", "DATABASE_URL", "DATA_PATH",
		"REDIS_URL", "SESSION_SECRET", "ALLOWED_ORIGINS", "GENERATION_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("FileOnly", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `{
			"gemini_api_key": "file-key",
			"DATABASE_URL": "postgres://localhost/meals",
			"session_secret": "s3cret",
			"generation_cache_ttl": "90s"
		}`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "file-key", cfg.GeminiAPIKey)
		assert.Equal(t, "postgres://localhost/meals", cfg.DatabaseURL)
		assert.Equal(t, ProviderGemini, cfg.AIProvider)
		assert.Equal(t, "data/db.json", cfg.DataPath)
		assert.Equal(t, 90*time.Second, cfg.GenerationCacheTTL)
		assert.Equal(t, ":8080", cfg.Addr())
		assert.False(t, cfg.IsProduction())
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `{"gemini_api_key": "file-key", "session_secret": "s3cret"}`)
		t.Setenv("GEMINI_API_KEY", "env-key")
		t.Setenv("APP_ENV", "production")
		t.Setenv("PORT", "9000")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
		t.Setenv("GENERATION_CACHE_TTL", "1h")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-key", cfg.GeminiAPIKey)
		assert.True(t, cfg.IsProduction())
		assert.Equal(t, ":9000", cfg.Addr())
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
		assert.Equal(t, time.Hour, cfg.GenerationCacheTTL)
	})

	t.Run("MissingFileUsesEnv", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_PROVIDER", ProviderLocal)
		t.Setenv("SESSION_SECRET", "s3cret")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, cfg.AIProvider)
		assert.NotEmpty(t, cfg.LocalLLMURL)
		assert.Equal(t, 10*time.Minute, cfg.GenerationCacheTTL)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	})

	t.Run("FileListAndEnvPriority", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `{
			"ai_provider": "local",
			"session_secret": "from-file",
			"allowed_origins": ["https://app.example"],
			"data_path": "/var/lib/meals/db.json"
		}`)
		t.Setenv("SESSION_SECRET", "from-env")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.SessionSecret)
		assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
		assert.Equal(t, "/var/lib/meals/db.json", cfg.DataPath)
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SESSION_SECRET", "s3cret")

		_, err := Load("")
		require.Error(t, err)
		assert.Equal(t, `gemini_api_key is required when ai_provider is "gemini"`, err.Error())
	})

	t.Run("MissingSessionSecret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "key")

		_, err := Load("")
		require.Error(t, err)
		assert.Equal(t, "session_secret is required", err.Error())
	})

	t.Run("UnknownProvider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("AI_PROVIDER", "carrier-pigeon")
		t.Setenv("SESSION_SECRET", "s3cret")

		_, err := Load("")
		assert.EqualError(t, err, `unknown ai_provider "carrier-pigeon"`)
	})

	t.Run("BadTTL", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "key")
		t.Setenv("SESSION_SECRET", "s3cret")
		t.Setenv("GENERATION_CACHE_TTL", "soon")

		_, err := Load("")
		assert.ErrorContains(t, err, "invalid generation_cache_ttl")
	})

	t.Run("MalformedFile", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `{"gemini_api_key": `)

		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to unmarshal")
	})
}
