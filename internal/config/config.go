package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Config represents the application configuration.
type Config struct {
	Env                string        `mapstructure:"env"`
	Port               string        `mapstructure:"port"`
	GeminiAPIKey       string        `mapstructure:"gemini_api_key"`
	GeminiModel        string        `mapstructure:"gemini_model"`
	AIProvider         string        `mapstructure:"ai_provider"`
	LocalLLMURL        string        `mapstructure:"local_llm_url"`
	LocalLLMModel      string        `mapstructure:"local_llm_model"`
	DatabaseURL        string        `mapstructure:"database_url"`
	DataPath           string        `mapstructure:"data_path"`
	RedisURL           string        `mapstructure:"redis_url"`
	SessionSecret      string        `mapstructure:"session_secret"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	GenerationCacheTTL time.Duration `mapstructure:"generation_cache_ttl"`
}

// envKeys maps config keys to the environment variables that override them.
var envKeys = map[string]string{
	"env":                  "APP_ENV",
	"port":                 "PORT",
	"gemini_api_key":       "GEMINI_API_KEY",
	"gemini_model":         "GEMINI_MODEL",
	"ai_provider":          "AI_PROVIDER",
	"local_llm_url":        "LOCAL_LLM_URL",
	"local_llm_model":      "LOCAL_LLM_MODEL",
	"database_url":         "DATABASE_URL",
	"data_path":            "DATA_PATH",
	"redis_url":            "REDIS_URL",
	"session_secret":       "SESSION_SECRET",
	"allowed_origins":      "ALLOWED_ORIGINS",
	"generation_cache_ttl": "GENERATION_CACHE_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("ai_provider", ProviderGemini)
	v.SetDefault("local_llm_url", "http://localhost:1234/v1/chat/completions")
	v.SetDefault("local_llm_model", "gemma-3-12b-it")
	v.SetDefault("data_path", "data/db.json")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("generation_cache_ttl", "10m")
}

// Load reads configuration from defaults, an optional JSON file and the
// environment, in increasing priority. A .env file in the working directory
// is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if raw := v.GetString("generation_cache_ttl"); raw != "" {
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("invalid generation_cache_ttl %q: %w", raw, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.AllowedOrigins = cleanList(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// cleanList trims entries and drops empty ones left by comma-separated env values.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports the first missing or inconsistent setting.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required when ai_provider is %q", ProviderGemini)
		}
	case ProviderLocal:
		if c.LocalLLMURL == "" {
			return fmt.Errorf("local_llm_url is required when ai_provider is %q", ProviderLocal)
		}
	default:
		return fmt.Errorf("unknown ai_provider %q", c.AIProvider)
	}
	if c.SessionSecret == "" {
		return errors.New("session_secret is required")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
