package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
)

// clearEnv unsets all LEARN_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"LEARN_REQUIRED_LOCALES",
		"LEARN_SOURCE_LOCALE",
		"LEARN_DICTIONARY_PATHS",
		"LEARN_PHRASE_PATHS",
		"LEARN_CORPUS_RESOLVER",
		"LEARN_AI_OPENAI_API_KEY",
		"LEARN_AI_DEEPSEEK_API_KEY",
		"LEARN_AI_OPENROUTER_API_KEY",
		"LEARN_AI_OLLAMA_ENABLED",
		"LEARN_AI_OLLAMA_URL",
		"LEARN_AI_MODEL",
		"LEARN_AI_TOKEN_BUDGET",
		"LEARN_CACHE_ENABLED",
		"LEARN_CACHE_URL",
		"LEARN_CACHE_TTL_HOURS",
		"LEARN_DATABASE_URL",
		"LEARN_DATABASE_MAX_CONNS",
		"LEARN_DATABASE_MIN_CONNS",
		"LEARN_LEDGER_ENABLED",
		"LEARN_LOG_LEVEL",
		"LEARN_LOG_FORMAT",
		"LEARN_SCHEMA_VALIDATION",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
	// Keep a stray .env in the package directory out of the picture.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Locales.Required, []string{"de", "ar", "en", "Fr", "ru", "es"}) {
		t.Errorf("Locales.Required = %v, want default set", cfg.Locales.Required)
	}
	if cfg.Locales.Source != "en" {
		t.Errorf("Locales.Source = %q, want en", cfg.Locales.Source)
	}
	if !cfg.Translate.Corpus {
		t.Error("Translate.Corpus should default to true")
	}
	if len(cfg.Translate.DictionaryPaths) != 0 {
		t.Errorf("Translate.DictionaryPaths = %v, want none", cfg.Translate.DictionaryPaths)
	}
	if cfg.Cache.Enabled || cfg.Ledger.Enabled {
		t.Error("cache and ledger should be disabled by default")
	}
	if cfg.Cache.TTLHours != 720 {
		t.Errorf("Cache.TTLHours = %d, want 720", cfg.Cache.TTLHours)
	}
	if cfg.Database.MaxConns != 4 || cfg.Database.MinConns != 1 {
		t.Errorf("Database conns = %d/%d, want 4/1", cfg.Database.MaxConns, cfg.Database.MinConns)
	}
	if !cfg.SchemaValidation {
		t.Error("SchemaValidation should default to true")
	}
	if cfg.HasAIProvider() {
		t.Error("HasAIProvider() should be false with no keys")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)

	t.Setenv("LEARN_REQUIRED_LOCALES", " en, de ,,fr ")
	t.Setenv("LEARN_DICTIONARY_PATHS", "a.yaml,b.toml")
	t.Setenv("LEARN_CORPUS_RESOLVER", "false")
	t.Setenv("LEARN_AI_DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("LEARN_AI_TOKEN_BUDGET", "50000")
	t.Setenv("LEARN_CACHE_ENABLED", "1")
	t.Setenv("LEARN_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(cfg.Locales.Required, []string{"en", "de", "fr"}) {
		t.Errorf("Locales.Required = %v, want [en de fr]", cfg.Locales.Required)
	}
	if !reflect.DeepEqual(cfg.Translate.DictionaryPaths, []string{"a.yaml", "b.toml"}) {
		t.Errorf("DictionaryPaths = %v", cfg.Translate.DictionaryPaths)
	}
	if cfg.Translate.Corpus {
		t.Error("Translate.Corpus should be false")
	}
	if !cfg.HasAIProvider() {
		t.Error("HasAIProvider() should be true with a DeepSeek key")
	}
	if cfg.AI.TokenBudget != 50000 {
		t.Errorf("AI.TokenBudget = %d, want 50000", cfg.AI.TokenBudget)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)

	content := "LEARN_SOURCE_LOCALE=de\nLEARN_AI_MODEL=gpt-4o\n"
	if err := os.WriteFile(".env", []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Cleanup(func() {
		_ = os.Unsetenv("LEARN_SOURCE_LOCALE")
		_ = os.Unsetenv("LEARN_AI_MODEL")
	})
	t.Setenv("LEARN_AI_MODEL", "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Locales.Source != "de" {
		t.Errorf("Locales.Source = %q, want de from .env", cfg.Locales.Source)
	}
	if cfg.AI.Model != "from-env" {
		t.Errorf("AI.Model = %q, want environment to win over .env", cfg.AI.Model)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Locales: LocaleConfig{Required: []string{"en", "de", "Fr"}, Source: "en"},
			Log:     LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no locales", func(c *Config) { c.Locales.Required = nil }, "at least one locale"},
		{"bad locale", func(c *Config) { c.Locales.Required = append(c.Locales.Required, "not a locale") }, "invalid locale"},
		{"duplicate locale", func(c *Config) { c.Locales.Required = append(c.Locales.Required, "de") }, "listed twice"},
		{"source not required", func(c *Config) { c.Locales.Source = "es" }, "LEARN_SOURCE_LOCALE"},
		{"negative budget", func(c *Config) { c.AI.TokenBudget = -1 }, "LEARN_AI_TOKEN_BUDGET"},
		{"cache without url", func(c *Config) { c.Cache.Enabled = true }, "LEARN_CACHE_URL"},
		{"ledger without url", func(c *Config) { c.Ledger.Enabled = true }, "LEARN_DATABASE_URL"},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "LEARN_LOG_LEVEL"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "LEARN_LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
