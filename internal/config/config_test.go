package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) != 2 {
		t.Errorf("expected 2 LLM providers, got %d", len(cfg.LLMProviders))
	}
	or, ok := cfg.GetLLMProvider("openrouter")
	if !ok {
		t.Fatal("openrouter provider missing from defaults")
	}
	if !or.Enabled {
		t.Error("openrouter should be enabled by default")
	}
	if or.APIKey != "${OPENROUTER_API_KEY}" {
		t.Errorf("openrouter api key = %q", or.APIKey)
	}
	if cfg.Defaults.LLMProvider != "openrouter" {
		t.Errorf("default llm provider = %q", cfg.Defaults.LLMProvider)
	}
	if !cfg.Sources.StaticEnabled {
		t.Error("static source should be enabled by default")
	}
	if cfg.Validation.MinClassLevel != 9 || cfg.Validation.MaxClassLevel != 12 {
		t.Errorf("class level bounds = %d-%d, want 9-12",
			cfg.Validation.MinClassLevel, cfg.Validation.MaxClassLevel)
	}
	if cfg.Generation.MaxAttempts != 3 {
		t.Errorf("generation attempts = %d, want 3", cfg.Generation.MaxAttempts)
	}
	if cfg.Server.Port != 8575 {
		t.Errorf("server port = %d, want 8575", cfg.Server.Port)
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := DefaultConfig()
	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled provider, got %d", len(enabled))
	}
	if _, ok := enabled["openrouter"]; !ok {
		t.Error("openrouter should be the enabled provider")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("LECTERN_TEST_KEY", "sk-test-123")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain string untouched", "sk-literal", "sk-literal"},
		{"env var resolved", "${LECTERN_TEST_KEY}", "sk-test-123"},
		{"embedded env var", "prefix-${LECTERN_TEST_KEY}-suffix", "prefix-sk-test-123-suffix"},
		{"unset env var resolves empty", "${LECTERN_UNSET_VAR_XYZ}", ""},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToProviderRegistryConfig(t *testing.T) {
	t.Setenv("TEST_OR_KEY", "resolved-key")

	cfg := DefaultConfig()
	p := cfg.LLMProviders["openrouter"]
	p.APIKey = "${TEST_OR_KEY}"
	cfg.LLMProviders["openrouter"] = p

	reg := cfg.ToProviderRegistryConfig()
	if reg.Default != "openrouter" {
		t.Errorf("default = %q, want openrouter", reg.Default)
	}
	or, ok := reg.LLMProviders["openrouter"]
	if !ok {
		t.Fatal("openrouter missing from registry config")
	}
	if or.APIKey != "resolved-key" {
		t.Errorf("api key = %q, want resolved-key", or.APIKey)
	}
	if or.Type != "openrouter" || !or.Enabled {
		t.Errorf("provider config not carried over: %+v", or)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Lectern configuration") {
		t.Error("written config should start with the comment header")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config should be valid yaml: %v", err)
	}
	if cfg.Defaults.LLMProvider != "openrouter" {
		t.Errorf("round-tripped default provider = %q", cfg.Defaults.LLMProvider)
	}
	if cfg.Server.Port != 8575 {
		t.Errorf("round-tripped server port = %d", cfg.Server.Port)
	}
	if len(cfg.LLMProviders) != 2 {
		t.Errorf("round-tripped providers = %d, want 2", len(cfg.LLMProviders))
	}
}
