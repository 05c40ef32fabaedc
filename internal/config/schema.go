package config

import "time"

// Config holds lectern configuration.
// Stored at: {config_path}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Sources      SourcesCfg                `mapstructure:"sources" yaml:"sources"`
	Cache        CacheCfg                  `mapstructure:"cache" yaml:"cache"`
	Jobs         JobsCfg                   `mapstructure:"jobs" yaml:"jobs"`
	Generation   GenerationCfg             `mapstructure:"generation" yaml:"generation"`
	Retrieval    RetrievalCfg              `mapstructure:"retrieval" yaml:"retrieval"`
	Validation   ValidationCfg             `mapstructure:"validation" yaml:"validation"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai", "mock"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
}

// SourcesCfg configures the source-fetching layer.
type SourcesCfg struct {
	// Feeds lists remote text endpoints queried per request.
	Feeds []FeedCfg `mapstructure:"feeds" yaml:"feeds"`
	// StaticEnabled keeps the built-in subject excerpts on.
	StaticEnabled bool `mapstructure:"static_enabled" yaml:"static_enabled"`
}

// FeedCfg configures one remote text feed.
type FeedCfg struct {
	Name     string `mapstructure:"name" yaml:"name"`
	URL      string `mapstructure:"url" yaml:"url"`
	Kind     string `mapstructure:"kind" yaml:"kind"` // "textbook", "reference", "notes"
	Attempts uint   `mapstructure:"attempts" yaml:"attempts"`
}

// CacheCfg configures the compiled-chapter cache.
type CacheCfg struct {
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxEntries    int           `mapstructure:"max_entries" yaml:"max_entries"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// JobsCfg configures job retention.
type JobsCfg struct {
	Retention time.Duration `mapstructure:"retention" yaml:"retention"`
}

// GenerationCfg configures the generation gate.
type GenerationCfg struct {
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// RetrievalCfg configures chunking and retrieval.
type RetrievalCfg struct {
	TopK                int     `mapstructure:"top_k" yaml:"top_k"`
	ExpandedK           int     `mapstructure:"expanded_k" yaml:"expanded_k"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	MinChunkSize        int     `mapstructure:"min_chunk_size" yaml:"min_chunk_size"`
	MaxChunkSize        int     `mapstructure:"max_chunk_size" yaml:"max_chunk_size"`
	OverlapWords        int     `mapstructure:"overlap_words" yaml:"overlap_words"`
}

// ValidationCfg bounds accepted requests.
type ValidationCfg struct {
	MinClassLevel int `mapstructure:"min_class_level" yaml:"min_class_level"`
	MaxClassLevel int `mapstructure:"max_class_level" yaml:"max_class_level"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				Model:     "anthropic/claude-sonnet-4",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 10.0,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 5.0,
				Enabled:   false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
		},
		Sources: SourcesCfg{
			StaticEnabled: true,
		},
		Cache: CacheCfg{
			TTL:           24 * time.Hour,
			MaxEntries:    256,
			SweepInterval: time.Hour,
		},
		Jobs: JobsCfg{
			Retention: time.Hour,
		},
		Generation: GenerationCfg{
			MaxAttempts: 3,
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Retrieval: RetrievalCfg{
			TopK:                6,
			ExpandedK:           12,
			ConfidenceThreshold: 0.75,
			MinChunkSize:        200,
			MaxChunkSize:        800,
			OverlapWords:        20,
		},
		Validation: ValidationCfg{
			MinClassLevel: 9,
			MaxClassLevel: 12,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8575,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
