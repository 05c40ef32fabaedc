package providers

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds references to LLM clients. It supports config-driven
// instantiation, hot-reload, and provides thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	defaultLLM string
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers an LLM client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.defaultLLM == "" {
		r.defaultLLM = name
	}
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// UnregisterLLM removes an LLM client by name.
func (r *Registry) UnregisterLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.llmClients, name)
	if r.logger != nil {
		r.logger.Info("unregistered LLM client", "name", name)
	}
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// DefaultLLM returns the configured default client.
func (r *Registry) DefaultLLM() (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultLLM == "" {
		return nil, fmt.Errorf("no LLM clients registered")
	}
	client, ok := r.llmClients[r.defaultLLM]
	if !ok {
		return nil, fmt.Errorf("default LLM client not found: %s", r.defaultLLM)
	}
	return client, nil
}

// DefaultRPS returns the advertised request rate of the default
// client, or 0 when no default is configured or it advertises none.
func (r *Registry) DefaultRPS() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[r.defaultLLM]
	if !ok {
		return 0
	}
	if rl, ok := client.(RateLimited); ok {
		return rl.RequestsPerSecond()
	}
	return 0
}

// SetDefaultLLM marks a registered client as the default.
func (r *Registry) SetDefaultLLM(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.llmClients[name]; !ok {
		return fmt.Errorf("LLM client not found: %s", name)
	}
	r.defaultLLM = name
	return nil
}

// ListLLM returns all registered LLM client names.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// HasLLM checks if an LLM client is registered.
func (r *Registry) HasLLM(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.llmClients[name]
	return ok
}

// RegistryConfig defines the providers to instantiate from config.
type RegistryConfig struct {
	// LLMProviders maps provider names to their config
	LLMProviders map[string]LLMProviderConfig

	// Default names the provider used when callers do not ask for a
	// specific one. Falls back to the first enabled provider.
	Default string
}

// LLMProviderConfig matches config.LLMProviderCfg with resolved API key.
type LLMProviderConfig struct {
	Type      string  // "openrouter", "openai", "mock"
	Model     string  // Model name
	APIKey    string  // Resolved API key
	RateLimit float64 // Requests per second
	Enabled   bool
}

// NewRegistryFromConfig creates a registry with providers based on configuration.
// Only enabled providers with valid API keys will be registered.
func NewRegistryFromConfig(cfg RegistryConfig) *Registry {
	r := NewRegistry()
	r.applyConfig(cfg)
	return r
}

// Reload updates the registry based on new configuration.
// Providers that are no longer configured will be unregistered.
// Providers with changed settings will be re-registered.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)

	for name, provCfg := range cfg.LLMProviders {
		if !enabled(provCfg) {
			continue
		}
		want[name] = true

		existing, hasExisting := r.llmClients[name]
		if !hasExisting || needsLLMUpdate(existing, provCfg) {
			client := createLLMClient(provCfg)
			if client != nil {
				r.llmClients[name] = client
				if r.logger != nil {
					if hasExisting {
						r.logger.Info("updated LLM client", "name", name, "type", provCfg.Type)
					} else {
						r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
					}
				}
			}
		}
	}

	for name := range r.llmClients {
		if !want[name] {
			delete(r.llmClients, name)
			if r.logger != nil {
				r.logger.Info("unregistered LLM client", "name", name)
			}
		}
	}

	r.resolveDefault(cfg.Default)
}

// applyConfig applies configuration without locking (used during init).
func (r *Registry) applyConfig(cfg RegistryConfig) {
	for name, provCfg := range cfg.LLMProviders {
		if !enabled(provCfg) {
			continue
		}
		client := createLLMClient(provCfg)
		if client != nil {
			r.llmClients[name] = client
		}
	}
	r.resolveDefault(cfg.Default)
}

// resolveDefault picks the default client. Must be called with lock held.
func (r *Registry) resolveDefault(preferred string) {
	if _, ok := r.llmClients[preferred]; ok {
		r.defaultLLM = preferred
		return
	}
	if _, ok := r.llmClients[r.defaultLLM]; ok {
		return
	}
	r.defaultLLM = ""
	for name := range r.llmClients {
		if r.defaultLLM == "" || name < r.defaultLLM {
			r.defaultLLM = name
		}
	}
}

// enabled reports whether the provider config should produce a client.
// The mock type needs no API key.
func enabled(cfg LLMProviderConfig) bool {
	if !cfg.Enabled {
		return false
	}
	return cfg.Type == "mock" || cfg.APIKey != ""
}

// createLLMClient creates an LLM client based on provider type.
func createLLMClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	case "mock":
		return NewMockClient()
	default:
		return nil
	}
}

// needsLLMUpdate checks if an LLM client needs to be recreated.
func needsLLMUpdate(client LLMClient, cfg LLMProviderConfig) bool {
	switch c := client.(type) {
	case *OpenRouterClient:
		return c.apiKey != cfg.APIKey ||
			c.defaultModel != cfg.Model ||
			c.rps != cfg.RateLimit
	case *OpenAIClient:
		return c.defaultModel != cfg.Model || c.rps != cfg.RateLimit
	case *MockClient:
		return cfg.Type != "mock"
	default:
		return true
	}
}
