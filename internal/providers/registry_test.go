package providers

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestRegistryFromConfig(t *testing.T) {
	r := NewRegistryFromConfig(RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"primary":  {Type: "openrouter", Model: "test-model", APIKey: "key", RateLimit: 5, Enabled: true},
			"disabled": {Type: "openrouter", Model: "test-model", APIKey: "key", Enabled: false},
			"keyless":  {Type: "openrouter", Model: "test-model", Enabled: true},
			"local":    {Type: "mock", Enabled: true},
		},
		Default: "primary",
	})

	if !r.HasLLM("primary") {
		t.Error("enabled provider with key should be registered")
	}
	if r.HasLLM("disabled") {
		t.Error("disabled provider should not be registered")
	}
	if r.HasLLM("keyless") {
		t.Error("provider without API key should not be registered")
	}
	if !r.HasLLM("local") {
		t.Error("mock provider should register without an API key")
	}

	def, err := r.DefaultLLM()
	if err != nil {
		t.Fatalf("DefaultLLM: %v", err)
	}
	if def.Name() != OpenRouterName {
		t.Errorf("default should be the primary openrouter client, got %q", def.Name())
	}
}

func TestRegistryReload(t *testing.T) {
	cfg := RegistryConfig{
		LLMProviders: map[string]LLMProviderConfig{
			"primary": {Type: "openrouter", Model: "model-a", APIKey: "key", RateLimit: 5, Enabled: true},
		},
		Default: "primary",
	}
	r := NewRegistryFromConfig(cfg)

	before, _ := r.GetLLM("primary")

	// Unchanged config keeps the same client instance.
	r.Reload(cfg)
	after, _ := r.GetLLM("primary")
	if before != after {
		t.Error("unchanged provider should not be recreated on reload")
	}

	// Changed model recreates the client.
	cfg.LLMProviders["primary"] = LLMProviderConfig{
		Type: "openrouter", Model: "model-b", APIKey: "key", RateLimit: 5, Enabled: true,
	}
	r.Reload(cfg)
	changed, _ := r.GetLLM("primary")
	if changed == before {
		t.Error("changed provider should be recreated on reload")
	}

	// Removed provider is unregistered.
	delete(cfg.LLMProviders, "primary")
	r.Reload(cfg)
	if r.HasLLM("primary") {
		t.Error("removed provider should be unregistered on reload")
	}
}

func TestMockClientResponseFunc(t *testing.T) {
	c := NewMockClient()
	c.ResponseFunc = func(req *ChatRequest) (string, json.RawMessage) {
		return "scripted: " + req.Messages[len(req.Messages)-1].Content, nil
	}

	res, err := c.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Content != "scripted: hello" {
		t.Errorf("got %q", res.Content)
	}
	if c.RequestCount() != 1 {
		t.Errorf("request count = %d, want 1", c.RequestCount())
	}
}

func TestRateLimiterWait(t *testing.T) {
	limiter := NewRateLimiter(100)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := limiter.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}

	status := limiter.Status()
	if status.TotalConsumed != 5 {
		t.Errorf("consumed = %d, want 5", status.TotalConsumed)
	}
}

func TestRateLimiterSetRate(t *testing.T) {
	limiter := NewRateLimiter(100)

	limiter.SetRate(2)
	if got := limiter.Rate(); got != 2 {
		t.Errorf("Rate = %v, want 2", got)
	}
	// Tokens are clamped to the new capacity.
	if st := limiter.Status(); st.TokensAvailable > 2 {
		t.Errorf("tokens = %d, want at most 2 after rate decrease", st.TokensAvailable)
	}

	// Non-positive rates fall back to the 1 rps floor.
	limiter.SetRate(0)
	if got := limiter.Rate(); got != 1.0 {
		t.Errorf("Rate = %v, want floor of 1.0", got)
	}
}

func TestDefaultRPS(t *testing.T) {
	r := NewRegistry()
	if got := r.DefaultRPS(); got != 0 {
		t.Errorf("DefaultRPS = %v, want 0 with no providers", got)
	}

	mock := NewMockClient()
	mock.RPS = 5
	r.RegisterLLM("mock", mock)
	if got := r.DefaultRPS(); got != 5 {
		t.Errorf("DefaultRPS = %v, want the default provider's 5", got)
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	// One token per hour so the second Wait must block.
	limiter := NewRateLimiter(1.0 / 3600.0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first Wait should succeed: %v", err)
	}
	if err := limiter.Wait(ctx); err == nil {
		t.Error("second Wait should fail when context expires")
	}
}
