// Package server assembles the lectern HTTP server: providers,
// syllabus matcher, source fetchers, generation gate, cache, and the
// job orchestrator, exposed through the endpoint registry.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jackzampolin/lectern/internal/api"
	"github.com/jackzampolin/lectern/internal/cache"
	"github.com/jackzampolin/lectern/internal/config"
	"github.com/jackzampolin/lectern/internal/generation"
	"github.com/jackzampolin/lectern/internal/jobs"
	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/retrieval"
	"github.com/jackzampolin/lectern/internal/server/endpoints"
	"github.com/jackzampolin/lectern/internal/sources"
	"github.com/jackzampolin/lectern/internal/svcctx"
	"github.com/jackzampolin/lectern/internal/syllabus"
	"github.com/jackzampolin/lectern/internal/types"
)

// Server is the main lectern HTTP server.
type Server struct {
	httpServer   *http.Server
	configMgr    *config.Manager
	registry     *providers.Registry
	matcher      *syllabus.Matcher
	chapterCache *cache.ChapterCache
	orchestrator *jobs.Orchestrator
	limiter      *providers.RateLimiter
	logger       *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8575)
	Port int
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8575
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	appCfg := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		appCfg = cfg.ConfigManager.Get()
	}

	// Create provider registry with hot reload
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)
	registry.Reload(appCfg.ToProviderRegistryConfig())

	// External calls pace at the default provider's advertised rate;
	// a config reload refreshes the rate alongside the registry.
	limiter := providers.NewRateLimiter(registry.DefaultRPS())
	if cfg.ConfigManager != nil {
		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			limiter.SetRate(registry.DefaultRPS())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	matcher, err := syllabus.NewMatcher(syllabus.MatcherConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, fmt.Errorf("failed to load syllabus catalog: %w", err)
	}

	chapterCache := cache.New(cache.Config{
		TTL:           appCfg.Cache.TTL,
		MaxEntries:    appCfg.Cache.MaxEntries,
		SweepInterval: appCfg.Cache.SweepInterval,
		Logger:        cfg.Logger,
	})

	// The gate resolves the default LLM per call so config reloads take
	// effect without rebuilding the pipeline.
	gate, err := generation.NewGate(generation.Config{
		Client:      &registryClient{registry: registry},
		Limiter:     limiter,
		MaxAttempts: appCfg.Generation.MaxAttempts,
		Temperature: appCfg.Generation.Temperature,
		MaxTokens:   appCfg.Generation.MaxTokens,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create generation gate: %w", err)
	}

	orchestrator, err := jobs.NewOrchestrator(jobs.Config{
		Matcher:   matcher,
		Fetcher:   buildFetcher(appCfg.Sources, cfg.Logger),
		Retriever: retrieval.New(retrieval.Config{
			TopK:                appCfg.Retrieval.TopK,
			ExpandedK:           appCfg.Retrieval.ExpandedK,
			ConfidenceThreshold: appCfg.Retrieval.ConfidenceThreshold,
			MinChunkSize:        appCfg.Retrieval.MinChunkSize,
			MaxChunkSize:        appCfg.Retrieval.MaxChunkSize,
			OverlapWords:        appCfg.Retrieval.OverlapWords,
			Logger:              cfg.Logger,
		}),
		Gate:  gate,
		Cache: chapterCache,
		Validator: jobs.NewRequestValidator(jobs.ValidatorConfig{
			MinClassLevel: appCfg.Validation.MinClassLevel,
			MaxClassLevel: appCfg.Validation.MaxClassLevel,
		}),
		Retention: appCfg.Jobs.Retention,
		Logger:    cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	s := &Server{
		configMgr:    cfg.ConfigManager,
		registry:     registry,
		matcher:      matcher,
		chapterCache: chapterCache,
		orchestrator: orchestrator,
		limiter:      limiter,
		logger:       cfg.Logger,
	}

	s.services = &svcctx.Services{
		Orchestrator: orchestrator,
		Matcher:      matcher,
		Cache:        chapterCache,
		Registry:     registry,
		Logger:       cfg.Logger,
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server and its background sweeps.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	// Background sweeps stop with the server.
	sweepCtx, cancelSweeps := context.WithCancel(context.Background())
	defer cancelSweeps()
	go s.chapterCache.Run(sweepCtx)
	go s.orchestrator.Run(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Orchestrator returns the job orchestrator.
func (s *Server) Orchestrator() *jobs.Orchestrator {
	return s.orchestrator
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures a usable LLM provider exists.
// Returns 503 Service Unavailable until the registry has a default.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.registry.DefaultLLM(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"no LLM provider configured"}`))
			return
		}
		next(w, r)
	}
}

// buildFetcher assembles the source fetchers named in config.
func buildFetcher(cfg config.SourcesCfg, logger *slog.Logger) sources.Fetcher {
	var fetchers []sources.Fetcher
	for _, feed := range cfg.Feeds {
		fetchers = append(fetchers, sources.NewHTTPFeed(sources.HTTPFeedConfig{
			Name:     feed.Name,
			BaseURL:  feed.URL,
			Kind:     types.SourceKind(feed.Kind),
			Attempts: feed.Attempts,
		}))
	}
	if cfg.StaticEnabled {
		fetchers = append(fetchers, sources.NewStaticFeed())
	}
	return sources.NewMultiFetcher(logger, fetchers...)
}

// registryClient adapts the provider registry to the LLM client
// interface, resolving the default provider on every call.
type registryClient struct {
	registry *providers.Registry
}

// Verify interface
var _ providers.LLMClient = (*registryClient)(nil)

func (c *registryClient) Name() string { return "registry-default" }

func (c *registryClient) Chat(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResult, error) {
	client, err := c.registry.DefaultLLM()
	if err != nil {
		return nil, fmt.Errorf("no LLM provider available: %w", err)
	}
	return client.Chat(ctx, req)
}
