// Package server wires the persona chat service together and exposes it over
// HTTP: the chat endpoint, the persona catalog, memory inspection and
// clearing, health probes and metrics.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/lewisedginton/persona_chatbot/internal/config"
	"github.com/lewisedginton/persona_chatbot/internal/fact_extractor"
	"github.com/lewisedginton/persona_chatbot/internal/memory_store"
	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/internal/models/anthropic"
	"github.com/lewisedginton/persona_chatbot/internal/models/openai"
	"github.com/lewisedginton/persona_chatbot/internal/personas"
	"github.com/lewisedginton/persona_chatbot/internal/prompt_assembler"
	"github.com/lewisedginton/persona_chatbot/internal/storage_manager"
	"github.com/lewisedginton/persona_chatbot/internal/summary_compressor"
	"github.com/lewisedginton/persona_chatbot/pkg/health"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
	"github.com/lewisedginton/persona_chatbot/pkg/metrics"
)

// Storage namespaces.
const (
	memoryNamespace  = "memory"
	personaNamespace = "personas"
	healthNamespace  = "health"
)

// Server encapsulates all service components and lifecycle management.
type Server struct {
	cfg *appconfig.AppConfig
	log logger.Logger

	storageManager *storage_manager.StorageManager
	memoryStore    *memory_store.Store
	personaManager *personas.Manager
	assembler      *prompt_assembler.Assembler
	model          models.CompletionService

	metrics       *metrics.Metrics
	healthChecker *health.HealthChecker

	cancel context.CancelFunc
}

// New creates a server instance with all components initialized.
func New(ctx context.Context, cfg *appconfig.AppConfig, log logger.Logger) (*Server, error) {
	s := &Server{
		cfg: cfg,
		log: log,
	}

	var err error
	s.storageManager, err = s.createStorageManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	s.memoryStore = memory_store.New(ctx, memory_store.Config{
		FileProvider: s.storageManager.GetProvider(memoryNamespace),
		Logger:       log,
	})

	s.personaManager = personas.New(personas.Config{
		FileProvider: s.storageManager.GetProvider(personaNamespace),
		Logger:       log,
	})

	s.model, err = s.createModel()
	if err != nil {
		return nil, fmt.Errorf("failed to create completion service: %w", err)
	}

	m := metrics.NewMetrics(true, true, log)
	s.metrics = &m

	s.assembler = prompt_assembler.New(prompt_assembler.Config{
		Model:           s.model,
		Store:           s.memoryStore,
		Extractor:       fact_extractor.New(fact_extractor.Config{ContentMaxChars: cfg.Memory.ContentMaxChars, Logger: log}),
		Compressor:      summary_compressor.New(summary_compressor.Config{MaxKeyFacts: cfg.Memory.MaxKeyFacts, Logger: log}),
		RelevanceLimit:  cfg.Memory.RelevanceLimit,
		SummaryInterval: cfg.Memory.SummaryInterval,
		MaxTokens:       cfg.LLM.MaxTokens,
		Temperature:     cfg.LLM.Temperature,
		Metrics:         s.metrics,
		Logger:          log,
	})

	s.healthChecker = s.createHealthChecker()

	return s, nil
}

// Run starts the HTTP listener and blocks until shutdown.
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	defer cancel()

	s.setupGracefulShutdown()

	if s.cfg.Monitoring.MetricsEnabled {
		s.metrics.Listen(s.cfg.Monitoring.MetricsPort)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening",
			logger.IntField("port", s.cfg.Port),
			logger.StringField("model", s.model.Name()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second) //nolint:contextcheck // New context needed for shutdown
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // Using new context for graceful shutdown
		s.log.Error("HTTP server shutdown error", logger.ErrorField(err))
	}
	if s.cfg.Monitoring.MetricsEnabled {
		if err := s.metrics.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // Using new context for graceful shutdown
			s.log.Error("Metrics server shutdown error", logger.ErrorField(err))
		}
	}

	s.log.Info("Server stopped")
	return nil
}

// Stop triggers a graceful shutdown.
func (s *Server) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// createStorageManager creates a storage manager based on configuration.
func (s *Server) createStorageManager(ctx context.Context) (*storage_manager.StorageManager, error) {
	cfg := &s.cfg.Storage

	switch cfg.Backend {
	case appconfig.StorageBackendLocal:
		s.log.Info("Using local file-based storage", logger.StringField("directory", cfg.LocalDir))

		// 0750 needed for directory traversal
		if err := os.MkdirAll(cfg.LocalDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}

		return storage_manager.New(storage_manager.Config{
			Backend: storage_manager.BackendLocal,
			LocalConfig: &storage_manager.LocalConfig{
				BaseDir: cfg.LocalDir,
			},
		})

	case appconfig.StorageBackendS3:
		s.log.Info("Using S3-based storage",
			logger.StringField("bucket", cfg.S3Bucket),
			logger.StringField("prefix", cfg.S3Prefix),
			logger.StringField("region", cfg.S3Region))

		configOptions := []func(*awsconfig.LoadOptions) error{}
		if cfg.S3Profile != "" {
			configOptions = append(configOptions, awsconfig.WithSharedConfigProfile(cfg.S3Profile))
		}
		if cfg.S3Region != "" {
			configOptions = append(configOptions, awsconfig.WithRegion(cfg.S3Region))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		return storage_manager.New(storage_manager.Config{
			Backend: storage_manager.BackendS3,
			S3Config: &storage_manager.S3Config{
				Bucket: cfg.S3Bucket,
				Prefix: cfg.S3Prefix,
				Client: s3.NewFromConfig(awsCfg),
			},
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (must be 'local' or 's3')", cfg.Backend)
	}
}

// createModel creates a completion service based on the configured provider.
func (s *Server) createModel() (models.CompletionService, error) {
	switch s.cfg.LLM.Provider {
	case appconfig.ProviderClaude:
		s.log.Info("Initializing Claude model",
			logger.StringField("model", s.cfg.Anthropic.Model))
		return anthropic.New(anthropic.Config{
			APIKey:     s.cfg.Anthropic.APIKey,
			Model:      s.cfg.Anthropic.Model,
			BaseURL:    s.cfg.Anthropic.APIBaseURL,
			MaxRetries: s.cfg.Anthropic.MaxRetries,
			Logger:     s.log,
		})

	case appconfig.ProviderOpenAI:
		s.log.Info("Initializing OpenAI model",
			logger.StringField("model", s.cfg.OpenAI.Model))
		return openai.New(openai.Config{
			APIKey:     s.cfg.OpenAI.APIKey,
			Model:      s.cfg.OpenAI.Model,
			BaseURL:    s.cfg.OpenAI.APIBaseURL,
			MaxRetries: s.cfg.OpenAI.MaxRetries,
			Logger:     s.log,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.cfg.LLM.Provider)
	}
}

// createHealthChecker wires liveness and readiness probes. Readiness
// exercises the storage backend with a small write.
func (s *Server) createHealthChecker() *health.HealthChecker {
	checker := health.New(
		health.WithLogger(s.log),
		health.WithTimeout(s.cfg.Health.Timeout),
		health.WithFailureThreshold(s.cfg.Health.FailureThreshold),
	)

	checker.AddLivenessCheck(health.NewCheckFunc("process", func(ctx context.Context) error {
		return nil
	}))

	probeProvider := s.storageManager.GetProvider(healthNamespace)
	checker.AddReadinessCheck(health.NewCheckFunc("storage", func(ctx context.Context) error {
		return probeProvider.Write(ctx, "probe", []byte(fmt.Sprintf("%d", time.Now().UnixMilli())))
	}))

	return checker
}

// setupGracefulShutdown installs signal handling for graceful shutdown.
func (s *Server) setupGracefulShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		s.log.Info("Received shutdown signal", logger.StringField("signal", sig.String()))

		if s.cancel != nil {
			s.cancel()
		}

		// Give in-flight requests time to drain, then force exit
		time.AfterFunc(30*time.Second, func() {
			s.log.Warn("Force exiting due to timeout")
			os.Exit(1)
		})
	}()
}
