package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xaenox/chat-profiler/internal/classifier"
	"github.com/xaenox/chat-profiler/internal/metrics"
	"github.com/xaenox/chat-profiler/internal/nlp"
	"github.com/xaenox/chat-profiler/internal/processor"
	"github.com/xaenox/chat-profiler/internal/storage"
	"github.com/xaenox/chat-profiler/internal/taxonomy"
	"github.com/xaenox/chat-profiler/pkg/config"
)

// app holds everything a command needs, built from one config file.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     storage.Storage
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	processor *processor.Processor
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	logger.Info("Taxonomy loaded",
		zap.Int("brands", len(tax.Brands)),
		zap.Int("categories", len(tax.Categories)))

	annotator, err := newAnnotator(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	clf := classifier.NewConversationClassifier(
		nlp.NewExtractor(annotator),
		classifier.NewResolver(tax),
		classifier.NewBrandDetector(tax),
		logger,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		registry:  registry,
		metrics:   m,
		processor: processor.New(store, store, clf, m, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close storage", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level: %w", err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func newAnnotator(cfg *config.Config, logger *zap.Logger) (nlp.Annotator, error) {
	switch cfg.Annotator.Backend {
	case config.AnnotatorOpenAI:
		logger.Info("Using OpenAI annotator", zap.String("model", cfg.OpenAI.Model))
		return nlp.NewOpenAIAnnotator(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			logger,
		), nil
	case config.AnnotatorProse:
		logger.Info("Using prose annotator")
		annotator, err := nlp.NewProseAnnotator()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize prose annotator: %w", err)
		}
		return annotator, nil
	default:
		return nil, fmt.Errorf("unknown annotator backend %q", cfg.Annotator.Backend)
	}
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case config.BackendPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Database.Host))
		return storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
	case config.BackendSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLite.Path))
		return storage.NewSQLiteStorage(cfg.SQLite.Path, logger)
	case config.BackendMongo:
		logger.Info("Using MongoDB storage", zap.String("database", cfg.Mongo.Database))
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return storage.NewMongoStorage(connectCtx, storage.MongoConfig{
			URI:                    cfg.Mongo.URI,
			Database:               cfg.Mongo.Database,
			ConversationCollection: cfg.Mongo.ConversationCollection,
			ClientCollection:       cfg.Mongo.ClientCollection,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// serveMetrics exposes the registry on addr until ctx ends. It is a no-op
// when addr is empty.
func (a *app) serveMetrics(ctx context.Context) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
