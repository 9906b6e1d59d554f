package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexlsh/internal/config"
	dbRedis "github.com/kailas-cloud/lexlsh/internal/db/redis"
	"github.com/kailas-cloud/lexlsh/internal/domain"
	logpkg "github.com/kailas-cloud/lexlsh/internal/logger"
	"github.com/kailas-cloud/lexlsh/internal/lsh"
	"github.com/kailas-cloud/lexlsh/internal/metrics"
	documentrepo "github.com/kailas-cloud/lexlsh/internal/repository/document"
	searchrepo "github.com/kailas-cloud/lexlsh/internal/repository/search"
	chiTransport "github.com/kailas-cloud/lexlsh/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/lexlsh/internal/transport/openai"
	batchuc "github.com/kailas-cloud/lexlsh/internal/usecase/batch"
	documentuc "github.com/kailas-cloud/lexlsh/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/lexlsh/internal/usecase/embedding"
	encodinguc "github.com/kailas-cloud/lexlsh/internal/usecase/encoding"
	healthuc "github.com/kailas-cloud/lexlsh/internal/usecase/health"
	searchuc "github.com/kailas-cloud/lexlsh/internal/usecase/search"
	"github.com/kailas-cloud/lexlsh/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexlsh API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("db_standalone", cfg.Database.Standalone),
	)

	storeCfg, err := dbRedis.ConfigForDriver(cfg.Database.Driver, cfg.Database.Addrs, cfg.Database.Password)
	if err != nil {
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	storeCfg.Standalone = cfg.Database.Standalone

	store, err := dbRedis.NewStore(storeCfg)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database", zap.Bool("text_search", store.SupportsTextSearch(ctx)))

	// Register metrics explicitly (no init())
	metrics.RegisterEncodingMetrics()
	metrics.RegisterEmbeddingMetrics()

	enc, err := lsh.NewEncoder(cfg.EncoderOptions())
	if err != nil {
		logger.Fatal("Invalid encoding options", zap.Error(err))
	}
	opts := enc.Options()
	logger.Info("Encoder ready",
		zap.Int("decimals", opts.Decimals),
		zap.Int("shingle_min", opts.ShingleMin),
		zap.Int("shingle_max", opts.ShingleMax),
		zap.Int("hash_count", opts.HashCount),
		zap.Int("bucket_count", opts.BucketCount),
		zap.Int("hash_set_size", opts.HashSetSize),
		zap.Bool("rotation", opts.RotationEnabled()),
		zap.String("digest", opts.Digest()),
	)

	keys := domain.NewKeyspace(cfg.Storage.KeyPrefix)
	docRepo := documentrepo.New(store, keys).WithEncoding(opts)
	searchRepo := searchrepo.New(store, keys).WithMaxTagCandidates(cfg.Search.MaxTagCandidates)

	if err := docRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create fingerprint index", zap.Error(err))
	}

	// Pass nil interface (not typed nil pointer!) when text input is disabled.
	var embedder encodinguc.Embedder
	var embChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		emb := buildEmbedder(cfg.Embedding, logger)
		embedder = emb
		embChecker = emb
		logger.Info("Embedder created",
			zap.String("base_url", cfg.Embedding.BaseURL),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Info("Embedding provider not configured, text input disabled")
	}

	// Create use case services
	encSvc := encodinguc.New(enc, embedder, cfg.Search.Workers)
	docSvc := documentuc.New(docRepo, encSvc)
	searchSvc := searchuc.New(searchRepo, docSvc, encSvc, searchuc.Limits{
		DefaultLimit:        cfg.Search.DefaultLimit,
		MaxLimit:            cfg.Search.MaxLimit,
		CandidateMultiplier: cfg.Search.CandidateMultiplier,
	})
	batchSvc := batchuc.New(docRepo, docSvc, encSvc).
		WithMaxBatchSize(cfg.Search.MaxBatchSize).
		WithWorkers(cfg.Search.Workers)
	healthSvc := healthuc.New(store, store, keys.IndexName(), embChecker)

	// Create chi server
	server := chiTransport.NewServer(encSvc, docSvc, batchSvc, searchSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Instrumented.
func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) *embeddinguc.InstrumentedEmbedder {
	const provider = "openai"

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   provider,
		Logger:     logger,
	})

	return embeddinguc.NewInstrumentedEmbedder(
		base, provider, cfg.Model, logger,
		embeddinguc.WithDimensions(cfg.Dimensions),
	)
}
