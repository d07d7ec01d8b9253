// Recalld is a retrieval-augmented "second brain" daemon.
//
// It ingests plain-text documents into an in-memory corpus, embeds them
// through an OpenAI-compatible embedding endpoint, and answers questions
// grounded on the most similar chunks. When the generation model is
// unavailable the daemon still answers with the raw retrieved context.
//
// Usage:
//
//	# Start with defaults
//	recalld
//
//	# Configure via file or environment
//	recalld -config /etc/recalld/config.yaml
//	RECALLD_SERVER_PORT=8080 RECALLD_EMBEDDING_API_KEY=sk-... recalld
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fernwehlabs/recalld/internal/config"
	"github.com/fernwehlabs/recalld/internal/corpus"
	"github.com/fernwehlabs/recalld/internal/embeddings"
	"github.com/fernwehlabs/recalld/internal/generation"
	recallhttp "github.com/fernwehlabs/recalld/internal/http"
	"github.com/fernwehlabs/recalld/internal/logging"
	"github.com/fernwehlabs/recalld/internal/recall"
	"github.com/fernwehlabs/recalld/internal/synthesizer"
	"github.com/fernwehlabs/recalld/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/recalld/config.yaml)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("recalld %s (%s)\n", version, gitCommit)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// run initializes dependencies, starts the HTTP server, and blocks until
// ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting recalld",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model))

	// Telemetry must be up before services create their instruments.
	tel, err := telemetry.Setup("recalld", version)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		_ = tel.Shutdown(context.Background())
	}()

	embedder, err := embeddings.NewService(cfg.Embedding, embeddings.NewMetrics(logger.Underlying()))
	if err != nil {
		return fmt.Errorf("initializing embedding service: %w", err)
	}
	defer func() {
		_ = embedder.Close()
	}()

	generator, err := generation.NewService(cfg.Generation)
	if err != nil {
		return fmt.Errorf("initializing generation service: %w", err)
	}

	store := corpus.NewStore()
	synth := synthesizer.New(generator, logger.Named("synthesizer"))
	service := recall.NewService(store, embedder, synth, logger.Named("recall"), recall.Options{
		TopK:             cfg.Retrieval.TopK,
		ChunkTokenBudget: cfg.Retrieval.ChunkTokenBudget,
	})

	srv, err := recallhttp.NewServer(service, store, logger.Named("http"), &recallhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}
	srv.Echo().GET("/metrics", echo.WrapHandler(tel.Handler()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	logger.Info(context.Background(), "shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	var level zapcore.Level
	if err := level.Set(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return logging.NewLogger(&logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
	})
}
