// Package main implements the SkyGraph API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SkyGraphAI/skygraph-mvp/pkg/llm"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/mid"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	OllamaURL    string
	ChatModel    string
	ExtractModel string
	LLMRate      float64
	LLMBurst     int
	CORSOrigin   string
}

func loadConfig() Config {
	_ = godotenv.Load()
	return Config{
		Port:         envOr("PORT", "8080"),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:    envOr("CHAT_MODEL", "llama3.1"),
		ExtractModel: envOr("EXTRACT_MODEL", "llama3.1"),
		LLMRate:      envFloatOr("LLM_RATE", 2),
		LLMBurst:     envIntOr("LLM_BURST", 4),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	model, err := llm.New(llm.Params{
		BaseURL:           cfg.OllamaURL,
		ChatModel:         cfg.ChatModel,
		ExtractModel:      cfg.ExtractModel,
		RequestsPerSecond: cfg.LLMRate,
		Burst:             cfg.LLMBurst,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	srv := newServer(cfg, model, logger, reg)

	// The API stays up even when Neo4j is down at startup; graph endpoints
	// serve 503 until a connect succeeds.
	if err := srv.connect(ctx); err != nil {
		logger.Warn("starting without graph backend", "err", err)
	}
	defer srv.closeBackend(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.HandleFunc("POST /api/ask", srv.handleAsk)
	mux.HandleFunc("GET /api/schema", srv.handleSchema)
	mux.HandleFunc("POST /api/connect", srv.handleConnect)
	mux.Handle("GET /metrics", reg.Handler())

	handler := mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("skygraph-api"),
	)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutCtx)
}
