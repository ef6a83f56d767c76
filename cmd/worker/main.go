// Package main implements the SkyGraph ingestion worker. It consumes
// source documents from NATS, extracts graph candidates with the language
// model, and merges them into Neo4j. Failures are dead-lettered.
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

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SkyGraphAI/skygraph-mvp/engine/extract"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/engine/ingest"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/llm"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
)

// Config holds all environment-based configuration.
type Config struct {
	NATSURL      string
	Neo4jURL     string
	Neo4jUser    string
	Neo4jPass    string
	OllamaURL    string
	ChatModel    string
	ExtractModel string
	LLMRate      float64
	MetricsPort  string
}

func loadConfig() Config {
	_ = godotenv.Load()
	return Config{
		NATSURL:      envOr("NATS_URL", nats.DefaultURL),
		Neo4jURL:     envOr("NEO4J_URL", "neo4j://localhost:7687"),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:    envOr("CHAT_MODEL", "llama3.1"),
		ExtractModel: envOr("EXTRACT_MODEL", "llama3.1"),
		LLMRate:      envFloatOr("LLM_RATE", 1),
		MetricsPort:  envOr("METRICS_PORT", "9090"),
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

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(loadConfig(), logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	store := graph.New(driver)
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("neo4j ping: %w", err)
	}

	model, err := llm.New(llm.Params{
		BaseURL:           cfg.OllamaURL,
		ChatModel:         cfg.ChatModel,
		ExtractModel:      cfg.ExtractModel,
		RequestsPerSecond: cfg.LLMRate,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	pipeline := ingest.New(ingest.Deps{
		Extractor: extract.New(model, logger, reg),
		Merger:    graph.NewMerger(store, logger, reg),
		Logger:    logger,
	})

	sub, err := ingest.StartConsumer(nc, pipeline)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", ingest.Subject, err)
	}
	defer sub.Unsubscribe()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", reg.Handler())
		logger.Info("metrics server starting", "port", cfg.MetricsPort)
		_ = http.ListenAndServe(":"+cfg.MetricsPort, mux)
	}()

	logger.Info("worker consuming", "subject", ingest.Subject, "nats", cfg.NATSURL)
	<-ctx.Done()
	logger.Info("shutdown signal received")
	return nil
}
