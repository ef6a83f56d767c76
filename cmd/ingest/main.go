// Package main implements the SkyGraph ingest CLI. It reads a crawl
// metadata file and either publishes each document to NATS for the worker
// or, in direct mode, runs the extraction pipeline in-process.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/engine/extract"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/engine/ingest"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/llm"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/natsutil"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	file := flag.String("file", "crawl_metadata.json", "crawl metadata JSON file")
	seed := flag.Bool("seed", false, "seed the known entity catalog before ingesting")
	direct := flag.Bool("direct", false, "run the pipeline in-process instead of publishing to NATS")
	workers := flag.Int("workers", 4, "parallel documents in direct mode")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	_ = godotenv.Load()

	if err := run(*file, *seed, *direct, *workers, logger); err != nil {
		logger.Error("ingest failed", "err", err)
		os.Exit(1)
	}
}

func run(file string, seed, direct bool, workers int, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := loadDocuments(file)
	if err != nil {
		return err
	}
	logger.Info("loaded crawl metadata", "file", file, "documents", len(docs))

	if seed || direct {
		driver, err := neo4j.NewDriverWithContext(
			envOr("NEO4J_URL", "neo4j://localhost:7687"),
			neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		store := graph.New(driver)

		if seed {
			if err := graph.SeedKnownEntities(ctx, store, logger); err != nil {
				return err
			}
		}
		if direct {
			return runDirect(ctx, store, docs, workers, logger)
		}
		return nil
	}

	return publishAll(ctx, docs, logger)
}

func loadDocuments(file string) ([]domain.SourceDocument, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var docs []domain.SourceDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return docs, nil
}

func publishAll(ctx context.Context, docs []domain.SourceDocument, logger *slog.Logger) error {
	nc, err := nats.Connect(envOr("NATS_URL", nats.DefaultURL))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Drain()

	published := 0
	for _, doc := range docs {
		if err := domain.ValidateDocument(doc); err != nil {
			logger.Warn("skipping document", "filename", doc.Filename, "err", err)
			continue
		}
		if err := natsutil.Publish(ctx, nc, ingest.Subject, doc); err != nil {
			return fmt.Errorf("publish %s: %w", doc.Filename, err)
		}
		published++
	}
	logger.Info("published documents", "subject", ingest.Subject, "count", published)
	return nil
}

func runDirect(ctx context.Context, store *graph.GraphStore, docs []domain.SourceDocument, workers int, logger *slog.Logger) error {
	model, err := llm.New(llm.Params{
		BaseURL:           envOr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:         envOr("CHAT_MODEL", "llama3.1"),
		ExtractModel:      envOr("EXTRACT_MODEL", "llama3.1"),
		RequestsPerSecond: 1,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	pipeline := ingest.New(ingest.Deps{
		Extractor: extract.New(model, logger, nil),
		Merger:    graph.NewMerger(store, logger, nil),
		Logger:    logger,
	})

	results := pipeline.ProcessAll(ctx, docs, workers)
	failed := 0
	for i, r := range results {
		if _, err := r.Unwrap(); err != nil {
			failed++
			logger.Warn("document failed", "filename", docs[i].Filename, "err", err)
		}
	}
	logger.Info("direct ingest finished", "documents", len(docs), "failed", failed)
	if failed == len(docs) && len(docs) > 0 {
		return fmt.Errorf("all %d documents failed", failed)
	}
	return nil
}
