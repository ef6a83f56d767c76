// Package main implements an interactive terminal client for asking
// questions against the knowledge graph. Useful for poking at the graph
// without standing up the API server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/engine/qa"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/llm"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	// Keep log noise out of the conversation.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)
	_ = godotenv.Load()

	if err := run(logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx := context.Background()

	driver, err := neo4j.NewDriverWithContext(
		envOr("NEO4J_URL", "neo4j://localhost:7687"),
		neo4j.BasicAuth(envOr("NEO4J_USER", "neo4j"), envOr("NEO4J_PASS", "password"), ""))
	if err != nil {
		return fmt.Errorf("neo4j driver: %w", err)
	}
	defer driver.Close(ctx)

	store := graph.New(driver)
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("neo4j ping: %w", err)
	}

	model, err := llm.New(llm.Params{
		BaseURL:           envOr("OLLAMA_URL", "http://localhost:11434"),
		ChatModel:         envOr("CHAT_MODEL", "llama3.1"),
		ExtractModel:      envOr("EXTRACT_MODEL", "llama3.1"),
		RequestsPerSecond: 2,
	})
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	schema := graph.NewSchemaCache(store, logger)
	svc := qa.New(model, store, schema, qa.DefaultOptions(), logger, nil)

	fmt.Println("SkyGraph chat. Ask a question, or type 'schema', 'help', 'quit'.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Println("Commands: schema (show graph summary), quit (leave). Anything else is a question.")
			continue
		case "schema":
			printSchema(ctx, schema)
			continue
		}

		exchange, err := svc.Ask(ctx, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println()
		fmt.Println(exchange.Answer)
		fmt.Printf("\n(cypher: %s | %d results)\n\n", exchange.CypherQuery, exchange.ResultCount)
	}
	return scanner.Err()
}

func printSchema(ctx context.Context, cache *graph.SchemaCache) {
	s, err := cache.Get(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("Node labels:")
	for _, lc := range s.Nodes {
		fmt.Printf("  %-20s %d\n", lc.Label, lc.Count)
	}
	fmt.Println("Relationship types:")
	for _, rc := range s.Relationships {
		fmt.Printf("  %-20s %d\n", rc.Type, rc.Count)
	}
}
