// Package qa answers natural-language questions against the knowledge
// graph: schema-aware Cypher synthesis, query execution, and answer
// synthesis, each stage with a deterministic fallback.
package qa

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
)

// maxResults bounds rows returned to the caller regardless of what the
// generated query asks for.
const maxResults = 20

// TextGenerator is the model surface the service needs.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QueryRunner is the store surface the service needs.
type QueryRunner interface {
	Rows(ctx context.Context, cypher string) ([]map[string]any, error)
}

// SchemaProvider supplies the current schema summary.
type SchemaProvider interface {
	Get(ctx context.Context) (*graph.SchemaSummary, error)
}

// Options tunes the answer flow.
type Options struct {
	// ListRowLimit caps rows shown to the model during answer synthesis.
	ListRowLimit int
	// FallbackRowLimit caps rows in the deterministic fallback answer.
	FallbackRowLimit int
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{ListRowLimit: 15, FallbackRowLimit: 10}
}

// Exchange is one complete question/answer round trip.
type Exchange struct {
	Question    string           `json:"question"`
	CypherQuery string           `json:"cypher_query"`
	Results     []map[string]any `json:"results"`
	Answer      string           `json:"answer"`
	ResultCount int              `json:"result_count"`
}

// Service answers questions against the graph.
type Service struct {
	llm    TextGenerator
	store  QueryRunner
	schema SchemaProvider
	opts   Options
	log    *slog.Logger

	questions *metrics.Counter
	fallbacks *metrics.Counter
	latency   *metrics.Histogram
}

// New creates a Service. The registry may be nil in tests.
func New(llm TextGenerator, store QueryRunner, schema SchemaProvider, opts Options, log *slog.Logger, reg *metrics.Registry) *Service {
	s := &Service{llm: llm, store: store, schema: schema, opts: opts, log: log}
	if reg != nil {
		s.questions = reg.Counter("qa_questions_total", "Questions answered.")
		s.fallbacks = reg.Counter("qa_empty_results_total", "Questions whose query returned no rows.")
		s.latency = reg.Histogram("qa_ask_duration_seconds", "End-to-end ask latency.", nil)
	}
	return s
}

// Ask runs the full flow: validate, fetch schema, synthesize Cypher,
// execute, synthesize an answer. Every stage degrades rather than fails;
// the only error is an unanswerable (blank) question.
func (s *Service) Ask(ctx context.Context, question string) (*Exchange, error) {
	if err := domain.ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("qa: %w", err)
	}

	start := time.Now()
	if s.questions != nil {
		s.questions.Inc()
	}

	schema, err := s.schema.Get(ctx)
	if err != nil {
		// Query synthesis still works schema-blind; the fallback queries
		// assume nothing about the graph.
		s.log.Warn("schema unavailable", "error", err)
		schema = nil
	}

	cypher := s.GenerateQuery(ctx, question, schema)

	rows, err := s.store.Rows(ctx, cypher)
	if err != nil {
		s.log.Warn("query execution failed", "cypher", cypher, "error", err)
		rows = nil
	}
	if len(rows) > maxResults {
		rows = rows[:maxResults]
	}
	if len(rows) == 0 && s.fallbacks != nil {
		s.fallbacks.Inc()
	}

	answer := s.Synthesize(ctx, question, rows)
	if rows == nil {
		rows = []map[string]any{}
	}

	if s.latency != nil {
		s.latency.Since(start)
	}
	s.log.Info("answered question",
		"question", question,
		"result_count", len(rows),
		"elapsed", time.Since(start))

	return &Exchange{
		Question:    question,
		CypherQuery: cypher,
		Results:     rows,
		Answer:      answer,
		ResultCount: len(rows),
	}, nil
}
