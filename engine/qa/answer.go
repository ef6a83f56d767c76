package qa

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const noResultsAnswer = "I couldn't find any relevant information in the knowledge graph to answer your question."

// Synthesize turns query results into a natural-language answer. An empty
// result set gets the fixed no-results message; a model failure falls back
// to a deterministic bullet list so the caller always receives an answer.
func (s *Service) Synthesize(ctx context.Context, question string, rows []map[string]any) string {
	if len(rows) == 0 {
		return noResultsAnswer
	}

	prompt := buildAnswerPrompt(question, rows, s.opts.ListRowLimit)
	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(answer) == "" {
		if err != nil {
			s.log.Warn("answer synthesis failed, using fallback", "error", err)
		}
		return fallbackAnswer(rows, s.opts.FallbackRowLimit)
	}
	return strings.TrimSpace(answer)
}

func buildAnswerPrompt(question string, rows []map[string]any, limit int) string {
	var b strings.Builder
	b.WriteString("Answer the question using ONLY the query results below.\n")
	b.WriteString("Be concise and factual. Do not mention the query or the database.\n\n")
	fmt.Fprintf(&b, "Question: %s\n\nResults:\n", question)
	for i, row := range rows {
		if i >= limit {
			fmt.Fprintf(&b, "... and %d more rows\n", len(rows)-limit)
			break
		}
		if line := formatRow(row); line != "" {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	return b.String()
}

// fallbackAnswer renders a plain listing of the first rows.
func fallbackAnswer(rows []map[string]any, limit int) string {
	var b strings.Builder
	b.WriteString("Here's what I found:\n")
	for i, row := range rows {
		if i >= limit {
			fmt.Fprintf(&b, "... and %d more results.", len(rows)-limit)
			break
		}
		if line := formatRow(row); line != "" {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRow renders one result row as "key: value" pairs in key order so
// output is stable across runs. Absent values are omitted; a row with no
// present values renders as "".
func formatRow(row map[string]any) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if row[k] == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, row[k]))
	}
	return strings.Join(parts, ", ")
}
