// Package extract turns raw document text into structured graph candidates
// using a language model with schema-constrained output.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
)

// maxTextBytes caps how much document text the model sees. Meteorological
// pages front-load their subject matter, so truncation loses little.
const maxTextBytes = 4000

// Generator is the model surface extraction needs.
type Generator interface {
	GenerateStructured(ctx context.Context, prompt string, out any) error
}

// response mirrors the structured output the model is constrained to.
type response struct {
	Nodes []struct {
		ID    string `json:"id" jsonschema_description:"Canonical entity name, e.g. INSAT-3DR"`
		Label string `json:"label" jsonschema_description:"Entity type, e.g. Satellite, Sensor, Organization"`
	} `json:"nodes"`
	Edges []struct {
		SourceID string `json:"source_node_id" jsonschema_description:"id of the source entity"`
		TargetID string `json:"target_node_id" jsonschema_description:"id of the target entity"`
		Type     string `json:"type" jsonschema_description:"Relationship type, e.g. CARRIES_SENSOR"`
	} `json:"edges"`
}

// Extractor extracts entities and relationships from documents.
type Extractor struct {
	gen      Generator
	log      *slog.Logger
	failures *metrics.Counter
}

// New creates an Extractor. The registry may be nil in tests.
func New(gen Generator, log *slog.Logger, reg *metrics.Registry) *Extractor {
	e := &Extractor{gen: gen, log: log}
	if reg != nil {
		e.failures = reg.Counter("extract_failures_total", "Documents whose extraction failed or was invalid.")
	}
	return e
}

// Extract asks the model for the entities and relationships in doc. Any
// generation or validation failure yields an empty document, never an
// error: a bad extraction must not halt an ingestion run.
func (e *Extractor) Extract(ctx context.Context, doc domain.SourceDocument) graph.Document {
	text := truncate(doc.Text, maxTextBytes)

	var resp response
	if err := e.gen.GenerateStructured(ctx, buildPrompt(doc.Title, text), &resp); err != nil {
		e.fail("extraction failed", doc.Filename, err)
		return graph.Document{}
	}

	out, err := validate(resp)
	if err != nil {
		e.fail("extraction invalid", doc.Filename, err)
		return graph.Document{}
	}

	e.log.Info("extracted document",
		"filename", doc.Filename,
		"nodes", len(out.Nodes),
		"edges", len(out.Edges))
	return out
}

func (e *Extractor) fail(msg, filename string, err error) {
	e.log.Warn(msg, "filename", filename, "error", err)
	if e.failures != nil {
		e.failures.Inc()
	}
}

// truncate cuts s to at most max bytes, backing off to a rune boundary so
// a multi-byte character is never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// validate enforces the all-or-nothing contract: one malformed element
// invalidates the whole extraction.
func validate(resp response) (graph.Document, error) {
	var out graph.Document
	for i, n := range resp.Nodes {
		if strings.TrimSpace(n.ID) == "" || strings.TrimSpace(n.Label) == "" {
			return graph.Document{}, fmt.Errorf("extract: node %d missing id or label", i)
		}
		out.Nodes = append(out.Nodes, graph.Node{ID: n.ID, Label: n.Label})
	}
	for i, ed := range resp.Edges {
		if strings.TrimSpace(ed.SourceID) == "" || strings.TrimSpace(ed.TargetID) == "" || strings.TrimSpace(ed.Type) == "" {
			return graph.Document{}, fmt.Errorf("extract: edge %d missing source, target, or type", i)
		}
		out.Edges = append(out.Edges, graph.Edge{SourceID: ed.SourceID, TargetID: ed.TargetID, Type: ed.Type})
	}
	return out, nil
}

func buildPrompt(title, text string) string {
	var b strings.Builder
	b.WriteString("You are building a knowledge graph about satellites, sensors, missions, and meteorological data products.\n")
	b.WriteString("Extract the entities and relationships from the document below.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Entity labels are PascalCase nouns such as Satellite, Sensor, Organization, DataProduct, Mission.\n")
	b.WriteString("- Entity ids are the canonical names as written, e.g. INSAT-3DR, SCATTEROMETER.\n")
	b.WriteString("- Relationship types are UPPER_SNAKE_CASE verbs such as CARRIES_SENSOR, LAUNCHED_BY, OBSERVES.\n")
	b.WriteString("- Every edge must connect two entities from the nodes list.\n")
	b.WriteString("- Extract only what the document states. Do not invent entities.\n\n")
	if strings.TrimSpace(title) != "" {
		fmt.Fprintf(&b, "Title: %s\n\n", title)
	}
	fmt.Fprintf(&b, "Document:\n%s\n", text)
	return b.String()
}
