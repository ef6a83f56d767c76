package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
)

// Canned fallback queries, selected by keyword when the model cannot
// produce Cypher. Each is read-only and bounded.
const (
	fallbackSatellites = `MATCH (s:Satellite) RETURN s.id AS satellite LIMIT 10;`

	fallbackSensors = `MATCH (s:Sensor) RETURN s.id AS sensor LIMIT 10;`

	fallbackRelationships = `MATCH (a)-[r]->(b) WHERE NOT a:Page AND NOT type(r) = 'MENTIONS' RETURN a.id AS source, type(r) AS relationship, b.id AS target LIMIT 10;`

	fallbackGeneric = `MATCH (n) WHERE NOT n:Page RETURN labels(n)[0] AS type, n.id AS name LIMIT 10;`
)

// GenerateQuery synthesizes a Cypher query for the question against the
// current schema. When the model fails or returns something unusable, a
// deterministic keyword fallback is chosen so Ask always has a query to run.
func (s *Service) GenerateQuery(ctx context.Context, question string, schema *graph.SchemaSummary) string {
	prompt := buildQueryPrompt(question, schema)

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		s.log.Warn("query generation failed, using fallback", "error", err)
		return fallbackQuery(question)
	}

	cypher := cleanCypher(raw)
	if cypher == "" {
		s.log.Warn("query generation returned no usable cypher, using fallback")
		return fallbackQuery(question)
	}
	return cypher
}

// cleanCypher strips markdown fences and prose wrapping from model output
// and guarantees a trailing semicolon. Returns "" when nothing remains.
func cleanCypher(raw string) string {
	c := strings.TrimSpace(raw)
	c = strings.TrimPrefix(c, "```cypher")
	c = strings.TrimPrefix(c, "```")
	c = strings.TrimSuffix(c, "```")
	c = strings.TrimSpace(c)
	if c == "" {
		return ""
	}
	if !strings.HasSuffix(c, ";") {
		c += ";"
	}
	return c
}

// fallbackQuery maps question keywords to a canned query.
func fallbackQuery(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "satellite"):
		return fallbackSatellites
	case strings.Contains(q, "sensor"), strings.Contains(q, "instrument"):
		return fallbackSensors
	case strings.Contains(q, "relationship"), strings.Contains(q, "connect"), strings.Contains(q, "carries"):
		return fallbackRelationships
	default:
		return fallbackGeneric
	}
}

func buildQueryPrompt(question string, schema *graph.SchemaSummary) string {
	var b strings.Builder
	b.WriteString("You translate questions into Cypher queries for a Neo4j knowledge graph.\n\n")
	b.WriteString("Graph schema:\n")
	b.WriteString(formatSchema(schema))
	b.WriteString("\nRules:\n")
	b.WriteString("- Return ONLY the Cypher query, no explanation and no markdown.\n")
	b.WriteString("- Read-only queries only: MATCH and RETURN, never CREATE, MERGE, DELETE, or SET.\n")
	b.WriteString("- Match entity ids case-insensitively with toUpper(n.id).\n")
	fmt.Fprintf(&b, "- Always include LIMIT %d.\n\n", maxResults)
	fmt.Fprintf(&b, "Question: %s\n", question)
	return b.String()
}

// formatSchema renders the schema summary compactly for prompting: the top
// labels and relationship types by count, plus a few sample nodes.
func formatSchema(schema *graph.SchemaSummary) string {
	if schema == nil {
		return "(schema unavailable)\n"
	}

	var b strings.Builder
	b.WriteString("Node labels (count):\n")
	for i, lc := range schema.Nodes {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "  %s (%d)\n", lc.Label, lc.Count)
	}
	b.WriteString("Relationship types (count):\n")
	for i, rc := range schema.Relationships {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "  %s (%d)\n", rc.Type, rc.Count)
	}
	if len(schema.Samples) > 0 {
		b.WriteString("Sample nodes:\n")
		for i, sn := range schema.Samples {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  (:%s {id: %q}) properties: %s\n",
				sn.Label, sn.SampleID, strings.Join(sn.Properties, ", "))
		}
	}
	return b.String()
}
