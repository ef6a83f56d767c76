package graph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SkyGraphAI/skygraph-mvp/pkg/metrics"
)

// mergeNodeCypher upserts one entity node and links it to its source page.
// The label is sanitized before interpolation; everything else is a parameter.
const mergeNodeCypher = `MERGE (n:%s {id: $id})
ON CREATE SET n.created_at = timestamp()
WITH n
MATCH (p:Page {filename: $filename})
MERGE (p)-[:MENTIONS]->(n)`

// mergeEdgeCypher upserts one relationship between two existing entities.
// MATCH (not MERGE) on the endpoints: an edge never creates its nodes, so
// a dangling reference merges nothing and the count comes back zero.
const mergeEdgeCypher = `MATCH (source {id: $source_id})
MATCH (target {id: $target_id})
MERGE (source)-[r:%s]->(target)
RETURN count(r) AS merged`

const upsertPageCypher = `MERGE (p:Page {filename: $filename})
SET p.title = $title`

// Merger writes extracted documents into the graph, one transaction per
// document, nodes strictly before edges.
type Merger struct {
	store  SessionOpener
	log    *slog.Logger
	nodes  *metrics.Counter
	edges  *metrics.Counter
	reject *metrics.Counter
}

// NewMerger creates a Merger. The registry may be nil in tests.
func NewMerger(store SessionOpener, log *slog.Logger, reg *metrics.Registry) *Merger {
	m := &Merger{store: store, log: log}
	if reg != nil {
		m.nodes = reg.Counter("graph_nodes_merged_total", "Entity nodes merged into the graph.")
		m.edges = reg.Counter("graph_edges_merged_total", "Relationships merged into the graph.")
		m.reject = reg.Counter("graph_elements_rejected_total", "Nodes and edges rejected during merge.")
	}
	return m
}

// MergeDocument merges one extracted document into the graph under the
// given provenance. All writes for the document happen in a single managed
// transaction so a failed document leaves no partial state. Invalid
// elements are skipped and counted, never fatal.
func (m *Merger) MergeDocument(ctx context.Context, doc Document, prov Provenance) (MergeStats, error) {
	var stats MergeStats

	sess := m.store.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		if _, err := tx.Run(ctx, upsertPageCypher, map[string]any{
			"filename": prov.Filename,
			"title":    prov.Title,
		}); err != nil {
			return nil, fmt.Errorf("upsert page: %w", err)
		}

		for _, n := range doc.Nodes {
			id := NormalizeID(n.ID)
			label := SanitizeLabel(n.Label)
			if id == "" || label == "" {
				stats.NodesRejected++
				m.log.Warn("rejecting node", "id", n.ID, "label", n.Label, "filename", prov.Filename)
				continue
			}
			cypher := fmt.Sprintf(mergeNodeCypher, label)
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":       id,
				"filename": prov.Filename,
			}); err != nil {
				return nil, fmt.Errorf("merge node %q: %w", id, err)
			}
			stats.NodesMerged++
		}

		for _, e := range doc.Edges {
			sourceID := NormalizeID(e.SourceID)
			targetID := NormalizeID(e.TargetID)
			relType := SanitizeRelType(e.Type)
			if sourceID == "" || targetID == "" || relType == "" {
				stats.EdgesRejected++
				m.log.Warn("rejecting edge",
					"source", e.SourceID, "target", e.TargetID, "type", e.Type,
					"filename", prov.Filename)
				continue
			}
			cypher := fmt.Sprintf(mergeEdgeCypher, relType)
			result, err := tx.Run(ctx, cypher, map[string]any{
				"source_id": sourceID,
				"target_id": targetID,
			})
			if err != nil {
				return nil, fmt.Errorf("merge edge %s-[%s]->%s: %w", sourceID, relType, targetID, err)
			}
			merged := false
			if result.Next(ctx) {
				rec := result.Record()
				if len(rec.Values) > 0 {
					if count, ok := rec.Values[0].(int64); ok && count > 0 {
						merged = true
					}
				}
			}
			if merged {
				stats.EdgesMerged++
			} else {
				stats.EdgesDropped++
				m.log.Warn("dropping edge with missing endpoint",
					"source", sourceID, "target", targetID, "type", relType,
					"filename", prov.Filename)
			}
		}
		return nil, nil
	})
	if err != nil {
		return stats, fmt.Errorf("graph: merge document %q: %w", prov.Filename, err)
	}

	if m.nodes != nil {
		m.nodes.Add(int64(stats.NodesMerged))
		m.edges.Add(int64(stats.EdgesMerged))
		m.reject.Add(int64(stats.NodesRejected + stats.EdgesRejected))
	}
	m.log.Info("merged document",
		"filename", prov.Filename,
		"nodes_merged", stats.NodesMerged,
		"edges_merged", stats.EdgesMerged,
		"nodes_rejected", stats.NodesRejected,
		"edges_rejected", stats.EdgesRejected,
		"edges_dropped", stats.EdgesDropped)
	return stats, nil
}
