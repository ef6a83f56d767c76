package graph

import (
	"context"
	"fmt"
	"log/slog"
)

// knownEntities are well-known mission entities seeded up front so the
// graph is queryable before any crawl has been ingested and so extracted
// mentions of these names merge onto canonical nodes.
var knownEntities = map[string][]string{
	"Satellite":    {"INSAT-3DR", "INSAT-3D", "KALPANA-1", "OCEANSAT-2", "SCATSAT-1", "MEGHA-TROPIQUES"},
	"Sensor":       {"IMAGER", "SOUNDER", "OCM", "SCATTEROMETER"},
	"Organization": {"ISRO", "MOSDAC"},
}

const seedCypher = `UNWIND $ids AS id
MERGE (n:%s {id: id})
ON CREATE SET n.created_at = timestamp()`

// SeedKnownEntities idempotently merges the built-in entity catalog.
func SeedKnownEntities(ctx context.Context, store SessionOpener, log *slog.Logger) error {
	sess := store.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		for label, ids := range knownEntities {
			clean := SanitizeLabel(label)
			if clean == "" {
				continue
			}
			normalized := make([]string, 0, len(ids))
			for _, id := range ids {
				normalized = append(normalized, NormalizeID(id))
			}
			cypher := fmt.Sprintf(seedCypher, clean)
			if _, err := tx.Run(ctx, cypher, map[string]any{"ids": normalized}); err != nil {
				return nil, fmt.Errorf("seed label %s: %w", clean, err)
			}
			log.Info("seeded known entities", "label", clean, "count", len(normalized))
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: seed known entities: %w", err)
	}
	return nil
}
