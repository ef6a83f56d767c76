package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// schemaTTL bounds how stale a cached schema summary may get before the
// next Get triggers a refresh.
const schemaTTL = 5 * time.Minute

// Provenance structure is excluded from all three schema queries so the
// summary describes only domain entities.
const (
	schemaNodesCypher = `MATCH (n) WHERE NOT n:Page
RETURN DISTINCT labels(n)[0] AS label, count(n) AS count
ORDER BY count DESC`

	schemaRelsCypher = `MATCH ()-[r]->() WHERE NOT type(r) = 'MENTIONS'
RETURN DISTINCT type(r) AS type, count(r) AS count
ORDER BY count DESC`

	schemaSamplesCypher = `MATCH (n) WHERE NOT n:Page
RETURN labels(n)[0] AS label, keys(n) AS properties, n.id AS sample_id
LIMIT 20`
)

// SchemaQuerier is the store surface the cache needs.
type SchemaQuerier interface {
	Rows(ctx context.Context, cypher string) ([]map[string]any, error)
}

// SchemaCache serves schema summaries with a freshness window. Concurrent
// callers never stack refresh queries: one caller refreshes while the rest
// are served the previous snapshot.
type SchemaCache struct {
	store SchemaQuerier
	log   *slog.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[SchemaSummary]

	now func() time.Time
}

// NewSchemaCache creates a SchemaCache over the store.
func NewSchemaCache(store SchemaQuerier, log *slog.Logger) *SchemaCache {
	return &SchemaCache{store: store, log: log, now: time.Now}
}

// Get returns a schema summary, refreshing from the store when the cached
// snapshot is older than the freshness window. On refresh failure a stale
// snapshot is still served; the error is returned only when no snapshot
// exists at all.
func (c *SchemaCache) Get(ctx context.Context) (*SchemaSummary, error) {
	if s := c.snapshot.Load(); s != nil && c.now().Sub(s.FetchedAt) < schemaTTL {
		return s, nil
	}

	if !c.mu.TryLock() {
		// Another caller is refreshing. Serve whatever we have rather
		// than queueing a duplicate round of schema queries.
		if s := c.snapshot.Load(); s != nil {
			return s, nil
		}
		c.mu.Lock()
	}
	defer c.mu.Unlock()

	if s := c.snapshot.Load(); s != nil && c.now().Sub(s.FetchedAt) < schemaTTL {
		return s, nil
	}

	fresh, err := c.fetch(ctx)
	if err != nil {
		if s := c.snapshot.Load(); s != nil {
			c.log.Warn("schema refresh failed, serving stale snapshot", "error", err)
			return s, nil
		}
		return nil, err
	}
	c.snapshot.Store(fresh)
	return fresh, nil
}

// Invalidate discards the cached snapshot so the next Get refetches.
func (c *SchemaCache) Invalidate() {
	c.snapshot.Store(nil)
}

func (c *SchemaCache) fetch(ctx context.Context) (*SchemaSummary, error) {
	nodeRows, err := c.store.Rows(ctx, schemaNodesCypher)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch schema labels: %w", err)
	}
	relRows, err := c.store.Rows(ctx, schemaRelsCypher)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch schema relationships: %w", err)
	}
	sampleRows, err := c.store.Rows(ctx, schemaSamplesCypher)
	if err != nil {
		return nil, fmt.Errorf("graph: fetch schema samples: %w", err)
	}

	s := &SchemaSummary{FetchedAt: c.now()}
	for _, row := range nodeRows {
		s.Nodes = append(s.Nodes, LabelCount{
			Label: asString(row["label"]),
			Count: asInt64(row["count"]),
		})
	}
	for _, row := range relRows {
		s.Relationships = append(s.Relationships, RelTypeCount{
			Type:  asString(row["type"]),
			Count: asInt64(row["count"]),
		})
	}
	for _, row := range sampleRows {
		sample := SampleNode{
			Label:    asString(row["label"]),
			SampleID: asString(row["sample_id"]),
		}
		if props, ok := row["properties"].([]any); ok {
			for _, p := range props {
				sample.Properties = append(sample.Properties, asString(p))
			}
		}
		s.Samples = append(s.Samples, sample)
	}
	return s, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	n, _ := v.(int64)
	return n
}
