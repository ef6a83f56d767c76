package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeQuerier answers the three schema queries and counts calls.
type fakeQuerier struct {
	calls int
	err   error
}

func (f *fakeQuerier) Rows(_ context.Context, cypher string) ([]map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	switch {
	case strings.Contains(cypher, "labels(n)[0] AS label, count(n)"):
		return []map[string]any{{"label": "Satellite", "count": int64(6)}}, nil
	case strings.Contains(cypher, "type(r) AS type"):
		return []map[string]any{{"type": "CARRIES_SENSOR", "count": int64(4)}}, nil
	default:
		return []map[string]any{
			{"label": "Satellite", "properties": []any{"id", "created_at"}, "sample_id": "INSAT-3DR"},
		}, nil
	}
}

func newTestCache(q *fakeQuerier, now *time.Time) *SchemaCache {
	c := NewSchemaCache(q, discard())
	c.now = func() time.Time { return *now }
	return c
}

func TestSchemaCache_FetchAndCache(t *testing.T) {
	q := &fakeQuerier{}
	now := time.Now()
	c := newTestCache(q, &now)

	s, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(s.Nodes) != 1 || s.Nodes[0].Label != "Satellite" || s.Nodes[0].Count != 6 {
		t.Fatalf("unexpected nodes: %+v", s.Nodes)
	}
	if len(s.Relationships) != 1 || s.Relationships[0].Type != "CARRIES_SENSOR" {
		t.Fatalf("unexpected relationships: %+v", s.Relationships)
	}
	if len(s.Samples) != 1 || s.Samples[0].SampleID != "INSAT-3DR" || len(s.Samples[0].Properties) != 2 {
		t.Fatalf("unexpected samples: %+v", s.Samples)
	}
	if q.calls != 3 {
		t.Fatalf("expected 3 queries, got %d", q.calls)
	}

	// A second Get within the freshness window hits the cache.
	now = now.Add(time.Minute)
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if q.calls != 3 {
		t.Fatalf("cached Get should not query, got %d calls", q.calls)
	}
}

func TestSchemaCache_RefreshAfterTTL(t *testing.T) {
	q := &fakeQuerier{}
	now := time.Now()
	c := newTestCache(q, &now)

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	now = now.Add(schemaTTL + time.Second)
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if q.calls != 6 {
		t.Fatalf("expected a refetch after the window, got %d calls", q.calls)
	}
}

func TestSchemaCache_ServesStaleOnError(t *testing.T) {
	q := &fakeQuerier{}
	now := time.Now()
	c := newTestCache(q, &now)

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	q.err = errors.New("neo4j down")
	now = now.Add(schemaTTL + time.Second)
	s, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("expected stale snapshot, got error: %v", err)
	}
	if len(s.Nodes) != 1 {
		t.Fatalf("stale snapshot lost data: %+v", s)
	}
}

func TestSchemaCache_ErrorWithNoSnapshot(t *testing.T) {
	q := &fakeQuerier{err: errors.New("neo4j down")}
	now := time.Now()
	c := newTestCache(q, &now)

	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected error when no snapshot exists")
	}
}

func TestSchemaCache_Invalidate(t *testing.T) {
	q := &fakeQuerier{}
	now := time.Now()
	c := newTestCache(q, &now)

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	c.Invalidate()
	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if q.calls != 6 {
		t.Fatalf("Invalidate should force a refetch, got %d calls", q.calls)
	}
}
