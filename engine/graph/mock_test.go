package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// mockResult replays a fixed set of records.
type mockResult struct {
	records []*neo4j.Record
	idx     int
}

func newMockResult(records ...*neo4j.Record) *mockResult {
	return &mockResult{records: records}
}

func (r *mockResult) Next(_ context.Context) bool {
	if r.idx >= len(r.records) {
		return false
	}
	r.idx++
	return true
}

func (r *mockResult) Record() *neo4j.Record {
	return r.records[r.idx-1]
}

func countRecord(n int64) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"merged"}, Values: []any{n}}
}

// trackingSession records every query run through it, whether directly or
// inside ExecuteWrite. Edge-count queries are answered from results by
// call order; everything else gets an empty result.
type trackingSession struct {
	queries []string
	params  []map[string]any
	results map[int]*mockResult
	runErr  error
}

func (s *trackingSession) Run(_ context.Context, cypher string, params map[string]any) (CypherResult, error) {
	if s.runErr != nil {
		return nil, s.runErr
	}
	call := len(s.queries)
	s.queries = append(s.queries, cypher)
	s.params = append(s.params, params)
	if r, ok := s.results[call]; ok {
		return r, nil
	}
	return newMockResult(), nil
}

func (s *trackingSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return work(s)
}

func (s *trackingSession) Close(_ context.Context) error { return nil }

type trackingOpener struct {
	session *trackingSession
}

func (o *trackingOpener) OpenSession(_ context.Context) CypherSession {
	return o.session
}
