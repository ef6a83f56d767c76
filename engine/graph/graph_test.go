package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func TestRows(t *testing.T) {
	rec1 := &neo4j.Record{
		Keys:   []string{"satellite", "sensor"},
		Values: []any{"INSAT-3DR", "IMAGER"},
	}
	rec2 := &neo4j.Record{
		Keys:   []string{"satellite", "sensor"},
		Values: []any{"OCEANSAT-2", "OCM"},
	}
	sess := &trackingSession{results: map[int]*mockResult{
		0: newMockResult(rec1, rec2),
	}}
	gs := NewWithOpener(&trackingOpener{session: sess})

	rows, err := gs.Rows(context.Background(), "MATCH (s:Satellite)-[:CARRIES_SENSOR]->(i:Sensor) RETURN s.id AS satellite, i.id AS sensor")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["satellite"] != "INSAT-3DR" || rows[0]["sensor"] != "IMAGER" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[1]["satellite"] != "OCEANSAT-2" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestRows_Error(t *testing.T) {
	sess := &trackingSession{runErr: errors.New("syntax error")}
	gs := NewWithOpener(&trackingOpener{session: sess})

	if _, err := gs.Rows(context.Background(), "MATCH bogus"); err == nil {
		t.Fatal("expected error")
	}
}

func TestPing(t *testing.T) {
	sess := &trackingSession{}
	gs := NewWithOpener(&trackingOpener{session: sess})

	if err := gs.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if len(sess.queries) != 1 || sess.queries[0] != "RETURN 1" {
		t.Errorf("unexpected queries: %v", sess.queries)
	}

	sess.runErr = errors.New("down")
	if err := gs.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
