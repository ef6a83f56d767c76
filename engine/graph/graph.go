// Package graph provides Neo4j knowledge graph operations: idempotent
// merging of extracted entities and relationships, provenance tracking,
// schema summaries, and raw Cypher execution for the QA flow.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// CypherResult is the minimal interface needed from a query result.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// CypherRunner runs Cypher inside a transaction.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is the minimal interface needed from a Neo4j session.
type CypherSession interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens sessions against the store. The Neo4j driver is the
// production implementation; tests substitute fakes.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

// GraphStore provides graph operations over a session opener.
type GraphStore struct {
	opener SessionOpener
}

// New creates a GraphStore backed by a Neo4j driver.
func New(driver neo4j.DriverWithContext) *GraphStore {
	return &GraphStore{opener: &driverOpener{driver: driver}}
}

// NewWithOpener creates a GraphStore with a custom session opener.
func NewWithOpener(opener SessionOpener) *GraphStore {
	return &GraphStore{opener: opener}
}

// OpenSession exposes the underlying opener so components that manage
// their own transactions share the store's connection.
func (g *GraphStore) OpenSession(ctx context.Context) CypherSession {
	return g.opener.OpenSession(ctx)
}

// Rows runs a read query and materializes each result row into a mapping
// from column name to value.
func (g *GraphStore) Rows(ctx context.Context, cypher string) ([]map[string]any, error) {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: run query: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rec := result.Record()
		row := make(map[string]any, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = rec.Values[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Ping verifies store connectivity with a trivial query.
func (g *GraphStore) Ping(ctx context.Context) error {
	sess := g.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	if _, err := sess.Run(ctx, "RETURN 1", nil); err != nil {
		return fmt.Errorf("graph: ping: %w", err)
	}
	return nil
}

// --- Neo4j driver adapters ---

type driverOpener struct {
	driver neo4j.DriverWithContext
}

func (o *driverOpener) OpenSession(ctx context.Context) CypherSession {
	return &sessionAdapter{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	result, err := a.sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *sessionAdapter) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return a.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&txAdapter{tx: tx})
	})
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

type txAdapter struct {
	tx neo4j.ManagedTransaction
}

func (a *txAdapter) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	result, err := a.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result, nil
}
