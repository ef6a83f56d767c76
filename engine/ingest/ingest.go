// Package ingest runs the document ingestion pipeline: validate the
// source document, extract graph candidates, merge them into the store.
package ingest

import (
	"context"
	"log/slog"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/engine/graph"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/fn"
)

// NATS subjects for the ingestion flow.
const (
	Subject    = "skygraph.ingest"
	DLQSubject = "skygraph.ingest.dlq"
)

// Extractor produces graph candidates from a document.
type Extractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) graph.Document
}

// Merger writes graph candidates into the store.
type Merger interface {
	MergeDocument(ctx context.Context, doc graph.Document, prov graph.Provenance) (graph.MergeStats, error)
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Extractor Extractor
	Merger    Merger
	Logger    *slog.Logger
}

// Pipeline ingests source documents.
type Pipeline struct {
	deps  Deps
	stage fn.Stage[domain.SourceDocument, graph.MergeStats]
}

// New creates a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	p := &Pipeline{deps: deps}

	validate := fn.TracedStage("ingest.validate",
		func(_ context.Context, doc domain.SourceDocument) fn.Result[domain.SourceDocument] {
			if err := domain.ValidateDocument(doc); err != nil {
				return fn.Err[domain.SourceDocument](err)
			}
			return fn.Ok(doc)
		})

	extract := fn.TracedStage("ingest.extract",
		func(ctx context.Context, doc domain.SourceDocument) fn.Result[extracted] {
			return fn.Ok(extracted{
				doc:  deps.Extractor.Extract(ctx, doc),
				prov: graph.Provenance{Filename: doc.Filename, Title: doc.Title},
			})
		})

	merge := fn.TracedStage("ingest.merge",
		func(ctx context.Context, e extracted) fn.Result[graph.MergeStats] {
			return fn.FromPair(deps.Merger.MergeDocument(ctx, e.doc, e.prov))
		})

	p.stage = fn.Then(fn.Then(validate, extract), merge)
	return p
}

type extracted struct {
	doc  graph.Document
	prov graph.Provenance
}

// Process ingests one document end to end.
func (p *Pipeline) Process(ctx context.Context, doc domain.SourceDocument) (graph.MergeStats, error) {
	return p.stage(ctx, doc).Unwrap()
}

// ProcessAll ingests documents with bounded concurrency, returning one
// result per input document in input order.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []domain.SourceDocument, workers int) []fn.Result[graph.MergeStats] {
	return fn.ParMapResult(docs, workers, func(doc domain.SourceDocument) fn.Result[graph.MergeStats] {
		return p.stage(ctx, doc)
	})
}
