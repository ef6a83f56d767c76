package ingest

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/SkyGraphAI/skygraph-mvp/engine/domain"
	"github.com/SkyGraphAI/skygraph-mvp/pkg/natsutil"
)

// StartConsumer subscribes the pipeline to the ingest subject. A document
// gets exactly one processing attempt; failures go to the dead-letter
// subject with the error attached, never back onto the main subject.
func StartConsumer(nc *nats.Conn, p *Pipeline) (*nats.Subscription, error) {
	return natsutil.Subscribe(nc, Subject, func(ctx context.Context, doc domain.SourceDocument) {
		stats, err := p.Process(ctx, doc)
		if err != nil {
			p.deps.Logger.Error("ingest failed, dead-lettering",
				"filename", doc.Filename, "error", err)
			dead := DeadLetter{Document: doc, Error: err.Error()}
			if perr := natsutil.Publish(ctx, nc, DLQSubject, dead); perr != nil {
				p.deps.Logger.Error("dead-letter publish failed",
					"filename", doc.Filename, "error", perr)
			}
			return
		}
		p.deps.Logger.Info("ingested document",
			"filename", doc.Filename,
			"nodes_merged", stats.NodesMerged,
			"edges_merged", stats.EdgesMerged)
	})
}

// DeadLetter is the payload published to the dead-letter subject.
type DeadLetter struct {
	Document domain.SourceDocument `json:"document"`
	Error    string                `json:"error"`
}
