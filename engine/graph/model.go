package graph

import "time"

// Provenance nodes and edges are structural: they link source pages to the
// entities they mention and are excluded from schema statistics.
const (
	PageLabel    = "Page"
	MentionsType = "MENTIONS"
)

// Node is one extracted entity candidate: a raw identifier and a raw
// type label, both still unnormalized.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge is one extracted relationship candidate between two entities.
type Edge struct {
	SourceID string `json:"source_node_id"`
	TargetID string `json:"target_node_id"`
	Type     string `json:"type"`
}

// Document is the structured extraction output for one source document.
// It is transient: validated, merged, then discarded.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Empty reports whether the document carries no graph data.
func (d Document) Empty() bool {
	return len(d.Nodes) == 0 && len(d.Edges) == 0
}

// Provenance identifies the source page a document was extracted from.
type Provenance struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// MergeStats reports the outcome of one document merge.
type MergeStats struct {
	NodesMerged   int `json:"nodes_merged"`
	NodesRejected int `json:"nodes_rejected"`
	EdgesMerged   int `json:"edges_merged"`
	EdgesRejected int `json:"edges_rejected"`
	// EdgesDropped counts edges whose endpoints were absent from the store.
	EdgesDropped int `json:"edges_dropped"`
}

// LabelCount is one (node label, node count) pair.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// RelTypeCount is one (relationship type, relationship count) pair.
type RelTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// SampleNode is one sampled node: its label, property keys, and id.
type SampleNode struct {
	Label      string   `json:"label"`
	Properties []string `json:"properties"`
	SampleID   string   `json:"sample_id"`
}

// SchemaSummary is a point-in-time aggregate description of the graph,
// excluding Page nodes and MENTIONS edges.
type SchemaSummary struct {
	Nodes         []LabelCount   `json:"nodes"`
	Relationships []RelTypeCount `json:"relationships"`
	Samples       []SampleNode   `json:"samples"`
	FetchedAt     time.Time      `json:"-"`
}
