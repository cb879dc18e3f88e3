// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NodePosition is one laid-out graph node.
type NodePosition struct {
	// ID is the node's full identifier.
	ID string `json:"id" yaml:"id"`

	// Label is the trailing path segment of ID.
	Label string `json:"label" yaml:"label"`

	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`

	// Attributes carries literal-valued triples folded into the node,
	// keyed by predicate label (e.g. "word_count").
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// LayoutEdge is one undirected edge between two laid-out nodes.
type LayoutEdge struct {
	SourceID string `json:"source_id" yaml:"source_id"`
	TargetID string `json:"target_id" yaml:"target_id"`

	// Label is the predicate label, or several joined with ", " when
	// parallel triples connect the same pair.
	Label string `json:"label" yaml:"label"`
}

// Layout is the visualization payload: positioned nodes and labeled edges.
// It is computed per render and never reused across graphs.
type Layout struct {
	Nodes []NodePosition `json:"nodes" yaml:"nodes"`
	Edges []LayoutEdge   `json:"edges" yaml:"edges"`
}
