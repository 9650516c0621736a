package models

// Graph node kinds produced for the downstream graph store. The core only
// produces these records; upserting them is the caller's responsibility.
const (
	GraphNodeTable      = "table"
	GraphNodeColumn     = "column"
	GraphEdgeForeignKey = "foreign_key"
	GraphEdgeHasColumn  = "has_column"
)

// GraphNode is one upsertable node record.
type GraphNode struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphEdge is one upsertable edge record between two node IDs.
type GraphEdge struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Kind       string         `json:"kind"`
	Properties map[string]any `json:"properties,omitempty"`
}

// GraphRecords bundles the nodes and edges of one run.
type GraphRecords struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
