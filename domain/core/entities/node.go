package entities

// ContentNode is a unit of content in the graph.
// Nodes are immutable within a snapshot; Body may be stripped for
// lighter responses.
type ContentNode struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	NodeType string `json:"type"`
	Body     string `json:"body,omitempty"`
}

// WithoutBody returns a copy of the node with its body stripped
func (n ContentNode) WithoutBody() ContentNode {
	stripped := n
	stripped.Body = ""
	return stripped
}

// ContentRelationship is a directed edge between two content nodes
type ContentRelationship struct {
	ID       string                 `json:"id"`
	SourceID string                 `json:"sourceNodeId"`
	TargetID string                 `json:"targetNodeId"`
	Type     RelationshipType       `json:"relationshipType"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
