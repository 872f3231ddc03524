package aggregates

import (
	"lamad-backend/domain/core/entities"
)

// ContentGraph is an immutable, fully materialized snapshot of the
// content graph used for the duration of one query. The adjacency,
// reverse-adjacency and edge indices are derived once at construction
// and never mutated, so a snapshot may be shared freely across
// concurrent requests.
type ContentGraph struct {
	nodes         map[string]entities.ContentNode
	relationships map[string]entities.ContentRelationship

	// Derived indices over relationships.
	adjacency        map[string]map[string]struct{}
	reverseAdjacency map[string]map[string]struct{}
	edgeIndex        map[edgeKey]entities.ContentRelationship

	totalDegree int
}

// edgeKey identifies one directed edge. A struct key keeps ids with
// arbitrary content from colliding, since ids are caller-owned strings.
type edgeKey struct {
	source string
	target string
}

// NewContentGraph builds a snapshot from raw nodes and relationships.
// Relationship endpoints missing from nodes are tolerated; consumers
// simply skip them during traversal.
func NewContentGraph(nodes []entities.ContentNode, relationships []entities.ContentRelationship) *ContentGraph {
	g := &ContentGraph{
		nodes:            make(map[string]entities.ContentNode, len(nodes)),
		relationships:    make(map[string]entities.ContentRelationship, len(relationships)),
		adjacency:        make(map[string]map[string]struct{}),
		reverseAdjacency: make(map[string]map[string]struct{}),
		edgeIndex:        make(map[edgeKey]entities.ContentRelationship, len(relationships)),
	}

	for _, node := range nodes {
		g.nodes[node.ID] = node
	}

	for _, rel := range relationships {
		g.relationships[rel.ID] = rel

		if g.adjacency[rel.SourceID] == nil {
			g.adjacency[rel.SourceID] = make(map[string]struct{})
		}
		g.adjacency[rel.SourceID][rel.TargetID] = struct{}{}

		if g.reverseAdjacency[rel.TargetID] == nil {
			g.reverseAdjacency[rel.TargetID] = make(map[string]struct{})
		}
		g.reverseAdjacency[rel.TargetID][rel.SourceID] = struct{}{}

		g.edgeIndex[edgeKey{source: rel.SourceID, target: rel.TargetID}] = rel
	}

	for _, targets := range g.adjacency {
		g.totalDegree += len(targets)
	}

	return g
}

// NodeCount returns the number of nodes in the snapshot
func (g *ContentGraph) NodeCount() int {
	return len(g.nodes)
}

// RelationshipCount returns the number of directed edges in the snapshot
func (g *ContentGraph) RelationshipCount() int {
	return len(g.relationships)
}

// IsEmpty reports whether the snapshot holds no nodes
func (g *ContentGraph) IsEmpty() bool {
	return len(g.nodes) == 0
}

// Node retrieves a node by id
func (g *ContentGraph) Node(id string) (entities.ContentNode, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// HasNode checks if a node exists in the snapshot
func (g *ContentGraph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// NodeIDs returns the ids of all nodes in the snapshot
func (g *ContentGraph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Neighbors returns the set of target ids adjacent to a node
func (g *ContentGraph) Neighbors(id string) map[string]struct{} {
	return g.adjacency[id]
}

// ReverseNeighbors returns the set of source ids pointing at a node
func (g *ContentGraph) ReverseNeighbors(id string) map[string]struct{} {
	return g.reverseAdjacency[id]
}

// Relationship resolves the specific relationship between a source and
// target through the precomputed edge index. A linear scan over all
// relationships is quadratic in BFS and Dijkstra on real-size graphs.
func (g *ContentGraph) Relationship(sourceID, targetID string) (entities.ContentRelationship, bool) {
	rel, ok := g.edgeIndex[edgeKey{source: sourceID, target: targetID}]
	return rel, ok
}

// AvgDegree returns the mean degree across all nodes, 0 for an empty graph
func (g *ContentGraph) AvgDegree() float64 {
	if len(g.nodes) == 0 {
		return 0
	}
	return float64(g.totalDegree) / float64(len(g.nodes))
}
