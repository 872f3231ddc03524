package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lamad-backend/domain/core/entities"
)

func TestNewContentGraph_BuildsIndices(t *testing.T) {
	graph := NewContentGraph(
		[]entities.ContentNode{
			{ID: "a", Title: "Alpha", NodeType: "concept"},
			{ID: "b", Title: "Beta", NodeType: "concept"},
			{ID: "c", Title: "Gamma", NodeType: "concept"},
		},
		[]entities.ContentRelationship{
			{ID: "r1", SourceID: "a", TargetID: "b", Type: entities.RelRelatesTo},
			{ID: "r2", SourceID: "a", TargetID: "c", Type: entities.RelContains},
			{ID: "r3", SourceID: "b", TargetID: "c", Type: entities.RelDependsOn},
		},
	)

	assert.Equal(t, 3, graph.NodeCount())
	assert.Equal(t, 3, graph.RelationshipCount())
	assert.False(t, graph.IsEmpty())
	assert.True(t, graph.HasNode("a"))
	assert.False(t, graph.HasNode("z"))

	assert.Len(t, graph.Neighbors("a"), 2)
	assert.Len(t, graph.ReverseNeighbors("c"), 2)
	assert.Empty(t, graph.Neighbors("c"))

	rel, ok := graph.Relationship("a", "b")
	assert.True(t, ok)
	assert.Equal(t, entities.RelRelatesTo, rel.Type)

	_, ok = graph.Relationship("b", "a")
	assert.False(t, ok)

	assert.InDelta(t, 1.0, graph.AvgDegree(), 1e-9)
}

func TestNewContentGraph_Empty(t *testing.T) {
	graph := NewContentGraph(nil, nil)

	assert.True(t, graph.IsEmpty())
	assert.Equal(t, 0.0, graph.AvgDegree())
	assert.Empty(t, graph.NodeIDs())
}

func TestContentGraph_EdgeLookupWithArbitraryIDContent(t *testing.T) {
	// Ids are opaque caller-owned strings; lookups for distinct pairs
	// must stay distinct no matter what the ids contain.
	graph := NewContentGraph(
		[]entities.ContentNode{{ID: "a"}, {ID: "b->c"}, {ID: "a->b"}, {ID: "c"}},
		[]entities.ContentRelationship{
			{ID: "r1", SourceID: "a", TargetID: "b->c", Type: entities.RelRelatesTo},
		},
	)

	rel, ok := graph.Relationship("a", "b->c")
	assert.True(t, ok)
	assert.Equal(t, "r1", rel.ID)

	_, ok = graph.Relationship("a->b", "c")
	assert.False(t, ok)
}

func TestContentGraph_ParallelEdgesDeduplicatedInAdjacency(t *testing.T) {
	graph := NewContentGraph(
		[]entities.ContentNode{{ID: "a"}, {ID: "b"}},
		[]entities.ContentRelationship{
			{ID: "r1", SourceID: "a", TargetID: "b", Type: entities.RelRelatesTo},
			{ID: "r2", SourceID: "a", TargetID: "b", Type: entities.RelDependsOn},
		},
	)

	assert.Len(t, graph.Neighbors("a"), 1)
	assert.Equal(t, 2, graph.RelationshipCount())

	// The edge index keeps the last relationship seen for the pair.
	rel, ok := graph.Relationship("a", "b")
	assert.True(t, ok)
	assert.Equal(t, entities.RelDependsOn, rel.Type)
}
