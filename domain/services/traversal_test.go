package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"lamad-backend/domain/core/aggregates"
	"lamad-backend/domain/core/entities"
)

// testGraph builds the fixture used across traversal tests:
//
//	a -> b -> d -> e
//	a -> c -> d
func testGraph() *aggregates.ContentGraph {
	nodes := []entities.ContentNode{
		{ID: "a", Title: "Alpha", NodeType: "concept", Body: "alpha body"},
		{ID: "b", Title: "Beta", NodeType: "concept", Body: "beta body"},
		{ID: "c", Title: "Gamma", NodeType: "exercise", Body: "gamma body"},
		{ID: "d", Title: "Delta", NodeType: "concept", Body: "delta body"},
		{ID: "e", Title: "Epsilon", NodeType: "concept", Body: "epsilon body"},
	}
	relationships := []entities.ContentRelationship{
		{ID: "r1", SourceID: "a", TargetID: "b", Type: entities.RelRelatesTo},
		{ID: "r2", SourceID: "a", TargetID: "c", Type: entities.RelContains},
		{ID: "r3", SourceID: "b", TargetID: "d", Type: entities.RelDependsOn},
		{ID: "r4", SourceID: "c", TargetID: "d", Type: entities.RelImplements},
		{ID: "r5", SourceID: "d", TargetID: "e", Type: entities.RelExtends},
	}
	return aggregates.NewContentGraph(nodes, relationships)
}

func neighborIDs(view GraphView, depth int) []string {
	ids := make([]string, 0, len(view.Neighbors[depth]))
	for _, node := range view.Neighbors[depth] {
		ids = append(ids, node.ID)
	}
	return ids
}

func TestTraversalService_BFS_DepthOne(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          1,
		IncludeContent: true,
	})

	assert.Equal(t, "a", view.Focus.ID)
	assert.ElementsMatch(t, []string{"b", "c"}, neighborIDs(view, 1))
	assert.Empty(t, view.Neighbors[2])
	assert.Equal(t, 3, view.Metadata.NodesReturned)
	assert.Equal(t, 1, view.Metadata.DepthTraversed)
	assert.Len(t, view.Edges, 2)
}

func TestTraversalService_BFS_NodesAppearAtShallowestDepth(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          3,
		IncludeContent: true,
	})

	// d is reachable via both b and c but is placed once, at depth 2.
	assert.ElementsMatch(t, []string{"d"}, neighborIDs(view, 2))
	assert.ElementsMatch(t, []string{"e"}, neighborIDs(view, 3))
	assert.Equal(t, 5, view.Metadata.NodesReturned)
	assert.Equal(t, 3, view.Metadata.DepthTraversed)

	// Both edges into d survive even though d is traversed once.
	sources := map[string]bool{}
	for _, edge := range view.Edges {
		if edge.Target == "d" {
			sources[edge.Source] = true
		}
	}
	assert.True(t, sources["b"])
	assert.True(t, sources["c"])
}

func TestTraversalService_BFS_RelationshipFilter(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:              "a",
		Depth:              2,
		RelationshipFilter: []entities.RelationshipType{entities.RelRelatesTo},
		IncludeContent:     true,
	})

	// a->c (CONTAINS) and b->d (DEPENDS_ON) are filtered out.
	assert.ElementsMatch(t, []string{"b"}, neighborIDs(view, 1))
	assert.Empty(t, view.Neighbors[2])
	assert.Equal(t, 1, view.Metadata.DepthTraversed)
	assert.Len(t, view.Edges, 1)
	assert.Equal(t, entities.RelRelatesTo, view.Edges[0].Type)
}

func TestTraversalService_BFS_ContentFilterGatesVisibilityNotReachability(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:               "a",
		Depth:               2,
		ExcludeContentTypes: []string{"exercise"},
		IncludeContent:      true,
	})

	// c is hidden, yet d behind it is still found at depth 2.
	assert.ElementsMatch(t, []string{"b"}, neighborIDs(view, 1))
	assert.ElementsMatch(t, []string{"d"}, neighborIDs(view, 2))
}

func TestTraversalService_BFS_ContentTypeIncludeFilter(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:             "a",
		Depth:             1,
		ContentTypeFilter: []string{"exercise"},
		IncludeContent:    true,
	})

	assert.ElementsMatch(t, []string{"c"}, neighborIDs(view, 1))
}

func TestTraversalService_BFS_MaxNodesStopsExpansion(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          3,
		MaxNodes:       2,
		IncludeContent: true,
	})

	assert.Equal(t, 2, view.Metadata.NodesReturned)
}

func TestTraversalService_BFS_MaxNodesMetByFocusAlone(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	// The focus already fills the cap, so nothing may be expanded.
	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          2,
		MaxNodes:       1,
		IncludeContent: true,
	})

	assert.Equal(t, 1, view.Metadata.NodesReturned)
	assert.Equal(t, 0, view.Metadata.NodesTraversed)
	assert.Empty(t, view.Edges)
	assert.Empty(t, view.Neighbors[1])
}

func TestTraversalService_BFS_IsolatedFocus(t *testing.T) {
	service := NewTraversalService(zap.NewNop())
	graph := aggregates.NewContentGraph(
		[]entities.ContentNode{{ID: "lone", Title: "Lone", NodeType: "concept"}},
		nil,
	)

	view := service.BFS(graph, TraversalQuery{
		Focus:          "lone",
		Depth:          3,
		IncludeContent: true,
	})

	assert.Equal(t, 1, view.Metadata.NodesReturned)
	assert.Equal(t, 0, view.Metadata.DepthTraversed)
	assert.Empty(t, view.Edges)
}

func TestTraversalService_BFS_DepthTraversedCapsAtActualReach(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          10,
		IncludeContent: true,
	})

	assert.Equal(t, 3, view.Metadata.DepthTraversed)
}

func TestTraversalService_BFS_ExcludeContentStripsBodies(t *testing.T) {
	service := NewTraversalService(zap.NewNop())

	view := service.BFS(testGraph(), TraversalQuery{
		Focus:          "a",
		Depth:          1,
		IncludeContent: false,
	})

	assert.Empty(t, view.Focus.Body)
	for _, node := range view.Neighbors[1] {
		assert.Empty(t, node.Body)
		assert.NotEmpty(t, node.Title)
	}
}

func TestTraversalService_BFS_DanglingEndpointTolerated(t *testing.T) {
	service := NewTraversalService(zap.NewNop())
	graph := aggregates.NewContentGraph(
		[]entities.ContentNode{{ID: "a", Title: "Alpha", NodeType: "concept"}},
		[]entities.ContentRelationship{
			{ID: "r1", SourceID: "a", TargetID: "missing", Type: entities.RelRelatesTo},
		},
	)

	view := service.BFS(graph, TraversalQuery{
		Focus:          "a",
		Depth:          2,
		IncludeContent: true,
	})

	assert.Empty(t, view.Neighbors[1])
	assert.Equal(t, 1, view.Metadata.NodesReturned)
	assert.Equal(t, 0, view.Metadata.NodesTraversed)
}

func TestExplorationCredits(t *testing.T) {
	tests := []struct {
		depth int
		nodes int
		want  int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 3, 8},
		{2, 4, 21},
		{3, 15, 64},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, explorationCredits(tt.depth, tt.nodes),
			"depth=%d nodes=%d", tt.depth, tt.nodes)
	}
}
