package services

import (
	"math"
	"time"

	"go.uber.org/zap"

	"lamad-backend/domain/core/aggregates"
	"lamad-backend/domain/core/entities"
)

// TraversalQuery parameterizes one BFS neighborhood expansion
type TraversalQuery struct {
	Focus               string
	Depth               int
	RelationshipFilter  []entities.RelationshipType
	ContentTypeFilter   []string
	ExcludeContentTypes []string
	MaxNodes            int
	IncludeContent      bool
}

// GraphEdge is one traversed edge in a result
type GraphEdge struct {
	Source string                    `json:"source"`
	Target string                    `json:"target"`
	Type   entities.RelationshipType `json:"type"`
}

// ViewMetadata describes how a neighborhood query executed
type ViewMetadata struct {
	NodesReturned   int       `json:"nodesReturned"`
	DepthTraversed  int       `json:"depthTraversed"`
	ComputeTimeMs   float64   `json:"computeTimeMs"`
	ResourceCredits int       `json:"resourceCredits"`
	NodesTraversed  int       `json:"nodesTraversed"`
	EdgesExamined   int       `json:"edgesExamined"`
	QueriedAt       time.Time `json:"queriedAt"`
}

// GraphView is the result of one neighborhood query: the focus node
// plus its neighbors grouped by depth.
type GraphView struct {
	Focus     entities.ContentNode           `json:"focus"`
	Neighbors map[int][]entities.ContentNode `json:"neighbors"`
	Edges     []GraphEdge                    `json:"edges"`
	Metadata  ViewMetadata                   `json:"metadata"`
}

// TraversalService expands a node's neighborhood breadth first
type TraversalService struct {
	logger *zap.Logger
}

// NewTraversalService creates a new traversal service
func NewTraversalService(logger *zap.Logger) *TraversalService {
	return &TraversalService{logger: logger}
}

// BFS runs a level-ordered expansion from the focus node. Content-type
// filters gate visibility only: a filtered node is absent from the
// result but still advances the frontier, so nodes behind it stay
// reachable. Relationship filters drop an edge only when its record
// exists and carries an excluded type; edges without a record pass.
func (s *TraversalService) BFS(graph *aggregates.ContentGraph, query TraversalQuery) GraphView {
	start := time.Now()

	focus, _ := graph.Node(query.Focus)
	if !query.IncludeContent {
		focus = focus.WithoutBody()
	}

	view := GraphView{
		Focus:     focus,
		Neighbors: make(map[int][]entities.ContentNode),
		Edges:     []GraphEdge{},
	}

	allowedTypes := make(map[entities.RelationshipType]struct{}, len(query.RelationshipFilter))
	for _, t := range query.RelationshipFilter {
		allowedTypes[t] = struct{}{}
	}
	includeTypes := make(map[string]struct{}, len(query.ContentTypeFilter))
	for _, t := range query.ContentTypeFilter {
		includeTypes[t] = struct{}{}
	}
	excludeTypes := make(map[string]struct{}, len(query.ExcludeContentTypes))
	for _, t := range query.ExcludeContentTypes {
		excludeTypes[t] = struct{}{}
	}

	visited := map[string]struct{}{query.Focus: {}}
	frontier := []string{query.Focus}
	nodesTraversed := 0
	edgesExamined := 0
	capped := false

levels:
	for depth := 1; depth <= query.Depth && len(frontier) > 0; depth++ {
		var next []string

		for _, currentID := range frontier {
			for targetID := range graph.Neighbors(currentID) {
				// The cap counts the focus too: a query whose cap is
				// already met expands nothing.
				if query.MaxNodes > 0 && len(visited) >= query.MaxNodes {
					capped = true
					break levels
				}
				edgesExamined++

				rel, hasRel := graph.Relationship(currentID, targetID)
				if hasRel && len(allowedTypes) > 0 {
					if _, ok := allowedTypes[rel.Type]; !ok {
						continue
					}
				}

				// Record every passing edge, even toward nodes already
				// visited; only the traversal itself is deduplicated.
				edgeType := entities.RelUnknown
				if hasRel {
					edgeType = rel.Type
				}
				view.Edges = append(view.Edges, GraphEdge{
					Source: currentID,
					Target: targetID,
					Type:   edgeType,
				})

				if _, seen := visited[targetID]; seen {
					continue
				}
				visited[targetID] = struct{}{}

				node, exists := graph.Node(targetID)
				if !exists {
					// Dangling endpoint: tolerated, skipped.
					continue
				}
				nodesTraversed++

				if s.passesContentFilter(node, includeTypes, excludeTypes) {
					if !query.IncludeContent {
						node = node.WithoutBody()
					}
					view.Neighbors[depth] = append(view.Neighbors[depth], node)
				}

				// Filtered nodes still advance the frontier; filters
				// affect visibility, not reachability.
				next = append(next, targetID)
			}
		}

		frontier = next
	}

	if capped {
		s.logger.Debug("traversal stopped at node cap",
			zap.String("focus", query.Focus),
			zap.Int("maxNodes", query.MaxNodes),
		)
	}

	nodesReturned := 1
	depthTraversed := 0
	for depth, nodes := range view.Neighbors {
		nodesReturned += len(nodes)
		if depth > depthTraversed {
			depthTraversed = depth
		}
	}
	if depthTraversed > query.Depth {
		depthTraversed = query.Depth
	}

	view.Metadata = ViewMetadata{
		NodesReturned:   nodesReturned,
		DepthTraversed:  depthTraversed,
		ComputeTimeMs:   float64(time.Since(start).Microseconds()) / 1000.0,
		ResourceCredits: explorationCredits(query.Depth, nodesReturned),
		NodesTraversed:  nodesTraversed,
		EdgesExamined:   edgesExamined,
		QueriedAt:       time.Now().UTC(),
	}

	return view
}

func (s *TraversalService) passesContentFilter(node entities.ContentNode, include, exclude map[string]struct{}) bool {
	if _, excluded := exclude[node.NodeType]; excluded {
		return false
	}
	if len(include) > 0 {
		if _, ok := include[node.NodeType]; !ok {
			return false
		}
	}
	return true
}

// explorationCredits is the shared resource-credit formula for
// neighborhood queries: ceil((depth+1)^2 * log2(nodes+1))
func explorationCredits(depth int, nodes int) int {
	d := float64(depth + 1)
	return int(math.Ceil(d * d * math.Log2(float64(nodes)+1)))
}
