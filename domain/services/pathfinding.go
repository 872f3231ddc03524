package services

import (
	"container/heap"
	"time"

	"go.uber.org/zap"

	"lamad-backend/domain/core/aggregates"
	"lamad-backend/domain/core/entities"
	pkgerrors "lamad-backend/pkg/errors"
)

// Pathfinding algorithm names, part of the wire contract
const (
	AlgorithmShortest = "shortest"
	AlgorithmSemantic = "semantic"
)

// PathfindingCredits is the flat per-query charge for pathfinding.
// Deliberately not proportional to work: flat-rate billing keeps cost
// estimates exact before the route is known.
const PathfindingCredits = 10

// PathQuery parameterizes one shortest-path search
type PathQuery struct {
	From                   string
	To                     string
	Algorithm              string
	MaxHops                int
	PreferredRelationships []entities.RelationshipType
}

// PathMetadata describes how a path query executed
type PathMetadata struct {
	Algorithm       string    `json:"algorithm"`
	TotalWeight     float64   `json:"totalWeight"`
	NodesVisited    int       `json:"nodesVisited"`
	ComputeTimeMs   float64   `json:"computeTimeMs"`
	ResourceCredits int       `json:"resourceCredits"`
	QueriedAt       time.Time `json:"queriedAt"`
}

// PathResult is a found route between two nodes
type PathResult struct {
	Path          []string     `json:"path"`
	Edges         []GraphEdge  `json:"edges"`
	Length        int          `json:"length"`
	SemanticScore float64      `json:"semanticScore,omitempty"`
	Metadata      PathMetadata `json:"metadata"`
}

// PathfindingService finds weighted shortest paths over a snapshot.
// Both variants share one Dijkstra core parameterized by an edge
// weight function.
type PathfindingService struct {
	logger *zap.Logger
}

// NewPathfindingService creates a new pathfinding service
func NewPathfindingService(logger *zap.Logger) *PathfindingService {
	return &PathfindingService{logger: logger}
}

// weightFunc returns the traversal cost of one directed edge. hasRel
// is false when the relationship record is missing from the snapshot.
type weightFunc func(rel entities.ContentRelationship, hasRel bool) float64

// FindPath runs the requested variant between two nodes. It returns a
// NO_PATH_EXISTS error when the target was never reached.
func (s *PathfindingService) FindPath(graph *aggregates.ContentGraph, query PathQuery) (*PathResult, error) {
	start := time.Now()

	var weight weightFunc
	algorithm := query.Algorithm
	switch algorithm {
	case AlgorithmSemantic:
		weight = semanticWeight(query.PreferredRelationships)
	case AlgorithmShortest, "":
		algorithm = AlgorithmShortest
		weight = func(entities.ContentRelationship, bool) float64 { return 1 }
	default:
		return nil, pkgerrors.NewInvalidQueryError("unknown pathfinding algorithm: " + query.Algorithm)
	}

	distances, previous, visited := s.dijkstra(graph, query.From, query.To, query.MaxHops, weight)

	totalDistance, reached := distances[query.To]
	if !reached && query.From != query.To {
		return nil, pkgerrors.NewNoPathExistsError(query.From, query.To)
	}

	path := reconstructPath(previous, query.From, query.To)
	edges := make([]GraphEdge, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		edgeType := entities.RelUnknown
		if rel, ok := graph.Relationship(path[i], path[i+1]); ok {
			edgeType = rel.Type
		}
		edges = append(edges, GraphEdge{Source: path[i], Target: path[i+1], Type: edgeType})
	}

	result := &PathResult{
		Path:   path,
		Edges:  edges,
		Length: len(path) - 1,
		Metadata: PathMetadata{
			Algorithm:       algorithm,
			TotalWeight:     totalDistance,
			NodesVisited:    visited,
			ComputeTimeMs:   float64(time.Since(start).Microseconds()) / 1000.0,
			ResourceCredits: PathfindingCredits,
			QueriedAt:       time.Now().UTC(),
		},
	}

	if algorithm == AlgorithmSemantic {
		// A found path always scores above zero; unreachable targets
		// were already rejected, never reported as a zero score.
		if totalDistance > 0 {
			result.SemanticScore = 1 / totalDistance
		} else {
			result.SemanticScore = 1
		}
	}

	return result, nil
}

// dijkstra runs the shared relaxation core using a priority queue.
// When maxHops is set, a node whose distance has reached the cap is
// still finalized but its neighbors are not relaxed.
func (s *PathfindingService) dijkstra(
	graph *aggregates.ContentGraph,
	from, to string,
	maxHops int,
	weight weightFunc,
) (map[string]float64, map[string]string, int) {
	distances := map[string]float64{from: 0}
	previous := make(map[string]string)
	processed := make(map[string]struct{})

	pq := &pathHeap{{nodeID: from, distance: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pathItem)
		if _, done := processed[current.nodeID]; done {
			continue
		}
		processed[current.nodeID] = struct{}{}

		if current.nodeID == to {
			break
		}
		if maxHops > 0 && current.distance >= float64(maxHops) {
			continue
		}

		for neighborID := range graph.Neighbors(current.nodeID) {
			rel, hasRel := graph.Relationship(current.nodeID, neighborID)
			newDist := current.distance + weight(rel, hasRel)

			if existing, ok := distances[neighborID]; !ok || newDist < existing {
				distances[neighborID] = newDist
				previous[neighborID] = current.nodeID
				heap.Push(pq, pathItem{nodeID: neighborID, distance: newDist})
			}
		}
	}

	return distances, previous, len(processed)
}

// semanticWeight builds the semantic edge-weight function: base weight
// from the relationship rule table, halved for caller-preferred types.
func semanticWeight(preferred []entities.RelationshipType) weightFunc {
	preferredSet := make(map[entities.RelationshipType]struct{}, len(preferred))
	for _, t := range preferred {
		preferredSet[t] = struct{}{}
	}

	return func(rel entities.ContentRelationship, hasRel bool) float64 {
		if !hasRel {
			return entities.RelUnknown.BaseWeight()
		}
		w := rel.Type.BaseWeight()
		if _, ok := preferredSet[rel.Type]; ok {
			w *= 0.5
		}
		return w
	}
}

// reconstructPath walks the predecessor map backward from the target
func reconstructPath(previous map[string]string, from, to string) []string {
	if from == to {
		return []string{from}
	}

	var reversed []string
	for current := to; ; {
		reversed = append(reversed, current)
		if current == from {
			break
		}
		next, ok := previous[current]
		if !ok {
			break
		}
		current = next
	}

	path := make([]string, len(reversed))
	for i, nodeID := range reversed {
		path[len(reversed)-1-i] = nodeID
	}
	return path
}

// pathItem is one priority-queue entry
type pathItem struct {
	nodeID   string
	distance float64
}

// pathHeap implements heap.Interface ordered by distance
type pathHeap []pathItem

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].distance < h[j].distance }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *pathHeap) Push(x interface{}) { *h = append(*h, x.(pathItem)) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
