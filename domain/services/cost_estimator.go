package services

import (
	"math"

	"lamad-backend/domain/core/aggregates"
	"lamad-backend/pkg/auth"
)

// Cost estimation operations
const (
	OperationExploration = "exploration"
	OperationPathfinding = "pathfinding"
)

// Blocked reasons surfaced by cost estimates
const (
	BlockedInsufficientAttestation = "insufficient-attestation"
	BlockedRateLimitExceeded       = "rate-limit-exceeded"
)

// QueryCost predicts what a query would consume, before any resources
// are committed
type QueryCost struct {
	Operation       string  `json:"operation"`
	EstimatedNodes  int     `json:"estimatedNodes"`
	EstimatedTimeMs float64 `json:"estimatedTimeMs"`
	ResourceCredits int     `json:"resourceCredits"`
	CanExecute      bool    `json:"canExecute"`
	BlockedReason   string  `json:"blockedReason,omitempty"`
}

// CostEstimator predicts node count, time and credits for a query.
// Estimation is a pure function of the snapshot, the attestation check
// and the current rate-limit status: it never mutates state and never
// fails.
type CostEstimator struct{}

// NewCostEstimator creates a new cost estimator
func NewCostEstimator() *CostEstimator {
	return &CostEstimator{}
}

// Estimate predicts the cost of an operation. Unknown operations and
// empty graphs produce a zero estimate that cannot execute.
func (e *CostEstimator) Estimate(
	operation string,
	depth int,
	graph *aggregates.ContentGraph,
	check auth.AttestationCheck,
	status auth.RateLimitStatus,
) QueryCost {
	if graph == nil || graph.IsEmpty() {
		return QueryCost{Operation: operation}
	}

	switch operation {
	case OperationExploration:
		return e.estimateExploration(depth, graph, check, status)
	case OperationPathfinding:
		return e.estimatePathfinding(graph, check, status)
	default:
		return QueryCost{Operation: operation}
	}
}

func (e *CostEstimator) estimateExploration(
	depth int,
	graph *aggregates.ContentGraph,
	check auth.AttestationCheck,
	status auth.RateLimitStatus,
) QueryCost {
	graphSize := float64(graph.NodeCount())
	estimatedNodes := math.Min(math.Pow(graph.AvgDegree(), float64(depth)), graphSize)

	cost := QueryCost{
		Operation:       OperationExploration,
		EstimatedNodes:  int(math.Ceil(estimatedNodes)),
		EstimatedTimeMs: estimatedNodes * 0.5,
		ResourceCredits: explorationCredits(depth, int(math.Ceil(estimatedNodes))),
		CanExecute:      depth <= check.MaxAllowedDepth && status.Exploration.Remaining > 0,
	}

	if !cost.CanExecute {
		if depth > check.MaxAllowedDepth {
			cost.BlockedReason = BlockedInsufficientAttestation
		} else {
			cost.BlockedReason = BlockedRateLimitExceeded
		}
	}

	return cost
}

func (e *CostEstimator) estimatePathfinding(
	graph *aggregates.ContentGraph,
	check auth.AttestationCheck,
	status auth.RateLimitStatus,
) QueryCost {
	// Worst case touches every node; billing is a flat rate either way.
	graphSize := graph.NodeCount()

	cost := QueryCost{
		Operation:       OperationPathfinding,
		EstimatedNodes:  graphSize,
		EstimatedTimeMs: float64(graphSize) * 0.1,
		ResourceCredits: PathfindingCredits,
		CanExecute:      check.Tier == auth.TierPathCreator && status.Pathfinding.Remaining > 0,
	}

	if !cost.CanExecute {
		if check.Tier != auth.TierPathCreator {
			cost.BlockedReason = BlockedInsufficientAttestation
		} else {
			cost.BlockedReason = BlockedRateLimitExceeded
		}
	}

	return cost
}
