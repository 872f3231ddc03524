package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"lamad-backend/application/ports"
	"lamad-backend/application/queries"
	domainservices "lamad-backend/domain/services"
	"lamad-backend/pkg/audit"
	"lamad-backend/pkg/auth"
	pkgerrors "lamad-backend/pkg/errors"
)

// ExplorationService orchestrates attestation-gated graph queries:
// authorize, rate-check, execute, consume, log. Quota is consumed only
// after a successful operation; every failure is logged and the
// original error propagated unchanged.
type ExplorationService struct {
	graphs     ports.GraphProvider
	authority  *auth.AttestationAuthority
	limiter    *auth.TieredRateLimiter
	traversal  *domainservices.TraversalService
	pathfinder *domainservices.PathfindingService
	estimator  *domainservices.CostEstimator
	events     *audit.EventLog
	publisher  ports.EventPublisher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewExplorationService creates a new exploration service. The
// publisher is optional; pass nil to keep audit events in-process only.
func NewExplorationService(
	graphs ports.GraphProvider,
	authority *auth.AttestationAuthority,
	limiter *auth.TieredRateLimiter,
	traversal *domainservices.TraversalService,
	pathfinder *domainservices.PathfindingService,
	estimator *domainservices.CostEstimator,
	events *audit.EventLog,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *ExplorationService {
	return &ExplorationService{
		graphs:     graphs,
		authority:  authority,
		limiter:    limiter,
		traversal:  traversal,
		pathfinder: pathfinder,
		estimator:  estimator,
		events:     events,
		publisher:  publisher,
		validate:   validator.New(),
		logger:     logger,
	}
}

// ExploreNeighborhood runs an attestation-gated BFS neighborhood query
// for the given agent.
func (s *ExplorationService) ExploreNeighborhood(
	ctx context.Context,
	agentID string,
	query queries.ExploreNeighborhoodQuery,
) (*domainservices.GraphView, error) {
	queryRecord := map[string]interface{}{
		"focus": query.Focus,
		"depth": query.Depth,
	}

	if err := s.validate.Struct(query); err != nil {
		return nil, s.failExploration(agentID, queryRecord,
			pkgerrors.NewInvalidQueryError("invalid exploration query").WithCause(err))
	}

	check := s.authority.CheckAttestations(ctx, agentID, query.Depth)
	if !check.Allowed {
		return nil, s.failExploration(agentID, queryRecord,
			pkgerrors.NewDepthUnauthorizedError(check.Reason, map[string]interface{}{
				"requiredAttestation": check.RequiredAttestation,
				"maxAllowedDepth":     check.MaxAllowedDepth,
				"tier":                check.Tier,
			}))
	}

	s.limiter.UpdateTier(agentID, check.Tier)

	if !s.limiter.CheckLimit(agentID, auth.KindExploration) {
		status := s.limiter.Status(agentID)
		return nil, s.failExploration(agentID, queryRecord,
			pkgerrors.NewRateLimitExceededError("exploration quota exhausted for this window",
				map[string]interface{}{
					"remaining": status.Exploration.Remaining,
					"limit":     status.Exploration.Limit,
					"resetsAt":  status.ResetsAt,
				}))
	}

	if err := ctx.Err(); err != nil {
		return nil, s.failExploration(agentID, queryRecord, err)
	}

	graph, err := s.graphs.GetGraph(ctx)
	if err != nil || graph == nil || graph.IsEmpty() {
		// Snapshot failures are downgraded to the most conservative
		// interpretation so the rest of the pipeline stays deterministic.
		invalid := pkgerrors.NewInvalidQueryError("graph snapshot is empty or unavailable")
		if err != nil {
			invalid = invalid.WithCause(err)
		}
		return nil, s.failExploration(agentID, queryRecord, invalid)
	}

	if !graph.HasNode(query.Focus) {
		return nil, s.failExploration(agentID, queryRecord,
			pkgerrors.NewResourceNotFoundError("focus node", query.Focus))
	}

	if err := ctx.Err(); err != nil {
		return nil, s.failExploration(agentID, queryRecord, err)
	}

	view := s.traversal.BFS(graph, query.ToTraversalQuery())

	// Quota is drawn only for completed work.
	s.limiter.Consume(agentID, auth.KindExploration)

	s.record(ctx, audit.ExplorationEvent{
		Type:    audit.EventExplorationCompleted,
		AgentID: agentID,
		Query:   queryRecord,
		Result: map[string]interface{}{
			"nodesReturned":   view.Metadata.NodesReturned,
			"depthTraversed":  view.Metadata.DepthTraversed,
			"resourceCredits": view.Metadata.ResourceCredits,
		},
	})

	return &view, nil
}

// FindPath runs an attestation-gated shortest-path query. Beyond the
// depth check, pathfinding requires a tier with pathfinding rights.
func (s *ExplorationService) FindPath(
	ctx context.Context,
	agentID string,
	query queries.FindPathQuery,
) (*domainservices.PathResult, error) {
	queryRecord := map[string]interface{}{
		"from":      query.From,
		"to":        query.To,
		"algorithm": query.Algorithm,
	}

	if err := s.validate.Struct(query); err != nil {
		return nil, s.failPathfinding(agentID, queryRecord,
			pkgerrors.NewInvalidQueryError("invalid pathfinding query").WithCause(err))
	}

	check := s.authority.CheckPathfinding(ctx, agentID)
	if !check.Allowed {
		return nil, s.failPathfinding(agentID, queryRecord,
			pkgerrors.NewPathfindingUnauthorizedError(string(check.Tier)))
	}

	s.limiter.UpdateTier(agentID, check.Tier)

	if !s.limiter.CheckLimit(agentID, auth.KindPathfinding) {
		status := s.limiter.Status(agentID)
		return nil, s.failPathfinding(agentID, queryRecord,
			pkgerrors.NewRateLimitExceededError("pathfinding quota exhausted for this window",
				map[string]interface{}{
					"remaining": status.Pathfinding.Remaining,
					"limit":     status.Pathfinding.Limit,
					"resetsAt":  status.ResetsAt,
				}))
	}

	if err := ctx.Err(); err != nil {
		return nil, s.failPathfinding(agentID, queryRecord, err)
	}

	graph, err := s.graphs.GetGraph(ctx)
	if err != nil || graph == nil || graph.IsEmpty() {
		invalid := pkgerrors.NewInvalidQueryError("graph snapshot is empty or unavailable")
		if err != nil {
			invalid = invalid.WithCause(err)
		}
		return nil, s.failPathfinding(agentID, queryRecord, invalid)
	}

	if !graph.HasNode(query.From) {
		return nil, s.failPathfinding(agentID, queryRecord,
			pkgerrors.NewResourceNotFoundError("from node", query.From))
	}
	if !graph.HasNode(query.To) {
		return nil, s.failPathfinding(agentID, queryRecord,
			pkgerrors.NewResourceNotFoundError("to node", query.To))
	}

	if err := ctx.Err(); err != nil {
		return nil, s.failPathfinding(agentID, queryRecord, err)
	}

	result, err := s.pathfinder.FindPath(graph, query.ToPathQuery())
	if err != nil {
		return nil, s.failPathfinding(agentID, queryRecord, err)
	}

	s.limiter.Consume(agentID, auth.KindPathfinding)

	s.record(ctx, audit.ExplorationEvent{
		Type:    audit.EventPathfindingCompleted,
		AgentID: agentID,
		Query:   queryRecord,
		Result: map[string]interface{}{
			"length":          result.Length,
			"semanticScore":   result.SemanticScore,
			"resourceCredits": result.Metadata.ResourceCredits,
		},
	})

	return result, nil
}

// EstimateCost predicts a query's cost without committing resources.
// It never fails and never mutates rate-limit state; unavailable
// snapshots are treated as empty graphs.
func (s *ExplorationService) EstimateCost(
	ctx context.Context,
	agentID string,
	query queries.EstimateCostQuery,
) domainservices.QueryCost {
	graph, err := s.graphs.GetGraph(ctx)
	if err != nil || graph == nil {
		s.logger.Debug("cost estimate with unavailable snapshot", zap.Error(err))
		return domainservices.QueryCost{Operation: query.Operation}
	}

	var check auth.AttestationCheck
	if query.Operation == domainservices.OperationPathfinding {
		check = s.authority.CheckPathfinding(ctx, agentID)
	} else {
		check = s.authority.CheckAttestations(ctx, agentID, query.Depth)
	}

	status := s.limiter.StatusAs(agentID, check.Tier)

	return s.estimator.Estimate(query.Operation, query.Depth, graph, check, status)
}

// RateLimitStatus returns the agent's current quota projection
func (s *ExplorationService) RateLimitStatus(agentID string) auth.RateLimitStatus {
	return s.limiter.Status(agentID)
}

// RecentEvents returns the newest audit events, engine-wide
func (s *ExplorationService) RecentEvents(limit int) []audit.ExplorationEvent {
	return s.events.Recent(limit)
}

// AgentEvents returns the newest audit events for one agent
func (s *ExplorationService) AgentEvents(agentID string, limit int) []audit.ExplorationEvent {
	return s.events.ByAgent(agentID, limit)
}

// failExploration logs a failed exploration attempt and hands the
// original error back unchanged
func (s *ExplorationService) failExploration(agentID string, query map[string]interface{}, err error) error {
	s.record(context.Background(), audit.ExplorationEvent{
		Type:    audit.EventExplorationFailed,
		AgentID: agentID,
		Query:   query,
		Error:   err.Error(),
	})
	return err
}

func (s *ExplorationService) failPathfinding(agentID string, query map[string]interface{}, err error) error {
	s.record(context.Background(), audit.ExplorationEvent{
		Type:    audit.EventPathfindingFailed,
		AgentID: agentID,
		Query:   query,
		Error:   err.Error(),
	})
	return err
}

// record appends to the in-process log and mirrors the event onto the
// external bus when one is configured. Publishing is best effort and
// never blocks the request.
func (s *ExplorationService) record(ctx context.Context, event audit.ExplorationEvent) {
	event = s.events.Append(event)

	if s.publisher == nil {
		return
	}
	go func() {
		publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.publisher.Publish(publishCtx, string(event.Type), event); err != nil {
			s.logger.Warn("audit event publish failed",
				zap.String("eventID", event.ID),
				zap.Error(err),
			)
		}
	}()
}
