package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lamad-backend/application/ports"
	"lamad-backend/application/queries"
	"lamad-backend/domain/core/entities"
	domainservices "lamad-backend/domain/services"
	"lamad-backend/infrastructure/persistence/memory"
	"lamad-backend/pkg/audit"
	"lamad-backend/pkg/auth"
	pkgerrors "lamad-backend/pkg/errors"
)

type testEnv struct {
	service *ExplorationService
	graphs  *memory.GraphProvider
	agents  *memory.AgentDirectory
	limiter *auth.TieredRateLimiter
	events  *audit.EventLog
	now     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env := &testEnv{
		graphs:  memory.NewGraphProvider(),
		agents:  memory.NewAgentDirectory(),
		limiter: auth.NewTieredRateLimiterWithClock(func() time.Time { return now }),
		events:  audit.NewEventLog(100),
		now:     &now,
	}

	env.graphs.Load(
		[]entities.ContentNode{
			{ID: "a", Title: "Alpha", NodeType: "concept", Body: "alpha body"},
			{ID: "b", Title: "Beta", NodeType: "concept", Body: "beta body"},
			{ID: "c", Title: "Gamma", NodeType: "exercise", Body: "gamma body"},
			{ID: "d", Title: "Delta", NodeType: "concept", Body: "delta body"},
		},
		[]entities.ContentRelationship{
			{ID: "r1", SourceID: "a", TargetID: "b", Type: entities.RelRelatesTo},
			{ID: "r2", SourceID: "a", TargetID: "c", Type: entities.RelContains},
			{ID: "r3", SourceID: "b", TargetID: "d", Type: entities.RelDependsOn},
			{ID: "r4", SourceID: "c", TargetID: "d", Type: entities.RelImplements},
		},
	)

	env.agents.SetAgents([]ports.AgentRecord{
		{ID: "basic", Attestations: []string{"authentication"}},
		{ID: "researcher", Attestations: []string{"authentication", "graph-researcher"}},
		{ID: "advanced", Attestations: []string{"authentication", "advanced-researcher"}},
		{ID: "creator", Attestations: []string{"authentication", "path-creator"}},
	})

	env.service = NewExplorationService(
		env.graphs,
		auth.NewAttestationAuthority(env.agents, logger),
		env.limiter,
		domainservices.NewTraversalService(logger),
		domainservices.NewPathfindingService(logger),
		domainservices.NewCostEstimator(),
		env.events,
		nil,
		logger,
	)
	return env
}

func TestExplorationService_ExploreNeighborhood_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	view, err := env.service.ExploreNeighborhood(ctx, "researcher", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "a", view.Focus.ID)
	assert.Equal(t, 4, view.Metadata.NodesReturned)
	assert.Equal(t, 2, view.Metadata.DepthTraversed)

	// Quota is drawn exactly once, with the tier synced first.
	status := env.service.RateLimitStatus("researcher")
	assert.Equal(t, auth.TierGraphResearcher, status.Tier)
	assert.Equal(t, 59, status.Exploration.Remaining)

	events := env.service.AgentEvents("researcher", 0)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventExplorationCompleted, events[0].Type)
}

func TestExplorationService_ExploreNeighborhood_DepthUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ExploreNeighborhood(context.Background(), "basic", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 3,
	})

	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDepthUnauthorized, appErr.Code)
	assert.Equal(t, auth.AttestationAdvancedResearcher, appErr.Details["requiredAttestation"])
	assert.Equal(t, 1, appErr.Details["maxAllowedDepth"])

	// Failed attempts never draw quota.
	assert.Equal(t, 30, env.service.RateLimitStatus("basic").Exploration.Remaining)

	events := env.service.AgentEvents("basic", 0)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventExplorationFailed, events[0].Type)
}

func TestExplorationService_ExploreNeighborhood_UnknownAgentDepthZero(t *testing.T) {
	env := newTestEnv(t)

	view, err := env.service.ExploreNeighborhood(context.Background(), "stranger", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, view.Metadata.NodesReturned)
	assert.Equal(t, auth.TierUnauthenticated, env.service.RateLimitStatus("stranger").Tier)
}

func TestExplorationService_ExploreNeighborhood_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	query := queries.ExploreNeighborhoodQuery{Focus: "a", Depth: 0}

	// Unauthenticated agents get ten queries per window.
	for i := 0; i < 10; i++ {
		_, err := env.service.ExploreNeighborhood(ctx, "stranger", query)
		require.NoError(t, err)
	}

	_, err := env.service.ExploreNeighborhood(ctx, "stranger", query)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeRateLimitExceeded))
}

func TestExplorationService_ExploreNeighborhood_WindowResetRestoresQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	query := queries.ExploreNeighborhoodQuery{Focus: "a", Depth: 0}

	for i := 0; i < 10; i++ {
		_, err := env.service.ExploreNeighborhood(ctx, "stranger", query)
		require.NoError(t, err)
	}
	_, err := env.service.ExploreNeighborhood(ctx, "stranger", query)
	require.Error(t, err)

	*env.now = env.now.Add(61 * time.Minute)

	_, err = env.service.ExploreNeighborhood(ctx, "stranger", query)
	assert.NoError(t, err)

	// The fresh window holds exactly the one post-reset consumption.
	assert.Equal(t, 9, env.service.RateLimitStatus("stranger").Exploration.Remaining)
}

func TestExplorationService_ExploreNeighborhood_FocusNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ExploreNeighborhood(context.Background(), "researcher", queries.ExploreNeighborhoodQuery{
		Focus: "nonexistent",
		Depth: 1,
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeResourceNotFound))
	assert.Equal(t, 60, env.service.RateLimitStatus("researcher").Exploration.Remaining)
}

func TestExplorationService_ExploreNeighborhood_InvalidQuery(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ExploreNeighborhood(context.Background(), "researcher", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 11,
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuery))
}

func TestExplorationService_ExploreNeighborhood_EmptyGraph(t *testing.T) {
	env := newTestEnv(t)
	env.graphs.Load(nil, nil)

	_, err := env.service.ExploreNeighborhood(context.Background(), "researcher", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 1,
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidQuery))
}

func TestExplorationService_ExploreNeighborhood_CancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.service.ExploreNeighborhood(ctx, "researcher", queries.ExploreNeighborhoodQuery{
		Focus: "a",
		Depth: 0,
	})

	assert.Error(t, err)
}

func TestExplorationService_FindPath_Success(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.service.FindPath(context.Background(), "creator", queries.FindPathQuery{
		From:      "a",
		To:        "d",
		Algorithm: "shortest",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Length)
	assert.Equal(t, "a", result.Path[0])
	assert.Equal(t, "d", result.Path[len(result.Path)-1])

	status := env.service.RateLimitStatus("creator")
	assert.Equal(t, 29, status.Pathfinding.Remaining)
	assert.Equal(t, 120, status.Exploration.Remaining)

	events := env.service.AgentEvents("creator", 0)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventPathfindingCompleted, events[0].Type)
}

func TestExplorationService_FindPath_SemanticPreference(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.service.FindPath(context.Background(), "advanced", queries.FindPathQuery{
		From:                   "a",
		To:                     "d",
		Algorithm:              "semantic",
		PreferredRelationships: []string{"CONTAINS", "IMPLEMENTS"},
	})
	require.NoError(t, err)

	// Preferred edges are halved: a-CONTAINS->c (1) + c-IMPLEMENTS->d
	// (0.5) beats a-RELATES_TO->b (2) + b-DEPENDS_ON->d (1.5).
	assert.Equal(t, []string{"a", "c", "d"}, result.Path)
	assert.InDelta(t, 1.5, result.Metadata.TotalWeight, 1e-9)
	assert.InDelta(t, 1/1.5, result.SemanticScore, 1e-9)
}

func TestExplorationService_FindPath_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.FindPath(context.Background(), "researcher", queries.FindPathQuery{
		From: "a",
		To:   "d",
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePathfindingUnauthorized))

	events := env.service.AgentEvents("researcher", 0)
	require.Len(t, events, 1)
	assert.Equal(t, audit.EventPathfindingFailed, events[0].Type)
}

func TestExplorationService_FindPath_NoPathDoesNotConsumeQuota(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.FindPath(context.Background(), "creator", queries.FindPathQuery{
		From: "d",
		To:   "a",
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNoPathExists))
	assert.Equal(t, 30, env.service.RateLimitStatus("creator").Pathfinding.Remaining)
}

func TestExplorationService_FindPath_NodeNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.FindPath(context.Background(), "creator", queries.FindPathQuery{
		From: "a",
		To:   "nonexistent",
	})

	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeResourceNotFound))
}

func TestExplorationService_EstimateCost_NeverConsumesQuota(t *testing.T) {
	env := newTestEnv(t)

	cost := env.service.EstimateCost(context.Background(), "researcher", queries.EstimateCostQuery{
		Operation: "exploration",
		Depth:     2,
	})

	assert.True(t, cost.CanExecute)
	assert.Greater(t, cost.ResourceCredits, 0)
	assert.Equal(t, 60, env.service.RateLimitStatus("researcher").Exploration.Remaining)
}

func TestExplorationService_EstimateCost_PathfindingTierGate(t *testing.T) {
	env := newTestEnv(t)

	// Advanced researchers may run pathfinding, but estimation only
	// clears the path-creator tier.
	cost := env.service.EstimateCost(context.Background(), "advanced", queries.EstimateCostQuery{
		Operation: "pathfinding",
	})
	assert.False(t, cost.CanExecute)
	assert.Equal(t, domainservices.BlockedInsufficientAttestation, cost.BlockedReason)

	cost = env.service.EstimateCost(context.Background(), "creator", queries.EstimateCostQuery{
		Operation: "pathfinding",
	})
	assert.True(t, cost.CanExecute)
	assert.Equal(t, domainservices.PathfindingCredits, cost.ResourceCredits)
}

func TestExplorationService_EstimateCost_BlockedDepth(t *testing.T) {
	env := newTestEnv(t)

	cost := env.service.EstimateCost(context.Background(), "basic", queries.EstimateCostQuery{
		Operation: "exploration",
		Depth:     3,
	})

	assert.False(t, cost.CanExecute)
	assert.Equal(t, domainservices.BlockedInsufficientAttestation, cost.BlockedReason)
}

func TestExplorationService_RecentEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.service.ExploreNeighborhood(ctx, "researcher", queries.ExploreNeighborhoodQuery{Focus: "a", Depth: 1})
	require.NoError(t, err)
	_, err = env.service.FindPath(ctx, "creator", queries.FindPathQuery{From: "a", To: "d"})
	require.NoError(t, err)

	events := env.service.RecentEvents(0)
	require.Len(t, events, 2)
	assert.Equal(t, audit.EventPathfindingCompleted, events[0].Type)
	assert.Equal(t, audit.EventExplorationCompleted, events[1].Type)
}
