package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"lamad-backend/application/ports"
)

// stubDirectory is a fixed agent directory for tests
type stubDirectory struct {
	records []ports.AgentRecord
	err     error
}

func (d *stubDirectory) GetAgentIndex(ctx context.Context) ([]ports.AgentRecord, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.records, nil
}

func newTestAuthority(records []ports.AgentRecord) *AttestationAuthority {
	return NewAttestationAuthority(&stubDirectory{records: records}, zap.NewNop())
}

func TestAttestationAuthority_CheckAttestations_TierResolution(t *testing.T) {
	tests := []struct {
		name         string
		attestations []string
		wantTier     Tier
		wantMaxDepth int
	}{
		{
			name:         "authentication only",
			attestations: []string{"authentication"},
			wantTier:     TierAuthenticated,
			wantMaxDepth: 1,
		},
		{
			name:         "graph researcher",
			attestations: []string{"authentication", "graph-researcher"},
			wantTier:     TierGraphResearcher,
			wantMaxDepth: 2,
		},
		{
			name:         "advanced researcher",
			attestations: []string{"authentication", "advanced-researcher"},
			wantTier:     TierAdvancedResearcher,
			wantMaxDepth: 3,
		},
		{
			name:         "path creator",
			attestations: []string{"path-creator"},
			wantTier:     TierPathCreator,
			wantMaxDepth: 3,
		},
		{
			name:         "curriculum architect maps to path creator",
			attestations: []string{"curriculum-architect"},
			wantTier:     TierPathCreator,
			wantMaxDepth: 3,
		},
		{
			name:         "highest attestation wins",
			attestations: []string{"authentication", "graph-researcher", "path-creator"},
			wantTier:     TierPathCreator,
			wantMaxDepth: 3,
		},
		{
			name:         "empty attestation set falls back to authenticated",
			attestations: []string{},
			wantTier:     TierAuthenticated,
			wantMaxDepth: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authority := newTestAuthority([]ports.AgentRecord{
				{ID: "agent-1", Attestations: tt.attestations},
			})

			check := authority.CheckAttestations(context.Background(), "agent-1", 0)

			assert.Equal(t, tt.wantTier, check.Tier)
			assert.Equal(t, tt.wantMaxDepth, check.MaxAllowedDepth)
			assert.True(t, check.Allowed)
		})
	}
}

func TestAttestationAuthority_CheckAttestations_DepthGating(t *testing.T) {
	authority := newTestAuthority([]ports.AgentRecord{
		{ID: "researcher", Attestations: []string{"authentication", "graph-researcher"}},
	})

	allowed := authority.CheckAttestations(context.Background(), "researcher", 2)
	assert.True(t, allowed.Allowed)
	assert.Empty(t, allowed.RequiredAttestation)

	denied := authority.CheckAttestations(context.Background(), "researcher", 3)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 2, denied.MaxAllowedDepth)
	assert.Equal(t, AttestationAdvancedResearcher, denied.RequiredAttestation)
	assert.NotEmpty(t, denied.Reason)
}

func TestAttestationAuthority_CheckAttestations_UnknownAgent(t *testing.T) {
	authority := newTestAuthority([]ports.AgentRecord{
		{ID: "someone-else", Attestations: []string{"path-creator"}},
	})

	// Depth 0 stays open to everyone.
	check := authority.CheckAttestations(context.Background(), "stranger", 0)
	assert.True(t, check.Allowed)
	assert.Equal(t, TierUnauthenticated, check.Tier)

	// Anything deeper needs authentication first.
	denied := authority.CheckAttestations(context.Background(), "stranger", 1)
	assert.False(t, denied.Allowed)
	assert.Equal(t, AttestationAuthentication, denied.RequiredAttestation)
}

func TestAttestationAuthority_CheckAttestations_DirectoryFailureFailsClosed(t *testing.T) {
	directory := &stubDirectory{err: errors.New("directory unavailable")}
	authority := NewAttestationAuthority(directory, zap.NewNop())

	check := authority.CheckAttestations(context.Background(), "agent-1", 1)

	assert.False(t, check.Allowed)
	assert.Equal(t, TierUnauthenticated, check.Tier)
	assert.Equal(t, 0, check.MaxAllowedDepth)
}

func TestAttestationAuthority_CheckPathfinding(t *testing.T) {
	authority := newTestAuthority([]ports.AgentRecord{
		{ID: "creator", Attestations: []string{"path-creator"}},
		{ID: "advanced", Attestations: []string{"advanced-researcher"}},
		{ID: "researcher", Attestations: []string{"graph-researcher"}},
	})
	ctx := context.Background()

	assert.True(t, authority.CheckPathfinding(ctx, "creator").Allowed)
	assert.True(t, authority.CheckPathfinding(ctx, "advanced").Allowed)

	denied := authority.CheckPathfinding(ctx, "researcher")
	assert.False(t, denied.Allowed)
	assert.Equal(t, AttestationPathCreator, denied.RequiredAttestation)
}

func TestRequiredAttestationForDepth(t *testing.T) {
	assert.Equal(t, AttestationAuthentication, RequiredAttestationForDepth(1))
	assert.Equal(t, AttestationGraphResearcher, RequiredAttestationForDepth(2))
	assert.Equal(t, AttestationAdvancedResearcher, RequiredAttestationForDepth(3))
	assert.Equal(t, AttestationPathCreator, RequiredAttestationForDepth(4))
}

func TestTier_Limits_UnknownTierFallsBack(t *testing.T) {
	limits := Tier("made-up").Limits()
	assert.Equal(t, TierAuthenticated.Limits(), limits)
}
