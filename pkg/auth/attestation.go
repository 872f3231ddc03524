package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lamad-backend/application/ports"
)

// AttestationCheck is the authorization decision for one request.
// Checks are recomputed fresh per request and never cached.
type AttestationCheck struct {
	Allowed             bool   `json:"allowed"`
	MaxAllowedDepth     int    `json:"maxAllowedDepth"`
	Tier                Tier   `json:"tier"`
	RequiredAttestation string `json:"requiredAttestation,omitempty"`
	Reason              string `json:"reason,omitempty"`
}

// pathfindingProbeDepth is the fixed depth used when authorizing
// pathfinding; it is not a real traversal depth.
const pathfindingProbeDepth = 3

// AttestationAuthority resolves an agent's tier from its attestation
// set and decides whether a requested depth is authorized.
type AttestationAuthority struct {
	directory ports.AgentDirectory
	logger    *zap.Logger
}

// NewAttestationAuthority creates a new attestation authority
func NewAttestationAuthority(directory ports.AgentDirectory, logger *zap.Logger) *AttestationAuthority {
	return &AttestationAuthority{
		directory: directory,
		logger:    logger,
	}
}

// CheckAttestations returns the authorization decision for an agent
// requesting a traversal of the given depth. A directory lookup
// failure fails closed: unauthenticated, depth-0 only.
func (a *AttestationAuthority) CheckAttestations(ctx context.Context, agentID string, requestedDepth int) AttestationCheck {
	index, err := a.directory.GetAgentIndex(ctx)
	if err != nil {
		a.logger.Warn("agent directory lookup failed, failing closed",
			zap.String("agentID", agentID),
			zap.Error(err),
		)
		return a.decide(TierUnauthenticated, requestedDepth)
	}

	var attestations []string
	found := false
	for _, record := range index {
		if record.ID == agentID {
			attestations = record.Attestations
			found = true
			break
		}
	}

	if !found {
		return a.decide(TierUnauthenticated, requestedDepth)
	}

	return a.decide(resolveTier(attestations), requestedDepth)
}

// CheckPathfinding authorizes pathfinding access. Beyond the depth
// check it requires a tier with pathfinding rights; the depth passed
// to the underlying check is a fixed probe, not a traversal depth.
func (a *AttestationAuthority) CheckPathfinding(ctx context.Context, agentID string) AttestationCheck {
	check := a.CheckAttestations(ctx, agentID, pathfindingProbeDepth)
	if !check.Tier.CanPathfind() {
		check.Allowed = false
		check.RequiredAttestation = AttestationPathCreator
		check.Reason = fmt.Sprintf("tier '%s' is not authorized for pathfinding", check.Tier)
	}
	return check
}

// decide builds the check result for a resolved tier
func (a *AttestationAuthority) decide(tier Tier, requestedDepth int) AttestationCheck {
	maxDepth := tier.Limits().MaxDepth

	check := AttestationCheck{
		Allowed:         requestedDepth <= maxDepth,
		MaxAllowedDepth: maxDepth,
		Tier:            tier,
	}

	if !check.Allowed {
		if tier == TierUnauthenticated {
			// An unknown or unverified agent needs authentication before
			// any deeper attestation matters.
			check.RequiredAttestation = AttestationAuthentication
		} else {
			check.RequiredAttestation = RequiredAttestationForDepth(requestedDepth)
		}
		check.Reason = fmt.Sprintf(
			"depth %d exceeds the maximum of %d for tier '%s'; attestation '%s' required",
			requestedDepth, maxDepth, tier, check.RequiredAttestation,
		)
	}

	return check
}

// resolveTier maps an attestation set to a tier, highest wins
func resolveTier(attestations []string) Tier {
	has := make(map[string]bool, len(attestations))
	for _, attestation := range attestations {
		has[attestation] = true
	}

	switch {
	case has[AttestationPathCreator] || has[AttestationCurriculumArchitect]:
		return TierPathCreator
	case has[AttestationAdvancedResearcher]:
		return TierAdvancedResearcher
	case has[AttestationGraphResearcher]:
		return TierGraphResearcher
	default:
		return TierAuthenticated
	}
}
