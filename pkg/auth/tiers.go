package auth

import "time"

// Tier is an agent's verified capability level. Tiers gate traversal
// depth and pathfinding access.
type Tier string

const (
	TierUnauthenticated    Tier = "unauthenticated"
	TierAuthenticated      Tier = "authenticated"
	TierGraphResearcher    Tier = "graph-researcher"
	TierAdvancedResearcher Tier = "advanced-researcher"
	TierPathCreator        Tier = "path-creator"
)

// Attestation names recognized by the directory
const (
	AttestationAuthentication      = "authentication"
	AttestationGraphResearcher     = "graph-researcher"
	AttestationAdvancedResearcher  = "advanced-researcher"
	AttestationPathCreator         = "path-creator"
	AttestationCurriculumArchitect = "curriculum-architect"
)

// TierLimits holds the static quota configuration for one tier
type TierLimits struct {
	MaxDepth           int
	QueriesPerHour     int
	PathfindingPerHour int
	ResetInterval      time.Duration
}

// tierLimits is the static tier configuration table
var tierLimits = map[Tier]TierLimits{
	TierUnauthenticated: {
		MaxDepth:           0,
		QueriesPerHour:     10,
		PathfindingPerHour: 0,
		ResetInterval:      time.Hour,
	},
	TierAuthenticated: {
		MaxDepth:           1,
		QueriesPerHour:     30,
		PathfindingPerHour: 0,
		ResetInterval:      time.Hour,
	},
	TierGraphResearcher: {
		MaxDepth:           2,
		QueriesPerHour:     60,
		PathfindingPerHour: 0,
		ResetInterval:      time.Hour,
	},
	TierAdvancedResearcher: {
		MaxDepth:           3,
		QueriesPerHour:     120,
		PathfindingPerHour: 10,
		ResetInterval:      time.Hour,
	},
	TierPathCreator: {
		MaxDepth:           3,
		QueriesPerHour:     120,
		PathfindingPerHour: 30,
		ResetInterval:      time.Hour,
	},
}

// Limits returns the quota configuration for the tier. Unknown tiers
// fall back to authenticated limits.
func (t Tier) Limits() TierLimits {
	if limits, ok := tierLimits[t]; ok {
		return limits
	}
	return tierLimits[TierAuthenticated]
}

// CanPathfind reports whether the tier is authorized for pathfinding
func (t Tier) CanPathfind() bool {
	return t == TierPathCreator || t == TierAdvancedResearcher
}

// depthAttestations maps a requested depth to the attestation that
// would grant it
var depthAttestations = map[int]string{
	1: AttestationAuthentication,
	2: AttestationGraphResearcher,
	3: AttestationAdvancedResearcher,
}

// RequiredAttestationForDepth resolves which attestation an agent is
// missing for the requested depth
func RequiredAttestationForDepth(depth int) string {
	if attestation, ok := depthAttestations[depth]; ok {
		return attestation
	}
	return AttestationPathCreator
}
