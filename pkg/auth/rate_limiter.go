package auth

import (
	"sync"
	"time"
)

// LimitKind selects which quota counter an operation draws from
type LimitKind string

const (
	KindExploration LimitKind = "exploration"
	KindPathfinding LimitKind = "pathfinding"
)

// QuotaStatus reports one counter of an agent's current window
type QuotaStatus struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// RateLimitStatus is a point-in-time projection of an agent's quota
type RateLimitStatus struct {
	AgentID     string        `json:"agentId"`
	Tier        Tier          `json:"tier"`
	Exploration QuotaStatus   `json:"exploration"`
	Pathfinding QuotaStatus   `json:"pathfinding"`
	ResetsAt    time.Time     `json:"resetsAt"`
	ResetsIn    time.Duration `json:"resetsInMs"`
}

// agentWindow is the per-agent mutable rate-limit state. It lives only
// for the process and is never persisted.
type agentWindow struct {
	mu               sync.Mutex
	tier             Tier
	windowStart      time.Time
	explorationCount int
	pathfindingCount int
}

// TieredRateLimiter tracks per-agent windowed quotas with
// tier-dependent limits. A map-level lock guards agent creation and a
// per-agent lock keeps check-and-count atomic under concurrency.
type TieredRateLimiter struct {
	mu     sync.RWMutex
	agents map[string]*agentWindow
	now    func() time.Time
}

// NewTieredRateLimiter creates a new tiered rate limiter
func NewTieredRateLimiter() *TieredRateLimiter {
	return &TieredRateLimiter{
		agents: make(map[string]*agentWindow),
		now:    time.Now,
	}
}

// NewTieredRateLimiterWithClock creates a limiter with an injected
// clock, for tests that exercise window expiry.
func NewTieredRateLimiterWithClock(now func() time.Time) *TieredRateLimiter {
	return &TieredRateLimiter{
		agents: make(map[string]*agentWindow),
		now:    now,
	}
}

// getOrCreate lazily initializes the state for an agent
func (l *TieredRateLimiter) getOrCreate(agentID string) *agentWindow {
	l.mu.RLock()
	w, exists := l.agents[agentID]
	l.mu.RUnlock()
	if exists {
		return w
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w, exists = l.agents[agentID]; exists {
		return w
	}
	w = &agentWindow{
		tier:        TierAuthenticated,
		windowStart: l.now(),
	}
	l.agents[agentID] = w
	return w
}

// resetIfExpired restarts the window when the reset interval has
// elapsed. Caller must hold the agent lock.
func (l *TieredRateLimiter) resetIfExpired(w *agentWindow) {
	if l.now().Sub(w.windowStart) >= w.tier.Limits().ResetInterval {
		w.windowStart = l.now()
		w.explorationCount = 0
		w.pathfindingCount = 0
	}
}

// UpdateTier syncs an agent's tier to a freshly computed attestation
// result. Counts for the current window are preserved across the
// change; only future limit lookups use the new tier.
func (l *TieredRateLimiter) UpdateTier(agentID string, tier Tier) {
	w := l.getOrCreate(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tier != tier {
		w.tier = tier
	}
}

// CheckLimit reports whether the agent has quota left for the given
// kind of operation in the current window.
func (l *TieredRateLimiter) CheckLimit(agentID string, kind LimitKind) bool {
	w := l.getOrCreate(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()

	l.resetIfExpired(w)

	limits := w.tier.Limits()
	switch kind {
	case KindPathfinding:
		return w.pathfindingCount < limits.PathfindingPerHour
	default:
		return w.explorationCount < limits.QueriesPerHour
	}
}

// Consume draws one unit of quota. It must only be called after a
// successful operation, never before or on failure.
func (l *TieredRateLimiter) Consume(agentID string, kind LimitKind) {
	w := l.getOrCreate(agentID)
	w.mu.Lock()
	defer w.mu.Unlock()

	l.resetIfExpired(w)

	switch kind {
	case KindPathfinding:
		w.pathfindingCount++
	default:
		w.explorationCount++
	}
}

// Status returns a pure projection of the agent's quota; it never
// mutates state. Agents without state yet are projected as a fresh
// authenticated window.
func (l *TieredRateLimiter) Status(agentID string) RateLimitStatus {
	l.mu.RLock()
	w, exists := l.agents[agentID]
	l.mu.RUnlock()

	now := l.now()
	if !exists {
		return l.projection(agentID, TierAuthenticated, now, 0, 0)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.windowStart) >= w.tier.Limits().ResetInterval {
		// Window has lapsed; project the reset without applying it.
		return l.projection(agentID, w.tier, now, 0, 0)
	}
	return l.projection(agentID, w.tier, w.windowStart, w.explorationCount, w.pathfindingCount)
}

// StatusAs projects the agent's quota as if it held the given tier,
// without mutating the stored tier.
func (l *TieredRateLimiter) StatusAs(agentID string, tier Tier) RateLimitStatus {
	status := l.Status(agentID)
	if status.Tier == tier {
		return status
	}

	limits := tier.Limits()
	used := status.Exploration.Limit - status.Exploration.Remaining
	usedPath := status.Pathfinding.Limit - status.Pathfinding.Remaining

	status.Tier = tier
	status.Exploration = QuotaStatus{Remaining: maxInt(limits.QueriesPerHour-used, 0), Limit: limits.QueriesPerHour}
	status.Pathfinding = QuotaStatus{Remaining: maxInt(limits.PathfindingPerHour-usedPath, 0), Limit: limits.PathfindingPerHour}
	return status
}

func (l *TieredRateLimiter) projection(agentID string, tier Tier, windowStart time.Time, exploration, pathfinding int) RateLimitStatus {
	limits := tier.Limits()
	resetsAt := windowStart.Add(limits.ResetInterval)
	resetsIn := resetsAt.Sub(l.now())
	if resetsIn < 0 {
		resetsIn = 0
	}

	return RateLimitStatus{
		AgentID: agentID,
		Tier:    tier,
		Exploration: QuotaStatus{
			Remaining: maxInt(limits.QueriesPerHour-exploration, 0),
			Limit:     limits.QueriesPerHour,
		},
		Pathfinding: QuotaStatus{
			Remaining: maxInt(limits.PathfindingPerHour-pathfinding, 0),
			Limit:     limits.PathfindingPerHour,
		},
		ResetsAt: resetsAt,
		ResetsIn: resetsIn,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
