package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType classifies an audit event
type EventType string

const (
	EventExplorationCompleted EventType = "exploration.completed"
	EventExplorationFailed    EventType = "exploration.failed"
	EventPathfindingCompleted EventType = "pathfinding.completed"
	EventPathfindingFailed    EventType = "pathfinding.failed"
)

// ExplorationEvent is one entry of the audit log
type ExplorationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	AgentID   string                 `json:"agentId"`
	Query     map[string]interface{} `json:"query,omitempty"`
	Result    map[string]interface{} `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// DefaultCapacity is the number of events retained in memory
const DefaultCapacity = 1000

// EventLog is a bounded, append-mostly audit buffer. It is a true ring
// buffer: appending over capacity overwrites the oldest entry in O(1)
// instead of compacting a slice.
type EventLog struct {
	mu    sync.RWMutex
	buf   []ExplorationEvent
	head  int
	count int
}

// NewEventLog creates an event log with the given capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EventLog{
		buf: make([]ExplorationEvent, capacity),
	}
}

// Append records an event, assigning it an id and timestamp
func (l *EventLog) Append(event ExplorationEvent) ExplorationEvent {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	pos := (l.head + l.count) % len(l.buf)
	l.buf[pos] = event
	if l.count < len(l.buf) {
		l.count++
	} else {
		l.head = (l.head + 1) % len(l.buf)
	}

	return event
}

// Recent returns up to limit events, newest first
func (l *EventLog) Recent(limit int) []ExplorationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > l.count {
		limit = l.count
	}

	events := make([]ExplorationEvent, 0, limit)
	for i := 0; i < limit; i++ {
		pos := (l.head + l.count - 1 - i) % len(l.buf)
		events = append(events, l.buf[pos])
	}
	return events
}

// ByAgent returns up to limit events for one agent, newest first
func (l *EventLog) ByAgent(agentID string, limit int) []ExplorationEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > l.count {
		limit = l.count
	}

	events := make([]ExplorationEvent, 0, limit)
	for i := 0; i < l.count && len(events) < limit; i++ {
		pos := (l.head + l.count - 1 - i) % len(l.buf)
		if l.buf[pos].AgentID == agentID {
			events = append(events, l.buf[pos])
		}
	}
	return events
}

// Len returns the number of retained events
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
