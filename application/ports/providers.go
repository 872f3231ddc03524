package ports

import (
	"context"

	"lamad-backend/domain/core/aggregates"
)

// AgentRecord is one entry of the agent directory
type AgentRecord struct {
	ID           string   `json:"id"`
	Attestations []string `json:"attestations"`
}

// GraphProvider supplies an immutable content-graph snapshot per query.
// This is a port in hexagonal architecture - the engine doesn't know
// where the snapshot comes from.
type GraphProvider interface {
	// GetGraph returns the current graph snapshot. It may fail or
	// return an empty graph; callers treat both conservatively.
	GetGraph(ctx context.Context) (*aggregates.ContentGraph, error)
}

// AgentDirectory supplies the attestation sets of known agents
type AgentDirectory interface {
	// GetAgentIndex returns all known agents with their attestations.
	// A failure is treated as "no attestations found" by callers.
	GetAgentIndex(ctx context.Context) ([]AgentRecord, error)
}

// EventPublisher mirrors audit events onto an external bus.
// Publishing is best effort and never blocks or fails a query.
type EventPublisher interface {
	Publish(ctx context.Context, detailType string, detail interface{}) error
}
