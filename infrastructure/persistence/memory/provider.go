package memory

import (
	"context"
	"sync"

	"lamad-backend/application/ports"
	"lamad-backend/domain/core/aggregates"
	"lamad-backend/domain/core/entities"
)

// GraphProvider serves snapshots from process memory. It backs local
// development and tests; the snapshot itself stays immutable, only
// the pointer is swapped under the lock.
type GraphProvider struct {
	mu    sync.RWMutex
	graph *aggregates.ContentGraph
}

// NewGraphProvider creates an in-memory graph provider with an empty
// snapshot
func NewGraphProvider() *GraphProvider {
	return &GraphProvider{
		graph: aggregates.NewContentGraph(nil, nil),
	}
}

// Load replaces the served snapshot
func (p *GraphProvider) Load(nodes []entities.ContentNode, relationships []entities.ContentRelationship) {
	snapshot := aggregates.NewContentGraph(nodes, relationships)
	p.mu.Lock()
	p.graph = snapshot
	p.mu.Unlock()
}

// GetGraph returns the current snapshot
func (p *GraphProvider) GetGraph(ctx context.Context) (*aggregates.ContentGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.graph, nil
}

// AgentDirectory serves agent attestation records from process memory
type AgentDirectory struct {
	mu      sync.RWMutex
	records []ports.AgentRecord
}

// NewAgentDirectory creates an in-memory agent directory
func NewAgentDirectory() *AgentDirectory {
	return &AgentDirectory{}
}

// SetAgents replaces the directory contents
func (d *AgentDirectory) SetAgents(records []ports.AgentRecord) {
	d.mu.Lock()
	d.records = records
	d.mu.Unlock()
}

// GetAgentIndex returns all known agents with their attestations
func (d *AgentDirectory) GetAgentIndex(ctx context.Context) ([]ports.AgentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	index := make([]ports.AgentRecord, len(d.records))
	copy(index, d.records)
	return index, nil
}
