package queries

import (
	"lamad-backend/domain/core/entities"
	"lamad-backend/domain/services"
)

// FindPathQuery is the wire form of a pathfinding request
type FindPathQuery struct {
	From                   string   `json:"from" validate:"required"`
	To                     string   `json:"to" validate:"required"`
	Algorithm              string   `json:"algorithm,omitempty" validate:"omitempty,oneof=shortest semantic"`
	MaxHops                int      `json:"maxHops,omitempty" validate:"min=0"`
	PreferredRelationships []string `json:"preferredRelationships,omitempty"`
}

// ToPathQuery converts the wire form into pathfinding parameters
func (q FindPathQuery) ToPathQuery() services.PathQuery {
	preferred := make([]entities.RelationshipType, 0, len(q.PreferredRelationships))
	for _, t := range q.PreferredRelationships {
		preferred = append(preferred, entities.RelationshipType(t))
	}

	return services.PathQuery{
		From:                   q.From,
		To:                     q.To,
		Algorithm:              q.Algorithm,
		MaxHops:                q.MaxHops,
		PreferredRelationships: preferred,
	}
}

// EstimateCostQuery is the wire form of a cost estimation request
type EstimateCostQuery struct {
	Operation string `json:"operation" validate:"required"`
	Depth     int    `json:"depth,omitempty" validate:"min=0"`
}
