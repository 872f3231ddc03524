package queries

import (
	"lamad-backend/domain/core/entities"
	"lamad-backend/domain/services"
)

// ExploreNeighborhoodQuery is the wire form of a neighborhood request.
// The calling agent's identity is carried on the request context, not
// in the query itself.
type ExploreNeighborhoodQuery struct {
	Focus               string   `json:"focus" validate:"required"`
	Depth               int      `json:"depth" validate:"min=0,max=10"`
	RelationshipFilter  []string `json:"relationshipFilter,omitempty"`
	ContentTypeFilter   []string `json:"contentTypeFilter,omitempty"`
	ExcludeContentTypes []string `json:"excludeContentTypes,omitempty"`
	MaxNodes            int      `json:"maxNodes,omitempty" validate:"min=0"`
	IncludeContent      *bool    `json:"includeContent,omitempty"`
}

// ToTraversalQuery converts the wire form into traversal parameters.
// Content is included unless the caller explicitly opted out.
func (q ExploreNeighborhoodQuery) ToTraversalQuery() services.TraversalQuery {
	includeContent := true
	if q.IncludeContent != nil {
		includeContent = *q.IncludeContent
	}

	relationshipFilter := make([]entities.RelationshipType, 0, len(q.RelationshipFilter))
	for _, t := range q.RelationshipFilter {
		relationshipFilter = append(relationshipFilter, entities.RelationshipType(t))
	}

	return services.TraversalQuery{
		Focus:               q.Focus,
		Depth:               q.Depth,
		RelationshipFilter:  relationshipFilter,
		ContentTypeFilter:   q.ContentTypeFilter,
		ExcludeContentTypes: q.ExcludeContentTypes,
		MaxNodes:            q.MaxNodes,
		IncludeContent:      includeContent,
	}
}
