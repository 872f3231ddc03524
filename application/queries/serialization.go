package queries

import (
	"sort"

	"lamad-backend/domain/core/entities"
	"lamad-backend/domain/services"
)

// DepthBucket is one depth level of a serialized graph view
type DepthBucket struct {
	Depth int                    `json:"depth"`
	Nodes []entities.ContentNode `json:"nodes"`
}

// SerializedGraphView is the ordered record form of a GraphView, used
// for storage and transport. Depth keys are carried as integers so
// they survive encodings that stringify map keys.
type SerializedGraphView struct {
	Focus     entities.ContentNode  `json:"focus"`
	Neighbors []DepthBucket         `json:"neighbors"`
	Edges     []services.GraphEdge  `json:"edges"`
	Metadata  services.ViewMetadata `json:"metadata"`
}

// SerializeGraphView converts a depth-keyed view into ordered record
// form, depth ascending
func SerializeGraphView(view services.GraphView) SerializedGraphView {
	depths := make([]int, 0, len(view.Neighbors))
	for depth := range view.Neighbors {
		depths = append(depths, depth)
	}
	sort.Ints(depths)

	buckets := make([]DepthBucket, 0, len(depths))
	for _, depth := range depths {
		buckets = append(buckets, DepthBucket{
			Depth: depth,
			Nodes: view.Neighbors[depth],
		})
	}

	return SerializedGraphView{
		Focus:     view.Focus,
		Neighbors: buckets,
		Edges:     view.Edges,
		Metadata:  view.Metadata,
	}
}

// DeserializeGraphView restores the depth-keyed form
func DeserializeGraphView(serialized SerializedGraphView) services.GraphView {
	neighbors := make(map[int][]entities.ContentNode, len(serialized.Neighbors))
	for _, bucket := range serialized.Neighbors {
		neighbors[bucket.Depth] = bucket.Nodes
	}

	return services.GraphView{
		Focus:     serialized.Focus,
		Neighbors: neighbors,
		Edges:     serialized.Edges,
		Metadata:  serialized.Metadata,
	}
}
