package entities

// RelationshipType classifies a directed edge between content nodes
type RelationshipType string

// Known relationship types. The vocabulary mirrors what the content
// store accepts; unknown types are tolerated and treated as lateral.
const (
	RelRelatesTo    RelationshipType = "RELATES_TO"
	RelContains     RelationshipType = "CONTAINS"
	RelBelongsTo    RelationshipType = "BELONGS_TO"
	RelDependsOn    RelationshipType = "DEPENDS_ON"
	RelImplements   RelationshipType = "IMPLEMENTS"
	RelExtends      RelationshipType = "EXTENDS"
	RelReferences   RelationshipType = "REFERENCES"
	RelPrerequisite RelationshipType = "PREREQUISITE"
	RelUnknown      RelationshipType = "unknown"
)

// RelationshipCategory groups relationship types by their structural role
type RelationshipCategory string

const (
	// CategoryHierarchical relationships can form containment chains
	CategoryHierarchical RelationshipCategory = "hierarchical"
	// CategoryLateral relationships are peer associations
	CategoryLateral RelationshipCategory = "lateral"
)

// relationshipRule is one row of the classification table
type relationshipRule struct {
	Category   RelationshipCategory
	BaseWeight float64
}

// relationshipRules is the single dispatch table for relationship
// classification and semantic edge weights. Types absent from the
// table fall back to defaultRelationshipRule.
var relationshipRules = map[RelationshipType]relationshipRule{
	RelBelongsTo:    {Category: CategoryHierarchical, BaseWeight: 1},
	RelContains:     {Category: CategoryHierarchical, BaseWeight: 2},
	RelDependsOn:    {Category: CategoryHierarchical, BaseWeight: 1.5},
	RelPrerequisite: {Category: CategoryHierarchical, BaseWeight: 2},
	RelRelatesTo:    {Category: CategoryLateral, BaseWeight: 2},
	RelImplements:   {Category: CategoryLateral, BaseWeight: 1},
	RelExtends:      {Category: CategoryLateral, BaseWeight: 1.5},
	RelReferences:   {Category: CategoryLateral, BaseWeight: 2},
}

var defaultRelationshipRule = relationshipRule{
	Category:   CategoryLateral,
	BaseWeight: 2,
}

// Category returns the structural category for a relationship type
func (t RelationshipType) Category() RelationshipCategory {
	if rule, ok := relationshipRules[t]; ok {
		return rule.Category
	}
	return defaultRelationshipRule.Category
}

// BaseWeight returns the semantic traversal weight for a relationship type
func (t RelationshipType) BaseWeight() float64 {
	if rule, ok := relationshipRules[t]; ok {
		return rule.BaseWeight
	}
	return defaultRelationshipRule.BaseWeight
}

// IsHierarchical reports whether the type can form containment chains
func (t RelationshipType) IsHierarchical() bool {
	return t.Category() == CategoryHierarchical
}
