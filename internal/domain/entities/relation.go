package entities

// RelationType defines the kind of relation between two people.
type RelationType string

const (
	RelationBetrothal        RelationType = "betrothal"
	RelationMarriage         RelationType = "marriage"
	RelationDivorce          RelationType = "divorce"
	RelationLevirateMarriage RelationType = "levirate_marriage"
	RelationLevirateRelease  RelationType = "levirate_release"
	RelationParentChild      RelationType = "parent_child"
	RelationSibling          RelationType = "sibling"
	RelationUnmarriedUnion   RelationType = "unmarried_union"
)

// ValidRelationTypes lists every relation type in declaration order, for
// input validation and help text.
var ValidRelationTypes = []RelationType{
	RelationBetrothal,
	RelationMarriage,
	RelationDivorce,
	RelationLevirateMarriage,
	RelationLevirateRelease,
	RelationParentChild,
	RelationSibling,
	RelationUnmarriedUnion,
}

// IsValid reports whether the relation type is one of the known kinds.
func (t RelationType) IsValid() bool {
	for _, v := range ValidRelationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsUnion reports whether the relation type joins a couple (as opposed to
// recording descent, siblinghood, or the end of a union).
func (t RelationType) IsUnion() bool {
	switch t {
	case RelationBetrothal, RelationMarriage, RelationLevirateMarriage, RelationUnmarriedUnion:
		return true
	}
	return false
}

// IsSpousal reports whether the relation type makes the pair spouses for
// levirate purposes. Betrothal and unmarried unions do not.
func (t RelationType) IsSpousal() bool {
	return t == RelationMarriage || t == RelationLevirateMarriage
}

// Relation represents a directed connection between two people. For
// parent_child relations the source is the parent; for unions the direction
// carries no meaning. ChildIDs lists children attributed to a union in the
// order they were recorded.
type Relation struct {
	ID              string       `json:"id"`
	Type            RelationType `json:"type"`
	SourceID        string       `json:"source_id"`
	TargetID        string       `json:"target_id"`
	IntroducedSlice int          `json:"introduced_slice"`
	ChildIDs        []string     `json:"child_ids,omitempty"`
	Hidden          bool         `json:"hidden,omitempty"`
}

// Touches reports whether the relation has the person as either endpoint.
func (r Relation) Touches(personID string) bool {
	return r.SourceID == personID || r.TargetID == personID
}

// Other returns the opposite endpoint from the given person. The second
// return is false when the person is not an endpoint.
func (r Relation) Other(personID string) (string, bool) {
	switch personID {
	case r.SourceID:
		return r.TargetID, true
	case r.TargetID:
		return r.SourceID, true
	}
	return "", false
}

// Between reports whether the relation connects exactly this pair, in
// either direction.
func (r Relation) Between(a, b string) bool {
	return (r.SourceID == a && r.TargetID == b) || (r.SourceID == b && r.TargetID == a)
}

// RelationChanges is a partial update applied to an existing relation by an
// update_relation event. Nil fields are left unchanged; AddChildIDs appends.
type RelationChanges struct {
	Type        *RelationType `json:"type,omitempty"`
	AddChildIDs []string      `json:"add_child_ids,omitempty"`
	Hidden      *bool         `json:"hidden,omitempty"`
}

// Empty reports whether the change set would alter nothing.
func (c RelationChanges) Empty() bool {
	return c.Type == nil && len(c.AddChildIDs) == 0 && c.Hidden == nil
}
