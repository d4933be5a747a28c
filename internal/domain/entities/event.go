// Package entities contains core domain data structures.
package entities

// EventType indicates what kind of change an event applies to a tree.
type EventType string

const (
	EventAddPerson      EventType = "add_person"
	EventAddRelation    EventType = "add_relation"
	EventMarkDeceased   EventType = "mark_deceased"
	EventUpdateRelation EventType = "update_relation"
)

// ValidEventTypes lists every event type in declaration order.
var ValidEventTypes = []EventType{
	EventAddPerson,
	EventAddRelation,
	EventMarkDeceased,
	EventUpdateRelation,
}

// IsValid reports whether the event type is one of the known kinds.
func (t EventType) IsValid() bool {
	for _, v := range ValidEventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Event is a single change recorded at a slice of a tree's timeline. Exactly
// one payload field group is set, according to Type: Person for add_person,
// Relation for add_relation, PersonID for mark_deceased, RelationID and
// Changes for update_relation. History is append-only; corrections are new
// events, never in-place edits.
type Event struct {
	Type       EventType        `json:"type"`
	Person     *Person          `json:"person,omitempty"`
	Relation   *Relation        `json:"relation,omitempty"`
	PersonID   string           `json:"person_id,omitempty"`
	RelationID string           `json:"relation_id,omitempty"`
	Changes    *RelationChanges `json:"changes,omitempty"`
}

// NewAddPerson returns an add_person event introducing p.
func NewAddPerson(p Person) Event {
	return Event{Type: EventAddPerson, Person: &p}
}

// NewAddRelation returns an add_relation event introducing r.
func NewAddRelation(r Relation) Event {
	return Event{Type: EventAddRelation, Relation: &r}
}

// NewMarkDeceased returns a mark_deceased event for the person. The death
// slice is the slice the event is recorded at.
func NewMarkDeceased(personID string) Event {
	return Event{Type: EventMarkDeceased, PersonID: personID}
}

// NewUpdateRelation returns an update_relation event applying the partial
// changes to the relation, effective from the slice the event is recorded at.
func NewUpdateRelation(relationID string, changes RelationChanges) Event {
	return Event{Type: EventUpdateRelation, RelationID: relationID, Changes: &changes}
}
