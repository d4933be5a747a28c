package entities

import (
	"github.com/ersonp/yichus-core/internal/errors"
)

// RawEvent is an event parsed from an external source (import file or LLM
// extraction) before validation. Fields are flat so the record survives CSV;
// which ones are required depends on Type. Slice is a pointer to distinguish
// slice 0 from unset; an unset slice means "the next slice after the
// current latest".
type RawEvent struct {
	Slice        *int     `json:"slice,omitempty"`
	Type         string   `json:"type"`
	PersonID     string   `json:"person_id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Sex          string   `json:"sex,omitempty"`
	RelationID   string   `json:"relation_id,omitempty"`
	RelationType string   `json:"relation_type,omitempty"`
	SourceID     string   `json:"source_id,omitempty"`
	TargetID     string   `json:"target_id,omitempty"`
	ChildIDs     []string `json:"child_ids,omitempty"`
	Hidden       *bool    `json:"hidden,omitempty"`
	LineNum      int      `json:"-"` // Line number in source file (set by parser)
}

// ToEvent validates the raw record's shape and converts it to an Event.
// Shape only: referential checks (endpoints exist, IDs unused) happen when
// the event is folded into a snapshot.
func (r RawEvent) ToEvent() (Event, error) {
	switch EventType(r.Type) {
	case EventAddPerson:
		if r.PersonID == "" {
			return Event{}, errors.New("add_person requires person_id")
		}
		if r.Name == "" {
			return Event{}, errors.Newf("add_person %q requires name", r.PersonID)
		}
		sex := Sex(r.Sex)
		if sex != SexMale && sex != SexFemale {
			return Event{}, errors.Newf("add_person %q has invalid sex %q", r.PersonID, r.Sex)
		}
		return NewAddPerson(Person{
			ID:             r.PersonID,
			Name:           r.Name,
			NormalizedName: NormalizeName(r.Name),
			Sex:            sex,
		}), nil

	case EventAddRelation:
		if r.RelationID == "" {
			return Event{}, errors.New("add_relation requires relation_id")
		}
		relType := RelationType(r.RelationType)
		if !relType.IsValid() {
			return Event{}, errors.Newf("add_relation %q has invalid relation type %q", r.RelationID, r.RelationType)
		}
		if r.SourceID == "" || r.TargetID == "" {
			return Event{}, errors.Newf("add_relation %q requires source_id and target_id", r.RelationID)
		}
		return NewAddRelation(Relation{
			ID:       r.RelationID,
			Type:     relType,
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			ChildIDs: r.ChildIDs,
			Hidden:   r.Hidden != nil && *r.Hidden,
		}), nil

	case EventMarkDeceased:
		if r.PersonID == "" {
			return Event{}, errors.New("mark_deceased requires person_id")
		}
		return NewMarkDeceased(r.PersonID), nil

	case EventUpdateRelation:
		if r.RelationID == "" {
			return Event{}, errors.New("update_relation requires relation_id")
		}
		changes := RelationChanges{AddChildIDs: r.ChildIDs, Hidden: r.Hidden}
		if r.RelationType != "" {
			relType := RelationType(r.RelationType)
			if !relType.IsValid() {
				return Event{}, errors.Newf("update_relation %q has invalid relation type %q", r.RelationID, r.RelationType)
			}
			changes.Type = &relType
		}
		if changes.Empty() {
			return Event{}, errors.Newf("update_relation %q changes nothing", r.RelationID)
		}
		return NewUpdateRelation(r.RelationID, changes), nil
	}
	return Event{}, errors.Newf("unknown event type %q", r.Type)
}

// NewRawEvent flattens an event back into a raw record at the given slice.
// Export is the inverse of import: ToEvent(NewRawEvent(s, ev)) reproduces ev.
func NewRawEvent(slice int, ev Event) RawEvent {
	raw := RawEvent{Slice: &slice, Type: string(ev.Type)}
	switch ev.Type {
	case EventAddPerson:
		if ev.Person != nil {
			raw.PersonID = ev.Person.ID
			raw.Name = ev.Person.Name
			raw.Sex = string(ev.Person.Sex)
		}
	case EventAddRelation:
		if ev.Relation != nil {
			raw.RelationID = ev.Relation.ID
			raw.RelationType = string(ev.Relation.Type)
			raw.SourceID = ev.Relation.SourceID
			raw.TargetID = ev.Relation.TargetID
			raw.ChildIDs = ev.Relation.ChildIDs
			if ev.Relation.Hidden {
				hidden := true
				raw.Hidden = &hidden
			}
		}
	case EventMarkDeceased:
		raw.PersonID = ev.PersonID
	case EventUpdateRelation:
		raw.RelationID = ev.RelationID
		if ev.Changes != nil {
			if ev.Changes.Type != nil {
				raw.RelationType = string(*ev.Changes.Type)
			}
			raw.ChildIDs = ev.Changes.AddChildIDs
			raw.Hidden = ev.Changes.Hidden
		}
	}
	return raw
}
