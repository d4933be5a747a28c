package entities

// Snapshot is the resolved state of a graph at one slice: every person and
// relation introduced at or before it, with deaths and relation updates up
// to that slice applied. Snapshots are immutable; accessors return copies,
// so a cached snapshot can be shared between computations.
//
// People are held in the order they entered the timeline, relations in
// introduction order (slice order, then event order within a slice). Both
// orders are part of the contract: candidate lists and status lists derive
// their ordering from them.
type Snapshot struct {
	GraphID string
	Version int
	Slice   int

	people      []Person
	personIdx   map[string]int
	relations   []Relation
	relationIdx map[string]int
	byPerson    map[string][]int
}

// NewSnapshot builds a snapshot from resolved people and relations. The
// inputs are copied; the caller's slices stay untouched.
func NewSnapshot(graphID string, version, slice int, people []Person, relations []Relation) *Snapshot {
	s := &Snapshot{
		GraphID:     graphID,
		Version:     version,
		Slice:       slice,
		people:      make([]Person, len(people)),
		personIdx:   make(map[string]int, len(people)),
		relations:   make([]Relation, len(relations)),
		relationIdx: make(map[string]int, len(relations)),
		byPerson:    make(map[string][]int),
	}
	copy(s.people, people)
	for i, p := range s.people {
		s.personIdx[p.ID] = i
	}
	for i, r := range relations {
		r.ChildIDs = append([]string(nil), r.ChildIDs...)
		s.relations[i] = r
		s.relationIdx[r.ID] = i
		s.byPerson[r.SourceID] = append(s.byPerson[r.SourceID], i)
		if r.TargetID != r.SourceID {
			s.byPerson[r.TargetID] = append(s.byPerson[r.TargetID], i)
		}
	}
	return s
}

// Contains reports whether the person exists in the snapshot.
func (s *Snapshot) Contains(personID string) bool {
	_, ok := s.personIdx[personID]
	return ok
}

// Person returns the person by ID.
func (s *Snapshot) Person(personID string) (Person, bool) {
	i, ok := s.personIdx[personID]
	if !ok {
		return Person{}, false
	}
	return s.people[i], true
}

// Alive reports whether the person exists and is alive at the snapshot's
// slice.
func (s *Snapshot) Alive(personID string) bool {
	p, ok := s.Person(personID)
	return ok && p.AliveAt(s.Slice)
}

// Relation returns the relation by ID.
func (s *Snapshot) Relation(relationID string) (Relation, bool) {
	i, ok := s.relationIdx[relationID]
	if !ok {
		return Relation{}, false
	}
	return cloneRelation(s.relations[i]), true
}

// People returns all people in snapshot order.
func (s *Snapshot) People() []Person {
	out := make([]Person, len(s.people))
	copy(out, s.people)
	return out
}

// Relations returns all relations in introduction order.
func (s *Snapshot) Relations() []Relation {
	out := make([]Relation, len(s.relations))
	for i, r := range s.relations {
		out[i] = cloneRelation(r)
	}
	return out
}

// RelationsOf returns the relations touching the person, in introduction
// order.
func (s *Snapshot) RelationsOf(personID string) []Relation {
	indices := s.byPerson[personID]
	out := make([]Relation, 0, len(indices))
	for _, i := range indices {
		out = append(out, cloneRelation(s.relations[i]))
	}
	return out
}

// ParentsOf returns the parents of the person: sources of parent_child
// relations targeting them, plus both partners of any union listing them as
// a child. Introduction order, deduplicated.
func (s *Snapshot) ParentsOf(personID string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && id != personID && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, i := range s.byPerson[personID] {
		r := s.relations[i]
		if r.Type == RelationParentChild && r.TargetID == personID {
			add(r.SourceID)
		}
	}
	for _, r := range s.relations {
		if !r.Type.IsUnion() {
			continue
		}
		for _, childID := range r.ChildIDs {
			if childID == personID {
				add(r.SourceID)
				add(r.TargetID)
				break
			}
		}
	}
	return out
}

// ChildrenOf returns the children of the person: targets of parent_child
// relations they source, plus children of unions they are a partner in.
// Introduction order, deduplicated.
func (s *Snapshot) ChildrenOf(personID string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && id != personID && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, i := range s.byPerson[personID] {
		r := s.relations[i]
		if r.Type == RelationParentChild && r.SourceID == personID {
			add(r.TargetID)
		}
		if r.Type.IsUnion() {
			for _, childID := range r.ChildIDs {
				add(childID)
			}
		}
	}
	return out
}

// UnionChildren returns the children attributed to a union relation, in
// recorded order. The second return is false when the relation does not
// exist or is not a union.
func (s *Snapshot) UnionChildren(relationID string) ([]string, bool) {
	i, ok := s.relationIdx[relationID]
	if !ok || !s.relations[i].Type.IsUnion() {
		return nil, false
	}
	return append([]string(nil), s.relations[i].ChildIDs...), true
}

func cloneRelation(r Relation) Relation {
	r.ChildIDs = append([]string(nil), r.ChildIDs...)
	return r
}
