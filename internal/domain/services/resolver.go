// Package services contains the domain logic: resolution, status
// computation, levirate derivation, and the tree-level operations built on
// them.
package services

import (
	"sync"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

// ResolverService folds a graph's timeline into snapshots. Resolution is
// deterministic and monotonic: resolving slice N+1 equals resolving slice N
// and folding slice N+1's events on top.
//
// The service keeps at most one cached snapshot per graph ID (the latest
// one resolved), keyed by (graph version, slice). The cache is purely a
// performance optimization; disabling it never changes results.
type ResolverService struct {
	cacheEnabled bool

	mu    sync.Mutex
	cache map[string]cachedSnapshot
}

type cachedSnapshot struct {
	version  int
	slice    int
	snapshot *entities.Snapshot
}

// NewResolverService creates a new ResolverService.
func NewResolverService(cacheEnabled bool) *ResolverService {
	return &ResolverService{
		cacheEnabled: cacheEnabled,
		cache:        make(map[string]cachedSnapshot),
	}
}

// Resolve folds slices 0..sliceIndex of the graph, in declared order, and
// returns the resulting snapshot. Any failure discards the fold: no partial
// snapshot escapes.
func (s *ResolverService) Resolve(g *entities.TemporalGraph, sliceIndex int) (*entities.Snapshot, error) {
	if g == nil {
		return nil, errors.New("graph is required")
	}
	if sliceIndex < 0 || sliceIndex >= len(g.Slices) {
		return nil, errors.Wrapf(errors.ErrOutOfRange, "slice %d of a timeline with %d slices", sliceIndex, len(g.Slices))
	}

	if snap := s.cached(g, sliceIndex); snap != nil {
		return snap, nil
	}

	fold := newFoldState()
	for si := 0; si <= sliceIndex; si++ {
		for ei, ev := range g.Slices[si].Events {
			if err := fold.apply(ev, si); err != nil {
				return nil, errors.Wrapf(err, "slice %d event %d", si, ei)
			}
		}
	}

	snap := entities.NewSnapshot(g.ID, g.Version, sliceIndex, fold.people, fold.relations)
	s.store(g, sliceIndex, snap)
	logging.Debugw("resolved snapshot",
		"graph", g.ID,
		"slice", sliceIndex,
		"people", len(fold.people),
		"relations", len(fold.relations))
	return snap, nil
}

func (s *ResolverService) cached(g *entities.TemporalGraph, sliceIndex int) *entities.Snapshot {
	if !s.cacheEnabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[g.ID]
	if !ok || entry.version != g.Version || entry.slice != sliceIndex {
		return nil
	}
	return entry.snapshot
}

func (s *ResolverService) store(g *entities.TemporalGraph, sliceIndex int, snap *entities.Snapshot) {
	if !s.cacheEnabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[g.ID] = cachedSnapshot{version: g.Version, slice: sliceIndex, snapshot: snap}
}

// foldState is the working accumulator of a single resolution. People and
// relations are copies of the event payloads, so folding never touches the
// graph's own event data.
type foldState struct {
	people      []entities.Person
	personIdx   map[string]int
	relations   []entities.Relation
	relationIdx map[string]int
}

func newFoldState() *foldState {
	return &foldState{
		personIdx:   make(map[string]int),
		relationIdx: make(map[string]int),
	}
}

func (f *foldState) apply(ev entities.Event, slice int) error {
	switch ev.Type {
	case entities.EventAddPerson:
		return f.addPerson(ev, slice)
	case entities.EventAddRelation:
		return f.addRelation(ev, slice)
	case entities.EventMarkDeceased:
		return f.markDeceased(ev, slice)
	case entities.EventUpdateRelation:
		return f.updateRelation(ev, slice)
	default:
		return errors.Newf("unknown event type %q", ev.Type)
	}
}

func (f *foldState) addPerson(ev entities.Event, slice int) error {
	if ev.Person == nil {
		return errors.New("add_person event without a person")
	}
	p := *ev.Person
	if f.idExists(p.ID) {
		return errors.Wrapf(errors.ErrDuplicateID, "person %q", p.ID)
	}
	p.IntroducedSlice = slice
	f.personIdx[p.ID] = len(f.people)
	f.people = append(f.people, p)
	return nil
}

func (f *foldState) addRelation(ev entities.Event, slice int) error {
	if ev.Relation == nil {
		return errors.New("add_relation event without a relation")
	}
	r := *ev.Relation
	if f.idExists(r.ID) {
		return errors.Wrapf(errors.ErrDuplicateID, "relation %q", r.ID)
	}
	if r.SourceID == r.TargetID {
		return errors.Wrapf(errors.ErrDanglingReference, "relation %q references %q on both ends", r.ID, r.SourceID)
	}
	if _, ok := f.personIdx[r.SourceID]; !ok {
		return errors.Wrapf(errors.ErrDanglingReference, "relation %q source %q", r.ID, r.SourceID)
	}
	if _, ok := f.personIdx[r.TargetID]; !ok {
		return errors.Wrapf(errors.ErrDanglingReference, "relation %q target %q", r.ID, r.TargetID)
	}
	for _, childID := range r.ChildIDs {
		if _, ok := f.personIdx[childID]; !ok {
			return errors.Wrapf(errors.ErrDanglingReference, "relation %q child %q", r.ID, childID)
		}
	}
	r.IntroducedSlice = slice
	r.ChildIDs = append([]string(nil), r.ChildIDs...)
	f.relationIdx[r.ID] = len(f.relations)
	f.relations = append(f.relations, r)
	return nil
}

func (f *foldState) markDeceased(ev entities.Event, slice int) error {
	i, ok := f.personIdx[ev.PersonID]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownPerson, "mark_deceased %q", ev.PersonID)
	}
	death := slice
	f.people[i].DeathSlice = &death
	return nil
}

func (f *foldState) updateRelation(ev entities.Event, slice int) error {
	i, ok := f.relationIdx[ev.RelationID]
	if !ok {
		return errors.Wrapf(errors.ErrUnknownRelation, "update_relation %q", ev.RelationID)
	}
	if ev.Changes == nil {
		return errors.Newf("update_relation %q without changes", ev.RelationID)
	}
	r := &f.relations[i]
	if ev.Changes.Type != nil {
		r.Type = *ev.Changes.Type
	}
	for _, childID := range ev.Changes.AddChildIDs {
		if _, ok := f.personIdx[childID]; !ok {
			return errors.Wrapf(errors.ErrDanglingReference, "update_relation %q child %q", ev.RelationID, childID)
		}
		if !containsString(r.ChildIDs, childID) {
			r.ChildIDs = append(r.ChildIDs, childID)
		}
	}
	if ev.Changes.Hidden != nil {
		r.Hidden = *ev.Changes.Hidden
	}
	return nil
}

func (f *foldState) idExists(id string) bool {
	if _, ok := f.personIdx[id]; ok {
		return true
	}
	_, ok := f.relationIdx[id]
	return ok
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
