package services

import (
	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

// LevirateService derives levirate ties: the obligation binding a widow to
// her deceased childless husband's living brothers. Ties are computed from
// snapshots, never stored, so every query sees exactly the relations
// introduced up to its slice and nothing after.
type LevirateService struct {
	resolver *ResolverService
	registry *entities.Registry
}

// NewLevirateService creates a new LevirateService.
func NewLevirateService(resolver *ResolverService, registry *entities.Registry) *LevirateService {
	return &LevirateService{
		resolver: resolver,
		registry: registry,
	}
}

// TiesAt derives every levirate tie visible at the slice, in the
// introduction order of the unions they arise from.
func (s *LevirateService) TiesAt(g *entities.TemporalGraph, sliceIndex int) ([]entities.Tie, error) {
	snap, err := s.resolver.Resolve(g, sliceIndex)
	if err != nil {
		return nil, err
	}
	return s.tiesFromSnapshot(g, snap)
}

// TiesFor derives the ties the person participates in at the slice, whether
// as widow, deceased, candidate, released brother, or resolver.
func (s *LevirateService) TiesFor(g *entities.TemporalGraph, personID string, sliceIndex int) ([]entities.Tie, error) {
	snap, err := s.resolver.Resolve(g, sliceIndex)
	if err != nil {
		return nil, err
	}
	if !snap.Contains(personID) {
		return nil, errors.Wrapf(errors.ErrUnknownPerson, "person %q at slice %d", personID, sliceIndex)
	}
	ties, err := s.tiesFromSnapshot(g, snap)
	if err != nil {
		return nil, err
	}
	var out []entities.Tie
	for _, t := range ties {
		if t.Touches(personID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// YevamimFor returns the people currently holding a levirate obligation
// toward the widow: the outstanding candidates of her active ties, ordered
// by the introduction order of the relations that established their
// siblinghood with the deceased.
func (s *LevirateService) YevamimFor(g *entities.TemporalGraph, widowID string, sliceIndex int) ([]entities.Person, error) {
	snap, err := s.resolver.Resolve(g, sliceIndex)
	if err != nil {
		return nil, err
	}
	if !snap.Contains(widowID) {
		return nil, errors.Wrapf(errors.ErrUnknownPerson, "person %q at slice %d", widowID, sliceIndex)
	}
	ties, err := s.tiesFromSnapshot(g, snap)
	if err != nil {
		return nil, err
	}
	var out []entities.Person
	seen := make(map[string]bool)
	for _, t := range ties {
		if t.WidowID != widowID || !t.Outstanding() {
			continue
		}
		for _, id := range t.Candidates {
			if seen[id] {
				continue
			}
			seen[id] = true
			p, ok := snap.Person(id)
			if !ok {
				return nil, errors.AssertionFailedf("tie candidate %q missing from snapshot", id)
			}
			out = append(out, p)
		}
	}
	return out, nil
}

// Yevamos returns every widow holding at least one outstanding levirate
// obligation at the slice, in snapshot person order.
func (s *LevirateService) Yevamos(g *entities.TemporalGraph, sliceIndex int) ([]entities.Person, error) {
	snap, err := s.resolver.Resolve(g, sliceIndex)
	if err != nil {
		return nil, err
	}
	ties, err := s.tiesFromSnapshot(g, snap)
	if err != nil {
		return nil, err
	}
	widows := make(map[string]bool)
	for _, t := range ties {
		if t.Outstanding() {
			widows[t.WidowID] = true
		}
	}
	var out []entities.Person
	for _, p := range snap.People() {
		if widows[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// tiesFromSnapshot walks the snapshot's spousal unions and derives a tie for
// each union whose husband died childless leaving a living brother. Death
// slices are re-resolved to judge the creation preconditions as of the death
// itself, not the queried slice.
func (s *LevirateService) tiesFromSnapshot(g *entities.TemporalGraph, snap *entities.Snapshot) ([]entities.Tie, error) {
	includeHalf := s.registry.IncludeHalfSiblings
	deathSnaps := make(map[int]*entities.Snapshot)

	var ties []entities.Tie
	for _, union := range snap.Relations() {
		if !union.Type.IsSpousal() {
			continue
		}
		widow, deceased, ok := widowAndDeceased(snap, union)
		if !ok {
			continue
		}
		deathSlice := *deceased.DeathSlice
		if union.IntroducedSlice > deathSlice {
			continue
		}

		deathSnap, ok := deathSnaps[deathSlice]
		if !ok {
			var err error
			deathSnap, err = s.resolver.Resolve(g, deathSlice)
			if err != nil {
				return nil, errors.Wrapf(err, "resolving death slice of %q", deceased.ID)
			}
			deathSnaps[deathSlice] = deathSnap
		}

		if !tieCreated(deathSnap, union, widow.ID, deceased.ID, includeHalf) {
			continue
		}

		tie := s.deriveTie(snap, union, widow.ID, deceased.ID, deathSlice, includeHalf)
		if tie.State == entities.TieActive && !snap.Alive(widow.ID) {
			// The obligation does not outlive the widow; resolved ties stay
			// visible as historical fact.
			continue
		}
		ties = append(ties, tie)
	}
	return ties, nil
}

// widowAndDeceased identifies the union's surviving wife and deceased
// husband at the snapshot's slice. Only a dead husband with a known wife
// yields a tie.
func widowAndDeceased(snap *entities.Snapshot, union entities.Relation) (widow, deceased entities.Person, ok bool) {
	source, sok := snap.Person(union.SourceID)
	target, tok := snap.Person(union.TargetID)
	if !sok || !tok {
		return entities.Person{}, entities.Person{}, false
	}
	var husband, wife entities.Person
	switch {
	case source.Sex == entities.SexMale && target.Sex == entities.SexFemale:
		husband, wife = source, target
	case source.Sex == entities.SexFemale && target.Sex == entities.SexMale:
		husband, wife = target, source
	default:
		return entities.Person{}, entities.Person{}, false
	}
	if husband.DeathSlice == nil || *husband.DeathSlice > snap.Slice {
		return entities.Person{}, entities.Person{}, false
	}
	return wife, husband, true
}

// tieCreated checks the creation preconditions as of the death slice: the
// union still standing, the widow surviving, no recorded child on the union,
// and at least one brother alive to inherit the obligation.
func tieCreated(deathSnap *entities.Snapshot, union entities.Relation, widowID, deceasedID string, includeHalf bool) bool {
	if !deathSnap.Alive(widowID) {
		return false
	}
	active := false
	for _, r := range entities.ActiveUnionsBetween(deathSnap, widowID, deceasedID) {
		if r.ID == union.ID {
			active = true
			break
		}
	}
	if !active {
		return false
	}
	children, ok := deathSnap.UnionChildren(union.ID)
	if !ok || len(children) > 0 {
		return false
	}
	for _, brotherID := range entities.BrothersOf(deathSnap, deceasedID, includeHalf) {
		if deathSnap.Alive(brotherID) {
			return true
		}
	}
	return false
}

// deriveTie computes the tie's state at the snapshot's slice. Resolution
// relations are scanned in introduction order: the first levirate marriage
// between the widow and a brother resolves the tie outright; releases
// exclude one brother each and resolve the tie once no outstanding brother
// remains.
func (s *LevirateService) deriveTie(snap *entities.Snapshot, union entities.Relation, widowID, deceasedID string, deathSlice int, includeHalf bool) entities.Tie {
	tie := entities.Tie{
		WidowID:      widowID,
		DeceasedID:   deceasedID,
		UnionID:      union.ID,
		CreatedSlice: deathSlice,
		State:        entities.TieActive,
	}

	var lastRelease *entities.Relation
	released := make(map[string]bool)
	for _, r := range snap.RelationsOf(widowID) {
		if r.IntroducedSlice < deathSlice {
			continue
		}
		partnerID, _ := r.Other(widowID)
		if !isBrotherOf(snap, deceasedID, partnerID, includeHalf) {
			continue
		}
		switch r.Type {
		case entities.RelationLevirateMarriage:
			resolved := r.IntroducedSlice
			tie.State = entities.TieResolvedByMarriage
			tie.ResolvedSlice = &resolved
			tie.ResolvedByID = partnerID
			return tie
		case entities.RelationLevirateRelease:
			if !released[partnerID] {
				released[partnerID] = true
				tie.ReleasedIDs = append(tie.ReleasedIDs, partnerID)
			}
			release := r
			lastRelease = &release
		}
	}

	for _, brotherID := range entities.BrothersOf(snap, deceasedID, includeHalf) {
		if snap.Alive(brotherID) && !released[brotherID] {
			tie.Candidates = append(tie.Candidates, brotherID)
		}
	}
	if len(tie.Candidates) > 0 || lastRelease == nil {
		return tie
	}

	// No candidate remains and at least one release was recorded: the tie is
	// resolved by release only if the last release emptied the set of
	// brothers still alive at its own slice. Otherwise a brother died
	// outstanding and the tie simply lapsed.
	releaseSlice := lastRelease.IntroducedSlice
	for _, brotherID := range entities.BrothersOf(snap, deceasedID, includeHalf) {
		brother, ok := snap.Person(brotherID)
		if !ok {
			continue
		}
		if brother.AliveAt(releaseSlice) && !released[brotherID] {
			return tie
		}
	}
	resolved := releaseSlice
	tie.State = entities.TieResolvedByRelease
	tie.ResolvedSlice = &resolved
	tie.ResolvedByID, _ = lastRelease.Other(widowID)
	return tie
}

// isBrotherOf reports whether the person is a brother of the deceased under
// the registry's half-sibling policy.
func isBrotherOf(snap *entities.Snapshot, deceasedID, personID string, includeHalf bool) bool {
	p, ok := snap.Person(personID)
	if !ok || p.Sex != entities.SexMale {
		return false
	}
	return entities.AreSiblings(snap, deceasedID, personID, includeHalf)
}
