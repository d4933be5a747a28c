package entities

import "sort"

// Kinship derivations over a snapshot. These are the building blocks the
// rule registry and the levirate derivation share; all of them respect the
// snapshot's introduction order so results stay deterministic.

// IsAncestorOf reports whether ancestorID is a direct-line ancestor of
// descendantID (parent, grandparent, and so on).
func IsAncestorOf(s *Snapshot, ancestorID, descendantID string) bool {
	if ancestorID == descendantID {
		return false
	}
	visited := make(map[string]bool)
	queue := []string{descendantID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parentID := range s.ParentsOf(current) {
			if parentID == ancestorID {
				return true
			}
			if !visited[parentID] {
				visited[parentID] = true
				queue = append(queue, parentID)
			}
		}
	}
	return false
}

// SharedParents returns the parents a and b have in common, in a's parent
// order.
func SharedParents(s *Snapshot, a, b string) []string {
	bParents := make(map[string]bool)
	for _, id := range s.ParentsOf(b) {
		bParents[id] = true
	}
	var out []string
	for _, id := range s.ParentsOf(a) {
		if bParents[id] {
			out = append(out, id)
		}
	}
	return out
}

// AreSiblings reports whether a and b are siblings: connected by an explicit
// sibling relation (counted as full siblings), or sharing parents. With
// includeHalf one shared parent suffices; without it, full siblinghood
// requires two shared parents or the explicit relation.
func AreSiblings(s *Snapshot, a, b string, includeHalf bool) bool {
	if a == b {
		return false
	}
	for _, r := range s.RelationsOf(a) {
		if r.Type == RelationSibling && r.Between(a, b) {
			return true
		}
	}
	shared := SharedParents(s, a, b)
	if includeHalf {
		return len(shared) >= 1
	}
	return len(shared) >= 2
}

// BrothersOf returns the male siblings of the person, ordered by the
// introduction order of the relations that establish siblinghood: a brother
// discovered by an earlier relation comes first. Ties (one relation
// establishing several siblings at once) fall back to snapshot person order.
func BrothersOf(s *Snapshot, personID string, includeHalf bool) []string {
	links := parentLinkIndexes(s)

	type candidate struct {
		id         string
		discovered int
		order      int
	}
	var candidates []candidate
	for order, p := range s.people {
		if p.ID == personID || p.Sex != SexMale {
			continue
		}
		discovered := siblingDiscoveryIndex(s, links, personID, p.ID, includeHalf)
		if discovered < 0 {
			continue
		}
		candidates = append(candidates, candidate{id: p.ID, discovered: discovered, order: order})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].discovered != candidates[j].discovered {
			return candidates[i].discovered < candidates[j].discovered
		}
		return candidates[i].order < candidates[j].order
	})
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

// parentLinkIndexes maps parent id -> child id -> the earliest relation
// index establishing that link, via parent_child relations or union child
// lists.
func parentLinkIndexes(s *Snapshot) map[string]map[string]int {
	links := make(map[string]map[string]int)
	record := func(parentID, childID string, idx int) {
		if parentID == "" || childID == "" || parentID == childID {
			return
		}
		children, ok := links[parentID]
		if !ok {
			children = make(map[string]int)
			links[parentID] = children
		}
		if _, seen := children[childID]; !seen {
			children[childID] = idx
		}
	}
	for i, r := range s.relations {
		switch {
		case r.Type == RelationParentChild:
			record(r.SourceID, r.TargetID, i)
		case r.Type.IsUnion():
			for _, childID := range r.ChildIDs {
				record(r.SourceID, childID, i)
				record(r.TargetID, childID, i)
			}
		}
	}
	return links
}

// siblingDiscoveryIndex returns the relation index at which siblinghood
// between a and b becomes established, or -1 when they are not siblings
// under the given half-sibling policy. An explicit sibling relation is
// established at its own index; a shared parent is established once both
// parent links exist; full siblinghood via parents needs two shared parents
// and is established when the second pair of links completes.
func siblingDiscoveryIndex(s *Snapshot, links map[string]map[string]int, a, b string, includeHalf bool) int {
	best := -1
	consider := func(idx int) {
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
		}
	}

	for i, r := range s.relations {
		if r.Type == RelationSibling && r.Between(a, b) {
			consider(i)
			break
		}
	}

	var viaParent []int
	for _, children := range links {
		ai, aOK := children[a]
		bi, bOK := children[b]
		if !aOK || !bOK {
			continue
		}
		established := ai
		if bi > established {
			established = bi
		}
		viaParent = append(viaParent, established)
	}
	sort.Ints(viaParent)
	if includeHalf {
		if len(viaParent) >= 1 {
			consider(viaParent[0])
		}
	} else {
		if len(viaParent) >= 2 {
			consider(viaParent[1])
		}
	}
	return best
}

// UnionsBetween returns the union relations between the pair, in
// introduction order.
func UnionsBetween(s *Snapshot, a, b string) []Relation {
	var out []Relation
	for _, r := range s.relations {
		if r.Type.IsUnion() && r.Between(a, b) {
			out = append(out, cloneRelation(r))
		}
	}
	return out
}

// ActiveUnionsBetween returns the unions between the pair not ended by a
// later divorce. "Later" follows introduction order, so a divorce and a
// remarriage within one slice resolve by their event order.
func ActiveUnionsBetween(s *Snapshot, a, b string) []Relation {
	var out []Relation
	for i, r := range s.relations {
		if !r.Type.IsUnion() || !r.Between(a, b) {
			continue
		}
		if divorcedAfter(s, i, a, b) {
			continue
		}
		out = append(out, cloneRelation(r))
	}
	return out
}

// ActiveUnionsOf returns the active unions touching the person, in
// introduction order.
func ActiveUnionsOf(s *Snapshot, personID string) []Relation {
	var out []Relation
	for _, i := range s.byPerson[personID] {
		r := s.relations[i]
		if !r.Type.IsUnion() {
			continue
		}
		other, _ := r.Other(personID)
		if divorcedAfter(s, i, personID, other) {
			continue
		}
		out = append(out, cloneRelation(r))
	}
	return out
}

// EverSpouses reports whether a betrothal, marriage, or levirate marriage
// between the pair exists in the snapshot, divorced or not.
func EverSpouses(s *Snapshot, a, b string) bool {
	for _, r := range s.relations {
		if r.Between(a, b) {
			switch r.Type {
			case RelationBetrothal, RelationMarriage, RelationLevirateMarriage:
				return true
			}
		}
	}
	return false
}

// DivorcesBetween returns the divorce relations between the pair, in
// introduction order.
func DivorcesBetween(s *Snapshot, a, b string) []Relation {
	var out []Relation
	for _, r := range s.relations {
		if r.Type == RelationDivorce && r.Between(a, b) {
			out = append(out, cloneRelation(r))
		}
	}
	return out
}

func divorcedAfter(s *Snapshot, unionIdx int, a, b string) bool {
	for j := unionIdx + 1; j < len(s.relations); j++ {
		d := s.relations[j]
		if d.Type == RelationDivorce && d.Between(a, b) {
			return true
		}
	}
	return false
}

// introducedAfter reports whether relation a entered the timeline after
// relation b, by fold order.
func introducedAfter(s *Snapshot, a, b Relation) bool {
	ai, aOK := s.relationIdx[a.ID]
	bi, bOK := s.relationIdx[b.ID]
	return aOK && bOK && ai > bi
}
