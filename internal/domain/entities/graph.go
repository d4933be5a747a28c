package entities

import (
	"github.com/ersonp/yichus-core/internal/errors"
)

// Slice is one ordered point in a tree's timeline. Events within a slice
// apply in declared order.
type Slice struct {
	Events []Event `json:"events"`
}

// TemporalGraph is a family tree as an ordered timeline of slices. The graph
// is the unit of resolution: folding slices 0..n produces the snapshot at n.
// Version increments on every append so snapshot caches can tell a grown
// timeline from the one they resolved.
type TemporalGraph struct {
	ID      string  `json:"id"`
	Version int     `json:"version"`
	Slices  []Slice `json:"slices"`
}

// NewTemporalGraph builds a graph from base people and relations, seeding
// them as add events at their introduction slices. Within a slice, people
// are added before relations so a relation may reference a person introduced
// at the same slice; within each group, declared order is preserved.
func NewTemporalGraph(id string, people []Person, relations []Relation) (*TemporalGraph, error) {
	sliceCount := 0
	for _, p := range people {
		if p.IntroducedSlice < 0 {
			return nil, errors.Wrapf(errors.ErrOutOfRange, "person %q introduced at slice %d", p.ID, p.IntroducedSlice)
		}
		if p.IntroducedSlice+1 > sliceCount {
			sliceCount = p.IntroducedSlice + 1
		}
	}
	for _, r := range relations {
		if r.IntroducedSlice < 0 {
			return nil, errors.Wrapf(errors.ErrOutOfRange, "relation %q introduced at slice %d", r.ID, r.IntroducedSlice)
		}
		if r.IntroducedSlice+1 > sliceCount {
			sliceCount = r.IntroducedSlice + 1
		}
	}

	g := &TemporalGraph{
		ID:      id,
		Version: 1,
		Slices:  make([]Slice, sliceCount),
	}
	for _, p := range people {
		s := p.IntroducedSlice
		g.Slices[s].Events = append(g.Slices[s].Events, NewAddPerson(p))
	}
	for _, r := range relations {
		s := r.IntroducedSlice
		g.Slices[s].Events = append(g.Slices[s].Events, NewAddRelation(r))
	}
	return g, nil
}

// SliceCount returns the number of slices in the timeline.
func (g *TemporalGraph) SliceCount() int {
	return len(g.Slices)
}

// LatestSlice returns the index of the last slice, or -1 for an empty
// timeline.
func (g *TemporalGraph) LatestSlice() int {
	return len(g.Slices) - 1
}

// AppendSlice adds a new slice holding the events at the end of the timeline
// and returns its index. The version increments.
func (g *TemporalGraph) AppendSlice(events []Event) int {
	g.Slices = append(g.Slices, Slice{Events: events})
	g.Version++
	return len(g.Slices) - 1
}

// AppendAt appends events at sliceIndex, which must be the latest slice or
// beyond it; earlier slices are history and cannot be rewritten. Gaps are
// padded with empty slices. The version increments.
func (g *TemporalGraph) AppendAt(sliceIndex int, events []Event) error {
	if sliceIndex < 0 || sliceIndex < len(g.Slices)-1 {
		return errors.Wrapf(errors.ErrOutOfRange, "cannot append at slice %d of %d: history is append-only", sliceIndex, len(g.Slices))
	}
	for len(g.Slices) <= sliceIndex {
		g.Slices = append(g.Slices, Slice{})
	}
	g.Slices[sliceIndex].Events = append(g.Slices[sliceIndex].Events, events...)
	g.Version++
	return nil
}
