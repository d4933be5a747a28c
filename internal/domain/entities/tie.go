package entities

// TieState is the lifecycle state of a levirate tie. A tie is created (and
// immediately active) when a spouse dies childless leaving at least one
// living brother. A levirate marriage to one candidate resolves it and
// extinguishes the obligation toward all others at once; releases remove one
// named brother each, resolving the tie when the last outstanding brother is
// released. Both resolved states are terminal, and invisible when querying
// slices before the resolving event, since derivation only sees relations
// introduced by then.
type TieState string

const (
	TieActive             TieState = "active"
	TieResolvedByMarriage TieState = "resolved_by_marriage"
	TieResolvedByRelease  TieState = "resolved_by_release"
)

// Tie is a levirate obligation derived for one widow at one slice. It is a
// computed value, never stored: candidates reflect the queried slice
// (brothers alive then, minus those released or extinguished).
type Tie struct {
	WidowID       string   `json:"widow_id"`
	DeceasedID    string   `json:"deceased_id"`
	UnionID       string   `json:"union_id"`
	CreatedSlice  int      `json:"created_slice"`
	State         TieState `json:"state"`
	Candidates    []string `json:"candidates,omitempty"`
	ReleasedIDs   []string `json:"released_ids,omitempty"`
	ResolvedSlice *int     `json:"resolved_slice,omitempty"`
	ResolvedByID  string   `json:"resolved_by_id,omitempty"`
}

// Outstanding reports whether the tie still binds at least one candidate.
func (t Tie) Outstanding() bool {
	return t.State == TieActive && len(t.Candidates) > 0
}

// HasCandidate reports whether the person is an outstanding candidate.
func (t Tie) HasCandidate(personID string) bool {
	if t.State != TieActive {
		return false
	}
	for _, id := range t.Candidates {
		if id == personID {
			return true
		}
	}
	return false
}

// Touches reports whether the person participates in the tie as widow,
// deceased, candidate, released brother, or resolver.
func (t Tie) Touches(personID string) bool {
	if t.WidowID == personID || t.DeceasedID == personID || t.ResolvedByID == personID {
		return true
	}
	for _, id := range t.Candidates {
		if id == personID {
			return true
		}
	}
	for _, id := range t.ReleasedIDs {
		if id == personID {
			return true
		}
	}
	return false
}
