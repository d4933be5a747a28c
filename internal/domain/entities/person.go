package entities

import "strings"

// Sex is the recorded sex of a person. The levirate rules and several
// registry conditions branch on it.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Position is a layout hint for rendering a tree. It carries no meaning for
// resolution or status computation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Person represents an individual in a family tree. The ID is unique within
// the tree and never changes; a person enters the timeline at
// IntroducedSlice and, once deceased, keeps all relations.
type Person struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	NormalizedName  string   `json:"normalized_name"` // Lowercase for matching (e.g., "rivkah")
	Sex             Sex      `json:"sex"`
	Position        Position `json:"position"`
	IntroducedSlice int      `json:"introduced_slice"`
	DeathSlice      *int     `json:"death_slice,omitempty"`
}

// AliveAt reports whether the person is alive at the given slice. A person
// marked deceased at slice d is dead at d and every later slice.
func (p Person) AliveAt(slice int) bool {
	return p.DeathSlice == nil || slice < *p.DeathSlice
}

// DeadAt reports whether the person is deceased at the given slice.
func (p Person) DeadAt(slice int) bool {
	return !p.AliveAt(slice)
}

// NormalizeName converts a name to lowercase for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
