package entities

import "time"

// Tree is the stored record of a family tree. The timeline itself lives in
// the append-only event log; Version mirrors TemporalGraph.Version and moves
// on every append, so callers can tell a grown tree from the one they last
// resolved without loading events.
type Tree struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`            // Original name (e.g., "Beis Yaakov")
	NormalizedName string    `json:"normalized_name"` // Lowercase for matching (e.g., "beis yaakov")
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
