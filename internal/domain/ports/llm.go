package ports

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

// LLMClient defines the interface for LLM operations.
type LLMClient interface {
	// ExtractEvents extracts proposed tree events from freeform text.
	// knownPeople lists the IDs and names already in the tree so the model
	// references existing people instead of inventing duplicates.
	ExtractEvents(ctx context.Context, text string, knownPeople []string) ([]entities.RawEvent, error)

	// CheckConflicts checks proposed events against the current snapshot
	// for contradictions - a death recorded twice, a marriage for someone
	// the text already buried, a child attributed to strangers.
	CheckConflicts(ctx context.Context, proposed []entities.RawEvent, snapshot *entities.Snapshot) ([]ExtractionIssue, error)
}

// ExtractionIssue represents a detected conflict between a proposed event
// and the recorded state of the tree.
type ExtractionIssue struct {
	Event       entities.RawEvent `json:"event"`
	Description string            `json:"description"`
	Severity    string            `json:"severity"`
}
