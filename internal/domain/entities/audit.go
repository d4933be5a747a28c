package entities

import "time"

// Audit actions recorded by the tree service.
const (
	AuditTreeCreate   = "tree_create"
	AuditTreeDelete   = "tree_delete"
	AuditEventsAppend = "events_append"
	AuditImport       = "import"
)

// AuditEntry represents a logged mutating action against a tree. TreeID
// is empty for workspace-level actions.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	TreeID    string         `json:"tree_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
