package ports

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

// TreeStore defines the interface for the relational event store. It holds
// tree metadata, the append-only event log, opinion profiles, and the audit
// log - complementing VectorDB, which serves semantic rule search.
type TreeStore interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Tree operations

	// SaveTree saves or updates tree metadata.
	SaveTree(ctx context.Context, tree *entities.Tree) error

	// FindTreeByID finds a tree by its ID. Returns nil without error when
	// no tree matches.
	FindTreeByID(ctx context.Context, treeID string) (*entities.Tree, error)

	// FindTreeByName finds a tree by its normalized name (case-insensitive).
	// Returns nil without error when no tree matches.
	FindTreeByName(ctx context.Context, name string) (*entities.Tree, error)

	// ListTrees lists all trees, oldest first.
	ListTrees(ctx context.Context) ([]*entities.Tree, error)

	// DeleteTree deletes a tree and its event log.
	DeleteTree(ctx context.Context, treeID string) error

	// Event log operations

	// AppendEvents appends events at the given slice of a tree's timeline.
	// The log is append-only: sliceIndex must be the latest recorded slice
	// or beyond it. Within the call, event order is the recorded order.
	AppendEvents(ctx context.Context, treeID string, sliceIndex int, events []entities.Event) error

	// LoadGraph reconstructs the temporal graph from the event log. Event
	// order within and across slices is exactly the recorded order -
	// resolution is order-sensitive, so the round-trip must be loss-free.
	LoadGraph(ctx context.Context, treeID string) (*entities.TemporalGraph, error)

	// CountEvents returns the total number of events recorded for a tree.
	CountEvents(ctx context.Context, treeID string) (int, error)

	// Profile operations

	// SaveProfile saves or updates an opinion profile.
	SaveProfile(ctx context.Context, profile *entities.OpinionProfile) error

	// FindProfile finds a profile by its ID. Returns nil without error when
	// no profile matches.
	FindProfile(ctx context.Context, profileID string) (*entities.OpinionProfile, error)

	// FindProfileByName finds a profile by name (case-insensitive). Returns
	// nil without error when no profile matches.
	FindProfileByName(ctx context.Context, name string) (*entities.OpinionProfile, error)

	// ListProfiles lists all profiles, sorted by name.
	ListProfiles(ctx context.Context) ([]entities.OpinionProfile, error)

	// DeleteProfile deletes a profile by its ID.
	DeleteProfile(ctx context.Context, profileID string) error

	// Audit operations

	// LogAction logs a mutating action to the audit log.
	LogAction(ctx context.Context, action string, treeID string, details map[string]any) error

	// FindAuditLog finds audit log entries for a specific tree.
	FindAuditLog(ctx context.Context, treeID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit log entries by action type.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
