package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

// TreeService manages tree records and the append-only event log behind
// them. Every mutation lands in the audit log; audit failures are logged
// and swallowed so bookkeeping never blocks the write itself.
type TreeService struct {
	store ports.TreeStore
}

// NewTreeService creates a new TreeService.
func NewTreeService(store ports.TreeStore) *TreeService {
	return &TreeService{
		store: store,
	}
}

// Create registers a new tree with an empty timeline.
func (s *TreeService) Create(ctx context.Context, name string) (*entities.Tree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tree name is required")
	}

	existing, err := s.store.FindTreeByName(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "checking tree name")
	}
	if existing != nil {
		return nil, errors.Newf("tree %q already exists", name)
	}

	now := time.Now()
	tree := &entities.Tree{
		ID:             uuid.New().String(),
		Name:           name,
		NormalizedName: entities.NormalizeName(name),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.SaveTree(ctx, tree); err != nil {
		return nil, errors.Wrap(err, "saving tree")
	}

	s.audit(ctx, entities.AuditTreeCreate, tree.ID, map[string]any{"name": tree.Name})
	logging.Infow("created tree", "tree", tree.ID, "name", tree.Name)
	return tree, nil
}

// Find resolves a tree by ID or, failing that, by name.
func (s *TreeService) Find(ctx context.Context, nameOrID string) (*entities.Tree, error) {
	tree, err := s.store.FindTreeByID(ctx, nameOrID)
	if err != nil {
		return nil, errors.Wrap(err, "finding tree by id")
	}
	if tree == nil {
		tree, err = s.store.FindTreeByName(ctx, nameOrID)
		if err != nil {
			return nil, errors.Wrap(err, "finding tree by name")
		}
	}
	if tree == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "tree %q", nameOrID)
	}
	return tree, nil
}

// List returns all trees, oldest first.
func (s *TreeService) List(ctx context.Context) ([]*entities.Tree, error) {
	return s.store.ListTrees(ctx)
}

// Delete removes a tree together with its event log.
func (s *TreeService) Delete(ctx context.Context, nameOrID string) error {
	tree, err := s.Find(ctx, nameOrID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTree(ctx, tree.ID); err != nil {
		return errors.Wrap(err, "deleting tree")
	}
	s.audit(ctx, entities.AuditTreeDelete, tree.ID, map[string]any{"name": tree.Name})
	return nil
}

// AppendEvents records events at the given slice of a tree's timeline and
// bumps the tree version. The slice must be the latest recorded slice or
// beyond it: history is append-only, corrections are new events.
func (s *TreeService) AppendEvents(ctx context.Context, treeID string, sliceIndex int, events []entities.Event) (*entities.Tree, error) {
	if len(events) == 0 {
		return nil, errors.New("no events to append")
	}
	tree, err := s.store.FindTreeByID(ctx, treeID)
	if err != nil {
		return nil, errors.Wrap(err, "finding tree")
	}
	if tree == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "tree %q", treeID)
	}

	if err := s.store.AppendEvents(ctx, treeID, sliceIndex, events); err != nil {
		return nil, errors.Wrap(err, "appending events")
	}

	tree.Version++
	tree.UpdatedAt = time.Now()
	if err := s.store.SaveTree(ctx, tree); err != nil {
		return nil, errors.Wrap(err, "bumping tree version")
	}

	s.audit(ctx, entities.AuditEventsAppend, treeID, map[string]any{
		"slice":  sliceIndex,
		"events": len(events),
	})
	logging.Debugw("appended events", "tree", treeID, "slice", sliceIndex, "events", len(events))
	return tree, nil
}

// LoadGraph reconstructs a tree's temporal graph from the event log.
func (s *TreeService) LoadGraph(ctx context.Context, nameOrID string) (*entities.TemporalGraph, error) {
	tree, err := s.Find(ctx, nameOrID)
	if err != nil {
		return nil, err
	}
	graph, err := s.store.LoadGraph(ctx, tree.ID)
	if err != nil {
		return nil, errors.Wrap(err, "loading graph")
	}
	return graph, nil
}

// CountEvents returns the total number of events recorded for a tree.
func (s *TreeService) CountEvents(ctx context.Context, treeID string) (int, error) {
	return s.store.CountEvents(ctx, treeID)
}

// AuditLog returns the audit trail for a tree.
func (s *TreeService) AuditLog(ctx context.Context, treeID string) ([]entities.AuditEntry, error) {
	return s.store.FindAuditLog(ctx, treeID)
}

// AuditLogByAction returns recent audit entries for one action type.
func (s *TreeService) AuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	return s.store.FindAuditLogByAction(ctx, action, limit)
}

func (s *TreeService) audit(ctx context.Context, action, treeID string, details map[string]any) {
	if err := s.store.LogAction(ctx, action, treeID, details); err != nil {
		logging.Warnw("audit log write failed", "action", action, "tree", treeID, "error", err)
	}
}
