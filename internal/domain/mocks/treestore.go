package mocks

import (
	"context"
	"sort"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

// TreeStore is a mock implementation of ports.TreeStore backed by maps.
type TreeStore struct {
	Trees    map[string]*entities.Tree
	Logs     map[string][]entities.Slice
	Profiles map[string]*entities.OpinionProfile
	Audit    []entities.AuditEntry
	Err      error

	// Call tracking
	AppendEventsCallCount int
	LogActionCallCount    int
}

// NewTreeStore creates a new mock TreeStore.
func NewTreeStore() *TreeStore {
	return &TreeStore{
		Trees:    make(map[string]*entities.Tree),
		Logs:     make(map[string][]entities.Slice),
		Profiles: make(map[string]*entities.OpinionProfile),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *TreeStore) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *TreeStore) Close() error {
	return nil
}

// Tree methods.

// SaveTree saves or updates tree metadata.
func (m *TreeStore) SaveTree(_ context.Context, tree *entities.Tree) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *tree
	m.Trees[tree.ID] = &cp
	return nil
}

// FindTreeByID finds a tree by its ID.
func (m *TreeStore) FindTreeByID(_ context.Context, treeID string) (*entities.Tree, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	tree, ok := m.Trees[treeID]
	if !ok {
		return nil, nil
	}
	cp := *tree
	return &cp, nil
}

// FindTreeByName finds a tree by its normalized name.
func (m *TreeStore) FindTreeByName(_ context.Context, name string) (*entities.Tree, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	normalized := entities.NormalizeName(name)
	for _, tree := range m.Trees {
		if tree.NormalizedName == normalized {
			cp := *tree
			return &cp, nil
		}
	}
	return nil, nil
}

// ListTrees lists all trees, oldest first.
func (m *TreeStore) ListTrees(_ context.Context) ([]*entities.Tree, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*entities.Tree, 0, len(m.Trees))
	for _, tree := range m.Trees {
		cp := *tree
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteTree deletes a tree and its event log.
func (m *TreeStore) DeleteTree(_ context.Context, treeID string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Trees[treeID]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "tree %q", treeID)
	}
	delete(m.Trees, treeID)
	delete(m.Logs, treeID)
	return nil
}

// Event log methods.

// AppendEvents appends events at the given slice of a tree's timeline.
func (m *TreeStore) AppendEvents(_ context.Context, treeID string, sliceIndex int, events []entities.Event) error {
	m.AppendEventsCallCount++
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Trees[treeID]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "tree %q", treeID)
	}
	log := m.Logs[treeID]
	if sliceIndex < 0 || sliceIndex < len(log)-1 {
		return errors.Wrapf(errors.ErrOutOfRange, "cannot append at slice %d of %d", sliceIndex, len(log))
	}
	for len(log) <= sliceIndex {
		log = append(log, entities.Slice{})
	}
	log[sliceIndex].Events = append(log[sliceIndex].Events, events...)
	m.Logs[treeID] = log
	return nil
}

// LoadGraph reconstructs the temporal graph from the event log.
func (m *TreeStore) LoadGraph(_ context.Context, treeID string) (*entities.TemporalGraph, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	tree, ok := m.Trees[treeID]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tree %q", treeID)
	}
	log := m.Logs[treeID]
	slices := make([]entities.Slice, len(log))
	for i, s := range log {
		slices[i].Events = append([]entities.Event(nil), s.Events...)
	}
	return &entities.TemporalGraph{ID: treeID, Version: tree.Version, Slices: slices}, nil
}

// CountEvents returns the total number of events recorded for a tree.
func (m *TreeStore) CountEvents(_ context.Context, treeID string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, s := range m.Logs[treeID] {
		count += len(s.Events)
	}
	return count, nil
}

// Profile methods.

// SaveProfile saves or updates an opinion profile.
func (m *TreeStore) SaveProfile(_ context.Context, profile *entities.OpinionProfile) error {
	if m.Err != nil {
		return m.Err
	}
	cp := *profile
	cp.Selections = make(map[string]string, len(profile.Selections))
	for k, v := range profile.Selections {
		cp.Selections[k] = v
	}
	m.Profiles[profile.ID] = &cp
	return nil
}

// FindProfile finds a profile by its ID.
func (m *TreeStore) FindProfile(_ context.Context, profileID string) (*entities.OpinionProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	profile, ok := m.Profiles[profileID]
	if !ok {
		return nil, nil
	}
	cp := *profile
	return &cp, nil
}

// FindProfileByName finds a profile by name.
func (m *TreeStore) FindProfileByName(_ context.Context, name string) (*entities.OpinionProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	normalized := entities.NormalizeName(name)
	for _, profile := range m.Profiles {
		if entities.NormalizeName(profile.Name) == normalized {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, nil
}

// ListProfiles lists all profiles.
func (m *TreeStore) ListProfiles(_ context.Context) ([]entities.OpinionProfile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.OpinionProfile, 0, len(m.Profiles))
	for _, profile := range m.Profiles {
		result = append(result, *profile)
	}
	// Sort by name for deterministic test results
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// DeleteProfile deletes a profile by its ID.
func (m *TreeStore) DeleteProfile(_ context.Context, profileID string) error {
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Profiles[profileID]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "profile %q", profileID)
	}
	delete(m.Profiles, profileID)
	return nil
}

// Audit log methods.

// LogAction logs an action to the audit log.
func (m *TreeStore) LogAction(_ context.Context, action string, treeID string, details map[string]any) error {
	m.LogActionCallCount++
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:      int64(len(m.Audit) + 1),
		Action:  action,
		TreeID:  treeID,
		Details: details,
	})
	return nil
}

// FindAuditLog finds audit log entries for a specific tree.
func (m *TreeStore) FindAuditLog(_ context.Context, treeID string) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var entries []entities.AuditEntry
	for _, e := range m.Audit {
		if e.TreeID == treeID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// FindAuditLogByAction finds audit log entries by action type.
func (m *TreeStore) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var entries []entities.AuditEntry
	for _, e := range m.Audit {
		if e.Action == action {
			entries = append(entries, e)
			if limit > 0 && len(entries) == limit {
				break
			}
		}
	}
	return entries, nil
}
