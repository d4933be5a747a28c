package mocks

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
)

// VectorDB is a mock implementation of ports.VectorDB.
type VectorDB struct {
	Docs []entities.RuleDoc
	Err  error

	// Collection errors (separate from Err for fine-grained control)
	EnsureCollectionErr error
	DeleteCollectionErr error

	// Call tracking
	SaveBatchCallCount        int
	SaveBatchLastDocs         []entities.RuleDoc
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
	FindByIDCallCount         int
}

// EnsureCollection creates the collection if it doesn't exist.
func (m *VectorDB) EnsureCollection(_ context.Context, _ uint64) error {
	m.EnsureCollectionCallCount++
	return m.EnsureCollectionErr
}

// DeleteCollection removes the collection and all its data.
func (m *VectorDB) DeleteCollection(_ context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteCollectionErr
}

// Save stores a single rule doc.
func (m *VectorDB) Save(ctx context.Context, doc entities.RuleDoc) error {
	return m.SaveBatch(ctx, []entities.RuleDoc{doc})
}

// SaveBatch stores multiple rule docs, upserting by ID.
func (m *VectorDB) SaveBatch(_ context.Context, docs []entities.RuleDoc) error {
	m.SaveBatchCallCount++
	m.SaveBatchLastDocs = docs
	if m.Err != nil {
		return m.Err
	}
	for _, doc := range docs {
		replaced := false
		for i := range m.Docs {
			if m.Docs[i].ID == doc.ID {
				m.Docs[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			m.Docs = append(m.Docs, doc)
		}
	}
	return nil
}

// FindByID retrieves a rule doc by ID.
func (m *VectorDB) FindByID(_ context.Context, id string) (entities.RuleDoc, error) {
	m.FindByIDCallCount++
	if m.Err != nil {
		return entities.RuleDoc{}, m.Err
	}
	for i := range m.Docs {
		if m.Docs[i].ID == id {
			return m.Docs[i], nil
		}
	}
	return entities.RuleDoc{}, errors.Wrapf(errors.ErrNotFound, "rule doc %q", id)
}

// Search returns docs in insertion order, ignoring the embedding.
func (m *VectorDB) Search(_ context.Context, _ []float32, limit int) ([]entities.RuleDoc, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if limit > len(m.Docs) {
		return m.Docs, nil
	}
	return m.Docs[:limit], nil
}

// SearchByCategory returns docs of the category in insertion order.
func (m *VectorDB) SearchByCategory(_ context.Context, _ []float32, categoryID string, limit int) ([]entities.RuleDoc, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var filtered []entities.RuleDoc
	for i := range m.Docs {
		if m.Docs[i].CategoryID == categoryID {
			filtered = append(filtered, m.Docs[i])
		}
	}
	if limit > len(filtered) {
		return filtered, nil
	}
	return filtered[:limit], nil
}

// Delete removes a rule doc by ID.
func (m *VectorDB) Delete(_ context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Docs {
		if m.Docs[i].ID == id {
			m.Docs = append(m.Docs[:i], m.Docs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close closes the connection.
func (m *VectorDB) Close() error {
	return nil
}
