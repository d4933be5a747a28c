// Package mocks provides mock implementations for testing.
package mocks

import "context"

// CollectionManager is a mock implementation of ports.CollectionManager
// for code that only manages the rules collection and never searches it.
type CollectionManager struct {
	EnsureErr error
	DeleteErr error

	// Call tracking
	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
	GotVectorSize             uint64
}

// EnsureCollection records the requested vector size and returns the
// configured error.
func (m *CollectionManager) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	m.GotVectorSize = vectorSize
	return m.EnsureErr
}

// DeleteCollection returns the configured error.
func (m *CollectionManager) DeleteCollection(ctx context.Context) error {
	m.DeleteCollectionCallCount++
	return m.DeleteErr
}
