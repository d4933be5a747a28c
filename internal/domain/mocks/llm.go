// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
)

// LLMClient is a mock implementation of ports.LLMClient.
type LLMClient struct {
	// ExtractEvents return values
	Events     []entities.RawEvent
	ExtractErr error

	// CheckConflicts return values
	Issues       []ports.ExtractionIssue
	ConflictsErr error

	// Call tracking
	ExtractCallCount     int
	LastText             string
	LastKnownPeople      []string
	CheckConflictsCalled bool
}

// ExtractEvents returns the configured events or error.
func (m *LLMClient) ExtractEvents(_ context.Context, text string, knownPeople []string) ([]entities.RawEvent, error) {
	m.ExtractCallCount++
	m.LastText = text
	m.LastKnownPeople = knownPeople
	if m.ExtractErr != nil {
		return nil, m.ExtractErr
	}
	return m.Events, nil
}

// CheckConflicts returns the configured issues or error.
func (m *LLMClient) CheckConflicts(_ context.Context, _ []entities.RawEvent, _ *entities.Snapshot) ([]ports.ExtractionIssue, error) {
	m.CheckConflictsCalled = true
	if m.ConflictsErr != nil {
		return nil, m.ConflictsErr
	}
	return m.Issues, nil
}
