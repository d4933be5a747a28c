// Package mocks provides mock implementations for testing.
package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder. Every text maps to
// the same configured vector, so search tests exercise plumbing and
// ranking without a real model.
type Embedder struct {
	EmbeddingResult []float32
	Err             error

	// Call tracking
	EmbedCallCount int
	LastText       string
	BatchSizes     []int
}

// Embed returns the configured embedding or error.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.EmbedCallCount++
	m.LastText = text
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbeddingResult, nil
}

// EmbedBatch returns the configured embedding once per input text.
func (m *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.BatchSizes = append(m.BatchSizes, len(texts))
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.EmbeddingResult
	}
	return result, nil
}
