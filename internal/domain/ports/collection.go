// Package ports defines the interfaces the domain needs from external
// services: the relational event store, the vector index over rule docs,
// the embedder, and the LLM extraction client.
package ports

import "context"

// CollectionManager manages the lifecycle of the vector collection backing
// rule search. It is separate from VectorDB so data operations stay
// decoupled from setup: the collection is created once at workspace init
// and recreated on reindex, while searches run against it constantly.
type CollectionManager interface {
	// EnsureCollection creates the rules collection if it doesn't exist.
	// vectorSize must match the embedder's output dimension.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection drops the rules collection and every indexed rule doc.
	DeleteCollection(ctx context.Context) error
}
