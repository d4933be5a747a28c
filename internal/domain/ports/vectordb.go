package ports

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
)

// VectorDB defines the interface for vector database operations over rule
// docs.
type VectorDB interface {
	// Save stores a rule doc with its embedding.
	Save(ctx context.Context, doc entities.RuleDoc) error

	// SaveBatch stores multiple rule docs.
	SaveBatch(ctx context.Context, docs []entities.RuleDoc) error

	// FindByID retrieves a rule doc by its ID.
	FindByID(ctx context.Context, id string) (entities.RuleDoc, error)

	// Search performs a semantic search and returns similar rule docs with
	// scores, best match first.
	Search(ctx context.Context, embedding []float32, limit int) ([]entities.RuleDoc, error)

	// SearchByCategory performs a semantic search filtered by category.
	SearchByCategory(ctx context.Context, embedding []float32, categoryID string, limit int) ([]entities.RuleDoc, error)

	// Delete removes a rule doc by its ID.
	Delete(ctx context.Context, id string) error
}
