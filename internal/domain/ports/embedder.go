package ports

import "context"

// Embedder turns rule text into fixed-size vectors for the search index.
// Rule docs are embedded once at index time and queries once per search,
// so both sides must go through the same model.
type Embedder interface {
	// Embed generates an embedding for a single text, typically a search
	// query.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for several texts in one call. Used
	// when indexing a registry's rule docs together.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
