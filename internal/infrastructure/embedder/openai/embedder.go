// Package openai provides the embedding adapter for rule search.
package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
)

// VectorSize is the dimension of text-embedding-3-small vectors. The
// rules collection is created with this size, so switching models means
// reindexing.
const VectorSize = 1536

// maxBatch caps texts per embedding request. Indexing sends a registry's
// rule docs in one call; the API rejects oversized input arrays.
const maxBatch = 128

// Embedder implements ports.Embedder against the OpenAI embeddings API.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// NewEmbedder creates a new OpenAI embedder.
func NewEmbedder(cfg config.EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := openai.SmallEmbedding3
	if cfg.Model != "" {
		model = openai.EmbeddingModel(cfg.Model)
	}

	return &Embedder{
		client: client,
		model:  model,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}

	return embeddings[0], nil
}

// EmbedBatch generates vector embeddings for multiple texts, splitting
// oversized batches across requests. Vectors come back in input order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, chunk := range chunkTexts(texts, maxBatch) {
		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: e.model,
			Input: chunk,
		})
		if err != nil {
			return nil, errors.Wrap(err, "creating embeddings")
		}

		for _, data := range resp.Data {
			if len(data.Embedding) != VectorSize {
				return nil, errors.Newf("model returned %d-dimensional vector, collection expects %d",
					len(data.Embedding), VectorSize)
			}
			embeddings = append(embeddings, data.Embedding)
		}
	}

	return embeddings, nil
}

// chunkTexts splits texts into runs of at most size.
func chunkTexts(texts []string, size int) [][]string {
	var chunks [][]string
	for len(texts) > size {
		chunks = append(chunks, texts[:size])
		texts = texts[size:]
	}
	return append(chunks, texts)
}
