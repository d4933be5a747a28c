package a

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type TreeStore interface {
	LoadGraph(ctx context.Context, treeID string) (int, error)
}

func bad(ctx context.Context, queries []string, e Embedder, store TreeStore) {
	for _, q := range queries {
		e.Embed(ctx, q)         // want "potential N\\+1: Embed called inside loop"
		store.LoadGraph(ctx, q) // want "potential N\\+1: LoadGraph called inside loop"
	}
}

func goodBatch(ctx context.Context, queries []string, e Embedder) {
	e.EmbedBatch(ctx, queries)
}

func goodNoCalls(queries []string) {
	for _, q := range queries {
		_ = len(q)
	}
}
