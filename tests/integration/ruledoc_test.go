package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	embedder "github.com/ersonp/yichus-core/internal/infrastructure/embedder/openai"
)

// basisVector returns a unit vector along one axis, so test docs are
// mutually orthogonal and search order is unambiguous.
func basisVector(axis int) []float32 {
	vec := make([]float32, embedder.VectorSize)
	vec[axis] = 1
	return vec
}

func saveTestDocs(t *testing.T, docs []entities.RuleDoc) {
	t.Helper()

	require.NoError(t, testVectorRepo.SaveBatch(t.Context(), docs))
	t.Cleanup(func() {
		// t.Context is already canceled by cleanup time.
		for _, doc := range docs {
			_ = testVectorRepo.Delete(context.Background(), doc.ID)
		}
	})
}

func TestRuleDocSearch(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	docs := []entities.RuleDoc{
		{ID: uuid.New().String(), RuleID: "brothers-wife", CategoryID: entities.CategoryErvah, Title: "Brother's wife", Body: "A man may not marry his brother's wife.", Embedding: basisVector(0), CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RuleID: "zekukah", CategoryID: entities.CategoryZikah, Title: "Bound widow", Body: "A childless widow is bound to her husband's brothers.", Embedding: basisVector(1), CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RuleID: "machzir-gerushaso", CategoryID: entities.CategoryLav, Title: "Returning divorcee", Body: "A man may not remarry his divorcee after her marriage to another.", Embedding: basisVector(2), CreatedAt: now, UpdatedAt: now},
	}
	saveTestDocs(t, docs)

	results, err := testVectorRepo.Search(ctx, basisVector(1), 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "zekukah", results[0].RuleID)
	assert.Equal(t, "Bound widow", results[0].Title)
	assert.InDelta(t, 1.0, float64(results[0].Score), 0.001)

	// Best match first.
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestRuleDocSearchByCategory(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	docs := []entities.RuleDoc{
		{ID: uuid.New().String(), RuleID: "sibling", CategoryID: entities.CategoryErvah, Title: "Sibling", Body: "Siblings may not marry.", Embedding: basisVector(3), CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), RuleID: "achos-zekukah", CategoryID: entities.CategoryZikah, Title: "Sister of bound widow", Body: "The bound widow's sister is forbidden to the levir.", Embedding: basisVector(4), CreatedAt: now, UpdatedAt: now},
	}
	saveTestDocs(t, docs)

	results, err := testVectorRepo.SearchByCategory(ctx, basisVector(3), entities.CategoryZikah, 10)
	require.NoError(t, err)

	for _, doc := range results {
		assert.Equal(t, entities.CategoryZikah, doc.CategoryID)
	}
	for _, doc := range results {
		assert.NotEqual(t, "sibling", doc.RuleID)
	}
}

func TestRuleDocFindByIDAndDelete(t *testing.T) {
	ctx := t.Context()
	now := time.Now()

	doc := entities.RuleDoc{
		ID:         uuid.New().String(),
		RuleID:     "direct-line",
		CategoryID: entities.CategoryErvah,
		Title:      "Direct line",
		Body:       "Ancestors and descendants may not marry.",
		Source:     "Vayikra 18:7",
		Embedding:  basisVector(5),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	saveTestDocs(t, []entities.RuleDoc{doc})

	found, err := testVectorRepo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "direct-line", found.RuleID)
	assert.Equal(t, "Vayikra 18:7", found.Source)
	assert.Len(t, found.Embedding, embedder.VectorSize)

	require.NoError(t, testVectorRepo.Delete(ctx, doc.ID))

	_, err = testVectorRepo.FindByID(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
