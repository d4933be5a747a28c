package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
)

// DefaultSearchLimit is the default number of results to return.
const DefaultSearchLimit = 10

// SearchService indexes rule docs and answers natural-language questions
// about the registry ("who may a childless widow marry?"). Conditions are
// code; the index holds their prose so rules can be found by meaning.
type SearchService struct {
	embedder ports.Embedder
	vectorDB ports.VectorDB
	registry *entities.Registry
}

// NewSearchService creates a new search service.
func NewSearchService(embedder ports.Embedder, vectorDB ports.VectorDB, registry *entities.Registry) *SearchService {
	return &SearchService{
		embedder: embedder,
		vectorDB: vectorDB,
		registry: registry,
	}
}

// IndexRegistry builds one doc per registry rule, embeds them in a single
// batch, and upserts them into the vector index. Doc IDs are derived from
// rule IDs so re-indexing overwrites instead of duplicating.
func (s *SearchService) IndexRegistry(ctx context.Context) ([]entities.RuleDoc, error) {
	docs := make([]entities.RuleDoc, 0, len(s.registry.Rules))
	now := time.Now()
	for _, rule := range s.registry.Rules {
		docs = append(docs, s.docFromRule(rule, now))
	}
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docToText(&docs[i])
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, "generating embeddings")
	}
	for i := range docs {
		docs[i].Embedding = embeddings[i]
	}

	if err := s.vectorDB.SaveBatch(ctx, docs); err != nil {
		return nil, errors.Wrap(err, "saving rule docs")
	}
	return docs, nil
}

// Search finds rules semantically similar to the question.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]entities.RuleDoc, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "generating query embedding")
	}

	docs, err := s.vectorDB.Search(ctx, embedding, limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching rule docs")
	}
	return docs, nil
}

// SearchByCategory finds rules of one category semantically similar to the
// question.
func (s *SearchService) SearchByCategory(ctx context.Context, query, categoryID string, limit int) ([]entities.RuleDoc, error) {
	if _, ok := s.registry.CategoryByID(categoryID); !ok {
		return nil, errors.Newf("unknown category %q", categoryID)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "generating query embedding")
	}

	docs, err := s.vectorDB.SearchByCategory(ctx, embedding, categoryID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching rule docs by category")
	}
	return docs, nil
}

// docFromRule flattens a rule into its searchable doc. Disputed rules get
// the dispute's framing appended so a question phrased from either opinion
// still lands on them.
func (s *SearchService) docFromRule(rule entities.Rule, now time.Time) entities.RuleDoc {
	body := rule.Description
	if rule.DisputeID != "" {
		if dispute, ok := s.registry.DisputeByID(rule.DisputeID); ok {
			names := make([]string, 0, len(dispute.Opinions))
			for _, o := range dispute.Opinions {
				names = append(names, o.Name)
			}
			body += " Disputed (" + dispute.Title + "): " + strings.Join(names, " vs ") + "."
		}
	}
	return entities.RuleDoc{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte("rule:"+rule.ID)).String(),
		RuleID:     rule.ID,
		CategoryID: rule.CategoryID,
		Title:      rule.Name,
		Body:       body,
		Source:     rule.Source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// docToText converts a rule doc to searchable text for embedding.
func docToText(doc *entities.RuleDoc) string {
	parts := []string{
		doc.Title,
		doc.Body,
	}
	if doc.Source != "" {
		parts = append(parts, doc.Source)
	}
	return strings.Join(parts, " ")
}
