package handlers

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
)

// SearchHandler handles semantic search over the rule registry.
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchResult contains the result of a rule search.
type SearchResult struct {
	Query string
	Docs  []entities.RuleDoc
}

// Handle searches for rules matching the query.
func (h *SearchHandler) Handle(ctx context.Context, query string, limit int) (*SearchResult, error) {
	docs, err := h.searchService.Search(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching rules")
	}

	return &SearchResult{
		Query: query,
		Docs:  docs,
	}, nil
}

// HandleByCategory searches for rules filtered by category.
func (h *SearchHandler) HandleByCategory(ctx context.Context, query, categoryID string, limit int) (*SearchResult, error) {
	docs, err := h.searchService.SearchByCategory(ctx, query, categoryID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "searching rules by category")
	}

	return &SearchResult{
		Query: query,
		Docs:  docs,
	}, nil
}

// HandleIndex embeds the rule registry and saves it to the vector store.
func (h *SearchHandler) HandleIndex(ctx context.Context) ([]entities.RuleDoc, error) {
	docs, err := h.searchService.IndexRegistry(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "indexing rules")
	}
	return docs, nil
}
