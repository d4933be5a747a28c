// Package handlers contains application use case handlers.
package handlers

import (
	"context"

	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/config"
	embedder "github.com/ersonp/yichus-core/internal/infrastructure/embedder/openai"
)

// InitHandler handles workspace initialization.
type InitHandler struct {
	collections ports.CollectionManager
}

// NewInitHandler creates a new init handler. The collection manager may be
// nil, in which case the rules collection is not created.
func NewInitHandler(collections ports.CollectionManager) *InitHandler {
	return &InitHandler{collections: collections}
}

// InitResult contains the result of initialization.
type InitResult struct {
	ConfigPath     string
	CollectionName string
}

// Handle initializes the yichus workspace under basePath.
func (h *InitHandler) Handle(ctx context.Context, basePath string) (*InitResult, error) {
	if config.Exists(basePath) {
		return nil, errors.Newf("yichus already initialized in %s", basePath)
	}

	if err := config.WriteDefault(basePath); err != nil {
		return nil, errors.Wrap(err, "writing default config")
	}

	cfg, err := config.Load(basePath)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	if h.collections != nil {
		if err := h.collections.EnsureCollection(ctx, embedder.VectorSize); err != nil {
			return nil, errors.Wrap(err, "creating rules collection")
		}
	}

	return &InitResult{
		ConfigPath:     config.ConfigFilePath(basePath),
		CollectionName: cfg.Qdrant.Collection,
	}, nil
}
