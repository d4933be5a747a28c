package handlers

import (
	"context"
	"os"

	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/infrastructure/parsers"
)

// ImportHandler handles importing tree events from files.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{
		service: service,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "csv", or "auto"
	DryRun     bool                      // Validate without appending
	OnConflict services.ConflictStrategy // How to handle ID collisions
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []services.ImportError
}

// Handle parses a file of raw events and imports them into the named tree.
func (h *ImportHandler) Handle(ctx context.Context, treeID, filePath string, opts ImportOptions) (*ImportResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, errors.Newf("unsupported format for file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer file.Close()

	raws, err := parser.Parse(file)
	if err != nil {
		return nil, errors.Wrap(err, "parsing file")
	}

	if len(raws) == 0 {
		return &ImportResult{}, nil
	}

	serviceOpts := services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
	}

	serviceResult, err := h.service.Import(ctx, treeID, raws, serviceOpts)
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Imported: serviceResult.Imported,
		Skipped:  serviceResult.Skipped,
		Errors:   serviceResult.Errors,
	}, nil
}
