package handlers

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/domain/services"
	"github.com/ersonp/yichus-core/internal/errors"
)

// IngestHandler extracts tree events from freeform text files and appends
// them to a tree's timeline.
type IngestHandler struct {
	extractionService *services.ExtractionService
	treeService       *services.TreeService
	resolver          *services.ResolverService
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(extractionService *services.ExtractionService, treeService *services.TreeService, resolver *services.ResolverService) *IngestHandler {
	return &IngestHandler{
		extractionService: extractionService,
		treeService:       treeService,
		resolver:          resolver,
	}
}

// IngestOptions controls ingestion behavior.
type IngestOptions struct {
	CheckConflicts bool // Ask the LLM to flag contradictions with the recorded tree
	DryRun         bool // Extract and report without appending
}

// IngestResult contains the result of ingesting one file.
type IngestResult struct {
	FilePath    string
	EventsCount int
	Events      []entities.Event
	Skipped     []entities.RawEvent
	Issues      []ports.ExtractionIssue
	Slice       int // Slice the events were appended to, -1 if nothing was appended
}

// IngestBatchResult contains the result of batch ingestion.
type IngestBatchResult struct {
	TotalFiles  int
	TotalEvents int
	TotalIssues int
	FileResults []*IngestResult
	Errors      []error
}

// Handle ingests a file into the named tree.
func (h *IngestHandler) Handle(ctx context.Context, treeID, filePath string) (*IngestResult, error) {
	return h.HandleWithOptions(ctx, treeID, filePath, IngestOptions{})
}

// HandleWithOptions ingests a file with conflict checking options. The
// current snapshot is resolved first so the model reuses recorded person
// IDs; accepted events land together on the next slice. Uses streaming to
// avoid loading the entire file into memory.
func (h *IngestHandler) HandleWithOptions(ctx context.Context, treeID, filePath string, opts IngestOptions) (*IngestResult, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errors.Wrap(err, "accessing file")
	}

	if info.IsDir() {
		return nil, errors.Newf("path is a directory, not a file: %s", absPath)
	}

	graph, err := h.treeService.LoadGraph(ctx, treeID)
	if err != nil {
		return nil, errors.Wrap(err, "loading tree")
	}

	var snap *entities.Snapshot
	if latest := graph.LatestSlice(); latest >= 0 {
		snap, err = h.resolver.Resolve(graph, latest)
		if err != nil {
			return nil, errors.Wrap(err, "resolving current snapshot")
		}
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer file.Close()

	extractOpts := services.ExtractionOptions{
		CheckConflicts: opts.CheckConflicts,
	}

	result, err := h.extractionService.ExtractFromReader(ctx, file, snap, extractOpts)
	if err != nil {
		return nil, errors.Wrap(err, "extracting events")
	}

	ingestResult := &IngestResult{
		FilePath:    absPath,
		EventsCount: len(result.Events),
		Events:      result.Events,
		Skipped:     result.Skipped,
		Issues:      result.Issues,
		Slice:       -1,
	}

	if opts.DryRun || len(result.Events) == 0 {
		return ingestResult, nil
	}

	slice := graph.LatestSlice() + 1
	if _, err := h.treeService.AppendEvents(ctx, graph.ID, slice, result.Events); err != nil {
		return nil, errors.Wrap(err, "appending events")
	}
	ingestResult.Slice = slice

	return ingestResult, nil
}

// HandleDirectory ingests all matching files in a directory.
func (h *IngestHandler) HandleDirectory(ctx context.Context, treeID, dirPath string, pattern string, recursive bool, progressFn func(file string)) (*IngestBatchResult, error) {
	return h.HandleDirectoryWithOptions(ctx, treeID, dirPath, pattern, recursive, progressFn, IngestOptions{})
}

// HandleDirectoryWithOptions ingests all matching files with conflict
// checking options. Files are processed in walk order and each file's
// events land on their own slice, so later files see the people earlier
// files introduced.
func (h *IngestHandler) HandleDirectoryWithOptions(ctx context.Context, treeID, dirPath string, pattern string, recursive bool, progressFn func(file string), opts IngestOptions) (*IngestBatchResult, error) {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, errors.Wrap(err, "accessing path")
	}

	if !info.IsDir() {
		return nil, errors.Newf("path is not a directory: %s", absPath)
	}

	files, err := h.findFiles(absPath, pattern, recursive)
	if err != nil {
		return nil, errors.Wrap(err, "finding files")
	}

	if len(files) == 0 {
		return nil, errors.Newf("no files matching pattern %q found in %s", pattern, absPath)
	}

	result := &IngestBatchResult{
		FileResults: make([]*IngestResult, 0, len(files)),
	}

	for _, file := range files {
		if progressFn != nil {
			progressFn(file)
		}

		fileResult, err := h.HandleWithOptions(ctx, treeID, file, opts)
		if err != nil {
			result.Errors = append(result.Errors, errors.Wrapf(err, "%s", file))
			continue
		}

		result.FileResults = append(result.FileResults, fileResult)
		result.TotalFiles++
		result.TotalEvents += fileResult.EventsCount
		result.TotalIssues += len(fileResult.Issues)
	}

	return result, nil
}

// findFiles finds all files matching the pattern in the directory.
func (h *IngestHandler) findFiles(dirPath string, pattern string, recursive bool) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if !recursive && path != dirPath {
				return filepath.SkipDir
			}
			return nil
		}

		matched, err := filepath.Match(pattern, info.Name())
		if err != nil {
			return err
		}

		if matched {
			files = append(files, path)
		}

		return nil
	}

	if err := filepath.Walk(dirPath, walkFn); err != nil {
		return nil, err
	}

	return files, nil
}

// IsDirectory checks if the given path is a directory.
func IsDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsGlobPattern checks if the path contains glob characters.
func IsGlobPattern(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
