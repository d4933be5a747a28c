package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

// ConflictStrategy defines how to handle events whose person or relation ID
// is already taken.
type ConflictStrategy string

const (
	// ConflictFail aborts the import on the first ID collision.
	ConflictFail ConflictStrategy = "fail"
	// ConflictSkip drops colliding events and keeps going.
	ConflictSkip ConflictStrategy = "skip"
)

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without appending
	OnConflict ConflictStrategy // How to handle ID collisions (default fail)
}

// ImportError represents an error for a specific record during import.
type ImportError struct {
	Line    int    // Line number (1-indexed, 0 if unknown)
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []ImportError
}

// ImportService stages raw events against a tree's timeline and appends the
// ones that survive. Validation is the fold itself: each staged event is
// applied to a scratch fold of the existing log, so import rejects exactly
// what resolution would later reject, and nothing else.
type ImportService struct {
	trees *TreeService
}

// NewImportService creates a new import service.
func NewImportService(trees *TreeService) *ImportService {
	return &ImportService{
		trees: trees,
	}
}

// stagedEvent is a converted record bound for a specific slice.
type stagedEvent struct {
	event entities.Event
	slice int
	line  int
}

// Import validates raw events and appends them to the tree's timeline.
// Records without a slice go to the slice after the current latest; records
// with one must name the latest slice or beyond, since history is
// append-only. Events are folded in slice order; a record that fails its
// fold is reported and dropped without stopping the rest.
func (s *ImportService) Import(ctx context.Context, treeID string, raws []entities.RawEvent, opts ImportOptions) (*ImportResult, error) {
	graph, err := s.trees.LoadGraph(ctx, treeID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	staged := s.stage(graph, raws, result)
	if len(staged) == 0 {
		return result, nil
	}

	// Replay the stored log so staged events are judged against the exact
	// state resolution would see.
	fold := newFoldState()
	for si := range graph.Slices {
		for ei, ev := range graph.Slices[si].Events {
			if err := fold.apply(ev, si); err != nil {
				return nil, errors.Wrapf(err, "stored timeline does not fold at slice %d event %d", si, ei)
			}
		}
	}

	onConflict := opts.OnConflict
	if onConflict == "" {
		onConflict = ConflictFail
	}

	applied := make([]stagedEvent, 0, len(staged))
	for _, st := range staged {
		if err := fold.apply(st.event, st.slice); err != nil {
			if errors.Is(err, errors.ErrDuplicateID) {
				if onConflict == ConflictSkip {
					result.Skipped++
					continue
				}
				return nil, errors.Wrapf(err, "line %d", st.line)
			}
			result.Errors = append(result.Errors, ImportError{Line: st.line, Message: err.Error()})
			continue
		}
		applied = append(applied, st)
	}

	result.Imported = len(applied)
	if opts.DryRun || len(applied) == 0 {
		return result, nil
	}

	// Persist per slice, in slice order. Append order within each call is
	// the staged order, which the store must keep.
	for start := 0; start < len(applied); {
		end := start
		for end < len(applied) && applied[end].slice == applied[start].slice {
			end++
		}
		events := make([]entities.Event, 0, end-start)
		for _, st := range applied[start:end] {
			events = append(events, st.event)
		}
		if _, err := s.trees.AppendEvents(ctx, treeID, applied[start].slice, events); err != nil {
			return nil, errors.Wrapf(err, "appending slice %d", applied[start].slice)
		}
		start = end
	}

	s.trees.audit(ctx, entities.AuditImport, treeID, map[string]any{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"errors":   len(result.Errors),
	})
	logging.Infow("imported events",
		"tree", treeID,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

// stage converts raw records to events with target slices, collecting
// per-record errors. The returned events are sorted by slice, input order
// preserved within a slice.
func (s *ImportService) stage(graph *entities.TemporalGraph, raws []entities.RawEvent, result *ImportResult) []stagedEvent {
	latest := graph.LatestSlice()
	staged := make([]stagedEvent, 0, len(raws))

	for i := range raws {
		raw := &raws[i]
		line := raw.LineNum
		if line == 0 {
			line = i + 1
		}

		slice := latest + 1
		if raw.Slice != nil {
			slice = *raw.Slice
			if slice < 0 {
				result.Errors = append(result.Errors, ImportError{
					Line:    line,
					Field:   "slice",
					Value:   fmt.Sprintf("%d", slice),
					Message: fmt.Sprintf("slice %d is negative", slice),
				})
				continue
			}
			if latest >= 0 && slice < latest {
				result.Errors = append(result.Errors, ImportError{
					Line:    line,
					Field:   "slice",
					Value:   fmt.Sprintf("%d", slice),
					Message: fmt.Sprintf("history is append-only: slice %d is before the latest slice %d", slice, latest),
				})
				continue
			}
		}

		event, err := raw.ToEvent()
		if err != nil {
			result.Errors = append(result.Errors, ImportError{
				Line:    line,
				Message: err.Error(),
			})
			continue
		}

		staged = append(staged, stagedEvent{event: event, slice: slice, line: line})
	}

	sort.SliceStable(staged, func(i, j int) bool {
		return staged[i].slice < staged[j].slice
	})
	return staged
}
