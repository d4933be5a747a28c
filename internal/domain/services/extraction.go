package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/ersonp/yichus-core/internal/logging"
)

// ExtractionOptions controls extraction behavior.
type ExtractionOptions struct {
	CheckConflicts bool // Ask the LLM to flag contradictions with the recorded tree
}

// ExtractionResult contains the result of extraction. Events hold the
// proposals that passed shape validation, ready to append as one slice;
// Skipped holds the ones that did not.
type ExtractionResult struct {
	Events  []entities.Event
	Skipped []entities.RawEvent
	Issues  []ports.ExtractionIssue
}

const (
	// DefaultChunkSize is the default size for text chunks.
	DefaultChunkSize = 2000
	// DefaultChunkOverlap is the default overlap between chunks.
	DefaultChunkOverlap = 200
)

// ExtractionService turns freeform family records into proposed tree
// events. The service only proposes: appending the events to a timeline is
// the caller's decision, usually after a preview.
type ExtractionService struct {
	llm ports.LLMClient
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(llm ports.LLMClient) *ExtractionService {
	return &ExtractionService{
		llm: llm,
	}
}

// Extract extracts proposed events from text. The snapshot, which may be
// nil for an empty tree, tells the model who already exists so it reuses
// recorded IDs instead of inventing duplicates.
// Note: LLM calls in loop are intentional - LLMs have token limits, so text
// must be chunked and each chunk processed separately. Cannot be batched.
func (s *ExtractionService) Extract(ctx context.Context, text string, snap *entities.Snapshot, opts ExtractionOptions) (*ExtractionResult, error) {
	knownPeople := buildKnownPeople(snap)
	chunks := ChunkText(text, DefaultChunkSize, DefaultChunkOverlap)

	var proposals []entities.RawEvent
	for i, chunk := range chunks {
		raws, err := s.llm.ExtractEvents(ctx, chunk, knownPeople)
		if err != nil {
			return nil, errors.Wrapf(err, "extracting events from chunk %d", i)
		}
		proposals = append(proposals, raws...)
	}

	return s.finalize(ctx, proposals, snap, opts)
}

// ExtractFromReader extracts proposed events by streaming from an
// io.Reader. This reduces memory from O(file_size) to O(chunk_size) for
// large files.
func (s *ExtractionService) ExtractFromReader(ctx context.Context, r io.Reader, snap *entities.Snapshot, opts ExtractionOptions) (*ExtractionResult, error) {
	knownPeople := buildKnownPeople(snap)
	chunker := newStreamChunker(r)

	var proposals []entities.RawEvent

	// processChunk is called per chunk - LLM calls in loop are intentional
	// because LLMs have token limits and each chunk must be processed
	// separately.
	processChunk := func(chunkText string) error {
		raws, err := s.llm.ExtractEvents(ctx, chunkText, knownPeople)
		if err != nil {
			return errors.Wrap(err, "extracting events")
		}
		proposals = append(proposals, raws...)
		return nil
	}

	for chunker.scanner.Scan() {
		if err := chunker.processLine(chunker.scanner.Text(), processChunk); err != nil {
			return nil, err
		}
	}

	if err := chunker.scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading input")
	}

	if err := chunker.flush(processChunk); err != nil {
		return nil, err
	}

	return s.finalize(ctx, proposals, snap, opts)
}

// finalize validates proposals, fills in missing IDs, and optionally asks
// the LLM to check the surviving ones against the recorded tree.
func (s *ExtractionService) finalize(ctx context.Context, proposals []entities.RawEvent, snap *entities.Snapshot, opts ExtractionOptions) (*ExtractionResult, error) {
	result := &ExtractionResult{}
	if len(proposals) == 0 {
		return result, nil
	}

	// Models sometimes omit IDs for people they just invented.
	for i := range proposals {
		if proposals[i].Type == string(entities.EventAddPerson) && proposals[i].PersonID == "" {
			proposals[i].PersonID = uuid.New().String()
		}
		if proposals[i].Type == string(entities.EventAddRelation) && proposals[i].RelationID == "" {
			proposals[i].RelationID = uuid.New().String()
		}
	}

	// People land before the relations that reference them, the same order
	// seeded slices use. Proposal order is kept otherwise.
	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].Type == string(entities.EventAddPerson) &&
			proposals[j].Type != string(entities.EventAddPerson)
	})

	var accepted []entities.RawEvent
	for i := range proposals {
		event, err := proposals[i].ToEvent()
		if err != nil {
			logging.Warnw("dropping invalid proposal", "type", proposals[i].Type, "error", err)
			result.Skipped = append(result.Skipped, proposals[i])
			continue
		}
		accepted = append(accepted, proposals[i])
		result.Events = append(result.Events, event)
	}

	if opts.CheckConflicts && snap != nil && len(accepted) > 0 {
		issues, err := s.llm.CheckConflicts(ctx, accepted, snap)
		if err != nil {
			return nil, errors.Wrap(err, "checking conflicts")
		}
		result.Issues = issues
	}

	return result, nil
}

// buildKnownPeople renders snapshot people as prompt-ready lines.
func buildKnownPeople(snap *entities.Snapshot) []string {
	if snap == nil {
		return nil
	}
	people := snap.People()
	lines := make([]string, 0, len(people))
	for _, p := range people {
		status := "alive"
		if p.DeadAt(snap.Slice) {
			status = "deceased"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s, %s)", p.ID, p.Name, p.Sex, status))
	}
	return lines
}

// streamChunker handles streaming chunking of text from an io.Reader.
type streamChunker struct {
	scanner       *bufio.Scanner
	currentChunk  strings.Builder
	lastParagraph strings.Builder
	inParagraph   bool
}

// newStreamChunker creates a chunker for the given reader.
func newStreamChunker(r io.Reader) *streamChunker {
	scanner := bufio.NewScanner(r)
	// Allow up to 1MB lines
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &streamChunker{scanner: scanner}
}

// addParagraphToChunk adds a completed paragraph to the current chunk.
// Returns true if chunk was processed (became full).
func (c *streamChunker) addParagraphToChunk(para string, processChunk func(string) error) (bool, error) {
	if len(para) == 0 {
		return false, nil
	}

	// Check if adding this paragraph would exceed chunk size
	if c.currentChunk.Len()+len(para)+2 > DefaultChunkSize && c.currentChunk.Len() > 0 {
		if err := processChunk(c.currentChunk.String()); err != nil {
			return false, err
		}

		// Start new chunk with overlap
		overlap := getOverlapText(c.currentChunk.String(), DefaultChunkOverlap)
		c.currentChunk.Reset()
		c.currentChunk.WriteString(overlap)

		// Add the paragraph that triggered the overflow to the new chunk
		if c.currentChunk.Len() > 0 {
			c.currentChunk.WriteString("\n\n")
		}
		c.currentChunk.WriteString(para)
		return true, nil
	}

	if c.currentChunk.Len() > 0 {
		c.currentChunk.WriteString("\n\n")
	}
	c.currentChunk.WriteString(para)
	return false, nil
}

// processLine handles a single line, accumulating paragraphs.
func (c *streamChunker) processLine(line string, processChunk func(string) error) error {
	if strings.TrimSpace(line) == "" {
		// Empty line marks paragraph boundary
		if c.inParagraph && c.lastParagraph.Len() > 0 {
			para := c.lastParagraph.String()
			if _, err := c.addParagraphToChunk(para, processChunk); err != nil {
				return err
			}
			c.lastParagraph.Reset()
			c.inParagraph = false
		}
		return nil
	}

	// Non-empty line: add to current paragraph
	if c.inParagraph {
		c.lastParagraph.WriteString("\n")
	}
	c.lastParagraph.WriteString(line)
	c.inParagraph = true
	return nil
}

// flush processes any remaining content.
func (c *streamChunker) flush(processChunk func(string) error) error {
	// Handle any remaining paragraph
	if c.lastParagraph.Len() > 0 {
		para := c.lastParagraph.String()
		if _, err := c.addParagraphToChunk(para, processChunk); err != nil {
			return err
		}
	}

	// Process the final chunk
	if c.currentChunk.Len() > 0 {
		return processChunk(c.currentChunk.String())
	}
	return nil
}

// ChunkText splits text into chunks with overlap.
func ChunkText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	paragraphs := strings.Split(text, "\n\n")

	var currentChunk strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if currentChunk.Len()+len(para)+2 > chunkSize && currentChunk.Len() > 0 {
			chunks = append(chunks, currentChunk.String())

			overlapText := getOverlapText(currentChunk.String(), overlap)
			currentChunk.Reset()
			currentChunk.WriteString(overlapText)
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString("\n\n")
		}
		currentChunk.WriteString(para)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	if len(chunks) == 0 && len(text) > 0 {
		chunks = append(chunks, text)
	}

	return chunks
}

// getOverlapText returns the last n characters of text for overlap.
func getOverlapText(text string, n int) string {
	if len(text) <= n {
		return text
	}
	return text[len(text)-n:]
}
