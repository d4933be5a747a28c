package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/mocks"
	"github.com/ersonp/yichus-core/internal/domain/ports"
	"github.com/ersonp/yichus-core/internal/domain/services"
)

func newIngestHandlerForTest(t *testing.T) (*IngestHandler, *mocks.LLMClient, *mocks.TreeStore, string) {
	t.Helper()
	llm := &mocks.LLMClient{}
	store := mocks.NewTreeStore()
	trees := services.NewTreeService(store)
	tree, err := trees.Create(t.Context(), "chronicle")
	require.NoError(t, err)
	handler := NewIngestHandler(
		services.NewExtractionService(llm),
		trees,
		services.NewResolverService(false),
	)
	return handler, llm, store, tree.ID
}

func writeIngestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestIngestHandler_Handle(t *testing.T) {
	handler, llm, store, treeID := newIngestHandlerForTest(t)
	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p1", Name: "Reuven", Sex: "male"},
	}

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Reuven was the firstborn of Yaakov.")

	result, err := handler.Handle(t.Context(), treeID, file)

	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsCount)
	assert.Equal(t, 0, result.Slice)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "p1", result.Events[0].Person.ID)
	assert.Equal(t, 1, store.AppendEventsCallCount)
}

func TestIngestHandler_Handle_NoEvents(t *testing.T) {
	handler, _, store, treeID := newIngestHandlerForTest(t)

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Nothing genealogical here.")

	result, err := handler.Handle(t.Context(), treeID, file)

	require.NoError(t, err)
	assert.Equal(t, 0, result.EventsCount)
	assert.Equal(t, -1, result.Slice)
	assert.Equal(t, 0, store.AppendEventsCallCount)
}

func TestIngestHandler_HandleWithOptions_DryRun(t *testing.T) {
	handler, llm, store, treeID := newIngestHandlerForTest(t)
	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p1", Name: "Leah", Sex: "female"},
	}

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Leah married Yaakov.")

	result, err := handler.HandleWithOptions(t.Context(), treeID, file, IngestOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsCount)
	assert.Equal(t, -1, result.Slice)
	assert.Equal(t, 0, store.AppendEventsCallCount)
}

func TestIngestHandler_Handle_KnownPeople(t *testing.T) {
	handler, llm, store, treeID := newIngestHandlerForTest(t)

	seed := []entities.Event{
		entities.NewAddPerson(entities.Person{ID: "p1", Name: "Reuven", Sex: entities.SexMale}),
	}
	require.NoError(t, store.AppendEvents(t.Context(), treeID, 0, seed))

	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p2", Name: "Leah", Sex: "female"},
	}

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Leah joined the family.")

	result, err := handler.Handle(t.Context(), treeID, file)

	require.NoError(t, err)
	assert.Equal(t, []string{"p1: Reuven (male, alive)"}, llm.LastKnownPeople)
	assert.Equal(t, 1, result.Slice)
}

func TestIngestHandler_HandleWithOptions_Conflicts(t *testing.T) {
	handler, llm, store, treeID := newIngestHandlerForTest(t)

	seed := []entities.Event{
		entities.NewAddPerson(entities.Person{ID: "p1", Name: "Reuven", Sex: entities.SexMale}),
	}
	require.NoError(t, store.AppendEvents(t.Context(), treeID, 0, seed))

	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p2", Name: "Reuven", Sex: "male"},
	}
	llm.Issues = []ports.ExtractionIssue{
		{Event: llm.Events[0], Description: "a Reuven is already recorded as p1", Severity: "major"},
	}

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Reuven was born.")

	result, err := handler.HandleWithOptions(t.Context(), treeID, file, IngestOptions{CheckConflicts: true})

	require.NoError(t, err)
	assert.True(t, llm.CheckConflictsCalled)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0].Description, "already recorded")
}

func TestIngestHandler_Handle_ExtractError(t *testing.T) {
	handler, llm, _, treeID := newIngestHandlerForTest(t)
	llm.ExtractErr = assert.AnError

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Some text.")

	_, err := handler.Handle(t.Context(), treeID, file)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "extracting events")
}

func TestIngestHandler_Handle_UnknownTree(t *testing.T) {
	handler, _, _, _ := newIngestHandlerForTest(t)

	file := writeIngestFile(t, t.TempDir(), "records.txt", "Some text.")

	_, err := handler.Handle(t.Context(), "no-such-tree", file)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading tree")
}

func TestIngestHandler_Handle_FileNotFound(t *testing.T) {
	handler, _, _, treeID := newIngestHandlerForTest(t)

	_, err := handler.Handle(t.Context(), treeID, filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accessing file")
}

func TestIngestHandler_Handle_DirectoryPath(t *testing.T) {
	handler, _, _, treeID := newIngestHandlerForTest(t)

	_, err := handler.Handle(t.Context(), treeID, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory, not a file")
}

func TestIngestHandler_HandleDirectory(t *testing.T) {
	handler, llm, store, treeID := newIngestHandlerForTest(t)
	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p1", Name: "Reuven", Sex: "male"},
	}

	dir := t.TempDir()
	writeIngestFile(t, dir, "a.txt", "First record.")
	writeIngestFile(t, dir, "b.txt", "Second record.")

	var visited []string
	progressFn := func(file string) {
		visited = append(visited, filepath.Base(file))
	}

	result, err := handler.HandleDirectory(t.Context(), treeID, dir, "*.txt", false, progressFn)

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 2, result.TotalEvents)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"a.txt", "b.txt"}, visited)

	// Each file's events land on their own slice.
	assert.Equal(t, 2, store.AppendEventsCallCount)
	require.Len(t, result.FileResults, 2)
	assert.Equal(t, 0, result.FileResults[0].Slice)
	assert.Equal(t, 1, result.FileResults[1].Slice)
}

func TestIngestHandler_HandleDirectory_Pattern(t *testing.T) {
	handler, llm, _, treeID := newIngestHandlerForTest(t)
	llm.Events = []entities.RawEvent{
		{Type: "add_person", PersonID: "p1", Name: "Leah", Sex: "female"},
	}

	dir := t.TempDir()
	writeIngestFile(t, dir, "a.txt", "A record.")
	writeIngestFile(t, dir, "notes.md", "Not matched.")

	result, err := handler.HandleDirectory(t.Context(), treeID, dir, "*.txt", false, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalFiles)
}

func TestIngestHandler_HandleDirectory_NoMatches(t *testing.T) {
	handler, _, _, treeID := newIngestHandlerForTest(t)

	dir := t.TempDir()
	writeIngestFile(t, dir, "a.txt", "A record.")

	_, err := handler.HandleDirectory(t.Context(), treeID, dir, "*.json", false, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files matching")
}

func TestIngestHandler_HandleDirectory_NotADirectory(t *testing.T) {
	handler, _, _, treeID := newIngestHandlerForTest(t)

	file := writeIngestFile(t, t.TempDir(), "a.txt", "A record.")

	_, err := handler.HandleDirectory(t.Context(), treeID, file, "*.txt", false, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestIsDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, IsDirectory(dir))

	file := writeIngestFile(t, dir, "a.txt", "content")
	assert.False(t, IsDirectory(file))
	assert.False(t, IsDirectory(filepath.Join(dir, "missing")))
}

func TestIsGlobPattern(t *testing.T) {
	assert.True(t, IsGlobPattern("*.txt"))
	assert.True(t, IsGlobPattern("record?.md"))
	assert.True(t, IsGlobPattern("[ab].txt"))
	assert.False(t, IsGlobPattern("records/file.txt"))
}
