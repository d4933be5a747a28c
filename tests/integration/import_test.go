package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/application/handlers"
	"github.com/ersonp/yichus-core/internal/domain/services"
)

const baseFamilyCSV = `slice,type,person_id,name,sex,relation_id,relation_type,source_id,target_id
0,add_person,p1,Yehudah,male,,,,
0,add_person,p2,Tamar,female,,,,
0,add_relation,,,,r1,marriage,p1,p2
1,mark_deceased,p1,,,,,,
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newImportFixture(t *testing.T) (context.Context, *services.TreeService, *handlers.ImportHandler, string) {
	t.Helper()

	tmpDir := t.TempDir()
	repo := openTestStore(t, filepath.Join(tmpDir, "yichus.db"))
	t.Cleanup(func() { repo.Close() })

	trees := services.NewTreeService(repo)
	handler := handlers.NewImportHandler(services.NewImportService(trees))

	ctx := context.Background()
	tree, err := trees.Create(ctx, "import-test")
	require.NoError(t, err)

	return ctx, trees, handler, tree.ID
}

func TestImportIntegration_CSVFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, trees, handler, treeID := newImportFixture(t)
	path := writeTestFile(t, t.TempDir(), "family.csv", baseFamilyCSV)

	result, err := handler.Handle(ctx, treeID, path, handlers.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Imported)
	assert.Empty(t, result.Errors)

	graph, err := trees.LoadGraph(ctx, treeID)
	require.NoError(t, err)
	require.Equal(t, 2, graph.SliceCount())
	require.Len(t, graph.Slices[0].Events, 3)
	assert.Equal(t, "p1", graph.Slices[0].Events[0].Person.ID)
	assert.Equal(t, "r1", graph.Slices[0].Events[2].Relation.ID)
	require.Len(t, graph.Slices[1].Events, 1)
	assert.Equal(t, "p1", graph.Slices[1].Events[0].PersonID)

	entries, err := trees.AuditLogByAction(ctx, "import", 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, treeID, entries[0].TreeID)
}

func TestImportIntegration_ConflictStrategies(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, trees, handler, treeID := newImportFixture(t)
	dir := t.TempDir()
	base := writeTestFile(t, dir, "family.csv", baseFamilyCSV)

	_, err := handler.Handle(ctx, treeID, base, handlers.ImportOptions{})
	require.NoError(t, err)

	// One colliding ID, one new person. No slice column, so both stage to
	// the next slice.
	more := writeTestFile(t, dir, "more.csv", `type,person_id,name,sex
add_person,p1,Yehudah,male
add_person,p3,Peretz,male
`)

	_, err = handler.Handle(ctx, treeID, more, handlers.ImportOptions{OnConflict: services.ConflictFail})
	require.Error(t, err)

	result, err := handler.Handle(ctx, treeID, more, handlers.ImportOptions{OnConflict: services.ConflictSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	graph, err := trees.LoadGraph(ctx, treeID)
	require.NoError(t, err)
	latest := graph.Slices[graph.LatestSlice()].Events
	require.Len(t, latest, 1)
	assert.Equal(t, "p3", latest[0].Person.ID)
}

func TestImportIntegration_DryRunLeavesStoreUntouched(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, trees, handler, treeID := newImportFixture(t)
	path := writeTestFile(t, t.TempDir(), "family.csv", baseFamilyCSV)

	result, err := handler.Handle(ctx, treeID, path, handlers.ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Imported)

	count, err := trees.CountEvents(ctx, treeID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImportIntegration_RejectsRewritingHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, trees, handler, treeID := newImportFixture(t)
	dir := t.TempDir()
	base := writeTestFile(t, dir, "family.csv", baseFamilyCSV)

	_, err := handler.Handle(ctx, treeID, base, handlers.ImportOptions{})
	require.NoError(t, err)

	// Latest slice is now 1; slice 0 is history.
	stale := writeTestFile(t, dir, "stale.csv", `slice,type,person_id,name,sex
0,add_person,p9,Zerach,male
`)

	result, err := handler.Handle(ctx, treeID, stale, handlers.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "slice", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "append-only")

	count, err := trees.CountEvents(ctx, treeID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}
