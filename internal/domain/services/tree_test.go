package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/mocks"
	"github.com/ersonp/yichus-core/internal/errors"
)

func newTreeServiceForTest() (*TreeService, *mocks.TreeStore) {
	store := mocks.NewTreeStore()
	return NewTreeService(store), store
}

func auditActions(entries []entities.AuditEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Action
	}
	return out
}

func TestTreeService_Create(t *testing.T) {
	t.Run("creates tree with empty timeline", func(t *testing.T) {
		svc, store := newTreeServiceForTest()

		tree, err := svc.Create(context.Background(), "Beis Yaakov")
		require.NoError(t, err)
		assert.NotEmpty(t, tree.ID)
		assert.Equal(t, "Beis Yaakov", tree.Name)
		assert.Equal(t, "beis yaakov", tree.NormalizedName)
		assert.Equal(t, 1, tree.Version)

		graph, err := svc.LoadGraph(context.Background(), tree.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, graph.SliceCount())

		assert.Contains(t, auditActions(store.Audit), "tree_create")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()

		_, err := svc.Create(context.Background(), "   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("rejects duplicate name case-insensitively", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()

		_, err := svc.Create(context.Background(), "Beis Yaakov")
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), "BEIS YAAKOV")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestTreeService_Find(t *testing.T) {
	svc, _ := newTreeServiceForTest()
	created, err := svc.Create(context.Background(), "Levi Family")
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		tree, err := svc.Find(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, tree.ID)
	})

	t.Run("by name", func(t *testing.T) {
		tree, err := svc.Find(context.Background(), "levi family")
		require.NoError(t, err)
		assert.Equal(t, created.ID, tree.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Find(context.Background(), "no-such-tree")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestTreeService_List(t *testing.T) {
	svc, store := newTreeServiceForTest()
	now := time.Now()
	store.Trees["t1"] = &entities.Tree{ID: "t1", Name: "First", NormalizedName: "first", Version: 1, CreatedAt: now}
	store.Trees["t2"] = &entities.Tree{ID: "t2", Name: "Second", NormalizedName: "second", Version: 1, CreatedAt: now.Add(time.Hour)}

	trees, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trees, 2)
	assert.Equal(t, "t1", trees[0].ID)
	assert.Equal(t, "t2", trees[1].ID)
}

func TestTreeService_Delete(t *testing.T) {
	t.Run("removes tree and its log", func(t *testing.T) {
		svc, store := newTreeServiceForTest()
		tree, err := svc.Create(context.Background(), "Short Lived")
		require.NoError(t, err)
		_, err = svc.AppendEvents(context.Background(), tree.ID, 0, []entities.Event{
			entities.NewAddPerson(person("p1", "Reuven", entities.SexMale)),
		})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), "short lived"))

		_, err = svc.Find(context.Background(), tree.ID)
		assert.True(t, errors.IsNotFound(err))
		assert.Empty(t, store.Logs[tree.ID])
		assert.Contains(t, auditActions(store.Audit), "tree_delete")
	})

	t.Run("not found", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()
		err := svc.Delete(context.Background(), "ghost")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestTreeService_AppendEvents(t *testing.T) {
	t.Run("appends and bumps version", func(t *testing.T) {
		svc, store := newTreeServiceForTest()
		tree, err := svc.Create(context.Background(), "Growing")
		require.NoError(t, err)

		updated, err := svc.AppendEvents(context.Background(), tree.ID, 0, []entities.Event{
			entities.NewAddPerson(person("p1", "Reuven", entities.SexMale)),
			entities.NewAddPerson(person("p2", "Leah", entities.SexFemale)),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)

		graph, err := svc.LoadGraph(context.Background(), tree.ID)
		require.NoError(t, err)
		require.Equal(t, 1, graph.SliceCount())
		assert.Len(t, graph.Slices[0].Events, 2)

		assert.Contains(t, auditActions(store.Audit), "events_append")
	})

	t.Run("rejects empty events", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()
		tree, err := svc.Create(context.Background(), "Empty Append")
		require.NoError(t, err)

		_, err = svc.AppendEvents(context.Background(), tree.ID, 0, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no events")
	})

	t.Run("unknown tree", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()
		_, err := svc.AppendEvents(context.Background(), "ghost", 0, []entities.Event{
			entities.NewMarkDeceased("p1"),
		})
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("rejects appends before the latest slice", func(t *testing.T) {
		svc, _ := newTreeServiceForTest()
		tree, err := svc.Create(context.Background(), "Sealed History")
		require.NoError(t, err)
		_, err = svc.AppendEvents(context.Background(), tree.ID, 2, []entities.Event{
			entities.NewAddPerson(person("p1", "Reuven", entities.SexMale)),
		})
		require.NoError(t, err)

		_, err = svc.AppendEvents(context.Background(), tree.ID, 0, []entities.Event{
			entities.NewMarkDeceased("p1"),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrOutOfRange))
	})
}

func TestTreeService_CountEvents(t *testing.T) {
	svc, _ := newTreeServiceForTest()
	tree, err := svc.Create(context.Background(), "Counted")
	require.NoError(t, err)
	_, err = svc.AppendEvents(context.Background(), tree.ID, 0, []entities.Event{
		entities.NewAddPerson(person("p1", "Reuven", entities.SexMale)),
		entities.NewAddPerson(person("p2", "Leah", entities.SexFemale)),
	})
	require.NoError(t, err)
	_, err = svc.AppendEvents(context.Background(), tree.ID, 1, []entities.Event{
		entities.NewMarkDeceased("p1"),
	})
	require.NoError(t, err)

	count, err := svc.CountEvents(context.Background(), tree.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTreeService_AuditLog(t *testing.T) {
	svc, _ := newTreeServiceForTest()
	tree, err := svc.Create(context.Background(), "Audited")
	require.NoError(t, err)
	_, err = svc.AppendEvents(context.Background(), tree.ID, 0, []entities.Event{
		entities.NewAddPerson(person("p1", "Reuven", entities.SexMale)),
	})
	require.NoError(t, err)

	entries, err := svc.AuditLog(context.Background(), tree.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"tree_create", "events_append"}, auditActions(entries))

	appends, err := svc.AuditLogByAction(context.Background(), "events_append", 10)
	require.NoError(t, err)
	require.Len(t, appends, 1)
	assert.Equal(t, tree.ID, appends[0].TreeID)
}
