package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/domain/mocks"
	"github.com/ersonp/yichus-core/internal/domain/services"
)

// newStatusHandlerForTest wires a status handler over a small household:
// Yaakov and Rochel married with two sons, the elder son married at slice 1
// and dead childless at slice 2.
func newStatusHandlerForTest(t *testing.T) (*StatusHandler, *services.ProfileService, *services.TreeService, string) {
	t.Helper()
	store := mocks.NewTreeStore()
	trees := services.NewTreeService(store)
	registry := entities.BuiltinRegistry()
	resolver := services.NewResolverService(true)
	levirate := services.NewLevirateService(resolver, registry)
	status := services.NewStatusService(resolver, levirate, registry)
	profiles := services.NewProfileService(store, registry)
	handler := NewStatusHandler(trees, status, levirate, profiles)

	ctx := t.Context()
	tree, err := trees.Create(ctx, "beis yaakov")
	require.NoError(t, err)

	slice0 := []entities.Event{
		entities.NewAddPerson(entities.Person{ID: "yaakov", Name: "Yaakov", Sex: entities.SexMale}),
		entities.NewAddPerson(entities.Person{ID: "rochel", Name: "Rochel", Sex: entities.SexFemale}),
		entities.NewAddPerson(entities.Person{ID: "yosef", Name: "Yosef", Sex: entities.SexMale}),
		entities.NewAddPerson(entities.Person{ID: "binyamin", Name: "Binyamin", Sex: entities.SexMale}),
		entities.NewAddPerson(entities.Person{ID: "tamar", Name: "Tamar", Sex: entities.SexFemale}),
		entities.NewAddRelation(entities.Relation{
			ID: "r-parents", Type: entities.RelationMarriage,
			SourceID: "yaakov", TargetID: "rochel",
			ChildIDs: []string{"yosef", "binyamin"},
		}),
	}
	require.NoError(t, store.AppendEvents(ctx, tree.ID, 0, slice0))

	slice1 := []entities.Event{
		entities.NewAddRelation(entities.Relation{
			ID: "r-yosef-tamar", Type: entities.RelationMarriage,
			SourceID: "yosef", TargetID: "tamar",
		}),
	}
	require.NoError(t, store.AppendEvents(ctx, tree.ID, 1, slice1))

	slice2 := []entities.Event{
		entities.NewMarkDeceased("yosef"),
	}
	require.NoError(t, store.AppendEvents(ctx, tree.ID, 2, slice2))

	return handler, profiles, trees, tree.ID
}

func TestStatusHandler_HandleStatus(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	result, err := handler.HandleStatus(t.Context(), treeID, "yaakov", "rochel", StatusOptions{Slice: 0})
	require.NoError(t, err)
	require.NotNil(t, result.Status.Primary)
	assert.Equal(t, "married", result.Status.Primary.RuleID)
	assert.Equal(t, 0, result.Status.Slice)
	assert.Equal(t, "default", result.Profile)
}

func TestStatusHandler_HandleStatus_DefaultSlice(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	result, err := handler.HandleStatus(t.Context(), treeID, "yaakov", "rochel", StatusOptions{Slice: -1})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Status.Slice)
}

func TestStatusHandler_HandleStatus_NamedProfile(t *testing.T) {
	handler, profiles, _, treeID := newStatusHandlerForTest(t)

	_, err := profiles.Create(t.Context(), "machmir")
	require.NoError(t, err)

	result, err := handler.HandleStatus(t.Context(), treeID, "yaakov", "rochel", StatusOptions{Slice: 0, Profile: "machmir"})
	require.NoError(t, err)
	assert.Equal(t, "machmir", result.Profile)
}

func TestStatusHandler_HandleStatus_UnknownProfile(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	_, err := handler.HandleStatus(t.Context(), treeID, "yaakov", "rochel", StatusOptions{Slice: 0, Profile: "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving profile")
}

func TestStatusHandler_HandleStatus_UnknownPerson(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	_, err := handler.HandleStatus(t.Context(), treeID, "ghost", "rochel", StatusOptions{Slice: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "computing status")
}

func TestStatusHandler_HandleStatus_EmptyTree(t *testing.T) {
	handler, _, trees, _ := newStatusHandlerForTest(t)

	empty, err := trees.Create(t.Context(), "empty")
	require.NoError(t, err)

	_, err = handler.HandleStatus(t.Context(), empty.ID, "yaakov", "rochel", StatusOptions{Slice: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no events")
}

func TestStatusHandler_HandlePermitted(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	t.Run("direct line blocks", func(t *testing.T) {
		result, err := handler.HandlePermitted(t.Context(), treeID, "yosef", "rochel", StatusOptions{Slice: 0})
		require.NoError(t, err)
		assert.False(t, result.Permitted)
		require.Len(t, result.Blocking, 1)
		assert.Equal(t, "direct-line", result.Blocking[0].RuleID)
	})

	t.Run("unrelated pair is permitted", func(t *testing.T) {
		result, err := handler.HandlePermitted(t.Context(), treeID, "binyamin", "tamar", StatusOptions{Slice: 0})
		require.NoError(t, err)
		assert.True(t, result.Permitted)
		assert.Empty(t, result.Blocking)
	})
}

func TestStatusHandler_HandleYevamim(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	result, err := handler.HandleYevamim(t.Context(), treeID, "tamar", 2)
	require.NoError(t, err)
	assert.Equal(t, "tamar", result.WidowID)
	assert.Equal(t, 2, result.Slice)
	require.Len(t, result.Yevamim, 1)
	assert.Equal(t, "binyamin", result.Yevamim[0].ID)
}

func TestStatusHandler_HandleTies(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	t.Run("all ties at the death slice", func(t *testing.T) {
		result, err := handler.HandleTies(t.Context(), treeID, "", 2)
		require.NoError(t, err)
		require.Len(t, result.Ties, 1)
		assert.Equal(t, "tamar", result.Ties[0].WidowID)
	})

	t.Run("ties for a candidate", func(t *testing.T) {
		result, err := handler.HandleTies(t.Context(), treeID, "binyamin", 2)
		require.NoError(t, err)
		assert.Len(t, result.Ties, 1)
	})

	t.Run("untouched person has none", func(t *testing.T) {
		result, err := handler.HandleTies(t.Context(), treeID, "yaakov", 2)
		require.NoError(t, err)
		assert.Empty(t, result.Ties)
	})

	t.Run("no ties before the death", func(t *testing.T) {
		result, err := handler.HandleTies(t.Context(), treeID, "", 1)
		require.NoError(t, err)
		assert.Empty(t, result.Ties)
	})
}

func TestStatusHandler_HandleYevamos(t *testing.T) {
	handler, _, _, treeID := newStatusHandlerForTest(t)

	result, err := handler.HandleYevamos(t.Context(), treeID, 2)
	require.NoError(t, err)
	require.Len(t, result.Widows, 1)
	assert.Equal(t, "tamar", result.Widows[0].ID)
}
