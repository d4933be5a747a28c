package services

import (
	"testing"

	"github.com/ersonp/yichus-core/internal/domain/entities"
	"github.com/ersonp/yichus-core/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(id, name string, sex entities.Sex) entities.Person {
	return entities.Person{ID: id, Name: name, Sex: sex}
}

func relation(id string, typ entities.RelationType, source, target string) entities.Relation {
	return entities.Relation{ID: id, Type: typ, SourceID: source, TargetID: target}
}

// testGraph builds a three-slice timeline: a couple marries, has a son, and
// the husband dies.
func testGraph() *entities.TemporalGraph {
	return &entities.TemporalGraph{
		ID:      "graph-1",
		Version: 1,
		Slices: []entities.Slice{
			{Events: []entities.Event{
				entities.NewAddPerson(person("reuven", "Reuven", entities.SexMale)),
				entities.NewAddPerson(person("leah", "Leah", entities.SexFemale)),
				entities.NewAddRelation(relation("m1", entities.RelationMarriage, "reuven", "leah")),
			}},
			{Events: []entities.Event{
				entities.NewAddPerson(person("chanoch", "Chanoch", entities.SexMale)),
				entities.NewUpdateRelation("m1", entities.RelationChanges{AddChildIDs: []string{"chanoch"}}),
			}},
			{Events: []entities.Event{
				entities.NewMarkDeceased("reuven"),
			}},
		},
	}
}

func TestResolverService_Resolve(t *testing.T) {
	t.Run("folds slices in order", func(t *testing.T) {
		svc := NewResolverService(false)

		snap, err := svc.Resolve(testGraph(), 2)
		require.NoError(t, err)

		assert.Equal(t, "graph-1", snap.GraphID)
		assert.Equal(t, 1, snap.Version)
		assert.Equal(t, 2, snap.Slice)
		assert.Len(t, snap.People(), 3)
		assert.Len(t, snap.Relations(), 1)

		m1, ok := snap.Relation("m1")
		require.True(t, ok)
		assert.Equal(t, []string{"chanoch"}, m1.ChildIDs)
	})

	t.Run("stamps introduction and death slices", func(t *testing.T) {
		svc := NewResolverService(false)

		snap, err := svc.Resolve(testGraph(), 2)
		require.NoError(t, err)

		reuven, ok := snap.Person("reuven")
		require.True(t, ok)
		assert.Equal(t, 0, reuven.IntroducedSlice)
		require.NotNil(t, reuven.DeathSlice)
		assert.Equal(t, 2, *reuven.DeathSlice)

		chanoch, ok := snap.Person("chanoch")
		require.True(t, ok)
		assert.Equal(t, 1, chanoch.IntroducedSlice)
		assert.Nil(t, chanoch.DeathSlice)

		m1, ok := snap.Relation("m1")
		require.True(t, ok)
		assert.Equal(t, 0, m1.IntroducedSlice)
	})

	t.Run("earlier slice excludes later events", func(t *testing.T) {
		svc := NewResolverService(false)

		snap, err := svc.Resolve(testGraph(), 0)
		require.NoError(t, err)

		assert.Len(t, snap.People(), 2)
		assert.True(t, snap.Alive("reuven"))

		m1, ok := snap.Relation("m1")
		require.True(t, ok)
		assert.Empty(t, m1.ChildIDs)
	})

	t.Run("is deterministic", func(t *testing.T) {
		svc := NewResolverService(false)
		g := testGraph()

		first, err := svc.Resolve(g, 2)
		require.NoError(t, err)
		second, err := svc.Resolve(g, 2)
		require.NoError(t, err)

		assert.Equal(t, first.People(), second.People())
		assert.Equal(t, first.Relations(), second.Relations())
	})

	t.Run("slice index out of range", func(t *testing.T) {
		svc := NewResolverService(false)
		g := testGraph()

		_, err := svc.Resolve(g, -1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrOutOfRange))

		_, err = svc.Resolve(g, len(g.Slices))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrOutOfRange))
	})

	t.Run("nil graph", func(t *testing.T) {
		svc := NewResolverService(false)

		_, err := svc.Resolve(nil, 0)
		require.Error(t, err)
	})
}

func TestResolverService_Resolve_FoldErrors(t *testing.T) {
	singleSlice := func(events ...entities.Event) *entities.TemporalGraph {
		return &entities.TemporalGraph{
			ID:      "bad",
			Version: 1,
			Slices:  []entities.Slice{{Events: events}},
		}
	}

	t.Run("duplicate person id", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddPerson(person("a", "A again", entities.SexMale)),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDuplicateID))
	})

	t.Run("relation id colliding with person id", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddPerson(person("b", "B", entities.SexFemale)),
			entities.NewAddRelation(relation("a", entities.RelationMarriage, "a", "b")),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDuplicateID))
	})

	t.Run("relation endpoint missing", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddRelation(relation("r", entities.RelationMarriage, "a", "ghost")),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDanglingReference))
	})

	t.Run("relation endpoint added later in the timeline", func(t *testing.T) {
		svc := NewResolverService(false)
		g := &entities.TemporalGraph{
			ID:      "bad",
			Version: 1,
			Slices: []entities.Slice{
				{Events: []entities.Event{
					entities.NewAddPerson(person("a", "A", entities.SexMale)),
					entities.NewAddRelation(relation("r", entities.RelationMarriage, "a", "b")),
				}},
				{Events: []entities.Event{
					entities.NewAddPerson(person("b", "B", entities.SexFemale)),
				}},
			},
		}

		_, err := svc.Resolve(g, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDanglingReference))
	})

	t.Run("self relation", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddRelation(relation("r", entities.RelationMarriage, "a", "a")),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDanglingReference))
	})

	t.Run("unknown child id", func(t *testing.T) {
		svc := NewResolverService(false)
		r := relation("r", entities.RelationMarriage, "a", "b")
		r.ChildIDs = []string{"ghost"}
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddPerson(person("b", "B", entities.SexFemale)),
			entities.NewAddRelation(r),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDanglingReference))
	})

	t.Run("mark_deceased for unknown person", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(entities.NewMarkDeceased("ghost"))

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnknownPerson))
	})

	t.Run("update_relation for unknown relation", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(entities.NewUpdateRelation("ghost", entities.RelationChanges{}))

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnknownRelation))
	})

	t.Run("update_relation adding unknown child", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewAddPerson(person("b", "B", entities.SexFemale)),
			entities.NewAddRelation(relation("r", entities.RelationMarriage, "a", "b")),
			entities.NewUpdateRelation("r", entities.RelationChanges{AddChildIDs: []string{"ghost"}}),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDanglingReference))
	})

	t.Run("error names the offending slice and event", func(t *testing.T) {
		svc := NewResolverService(false)
		g := singleSlice(
			entities.NewAddPerson(person("a", "A", entities.SexMale)),
			entities.NewMarkDeceased("ghost"),
		)

		_, err := svc.Resolve(g, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "slice 0 event 1")
	})
}

func TestResolverService_Resolve_Updates(t *testing.T) {
	t.Run("update merges partial changes", func(t *testing.T) {
		svc := NewResolverService(false)
		hidden := true
		newType := entities.RelationMarriage
		g := &entities.TemporalGraph{
			ID:      "updates",
			Version: 1,
			Slices: []entities.Slice{
				{Events: []entities.Event{
					entities.NewAddPerson(person("a", "A", entities.SexMale)),
					entities.NewAddPerson(person("b", "B", entities.SexFemale)),
					entities.NewAddPerson(person("c", "C", entities.SexMale)),
					entities.NewAddRelation(relation("r", entities.RelationBetrothal, "a", "b")),
				}},
				{Events: []entities.Event{
					entities.NewUpdateRelation("r", entities.RelationChanges{Type: &newType}),
					entities.NewUpdateRelation("r", entities.RelationChanges{AddChildIDs: []string{"c", "c"}}),
					entities.NewUpdateRelation("r", entities.RelationChanges{Hidden: &hidden}),
				}},
			},
		}

		snap, err := svc.Resolve(g, 1)
		require.NoError(t, err)

		r, ok := snap.Relation("r")
		require.True(t, ok)
		assert.Equal(t, entities.RelationMarriage, r.Type)
		assert.Equal(t, []string{"c"}, r.ChildIDs, "repeated child additions collapse")
		assert.True(t, r.Hidden)
		assert.Equal(t, 0, r.IntroducedSlice, "updates keep the original introduction slice")
	})

	t.Run("later updates do not leak into earlier snapshots", func(t *testing.T) {
		svc := NewResolverService(false)
		g := testGraph()

		later, err := svc.Resolve(g, 2)
		require.NoError(t, err)
		earlier, err := svc.Resolve(g, 0)
		require.NoError(t, err)

		laterRel, _ := later.Relation("m1")
		earlierRel, _ := earlier.Relation("m1")
		assert.Equal(t, []string{"chanoch"}, laterRel.ChildIDs)
		assert.Empty(t, earlierRel.ChildIDs)
		assert.True(t, earlier.Alive("reuven"))
		assert.False(t, later.Alive("reuven"))
	})

	t.Run("resolution does not mutate the graph", func(t *testing.T) {
		svc := NewResolverService(false)
		g := testGraph()

		_, err := svc.Resolve(g, 2)
		require.NoError(t, err)

		assert.Nil(t, g.Slices[0].Events[0].Person.DeathSlice)
		assert.Empty(t, g.Slices[0].Events[2].Relation.ChildIDs)
	})
}

func TestResolverService_Cache(t *testing.T) {
	t.Run("caches the latest snapshot per graph", func(t *testing.T) {
		svc := NewResolverService(true)
		g := testGraph()

		first, err := svc.Resolve(g, 2)
		require.NoError(t, err)
		second, err := svc.Resolve(g, 2)
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("version bump invalidates the cache", func(t *testing.T) {
		svc := NewResolverService(true)
		g := testGraph()

		first, err := svc.Resolve(g, 2)
		require.NoError(t, err)

		g.AppendSlice(nil)
		second, err := svc.Resolve(g, 2)
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, first.People(), second.People())
	})

	t.Run("cache on and off agree", func(t *testing.T) {
		cached := NewResolverService(true)
		uncached := NewResolverService(false)
		g := testGraph()

		for slice := 0; slice < len(g.Slices); slice++ {
			a, err := cached.Resolve(g, slice)
			require.NoError(t, err)
			b, err := uncached.Resolve(g, slice)
			require.NoError(t, err)
			assert.Equal(t, a.People(), b.People())
			assert.Equal(t, a.Relations(), b.Relations())
		}
	})
}
