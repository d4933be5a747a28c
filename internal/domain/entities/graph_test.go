package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/yichus-core/internal/errors"
)

func TestNewTemporalGraph_SeedsEventsAtIntroductionSlices(t *testing.T) {
	people := []Person{
		{ID: "avraham", Name: "Avraham", Sex: SexMale, IntroducedSlice: 0},
		{ID: "sarah", Name: "Sarah", Sex: SexFemale, IntroducedSlice: 0},
		{ID: "yitzchak", Name: "Yitzchak", Sex: SexMale, IntroducedSlice: 2},
	}
	relations := []Relation{
		{ID: "m1", Type: RelationMarriage, SourceID: "avraham", TargetID: "sarah", IntroducedSlice: 0},
		{ID: "pc1", Type: RelationParentChild, SourceID: "avraham", TargetID: "yitzchak", IntroducedSlice: 2},
	}

	g, err := NewTemporalGraph("toldos", people, relations)
	require.NoError(t, err)

	assert.Equal(t, "toldos", g.ID)
	assert.Equal(t, 1, g.Version)
	require.Equal(t, 3, g.SliceCount())

	// Slice 0: both people before the relation, declared order preserved.
	require.Len(t, g.Slices[0].Events, 3)
	assert.Equal(t, EventAddPerson, g.Slices[0].Events[0].Type)
	assert.Equal(t, "avraham", g.Slices[0].Events[0].Person.ID)
	assert.Equal(t, EventAddPerson, g.Slices[0].Events[1].Type)
	assert.Equal(t, "sarah", g.Slices[0].Events[1].Person.ID)
	assert.Equal(t, EventAddRelation, g.Slices[0].Events[2].Type)
	assert.Equal(t, "m1", g.Slices[0].Events[2].Relation.ID)

	// Slice 1 is empty; slice 2 holds the late additions.
	assert.Empty(t, g.Slices[1].Events)
	require.Len(t, g.Slices[2].Events, 2)
	assert.Equal(t, "yitzchak", g.Slices[2].Events[0].Person.ID)
	assert.Equal(t, "pc1", g.Slices[2].Events[1].Relation.ID)
}

func TestNewTemporalGraph_RejectsNegativeIntroduction(t *testing.T) {
	_, err := NewTemporalGraph("bad", []Person{{ID: "p", IntroducedSlice: -1}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfRange))
}

func TestTemporalGraph_AppendSliceBumpsVersion(t *testing.T) {
	g, err := NewTemporalGraph("t", []Person{{ID: "p1", IntroducedSlice: 0}}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, g.Version)

	idx := g.AppendSlice([]Event{NewMarkDeceased("p1")})
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, g.Version)
	assert.Equal(t, 2, g.SliceCount())
}

func TestTemporalGraph_AppendAt(t *testing.T) {
	g, err := NewTemporalGraph("t", []Person{{ID: "p1", IntroducedSlice: 0}}, nil)
	require.NoError(t, err)

	// Appending to the latest slice is allowed.
	require.NoError(t, g.AppendAt(0, []Event{NewAddPerson(Person{ID: "p2"})}))
	assert.Len(t, g.Slices[0].Events, 2)

	// Appending beyond the end pads with empty slices.
	require.NoError(t, g.AppendAt(3, []Event{NewMarkDeceased("p1")}))
	require.Equal(t, 4, g.SliceCount())
	assert.Empty(t, g.Slices[1].Events)
	assert.Empty(t, g.Slices[2].Events)
	assert.Len(t, g.Slices[3].Events, 1)

	// History before the latest slice is sealed.
	err = g.AppendAt(1, []Event{NewMarkDeceased("p1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfRange))
}

func TestEventConstructors(t *testing.T) {
	p := Person{ID: "p1", Name: "Leah"}
	ev := NewAddPerson(p)
	assert.Equal(t, EventAddPerson, ev.Type)
	require.NotNil(t, ev.Person)
	assert.Equal(t, "p1", ev.Person.ID)

	r := Relation{ID: "r1", Type: RelationMarriage, SourceID: "a", TargetID: "b"}
	ev = NewAddRelation(r)
	assert.Equal(t, EventAddRelation, ev.Type)
	require.NotNil(t, ev.Relation)
	assert.Equal(t, "r1", ev.Relation.ID)

	ev = NewMarkDeceased("p1")
	assert.Equal(t, EventMarkDeceased, ev.Type)
	assert.Equal(t, "p1", ev.PersonID)

	hidden := true
	ev = NewUpdateRelation("r1", RelationChanges{Hidden: &hidden})
	assert.Equal(t, EventUpdateRelation, ev.Type)
	assert.Equal(t, "r1", ev.RelationID)
	require.NotNil(t, ev.Changes)
	assert.True(t, *ev.Changes.Hidden)
}
