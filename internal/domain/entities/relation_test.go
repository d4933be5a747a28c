package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelationType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		relType  RelationType
		expected bool
	}{
		{
			name:     "betrothal is valid",
			relType:  RelationBetrothal,
			expected: true,
		},
		{
			name:     "marriage is valid",
			relType:  RelationMarriage,
			expected: true,
		},
		{
			name:     "divorce is valid",
			relType:  RelationDivorce,
			expected: true,
		},
		{
			name:     "levirate marriage is valid",
			relType:  RelationLevirateMarriage,
			expected: true,
		},
		{
			name:     "levirate release is valid",
			relType:  RelationLevirateRelease,
			expected: true,
		},
		{
			name:     "parent_child is valid",
			relType:  RelationParentChild,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			relType:  RelationType(""),
			expected: false,
		},
		{
			name:     "unknown type is invalid",
			relType:  RelationType("cousin"),
			expected: false,
		},
		{
			name:     "uppercase type is invalid",
			relType:  RelationType("MARRIAGE"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.relType.IsValid())
		})
	}
}

func TestRelationType_IsUnion(t *testing.T) {
	assert.True(t, RelationBetrothal.IsUnion())
	assert.True(t, RelationMarriage.IsUnion())
	assert.True(t, RelationLevirateMarriage.IsUnion())
	assert.True(t, RelationUnmarriedUnion.IsUnion())
	assert.False(t, RelationDivorce.IsUnion())
	assert.False(t, RelationLevirateRelease.IsUnion())
	assert.False(t, RelationParentChild.IsUnion())
	assert.False(t, RelationSibling.IsUnion())
}

func TestRelationType_IsSpousal(t *testing.T) {
	assert.True(t, RelationMarriage.IsSpousal())
	assert.True(t, RelationLevirateMarriage.IsSpousal())
	assert.False(t, RelationBetrothal.IsSpousal())
	assert.False(t, RelationUnmarriedUnion.IsSpousal())
}

func TestRelation_Other(t *testing.T) {
	r := Relation{ID: "r1", Type: RelationMarriage, SourceID: "a", TargetID: "b"}

	other, ok := r.Other("a")
	assert.True(t, ok)
	assert.Equal(t, "b", other)

	other, ok = r.Other("b")
	assert.True(t, ok)
	assert.Equal(t, "a", other)

	_, ok = r.Other("c")
	assert.False(t, ok)
}

func TestRelation_Between(t *testing.T) {
	r := Relation{ID: "r1", Type: RelationMarriage, SourceID: "a", TargetID: "b"}

	assert.True(t, r.Between("a", "b"))
	assert.True(t, r.Between("b", "a"))
	assert.False(t, r.Between("a", "c"))
	assert.False(t, r.Between("c", "d"))
}

func TestRelationChanges_Empty(t *testing.T) {
	assert.True(t, RelationChanges{}.Empty())

	newType := RelationMarriage
	assert.False(t, RelationChanges{Type: &newType}.Empty())
	assert.False(t, RelationChanges{AddChildIDs: []string{"c1"}}.Empty())

	hidden := true
	assert.False(t, RelationChanges{Hidden: &hidden}.Empty())
}

func TestPerson_AliveAt(t *testing.T) {
	alive := Person{ID: "p1", Name: "Reuven", Sex: SexMale}
	assert.True(t, alive.AliveAt(0))
	assert.True(t, alive.AliveAt(100))

	death := 3
	deceased := Person{ID: "p2", Name: "Shimon", Sex: SexMale, DeathSlice: &death}
	assert.True(t, deceased.AliveAt(0))
	assert.True(t, deceased.AliveAt(2))
	assert.False(t, deceased.AliveAt(3), "dead at the death slice itself")
	assert.False(t, deceased.AliveAt(4))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "rivkah", NormalizeName("  Rivkah "))
	assert.Equal(t, "beis hillel", NormalizeName("Beis Hillel"))
}
