package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinRegistry_Validates(t *testing.T) {
	reg := BuiltinRegistry()
	require.NoError(t, reg.Validate())
	assert.True(t, reg.IncludeHalfSiblings)

	// Prohibiting categories outrank informational ones.
	ervah, ok := reg.CategoryByID(CategoryErvah)
	require.True(t, ok)
	union, ok := reg.CategoryByID(CategoryUnion)
	require.True(t, ok)
	assert.Greater(t, ervah.Severity, union.Severity)
	assert.True(t, ervah.ProhibitsMarriage)
	assert.False(t, union.ProhibitsMarriage)
}

func TestBuiltinRegistry_FreshPerCall(t *testing.T) {
	a := BuiltinRegistry()
	b := BuiltinRegistry()

	a.IncludeHalfSiblings = false
	assert.True(t, b.IncludeHalfSiblings)
}

func TestRegistry_Validate(t *testing.T) {
	cond := func(_ *EvalContext, _, _ Person) bool { return false }

	tests := []struct {
		name     string
		registry *Registry
		wantErr  string
	}{
		{
			name: "duplicate category id",
			registry: &Registry{
				Categories: []Category{{ID: "a"}, {ID: "a"}},
			},
			wantErr: "duplicate category id",
		},
		{
			name: "rule with unknown category",
			registry: &Registry{
				Categories: []Category{{ID: "a"}},
				Rules:      []Rule{{ID: "r", CategoryID: "missing", Condition: cond}},
			},
			wantErr: "unknown category",
		},
		{
			name: "undisputed rule without condition",
			registry: &Registry{
				Categories: []Category{{ID: "a"}},
				Rules:      []Rule{{ID: "r", CategoryID: "a"}},
			},
			wantErr: "no condition",
		},
		{
			name: "dispute with one opinion",
			registry: &Registry{
				Disputes: []Dispute{{ID: "d", Opinions: []Opinion{{ID: "o"}}, DefaultOpinionID: "o"}},
			},
			wantErr: "at least two opinions",
		},
		{
			name: "dispute default not declared",
			registry: &Registry{
				Disputes: []Dispute{{ID: "d", Opinions: []Opinion{{ID: "o1"}, {ID: "o2"}}, DefaultOpinionID: "o3"}},
			},
			wantErr: "not declared",
		},
		{
			name: "disputed rule missing variant",
			registry: &Registry{
				Categories: []Category{{ID: "a"}},
				Disputes:   []Dispute{{ID: "d", Opinions: []Opinion{{ID: "o1"}, {ID: "o2"}}, DefaultOpinionID: "o1"}},
				Rules: []Rule{{
					ID: "r", CategoryID: "a", DisputeID: "d",
					Variants: map[string]Condition{"o1": cond},
				}},
			},
			wantErr: "missing a variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.registry.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_EffectiveOpinion(t *testing.T) {
	reg := BuiltinRegistry()

	// No profile: registry default governs.
	opinionID, source, err := reg.EffectiveOpinion(DisputeYeshZikah, nil)
	require.NoError(t, err)
	assert.Equal(t, "yesh-zikah", opinionID)
	assert.Equal(t, OpinionFromDefault, source)

	// Profile selection overrides the default.
	profile := &OpinionProfile{ID: "p", Selections: map[string]string{DisputeYeshZikah: "ein-zikah"}}
	opinionID, source, err = reg.EffectiveOpinion(DisputeYeshZikah, profile)
	require.NoError(t, err)
	assert.Equal(t, "ein-zikah", opinionID)
	assert.Equal(t, OpinionFromProfile, source)

	// A selection naming an unknown opinion falls back to the default.
	profile = &OpinionProfile{ID: "p", Selections: map[string]string{DisputeYeshZikah: "no-such"}}
	opinionID, source, err = reg.EffectiveOpinion(DisputeYeshZikah, profile)
	require.NoError(t, err)
	assert.Equal(t, "yesh-zikah", opinionID)
	assert.Equal(t, OpinionFromDefault, source)

	_, _, err = reg.EffectiveOpinion("no-such-dispute", nil)
	require.Error(t, err)
}

func TestDefaultProfile_SelectsEveryDefault(t *testing.T) {
	reg := BuiltinRegistry()
	profile := DefaultProfile(reg)

	require.Len(t, profile.Selections, len(reg.Disputes))
	for _, d := range reg.Disputes {
		selected, ok := profile.Opinion(d.ID)
		require.True(t, ok, "dispute %s not selected", d.ID)
		assert.Equal(t, d.DefaultOpinionID, selected)
	}
}
