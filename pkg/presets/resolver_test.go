package presets_test

import (
	"testing"

	"github.com/armature-io/armature/pkg/errors"
	"github.com/armature-io/armature/pkg/presets"
	"github.com/armature-io/armature/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSinglePreset(t *testing.T) {
	table := types.PresetTable{
		"minimal": {Name: "minimal", Values: types.ValueSet{"flag": true, "n": int64(1)}},
	}

	got, err := presets.Resolve([]string{"minimal"}, table)
	require.NoError(t, err)
	assert.Equal(t, types.ValueSet{"flag": true, "n": int64(1)}, got)
}

func TestResolveNoPresets(t *testing.T) {
	got, err := presets.Resolve(nil, types.PresetTable{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveCompositionOverrides(t *testing.T) {
	// B composes A and overrides flag; resolving B must yield B's value.
	table := types.PresetTable{
		"a": {Name: "a", Values: types.ValueSet{"flag": true, "kept": "from-a"}},
		"b": {Name: "b", Extends: []string{"a"}, Values: types.ValueSet{"flag": false}},
	}

	got, err := presets.Resolve([]string{"b"}, table)
	require.NoError(t, err)
	assert.Equal(t, types.ValueSet{"flag": false, "kept": "from-a"}, got)
}

func TestResolveLaterNameWins(t *testing.T) {
	table := types.PresetTable{
		"first":  {Name: "first", Values: types.ValueSet{"x": "first", "only_first": true}},
		"second": {Name: "second", Values: types.ValueSet{"x": "second"}},
	}

	got, err := presets.Resolve([]string{"first", "second"}, table)
	require.NoError(t, err)
	assert.Equal(t, "second", got["x"])
	assert.Equal(t, true, got["only_first"])
}

func TestResolveDeepComposition(t *testing.T) {
	table := types.PresetTable{
		"base": {Name: "base", Values: types.ValueSet{"a": "base", "b": "base", "c": "base"}},
		"mid":  {Name: "mid", Extends: []string{"base"}, Values: types.ValueSet{"b": "mid", "c": "mid"}},
		"top":  {Name: "top", Extends: []string{"mid"}, Values: types.ValueSet{"c": "top"}},
	}

	got, err := presets.Resolve([]string{"top"}, table)
	require.NoError(t, err)
	assert.Equal(t, types.ValueSet{"a": "base", "b": "mid", "c": "top"}, got)
}

func TestResolveDiamondComposition(t *testing.T) {
	// A name may appear twice on different branches; only a cycle on the
	// active path is an error.
	table := types.PresetTable{
		"base":  {Name: "base", Values: types.ValueSet{"v": "base"}},
		"left":  {Name: "left", Extends: []string{"base"}, Values: types.ValueSet{"l": true}},
		"right": {Name: "right", Extends: []string{"base"}, Values: types.ValueSet{"r": true}},
		"top":   {Name: "top", Extends: []string{"left", "right"}},
	}

	got, err := presets.Resolve([]string{"top"}, table)
	require.NoError(t, err)
	assert.Equal(t, types.ValueSet{"v": "base", "l": true, "r": true}, got)
}

func TestResolveCycle(t *testing.T) {
	table := types.PresetTable{
		"a": {Name: "a", Extends: []string{"b"}},
		"b": {Name: "b", Extends: []string{"a"}},
	}

	_, err := presets.Resolve([]string{"a"}, table)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPresetCycle))
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestResolveSelfCycle(t *testing.T) {
	table := types.PresetTable{
		"loop": {Name: "loop", Extends: []string{"loop"}},
	}

	_, err := presets.Resolve([]string{"loop"}, table)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPresetCycle))
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := presets.Resolve([]string{"ghost"}, types.PresetTable{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPresetNotFound))
}

func TestResolveDoesNotMutateTable(t *testing.T) {
	table := types.PresetTable{
		"a": {Name: "a", Values: types.ValueSet{"x": 1}},
		"b": {Name: "b", Extends: []string{"a"}, Values: types.ValueSet{"x": 2}},
	}

	_, err := presets.Resolve([]string{"b"}, table)
	require.NoError(t, err)
	assert.Equal(t, 1, table["a"].Values["x"])
}
