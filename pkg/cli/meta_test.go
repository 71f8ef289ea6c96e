package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fepozopo/colorfill/pkg/coloring"
)

func TestNormalizeArgs(t *testing.T) {
	store := NewMetaStore(coloring.Commands)

	got, err := NormalizeArgs(store, "fill", []string{" 007 ", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "3"}, got)

	got, err = NormalizeArgs(store, "select", []string{"Red"})
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000"}, got)

	got, err = NormalizeArgs(store, "undo", []string{"ignored"})
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, tc := range []struct {
		cmd  string
		args []string
	}{
		{"fill", []string{"1"}},
		{"fill", []string{"-1", "2"}},
		{"fill", []string{"x", "2"}},
		{"select", []string{"#12"}},
		{"nope", nil},
	} {
		_, err := NormalizeArgs(store, tc.cmd, tc.args)
		assert.Error(t, err, "%s %v", tc.cmd, tc.args)
	}
	_, err = NormalizeArgs(nil, "fill", nil)
	assert.Error(t, err)
}

func TestMetaStoreResolve(t *testing.T) {
	store := NewMetaStore(coloring.Commands)

	name, err := store.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, coloring.Commands[0].Name, name)

	name, err = store.Resolve("CHE")
	require.NoError(t, err)
	assert.Equal(t, "check", name)

	name, err = store.Resolve("redo")
	require.NoError(t, err)
	assert.Equal(t, "redo", name)

	_, err = store.Resolve("re") // redo, reset
	assert.ErrorContains(t, err, "ambiguous")
	_, err = store.Resolve("99")
	assert.Error(t, err)
	_, err = store.Resolve("zzz")
	assert.Error(t, err)
}

func TestGetCommandHelp(t *testing.T) {
	store := NewMetaStore(coloring.Commands)
	tip, rules, err := store.GetCommandHelp("fill")
	require.NoError(t, err)
	assert.Contains(t, tip, "- x (int, required)")
	require.Contains(t, rules, "y")
	assert.Equal(t, ParamTypeInt, rules["y"].Type)
	require.NotNil(t, rules["y"].Min)
	assert.Equal(t, 0, *rules["y"].Min)

	tip, _, err = store.GetCommandHelp("undo")
	require.NoError(t, err)
	assert.Contains(t, tip, "no parameters")

	_, _, err = store.GetCommandHelp("nope")
	assert.Error(t, err)
}
