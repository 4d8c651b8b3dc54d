package graph

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

func TestDiscover(t *testing.T) {
	paths, err := Discover(os.DirFS("../../testdata/fixtures/game"), "res://", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{mainScene, playerScene, speedCurve}, paths)
}

func TestDiscover_SkipsDirsAndFiltersExtensions(t *testing.T) {
	fsys := fstest.MapFS{
		"Main.tscn":            {Data: []byte("[gd_scene format=2]")},
		"theme.TRES":           {Data: []byte("[gd_resource format=2]")},
		"notes.txt":            {Data: []byte("x")},
		".import/cache.tscn":   {Data: []byte("x")},
		"addons/plugin.tscn":   {Data: []byte("x")},
		"levels/one/Lvl1.tscn": {Data: []byte("x")},
	}
	skip := func(name string) bool { return name == ".import" || name == "addons" }

	paths, err := Discover(fsys, "res://", nil, skip)
	require.NoError(t, err)
	assert.Equal(t, []string{"res://Main.tscn", "res://levels/one/Lvl1.tscn", "res://theme.TRES"}, paths)

	only, err := Discover(fsys, "res://", []string{".tres"}, skip)
	require.NoError(t, err)
	assert.Equal(t, []string{"res://theme.TRES"}, only)
}

func TestBuildIndex(t *testing.T) {
	ctx := context.Background()
	paths, err := Discover(os.DirFS("../../testdata/fixtures/game"), "res://", nil, nil)
	require.NoError(t, err)

	s := NewMemStore()
	result, err := BuildIndex(ctx, s, gameLoader(), paths, 2)
	require.NoError(t, err)

	assert.Equal(t, paths, result.Indexed)
	assert.Empty(t, result.Failed)
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, "res://", result.Clusters[0].Name)
	assert.Len(t, result.Clusters[0].Members, 5)
	assert.InDelta(t, 0.5, result.Clusters[0].CohesionScore, 1e-9)
	assert.Equal(t, &GraphStats{FileCount: 5, NodeCount: 12, ClusterCount: 1, EdgeCount: 33}, result.Stats)
}

func TestBuildIndex_RecordsFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"good.tscn": {Data: []byte("[gd_scene format=2]\n\n[node name=\"Good\" type=\"Node\"]\n")},
		"bad.tscn": {Data: []byte("[gd_scene format=2]\n\n[node name=\"Bad\" type=\"Node\"]\n\n" +
			"[node name=\"Child\" type=\"Node\" parent=\"Nowhere\"]\n")},
	}
	loader := tscn.NewLoader(tscn.PathMap{{Prefix: "res://", Root: fsys}})
	paths := []string{"res://bad.tscn", "res://good.tscn", "res://gone.tscn"}

	s := NewMemStore()
	result, err := BuildIndex(context.Background(), s, loader, paths, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"res://good.tscn"}, result.Indexed)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "res://bad.tscn", result.Failed[0].Path)
	assert.Contains(t, result.Failed[0].Error, "Nowhere")
	assert.Equal(t, "res://gone.tscn", result.Failed[1].Path)
	assert.Empty(t, result.Clusters)
	assert.Equal(t, 1, result.Stats.FileCount)
}

// stubLoader returns a fixed error for every path.
type stubLoader struct{ err error }

func (l stubLoader) Load(ctx context.Context, _ string) (*tscn.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, l.err
}

func TestBuildIndex_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildIndex(ctx, NewMemStore(), stubLoader{err: errors.New("unreachable")}, []string{"res://a.tscn"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildIndex_Empty(t *testing.T) {
	result, err := BuildIndex(context.Background(), NewMemStore(), stubLoader{}, nil, 4)
	require.NoError(t, err)
	assert.Empty(t, result.Indexed)
	assert.Empty(t, result.Clusters)
	assert.Equal(t, &GraphStats{}, result.Stats)
}

func TestDiscoverMapped(t *testing.T) {
	paths := tscn.PathMap{
		{Prefix: "res://", Root: fstest.MapFS{
			"Main.tscn":      {Data: []byte("x")},
			"shared/ui.tscn": {Data: []byte("x")},
		}},
		{Prefix: "res://", Root: fstest.MapFS{
			"shared/ui.tscn": {Data: []byte("x")},
		}},
		{Prefix: "addons://", Root: fstest.MapFS{
			"tool/Tool.tscn": {Data: []byte("x")},
		}},
		{Prefix: "user://"},
	}

	got, err := DiscoverMapped(paths, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"addons://tool/Tool.tscn", "res://Main.tscn", "res://shared/ui.tscn"}, got)
}
