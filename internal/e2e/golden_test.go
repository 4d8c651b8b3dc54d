//go:build e2e

package e2e

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scenegraph/internal/config"
	"github.com/dusk-indust/scenegraph/internal/export"
	"github.com/dusk-indust/scenegraph/internal/graph"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

func fixtureRoot() string {
	return filepath.Join("..", "..", "testdata", "fixtures", "game")
}

// goldenOutputs maps golden filenames to the output they pin.
var goldenOutputs = []struct {
	golden string
	render func(t *testing.T, ctx context.Context) string
}{
	{"main_tree.mmd", renderMainTree},
	{"dependencies.mmd", renderDependencies},
}

func renderMainTree(t *testing.T, ctx context.Context) string {
	t.Helper()
	cfg, err := config.Load(fixtureRoot())
	require.NoError(t, err)
	scene, err := cfg.Loader(fixtureRoot()).Load(ctx, "res://Main.tscn")
	require.NoError(t, err)
	return export.SceneTreeMermaid(scene)
}

func renderDependencies(t *testing.T, ctx context.Context) string {
	t.Helper()
	store := indexFixture(t, ctx, graph.NewMemStore())
	out, err := export.GenerateMermaid(ctx, store)
	require.NoError(t, err)
	return out
}

// indexFixture runs discovery and indexing of the fixture project into
// store the way the index command does.
func indexFixture(t *testing.T, ctx context.Context, store graph.Store) graph.Store {
	t.Helper()
	root := fixtureRoot()
	cfg, err := config.Load(root)
	require.NoError(t, err)
	require.NoError(t, store.InitSchema(ctx))

	paths, err := graph.DiscoverMapped(cfg.PathMap(root), cfg.Extensions, cfg.Excluded)
	require.NoError(t, err)
	result, err := graph.BuildIndex(ctx, store, cfg.Loader(root), paths, 2)
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	return store
}

// TestGolden compares rendered diagrams against golden files. If golden
// files do not exist, the test is skipped with a message to run with -update.
func TestGolden(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	gDir := goldenDir()

	for _, g := range goldenOutputs {
		t.Run(g.golden, func(t *testing.T) {
			golden, err := os.ReadFile(filepath.Join(gDir, g.golden))
			if os.IsNotExist(err) {
				t.Skipf("golden file %s not found; run with -update to generate", g.golden)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, string(golden), g.render(t, ctx),
				"output does not match golden file %s", g.golden)
		})
	}
}

// TestUpdateGolden regenerates golden files from the current output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	gDir := goldenDir()
	require.NoError(t, os.MkdirAll(gDir, 0o755))

	for _, g := range goldenOutputs {
		err := os.WriteFile(filepath.Join(gDir, g.golden), []byte(g.render(t, ctx)), 0o644)
		require.NoError(t, err)
		t.Logf("updated %s", g.golden)
	}
}
