package graph

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore creates a MemStore and populates it with the given files and edges.
func setupStore(t *testing.T, files []FileNode, edges []Edge) *MemStore {
	t.Helper()
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.InitSchema(ctx))

	for _, f := range files {
		require.NoError(t, store.AddFile(ctx, f))
	}
	for _, e := range edges {
		require.NoError(t, store.AddEdge(ctx, e))
	}
	return store
}

func scenes(paths ...string) []FileNode {
	out := make([]FileNode, 0, len(paths))
	for _, p := range paths {
		out = append(out, FileNode{Path: p, Kind: FileKindScene})
	}
	return out
}

func dependsOn(src, dst string) Edge {
	return Edge{SourceID: src, TargetID: dst, Kind: EdgeKindDependsOn}
}

func TestComputeClusters_NoEdges(t *testing.T) {
	// Each file is a singleton component (size < 2), so zero clusters.
	files := scenes("res://a.tscn", "res://b.tscn", "res://c.tscn")

	store := setupStore(t, files, nil)
	ctx := context.Background()

	clusters, err := ComputeClusters(ctx, store, files)
	require.NoError(t, err)
	assert.Empty(t, clusters, "expected zero clusters when there are no edges")

	stored, err := store.GetClusters(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestComputeClusters_OnePair(t *testing.T) {
	// Only A depends on B. C is a singleton and gets skipped.
	files := scenes("res://levels/a.tscn", "res://levels/b.tscn", "res://levels/c.tscn")
	edges := []Edge{dependsOn("res://levels/a.tscn", "res://levels/b.tscn")}

	store := setupStore(t, files, edges)
	ctx := context.Background()

	clusters, err := ComputeClusters(ctx, store, files)
	require.NoError(t, err)
	require.Len(t, clusters, 1, "expected exactly one cluster")
	assert.Equal(t, []string{"res://levels/a.tscn", "res://levels/b.tscn"}, clusters[0].Members)

	// 1 DEPENDS_ON edge + 2 BELONGS edges.
	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.EdgeCount)
}

func TestComputeClusters_IgnoresNonDependencyEdges(t *testing.T) {
	files := scenes("res://a.tscn", "res://b.tscn")
	edges := []Edge{
		{SourceID: "res://a.tscn", TargetID: "res://a.tscn#.", Kind: EdgeKindContains},
		{SourceID: "res://a.tscn#.", TargetID: "res://b.tscn", Kind: EdgeKindInstances},
	}
	store := setupStore(t, files, edges)

	clusters, err := ComputeClusters(context.Background(), store, files)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestComputeClusters_TwoGroups(t *testing.T) {
	files := scenes(
		"res://alpha/a.tscn", "res://alpha/b.tscn", "res://alpha/c.tres",
		"res://beta/x.tscn", "res://beta/y.tscn", "res://beta/z.tres",
	)
	edges := []Edge{
		dependsOn("res://alpha/a.tscn", "res://alpha/b.tscn"),
		dependsOn("res://alpha/a.tscn", "res://alpha/c.tres"),
		dependsOn("res://alpha/b.tscn", "res://alpha/c.tres"),
		dependsOn("res://beta/x.tscn", "res://beta/y.tscn"),
		dependsOn("res://beta/y.tscn", "res://beta/z.tres"),
	}

	store := setupStore(t, files, edges)
	ctx := context.Background()

	clusters, err := ComputeClusters(ctx, store, files)
	require.NoError(t, err)
	require.Len(t, clusters, 2, "expected two clusters")

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].Name < clusters[j].Name
	})

	assert.Equal(t, "res://alpha/", clusters[0].Name)
	assert.Equal(t, []string{"res://alpha/a.tscn", "res://alpha/b.tscn", "res://alpha/c.tres"}, clusters[0].Members)
	assert.Equal(t, "res://beta/", clusters[1].Name)
	assert.Equal(t, []string{"res://beta/x.tscn", "res://beta/y.tscn", "res://beta/z.tres"}, clusters[1].Members)
}

func TestComputeClusters_CohesionScore(t *testing.T) {
	// Fully connected triangle: 3 of 3 possible pairs.
	full := scenes("res://a.tscn", "res://b.tscn", "res://c.tscn")
	store := setupStore(t, full, []Edge{
		dependsOn("res://a.tscn", "res://b.tscn"),
		dependsOn("res://a.tscn", "res://c.tscn"),
		dependsOn("res://b.tscn", "res://c.tscn"),
	})
	ctx := context.Background()

	clusters, err := ComputeClusters(ctx, store, full)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1.0, clusters[0].CohesionScore)

	// Chain: 2 of 3 possible pairs.
	store = setupStore(t, full, []Edge{
		dependsOn("res://a.tscn", "res://b.tscn"),
		dependsOn("res://b.tscn", "res://c.tscn"),
	})
	clusters, err = ComputeClusters(ctx, store, full)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 2.0/3.0, clusters[0].CohesionScore, 1e-9)

	// Mutual references count once.
	pair := scenes("res://d.tscn", "res://e.tscn")
	store = setupStore(t, pair, []Edge{
		dependsOn("res://d.tscn", "res://e.tscn"),
		dependsOn("res://e.tscn", "res://d.tscn"),
	})
	clusters, err = ComputeClusters(ctx, store, pair)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, 1.0, clusters[0].CohesionScore)
}

func TestComputeClusters_UniqueNames(t *testing.T) {
	files := scenes("res://a.tscn", "res://b.tscn", "res://c.tscn", "res://d.tscn")
	edges := []Edge{
		dependsOn("res://a.tscn", "res://b.tscn"),
		dependsOn("res://c.tscn", "res://d.tscn"),
	}
	store := setupStore(t, files, edges)

	clusters, err := ComputeClusters(context.Background(), store, files)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	assert.Equal(t, "res://", clusters[0].Name)
	assert.Equal(t, "res://#2", clusters[1].Name)
}

func TestLongestCommonPrefix(t *testing.T) {
	tests := []struct {
		paths []string
		want  string
	}{
		{nil, ""},
		{[]string{"res://a.tscn"}, "res://a.tscn"},
		{[]string{"res://levels/a.tscn", "res://levels/b.tscn"}, "res://levels/"},
		{[]string{"res://levels/one/a.tscn", "res://levels/two/b.tscn"}, "res://levels/"},
		{[]string{"res://a.tscn", "user://b.tscn"}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, longestCommonPrefix(tt.paths), "paths: %v", tt.paths)
	}
}
