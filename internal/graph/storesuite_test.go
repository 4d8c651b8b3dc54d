package graph

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the Store contract against any backend. newStore
// must return an empty store with an initialized schema.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("FileRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		file := FileNode{Path: "res://curves/speed.tres", Kind: FileKindResource, ResourceType: "Curve"}
		require.NoError(t, s.AddFile(ctx, file))

		got, err := s.GetFile(ctx, file.Path)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, file, *got)

		missing, err := s.GetFile(ctx, "res://nope.tscn")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("AddFileReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://a.tscn", Kind: FileKindExternal}))
		require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://a.tscn", Kind: FileKindScene, NodeCount: 3, SubResourceCount: 1}))

		got, err := s.GetFile(ctx, "res://a.tscn")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, FileKindScene, got.Kind)
		assert.Equal(t, 3, got.NodeCount)
		assert.Equal(t, 1, got.SubResourceCount)

		files, err := s.ListFiles(ctx)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("ListFilesSorted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, p := range []string{"res://b.tscn", "res://a.tscn", "res://c/d.tres"} {
			require.NoError(t, s.AddFile(ctx, FileNode{Path: p, Kind: FileKindScene}))
		}

		files, err := s.ListFiles(ctx)
		require.NoError(t, err)
		var paths []string
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		assert.Equal(t, []string{"res://a.tscn", "res://b.tscn", "res://c/d.tres"}, paths)
	})

	t.Run("NodesAndQuery", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://Main.tscn", Kind: FileKindScene}))
		require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://Player.tscn", Kind: FileKindScene}))

		nodes := []SceneNode{
			{FilePath: "res://Main.tscn", ID: 0, UUID: 100, Name: "Main", Type: "Node2D", ParentID: -1, Path: "."},
			{FilePath: "res://Main.tscn", ID: 1, UUID: 101, Name: "Player", Level: 1, ParentID: 0, Path: "Player", Instance: "res://Player.tscn"},
			{FilePath: "res://Main.tscn", ID: 2, UUID: 102, Name: "Sprite", Type: "Sprite", Level: 1, ParentID: 0, Path: "Sprite"},
			{FilePath: "res://Player.tscn", ID: 0, UUID: 200, Name: "Player", Type: "KinematicBody2D", ParentID: -1, Path: "."},
			{FilePath: "res://Player.tscn", ID: 1, UUID: 201, Name: "PlayerSprite", Type: "Sprite", Level: 1, ParentID: 0, Path: "PlayerSprite"},
		}
		for _, n := range nodes {
			require.NoError(t, s.AddNode(ctx, n))
		}

		got, err := s.GetNode(ctx, "res://Main.tscn", "Player")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, nodes[1], *got)

		missing, err := s.GetNode(ctx, "res://Main.tscn", "Nope")
		require.NoError(t, err)
		assert.Nil(t, missing)

		byName, err := s.QueryNodes(ctx, "player", 0)
		require.NoError(t, err)
		require.Len(t, byName, 3)
		assert.Equal(t, "res://Main.tscn", byName[0].FilePath)
		assert.Equal(t, "PlayerSprite", byName[2].Name)

		byType, err := s.QueryNodes(ctx, "SPRITE", 0)
		require.NoError(t, err)
		assert.Len(t, byType, 2)

		limited, err := s.QueryNodes(ctx, "sprite", 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "Sprite", limited[0].Name)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, stats.NodeCount)
	})

	t.Run("Dependencies", func(t *testing.T) {
		s := seedDependencies(t, newStore(t))
		ctx := context.Background()

		up, err := s.GetDependencies(ctx, "res://a.tscn", DirectionUpstream, 1)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"res://a.tscn", "res://b.tscn"}, Depth: 1},
			{Nodes: []string{"res://a.tscn", "res://d.png"}, Depth: 1},
		}, up)

		all, err := s.GetDependencies(ctx, "res://a.tscn", DirectionUpstream, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"res://a.tscn", "res://b.tscn", "res://c.tres"}, all[2].Nodes)
		assert.Equal(t, 2, all[2].Depth)

		down, err := s.GetDependencies(ctx, "res://c.tres", DirectionDownstream, 5)
		require.NoError(t, err)
		assert.Equal(t, []DependencyChain{
			{Nodes: []string{"res://c.tres", "res://b.tscn"}, Depth: 1},
			{Nodes: []string{"res://c.tres", "res://b.tscn", "res://a.tscn"}, Depth: 2},
		}, down)
	})

	t.Run("AssessImpact", func(t *testing.T) {
		s := seedDependencies(t, newStore(t))
		ctx := context.Background()

		impact, err := s.AssessImpact(ctx, []string{"res://c.tres"})
		require.NoError(t, err)
		assert.Equal(t, []string{"res://b.tscn"}, impact.DirectlyAffected)
		assert.Equal(t, []string{"res://a.tscn", "res://b.tscn"}, impact.TransitivelyAffected)
		assert.InDelta(t, 0.5, impact.RiskScore, 1e-9)

		leaf, err := s.AssessImpact(ctx, []string{"res://a.tscn"})
		require.NoError(t, err)
		assert.Empty(t, leaf.DirectlyAffected)
		assert.Empty(t, leaf.TransitivelyAffected)
		assert.Equal(t, 0.0, leaf.RiskScore)

		// Changed files are not reported as affected by each other.
		both, err := s.AssessImpact(ctx, []string{"res://b.tscn", "res://c.tres"})
		require.NoError(t, err)
		assert.Equal(t, []string{"res://a.tscn"}, both.TransitivelyAffected)
	})

	t.Run("ClustersAndEdges", func(t *testing.T) {
		s := seedDependencies(t, newStore(t))
		ctx := context.Background()

		files, err := s.ListFiles(ctx)
		require.NoError(t, err)
		clusters, err := ComputeClusters(ctx, s, files)
		require.NoError(t, err)
		require.Len(t, clusters, 1)

		stored, err := s.GetClusters(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "res://", stored[0].Name)
		assert.Equal(t, []string{"res://a.tscn", "res://b.tscn", "res://c.tres", "res://d.png"}, sorted(stored[0].Members))
		assert.InDelta(t, 0.5, stored[0].CohesionScore, 1e-9)

		edges, err := s.GetAllEdges(ctx)
		require.NoError(t, err)
		counts := map[EdgeKind]int{}
		for _, e := range edges {
			counts[e.Kind]++
		}
		assert.Equal(t, 3, counts[EdgeKindDependsOn])
		assert.Equal(t, 4, counts[EdgeKindBelongs])
		assert.Equal(t, 2, counts[EdgeKindContains])
		assert.Equal(t, 1, counts[EdgeKindParentOf])
		assert.Equal(t, 1, counts[EdgeKindInstances])

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, &GraphStats{FileCount: 4, NodeCount: 2, ClusterCount: 1, EdgeCount: 11}, stats)
	})
}

// seedDependencies stores a -> b -> c and a -> d, plus a two-node tree in a
// whose child instances b.
func seedDependencies(t *testing.T, s Store) Store {
	t.Helper()
	ctx := context.Background()
	for _, f := range []FileNode{
		{Path: "res://a.tscn", Kind: FileKindScene, NodeCount: 2},
		{Path: "res://b.tscn", Kind: FileKindScene},
		{Path: "res://c.tres", Kind: FileKindResource, ResourceType: "Curve"},
		{Path: "res://d.png", Kind: FileKindExternal},
	} {
		require.NoError(t, s.AddFile(ctx, f))
	}
	root := SceneNode{FilePath: "res://a.tscn", ID: 0, Name: "A", ParentID: -1, Path: "."}
	child := SceneNode{FilePath: "res://a.tscn", ID: 1, Name: "B", Level: 1, ParentID: 0, Path: "B", Instance: "res://b.tscn"}
	require.NoError(t, s.AddNode(ctx, root))
	require.NoError(t, s.AddNode(ctx, child))

	for _, e := range []Edge{
		dependsOn("res://a.tscn", "res://b.tscn"),
		dependsOn("res://b.tscn", "res://c.tres"),
		dependsOn("res://a.tscn", "res://d.png"),
		{SourceID: "res://a.tscn", TargetID: root.Key(), Kind: EdgeKindContains},
		{SourceID: "res://a.tscn", TargetID: child.Key(), Kind: EdgeKindContains},
		{SourceID: root.Key(), TargetID: child.Key(), Kind: EdgeKindParentOf},
		{SourceID: child.Key(), TargetID: "res://b.tscn", Kind: EdgeKindInstances},
	} {
		require.NoError(t, s.AddEdge(ctx, e))
	}
	return s
}

// sorted returns a sorted copy of the given string slice so that assertions
// are deterministic regardless of map iteration order.
func sorted(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Strings(out)
	return out
}
