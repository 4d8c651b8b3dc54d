//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.InitSchema(context.Background()))
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store { return newSQLiteTestStore(t) })
}

func TestSQLiteStore_InitSchemaIdempotent(t *testing.T) {
	s := newSQLiteTestStore(t)
	require.NoError(t, s.InitSchema(context.Background()))
}

func TestSQLiteStore_RejectsUnknownEdgeKind(t *testing.T) {
	s := newSQLiteTestStore(t)
	err := s.AddEdge(context.Background(), Edge{SourceID: "a", TargetID: "b", Kind: "CALLS"})
	assert.Error(t, err)
}

func TestSQLiteStore_QueryEscapesWildcards(t *testing.T) {
	s := newSQLiteTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddNode(ctx, SceneNode{FilePath: "res://a.tscn", Name: "Hit_Box", ParentID: -1, Path: "."}))
	require.NoError(t, s.AddNode(ctx, SceneNode{FilePath: "res://a.tscn", ID: 1, Name: "HitXBox", ParentID: 0, Path: "HitXBox"}))

	got, err := s.QueryNodes(ctx, "t_b", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hit_Box", got[0].Name)

	none, err := s.QueryNodes(ctx, "%", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteStore_FileDatabasePersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "index.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.InitSchema(ctx))
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://Main.tscn", Kind: FileKindScene}))
	require.NoError(t, s.AddFile(ctx, FileNode{Path: "res://icon.png", Kind: FileKindExternal}))
	require.NoError(t, s.AddEdge(ctx, dependsOn("res://Main.tscn", "res://icon.png")))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	require.NoError(t, reopened.InitSchema(ctx))

	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{FileCount: 2, EdgeCount: 1}, stats)
}
