package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scenegraph/internal/graph"
)

const fixtureRoot = "../../testdata/fixtures/game"

// execute runs the CLI with args and returns everything written to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestParse(t *testing.T) {
	t.Run("virtual path", func(t *testing.T) {
		out, err := execute(t, "--project-root", fixtureRoot, "parse", "res://characters/Player.tscn")
		require.NoError(t, err)

		var doc struct {
			Path  string            `json:"path"`
			Nodes []json.RawMessage `json:"nodes"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "res://characters/Player.tscn", doc.Path)
		assert.Len(t, doc.Nodes, 3)
	})

	t.Run("file paths in parallel", func(t *testing.T) {
		out, err := execute(t, "--project-root", fixtureRoot, "parse", "--compact",
			fixtureRoot+"/Main.tscn", fixtureRoot+"/curves/speed.tres")
		require.NoError(t, err)

		var docs []struct {
			Path string `json:"path"`
			Kind string `json:"kind"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &docs))
		require.Len(t, docs, 2)
		assert.Equal(t, "res://Main.tscn", docs[0].Path)
		assert.Equal(t, "resource", docs[1].Kind)
	})

	t.Run("outside the project", func(t *testing.T) {
		_, err := execute(t, "--project-root", fixtureRoot, "parse", "main_test.go")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside every mapped directory")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "--project-root", fixtureRoot, "parse", "res://nope.tscn")
		assert.Error(t, err)
	})
}

func TestTree(t *testing.T) {
	out, err := execute(t, "--project-root", fixtureRoot, "tree", "--properties", "--expand", "res://Main.tscn")
	require.NoError(t, err)

	assert.Regexp(t, `(?m)^Main \[id=0 uuid=0x[0-9a-f]{4} type=Node2D\]$`, out)
	assert.Regexp(t, `(?m)^    Shape \[id=4 uuid=0x[0-9a-f]{4} type=CollisionShape2D\]$`, out)
	assert.Contains(t, out, "instance=res://characters/Player.tscn]")
	assert.Contains(t, out, "groups=solid,world]")
	assert.Contains(t, out, "      text = \"Score: 0\"\n")
	assert.Regexp(t, `(?m)^    \| Player \[id=0 uuid=0x[0-9a-f]{4} type=KinematicBody2D\]$`, out)
}

func TestIndexMemory(t *testing.T) {
	out, err := execute(t, "--project-root", fixtureRoot, "index", "--json", "--workers", "2")
	require.NoError(t, err)

	var result graph.IndexResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Indexed, 3)
	assert.Equal(t, 5, result.Stats.FileCount)
	require.Len(t, result.Clusters, 1)
}

func TestIndexSummary(t *testing.T) {
	out, err := execute(t, "index", fixtureRoot)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 files, 0 failed\n")
	assert.Contains(t, out, "files: 5  nodes: 12  edges: 33  clusters: 1\n")
	assert.Contains(t, out, "  res:// (5 files, cohesion 0.50)\n")
}

func TestIndexRejectsUnknownStore(t *testing.T) {
	_, err := execute(t, "--project-root", fixtureRoot, "index", "--store", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestImpact(t *testing.T) {
	out, err := execute(t, "--project-root", fixtureRoot, "impact", "res://curves/speed.tres")
	require.NoError(t, err)
	assert.Equal(t, `directly affected (2):
  res://Main.tscn
  res://characters/Player.tscn
transitively affected (2):
  res://Main.tscn
  res://characters/Player.tscn
risk: 0.40
`, out)
}

func TestDiagram(t *testing.T) {
	t.Run("scene tree", func(t *testing.T) {
		out, err := execute(t, "--project-root", fixtureRoot, "diagram", "res://characters/Player.tscn")
		require.NoError(t, err)
		assert.Equal(t, `graph TD
  N0["Player: KinematicBody2D"]
  N1["Sprite: Sprite"]
  N2["Collision: CollisionShape2D"]
  N0 --> N1
  N0 --> N2
`, out)
	})

	t.Run("dependency graph", func(t *testing.T) {
		out, err := execute(t, "--project-root", fixtureRoot, "diagram")
		require.NoError(t, err)
		assert.Contains(t, out, "graph TD\n")
		assert.Contains(t, out, "subgraph")
		assert.Contains(t, out, "([\"icon.png\"])")
	})
}

func TestMapFlag(t *testing.T) {
	out, err := execute(t, "--project-root", fixtureRoot, "--map", "chars://=characters", "parse", "chars://Player.tscn")
	require.NoError(t, err)
	assert.Contains(t, out, `"path": "chars://Player.tscn"`)

	_, err = execute(t, "--map", "nodir", "parse", "res://Main.tscn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --map")
}

func TestParseMappings(t *testing.T) {
	got, err := parseMappings([]string{"res://=game", "user://=/tmp/save"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "res://", got[0].Prefix)
	assert.Equal(t, "/tmp/save", got[1].Dir)

	for _, bad := range []string{"", "=dir", "res://=", "res://"} {
		_, err := parseMappings([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestStatusMemory(t *testing.T) {
	out, err := execute(t, "--project-root", fixtureRoot, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No persistent index configured (store: memory).\n")
}
