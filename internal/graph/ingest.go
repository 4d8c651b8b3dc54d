package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// FileFromScene summarizes a parsed scene as a FileNode.
func FileFromScene(path string, scene *tscn.Scene) FileNode {
	kind := FileKindScene
	if scene.Kind == tscn.KindResourceFile {
		kind = FileKindResource
	}
	return FileNode{
		Path:             path,
		Kind:             kind,
		ResourceType:     scene.ResourceType,
		NodeCount:        len(scene.Nodes),
		SubResourceCount: len(scene.SubResources),
	}
}

// SceneNodeFrom converts node n of scene, stored under filePath, into a
// SceneNode.
func SceneNodeFrom(filePath string, scene *tscn.Scene, n *tscn.Node) SceneNode {
	sn := SceneNode{
		FilePath: filePath,
		ID:       n.ID,
		UUID:     int(n.UUID),
		Name:     n.Name,
		Type:     n.Type,
		Level:    n.Level,
		ParentID: n.ParentID,
		Path:     scene.NodePath(n.ID),
	}
	if res, ok := scene.ExtResource(n.Instance); ok && n.Instance != 0 {
		sn.Instance = res.Path
	}
	return sn
}

// Ingest writes scene, stored under path, and every external scene it
// resolved into store. Files already indexed as a scene or resource are not
// written again, so a dependency shared by several scenes is stored once.
//
// Edges written: CONTAINS from the file to each node, PARENT_OF between
// nodes, DEPENDS_ON from the file to each distinct external path and
// INSTANCES from an instancing node to the instanced file.
func Ingest(ctx context.Context, store Store, path string, scene *tscn.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	existing, err := store.GetFile(ctx, path)
	if err != nil {
		return fmt.Errorf("get file %s: %w", path, err)
	}
	if existing != nil && existing.Kind != FileKindExternal {
		return nil
	}
	if err := store.AddFile(ctx, FileFromScene(path, scene)); err != nil {
		return fmt.Errorf("add file %s: %w", path, err)
	}

	if err := ingestDependencies(ctx, store, path, scene); err != nil {
		return err
	}

	for _, n := range scene.Nodes {
		sn := SceneNodeFrom(path, scene, n)
		if err := store.AddNode(ctx, sn); err != nil {
			return fmt.Errorf("add node %s: %w", sn.Key(), err)
		}
		edges := []Edge{{SourceID: path, TargetID: sn.Key(), Kind: EdgeKindContains}}
		if !n.IsRoot() {
			parent := NodeKey(path, scene.NodePath(n.ParentID))
			edges = append(edges, Edge{SourceID: parent, TargetID: sn.Key(), Kind: EdgeKindParentOf})
		}
		if sn.Instance != "" {
			edges = append(edges, Edge{SourceID: sn.Key(), TargetID: sn.Instance, Kind: EdgeKindInstances})
		}
		for _, e := range edges {
			if err := store.AddEdge(ctx, e); err != nil {
				return fmt.Errorf("add %s edge %s -> %s: %w", e.Kind, e.SourceID, e.TargetID, err)
			}
		}
	}
	return nil
}

// ingestDependencies stores every external resource of scene, in id order,
// and links path to it.
func ingestDependencies(ctx context.Context, store Store, path string, scene *tscn.Scene) error {
	ids := make([]int, 0, len(scene.ExtResources))
	for id := range scene.ExtResources {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	linked := make(map[string]bool, len(ids))
	for _, id := range ids {
		res := scene.ExtResources[id]
		if linked[res.Path] || res.Path == "" {
			continue
		}
		linked[res.Path] = true

		if res.Resolved() {
			if err := Ingest(ctx, store, res.Path, res.Scene); err != nil {
				return err
			}
		} else if err := addExternal(ctx, store, res.Path); err != nil {
			return err
		}
		edge := Edge{SourceID: path, TargetID: res.Path, Kind: EdgeKindDependsOn}
		if err := store.AddEdge(ctx, edge); err != nil {
			return fmt.Errorf("add %s edge %s -> %s: %w", edge.Kind, path, res.Path, err)
		}
	}
	return nil
}

// addExternal records an unparsed dependency unless the path is already
// indexed.
func addExternal(ctx context.Context, store Store, path string) error {
	existing, err := store.GetFile(ctx, path)
	if err != nil {
		return fmt.Errorf("get file %s: %w", path, err)
	}
	if existing != nil {
		return nil
	}
	if err := store.AddFile(ctx, FileNode{Path: path, Kind: FileKindExternal}); err != nil {
		return fmt.Errorf("add file %s: %w", path, err)
	}
	return nil
}
