package export

import (
	"slices"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// SceneExport is the JSON document of one parsed scene or resource file.
type SceneExport struct {
	Path         string              `json:"path"`
	Kind         tscn.SceneKind      `json:"kind"`
	ResourceType string              `json:"resourceType,omitempty"`
	Format       int                 `json:"format"`
	LoadSteps    int                 `json:"loadSteps,omitempty"`
	Properties   *tscn.Properties    `json:"properties,omitempty"`
	Nodes        []NodeExport        `json:"nodes"`
	SubResources []*tscn.SubResource `json:"subResources"`
	ExtResources []ExtResourceExport `json:"extResources"`
	Connections  []tscn.Connection   `json:"connections,omitempty"`
}

// NodeExport is a node with its tree path and, for an instanced node, the
// virtual path of the instanced scene.
type NodeExport struct {
	Path         string `json:"path"`
	InstancePath string `json:"instancePath,omitempty"`
	*tscn.Node
}

// ExtResourceExport is an external reference with the export of the file it
// resolved to.
type ExtResourceExport struct {
	ID       int          `json:"id"`
	Type     string       `json:"type"`
	Path     string       `json:"path"`
	Resolved bool         `json:"resolved"`
	Scene    *SceneExport `json:"scene,omitempty"`
}

// ExportScene builds the export of scene, stored under path. Resolved
// external resources are exported recursively; sub-resources and external
// resources are listed by ascending id.
func ExportScene(path string, scene *tscn.Scene) *SceneExport {
	out := &SceneExport{
		Path:         path,
		Kind:         scene.Kind,
		ResourceType: scene.ResourceType,
		Format:       scene.Format,
		LoadSteps:    scene.LoadSteps,
		Nodes:        make([]NodeExport, 0, len(scene.Nodes)),
		SubResources: make([]*tscn.SubResource, 0, len(scene.SubResources)),
		ExtResources: make([]ExtResourceExport, 0, len(scene.ExtResources)),
		Connections:  scene.Connections,
	}
	if scene.Kind == tscn.KindResourceFile {
		out.Properties = scene.Properties
	}

	for _, n := range scene.Nodes {
		ne := NodeExport{Path: scene.NodePath(n.ID), Node: n}
		if res, ok := scene.ExtResource(n.Instance); ok && n.Instance != 0 {
			ne.InstancePath = res.Path
		}
		out.Nodes = append(out.Nodes, ne)
	}

	for _, id := range sortedKeys(scene.SubResources) {
		out.SubResources = append(out.SubResources, scene.SubResources[id])
	}

	for _, id := range sortedKeys(scene.ExtResources) {
		res := scene.ExtResources[id]
		ee := ExtResourceExport{ID: res.ID, Type: res.Type, Path: res.Path, Resolved: res.Resolved()}
		if res.Resolved() {
			ee.Scene = ExportScene(res.Path, res.Scene)
		}
		out.ExtResources = append(out.ExtResources, ee)
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
