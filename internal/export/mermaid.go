package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/scenegraph/internal/graph"
	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// GenerateMermaid produces a Mermaid graph TD diagram from a graph store.
// Files are grouped by cluster; DEPENDS_ON edges become arrows. Files that
// were referenced but not parsed are drawn as rounded nodes.
func GenerateMermaid(ctx context.Context, store graph.Store) (string, error) {
	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return "", fmt.Errorf("get clusters: %w", err)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	files, err := store.ListFiles(ctx)
	if err != nil {
		return "", fmt.Errorf("list files: %w", err)
	}
	kinds := make(map[string]graph.FileKind, len(files))
	for _, f := range files {
		kinds[f.Path] = f.Kind
	}

	ids := newIDs()

	// Track which files are in clusters.
	clustered := make(map[string]bool)
	for _, c := range clusters {
		for _, member := range c.Members {
			clustered[member] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Emit cluster subgraphs.
	for _, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		sorted := make([]string, len(c.Members))
		copy(sorted, c.Members)
		sort.Strings(sorted)

		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", ids.get(c.Name+"_cluster"), label(c.Name)))
		for _, member := range sorted {
			sb.WriteString("    " + fileShape(ids.get(member), member, kinds[member]) + "\n")
		}
		sb.WriteString("  end\n")
	}

	// Files outside any cluster still get a label.
	for _, f := range files {
		if !clustered[f.Path] {
			sb.WriteString("  " + fileShape(ids.get(f.Path), f.Path, f.Kind) + "\n")
		}
	}

	// Emit DEPENDS_ON edges.
	for _, e := range edges {
		if e.Kind != graph.EdgeKindDependsOn {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", ids.get(e.SourceID), ids.get(e.TargetID)))
	}

	return sb.String(), nil
}

// SceneTreeMermaid renders the node tree of scene as a Mermaid graph TD
// diagram. Each resolved instanced scene is drawn once as a subgraph and
// linked from its instancing nodes with a dotted arrow.
func SceneTreeMermaid(scene *tscn.Scene) string {
	w := &treeWriter{
		ids:      newIDs(),
		rendered: make(map[*tscn.Scene]string),
	}
	w.sb.WriteString("graph TD\n")
	w.scene(scene, "  ")
	for _, l := range w.links {
		w.sb.WriteString("  " + l + "\n")
	}
	return w.sb.String()
}

type treeWriter struct {
	sb       strings.Builder
	ids      *idMap
	rendered map[*tscn.Scene]string // nested scene -> id of its root
	links    []string
}

// scene writes the nodes and parent arrows of s and returns the id of its
// root, or "" for a scene without nodes.
func (w *treeWriter) scene(s *tscn.Scene, indent string) string {
	ids := make([]string, len(s.Nodes))
	for _, n := range s.Nodes {
		ids[n.ID] = w.ids.next()
		fmt.Fprintf(&w.sb, "%s%s[\"%s\"]\n", indent, ids[n.ID], nodeLabel(n))
	}
	for _, n := range s.Nodes {
		if !n.IsRoot() {
			fmt.Fprintf(&w.sb, "%s%s --> %s\n", indent, ids[n.ParentID], ids[n.ID])
		}
	}

	for _, n := range s.Nodes {
		if n.Instance == 0 {
			continue
		}
		res, ok := s.ExtResource(n.Instance)
		if !ok {
			continue
		}
		target := w.instance(res, indent)
		if target != "" {
			w.links = append(w.links, fmt.Sprintf("%s -.-> %s", ids[n.ID], target))
		}
	}

	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// instance returns the id an instancing node links to, writing the
// instanced scene on first use.
func (w *treeWriter) instance(res *tscn.ExtResource, indent string) string {
	if !res.Resolved() {
		if id, ok := w.ids.lookup(res.Path); ok {
			return id
		}
		id := w.ids.get(res.Path)
		fmt.Fprintf(&w.sb, "%s%s([\"%s\"])\n", indent, id, label(shortPath(res.Path)))
		return id
	}
	if id, ok := w.rendered[res.Scene]; ok {
		return id
	}
	fmt.Fprintf(&w.sb, "%ssubgraph %s[\"%s\"]\n", indent, w.ids.next(), label(shortPath(res.Path)))
	root := w.scene(res.Scene, indent+"  ")
	fmt.Fprintf(&w.sb, "%send\n", indent)
	w.rendered[res.Scene] = root
	return root
}

func nodeLabel(n *tscn.Node) string {
	if n.Type == "" {
		return label(n.Name)
	}
	return label(n.Name + ": " + n.Type)
}

func fileShape(id, path string, kind graph.FileKind) string {
	if kind == graph.FileKindExternal {
		return fmt.Sprintf("%s([\"%s\"])", id, label(shortPath(path)))
	}
	return fmt.Sprintf("%s[\"%s\"]", id, label(shortPath(path)))
}

// label escapes double quotes for a quoted Mermaid label.
func label(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// shortPath drops the scheme and returns the last 2 path segments for
// readability.
func shortPath(path string) string {
	if _, rest, ok := strings.Cut(path, "://"); ok {
		path = rest
	}
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}

// idMap assigns Mermaid node ids (alphanumeric only).
type idMap struct {
	byKey map[string]string
	n     int
}

func newIDs() *idMap {
	return &idMap{byKey: make(map[string]string)}
}

func (m *idMap) next() string {
	id := fmt.Sprintf("N%d", m.n)
	m.n++
	return id
}

func (m *idMap) get(key string) string {
	if id, ok := m.byKey[key]; ok {
		return id
	}
	id := m.next()
	m.byKey[key] = id
	return id
}

func (m *idMap) lookup(key string) (string, bool) {
	id, ok := m.byKey[key]
	return id, ok
}
