package tscn

import "strings"

// NoParent is the ParentID of a root node.
const NoParent = -1

// SceneKind tells whether a file describes a scene or a standalone resource.
type SceneKind string

const (
	KindScene        SceneKind = "scene"
	KindResourceFile SceneKind = "resource"
)

// Node is one entry of a scene's node tree.
type Node struct {
	ID         int         `json:"id"`
	UUID       uint16      `json:"uuid"`
	Level      int         `json:"level"`
	Name       string      `json:"name"`
	Type       string      `json:"type,omitempty"`
	ParentID   int         `json:"parentId"`
	Children   []int       `json:"children,omitempty"`
	Instance   int         `json:"instance,omitempty"` // ext-resource id, 0 when not instanced
	Groups     []string    `json:"groups,omitempty"`
	Properties *Properties `json:"properties"`
}

// IsRoot reports whether n is the scene root.
func (n *Node) IsRoot() bool { return n.ParentID == NoParent }

// SubResource is an anonymous resource local to one file.
type SubResource struct {
	ID         int         `json:"id"`
	Type       string      `json:"type"`
	Properties *Properties `json:"properties"`
}

// ExtResource is a reference to a resource stored in another file. Scene is
// the parsed contents of that file, or nil when the path could not be
// resolved or the file is not a text scene or resource.
type ExtResource struct {
	ID    int    `json:"id"`
	Type  string `json:"type"`
	Path  string `json:"path"`
	Scene *Scene `json:"-"`
}

// Resolved reports whether the external file was found and parsed.
func (e *ExtResource) Resolved() bool { return e.Scene != nil }

// Connection is a signal connection declared between two nodes.
type Connection struct {
	Signal string `json:"signal"`
	From   string `json:"from"`
	To     string `json:"to"`
	Method string `json:"method"`
	Flags  int    `json:"flags,omitempty"`
	Binds  Value  `json:"binds"`
}

// Scene is the result of parsing one file. It is not modified after the
// parse that produced it returns.
type Scene struct {
	Kind         SceneKind
	ResourceType string
	LoadSteps    int
	Format       int

	// Properties holds the [resource] section of a resource file.
	Properties *Properties

	// Nodes is indexed by node id; ids follow declaration order.
	Nodes        []*Node
	SubResources map[int]*SubResource
	ExtResources map[int]*ExtResource
	Connections  []Connection
}

func newScene() *Scene {
	return &Scene{
		Kind:         KindScene,
		Properties:   NewProperties(),
		SubResources: make(map[int]*SubResource),
		ExtResources: make(map[int]*ExtResource),
	}
}

// Node returns the node with the given id.
func (s *Scene) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(s.Nodes) {
		return nil, false
	}
	return s.Nodes[id], true
}

// Root returns the root node, or nil if the scene has no nodes.
func (s *Scene) Root() *Node {
	if len(s.Nodes) == 0 {
		return nil
	}
	return s.Nodes[0]
}

// SubResource returns the sub-resource declared with id.
func (s *Scene) SubResource(id int) (*SubResource, bool) {
	r, ok := s.SubResources[id]
	return r, ok
}

// ExtResource returns the external resource declared with id.
func (s *Scene) ExtResource(id int) (*ExtResource, bool) {
	r, ok := s.ExtResources[id]
	return r, ok
}

// Nested returns the parsed scene of external resource id, or nil if the
// resource is unknown or unresolved.
func (s *Scene) Nested(id int) *Scene {
	if r, ok := s.ExtResources[id]; ok {
		return r.Scene
	}
	return nil
}

// NodePath returns the path of node id relative to the root, in the form a
// node header's parent attribute uses: "." for the root and "A/B" for a
// descendant.
func (s *Scene) NodePath(id int) string {
	n, ok := s.Node(id)
	if !ok || n.IsRoot() {
		return "."
	}
	var segments []string
	for !n.IsRoot() {
		segments = append(segments, n.Name)
		n = s.Nodes[n.ParentID]
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// NodeByPath finds a node by its path relative to the root ("." or "" for
// the root itself).
func (s *Scene) NodeByPath(path string) (*Node, bool) {
	n := s.Root()
	if n == nil {
		return nil, false
	}
	if path == "" || path == "." {
		return n, true
	}
	for _, seg := range strings.Split(path, "/") {
		var next *Node
		for _, c := range n.Children {
			if s.Nodes[c].Name == seg {
				next = s.Nodes[c]
				break
			}
		}
		if next == nil {
			return nil, false
		}
		n = next
	}
	return n, true
}

// Walk visits the node tree depth-first in declaration order, starting at
// the root. Returning false from fn skips the node's children.
func (s *Scene) Walk(fn func(n *Node) bool) {
	root := s.Root()
	if root == nil {
		return
	}
	s.walk(root, fn)
}

func (s *Scene) walk(n *Node, fn func(n *Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		s.walk(s.Nodes[c], fn)
	}
}
