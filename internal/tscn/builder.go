package tscn

import "strings"

// VirtualRoot prefixes every canonical node path before hashing.
const VirtualRoot = "/root"

// rootSegment stands for the root node on the context stack. Parent paths
// use "." to name the root.
const rootSegment = "."

// frame is one open ancestor on the context stack.
type frame struct {
	segment string
	id      int
}

// builder reconstructs the node tree from declarative parent paths. It lives
// for a single parse.
type builder struct {
	scene *Scene
	stack []frame
}

func newBuilder(scene *Scene) *builder {
	return &builder{scene: scene}
}

// addNode allocates the next node id for a node header and links it to its
// parent. It returns a *StructureError when the parent path does not name an
// open ancestor.
func (b *builder) addNode(blk Block, line int) (*Node, error) {
	id := len(b.scene.Nodes)
	node := &Node{
		ID:         id,
		Name:       blk.Name,
		Type:       blk.Type,
		ParentID:   NoParent,
		Instance:   blk.Instance,
		Groups:     blk.Groups,
		Properties: NewProperties(),
	}

	if b.isRootDecl(blk) {
		b.stack = append(b.stack[:0], frame{segment: rootSegment, id: id})
		node.Level = 0
	} else {
		idx, ok := b.lookup(lastSegment(blk.Parent))
		if !ok {
			return nil, &StructureError{Line: line, Node: blk.Name, Parent: blk.Parent, Err: ErrUnknownParent}
		}
		parent := b.scene.Nodes[b.stack[idx].id]

		b.stack = append(b.stack[:idx+1], frame{segment: blk.Name, id: id})
		parent.Children = append(parent.Children, id)
		node.ParentID = parent.ID
		node.Level = idx + 1
	}

	b.scene.Nodes = append(b.scene.Nodes, node)
	node.UUID = PathHash(b.canonicalPath())
	return node, nil
}

// isRootDecl reports whether a node header declares the scene root: no
// parent attribute, an empty parent, or "." before any root exists.
func (b *builder) isRootDecl(blk Block) bool {
	if !blk.HasParent || blk.Parent == "" {
		return true
	}
	return blk.Parent == rootSegment && len(b.stack) == 0
}

// lookup finds the nearest open ancestor named segment, searching from the
// top of the stack. The root frame matches both "." and the root's name.
func (b *builder) lookup(segment string) (int, bool) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if f.segment == segment {
			return i, true
		}
		if i == 0 && b.scene.Nodes[f.id].Name == segment {
			return 0, true
		}
	}
	return 0, false
}

// canonicalPath joins the open ancestor chain under VirtualRoot, replacing
// the root marker with the root node's name.
func (b *builder) canonicalPath() string {
	var sb strings.Builder
	sb.WriteString(VirtualRoot)
	for _, f := range b.stack {
		sb.WriteByte('/')
		if f.segment == rootSegment {
			sb.WriteString(b.scene.Nodes[f.id].Name)
		} else {
			sb.WriteString(f.segment)
		}
	}
	return sb.String()
}

func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// PathHash computes the Fletcher-16 checksum of a canonical node path. It is
// a compact identity for comparing nodes across parses, not a unique key.
func PathHash(path string) uint16 {
	var sum1, sum2 uint16
	for i := 0; i < len(path); i++ {
		sum1 = (sum1 + uint16(path[i])) % 255
		sum2 = (sum2 + sum1) % 255
	}
	return sum2<<8 | sum1
}

// CanonicalPath returns the path PathHash is computed over for a node whose
// ancestor chain, root first, is names.
func CanonicalPath(names ...string) string {
	return VirtualRoot + "/" + strings.Join(names, "/")
}
