package graph

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	files    map[string]FileNode
	nodes    map[string]SceneNode // key: NodeKey(filePath, path)
	edges    []Edge
	clusters []ClusterNode
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		files: make(map[string]FileNode),
		nodes: make(map[string]SceneNode),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddFile stores a file node keyed by its path.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddNode stores a scene node keyed by file path and node path.
func (m *MemStore) AddNode(_ context.Context, node SceneNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes[node.Key()] = node
	return nil
}

// AddCluster appends a cluster to the internal slice.
func (m *MemStore) AddCluster(_ context.Context, node ClusterNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, node)
	return nil
}

// AddEdge appends an edge to the internal slice.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for the given path, or nil if not found.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// ListFiles returns all files sorted by path.
func (m *MemStore) ListFiles(_ context.Context) ([]FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FileNode, 0, len(m.files))
	for _, f := range m.files {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b FileNode) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// GetNode returns the scene node at nodePath in filePath, or nil if not found.
func (m *MemStore) GetNode(_ context.Context, filePath, nodePath string) (*SceneNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[NodeKey(filePath, nodePath)]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// QueryNodes returns scene nodes whose name or type contains query
// (case-insensitive), ordered by file and node id, up to limit results. A
// limit <= 0 returns all matches.
func (m *MemStore) QueryNodes(_ context.Context, query string, limit int) ([]SceneNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lowerQuery := strings.ToLower(query)
	var results []SceneNode
	for _, n := range m.nodes {
		if strings.Contains(strings.ToLower(n.Name), lowerQuery) ||
			strings.Contains(strings.ToLower(n.Type), lowerQuery) {
			results = append(results, n)
		}
	}
	slices.SortFunc(results, compareNodes)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetDependencies performs a BFS over DEPENDS_ON edges from path in the given
// direction, up to maxDepth hops. It returns one DependencyChain per
// reachable file.
func (m *MemStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return traverse(path, direction, maxDepth, m.neighbors)
}

// neighbors returns files one DEPENDS_ON hop from path. Upstream follows
// edges out of path, downstream follows edges into it.
func (m *MemStore) neighbors(path string, direction Direction) ([]string, error) {
	var result []string
	for _, e := range m.edges {
		if e.Kind != EdgeKindDependsOn {
			continue
		}
		switch direction {
		case DirectionUpstream:
			if e.SourceID == path {
				result = append(result, e.TargetID)
			}
		case DirectionDownstream:
			if e.TargetID == path {
				result = append(result, e.SourceID)
			}
		}
	}
	return result, nil
}

// AssessImpact computes the blast radius of changing the given files.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return assessImpact(changedFiles, len(m.files), m.neighbors)
}

// GetClusters returns all stored clusters.
func (m *MemStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ClusterNode, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// GetAllEdges returns a copy of all edges in the store.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns counts of all node and edge types in the graph.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FileCount:    len(m.files),
		NodeCount:    len(m.nodes),
		ClusterCount: len(m.clusters),
		EdgeCount:    len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

func compareNodes(a, b SceneNode) int {
	if c := strings.Compare(a.FilePath, b.FilePath); c != 0 {
		return c
	}
	return a.ID - b.ID
}
