package graph

import (
	"context"
	"io"
	"math"
	"slices"
)

// Store is the interface for the scene index backend.
// Implementations: MemStore (default, tests), KuzuStore and SQLiteStore
// (persistent indexes).
type Store interface {
	io.Closer

	// Schema setup, called once before any data is inserted.
	InitSchema(ctx context.Context) error

	// Write operations. AddFile replaces an existing file with the same path.
	AddFile(ctx context.Context, node FileNode) error
	AddNode(ctx context.Context, node SceneNode) error
	AddCluster(ctx context.Context, node ClusterNode) error
	AddEdge(ctx context.Context, edge Edge) error

	// Read operations. Missing entries return nil without error.
	GetFile(ctx context.Context, path string) (*FileNode, error)
	ListFiles(ctx context.Context) ([]FileNode, error)
	GetNode(ctx context.Context, filePath, nodePath string) (*SceneNode, error)
	QueryNodes(ctx context.Context, query string, limit int) ([]SceneNode, error)

	// Graph traversal over DEPENDS_ON edges.
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)
	GetClusters(ctx context.Context) ([]ClusterNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// Stats.
	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this depend on?
	DirectionDownstream Direction = "downstream" // what depends on this?
)

// DefaultMaxDepth bounds dependency traversal when no depth is given.
const DefaultMaxDepth = 10

// neighborFunc returns the files one DEPENDS_ON hop away from path.
type neighborFunc func(path string, dir Direction) ([]string, error)

// traverse performs a BFS from start and returns one DependencyChain per
// reachable file, in discovery order.
func traverse(start string, dir Direction, maxDepth int, next neighborFunc) ([]DependencyChain, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	type bfsEntry struct {
		path  []string
		depth int
	}
	visited := map[string]bool{start: true}
	queue := []bfsEntry{{path: []string{start}}}
	var chains []DependencyChain

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}
		tip := cur.path[len(cur.path)-1]
		neighbors, err := next(tip, dir)
		if err != nil {
			return nil, err
		}
		slices.Sort(neighbors)
		for _, nb := range neighbors {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			newPath := make([]string, len(cur.path)+1)
			copy(newPath, cur.path)
			newPath[len(cur.path)] = nb
			chains = append(chains, DependencyChain{Nodes: newPath, Depth: cur.depth + 1})
			queue = append(queue, bfsEntry{path: newPath, depth: cur.depth + 1})
		}
	}
	return chains, nil
}

// assessImpact collects the files depending on changedFiles, directly and
// transitively. totalFiles scales the risk score.
func assessImpact(changedFiles []string, totalFiles int, next neighborFunc) (*ImpactResult, error) {
	changed := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		changed[f] = true
	}

	direct := map[string]bool{}
	transitive := map[string]bool{}
	for _, f := range changedFiles {
		chains, err := traverse(f, DirectionDownstream, math.MaxInt, next)
		if err != nil {
			return nil, err
		}
		for _, c := range chains {
			last := c.Nodes[len(c.Nodes)-1]
			if changed[last] {
				continue
			}
			transitive[last] = true
			if c.Depth == 1 {
				direct[last] = true
			}
		}
	}

	risk := 0.0
	if totalFiles > 0 {
		risk = math.Min(1.0, float64(len(transitive))/float64(totalFiles))
	}
	return &ImpactResult{
		DirectlyAffected:     setToSlice(direct),
		TransitivelyAffected: setToSlice(transitive),
		RiskScore:            risk,
	}, nil
}

// setToSlice converts a string bool map to a sorted slice.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
