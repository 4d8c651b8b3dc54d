package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/scenegraph/internal/config"
	"github.com/dusk-indust/scenegraph/internal/export"
	"github.com/dusk-indust/scenegraph/internal/graph"
)

// SceneService holds the scene index and project settings used by MCP tool
// handlers. build_index replaces the index with a freshly built in-memory
// one; the other tools read whichever index is current.
type SceneService struct {
	mu          sync.RWMutex
	store       graph.Store
	projectRoot string
	cfg         *config.ProjectConfig
}

// NewSceneService creates a SceneService serving store. A nil store starts
// with an empty in-memory index; a nil cfg is the zero config.
func NewSceneService(store graph.Store, projectRoot string, cfg *config.ProjectConfig) *SceneService {
	if store == nil {
		store = graph.NewMemStore()
	}
	if cfg == nil {
		cfg = &config.ProjectConfig{}
	}
	return &SceneService{store: store, projectRoot: projectRoot, cfg: cfg}
}

// Close closes the current index.
func (s *SceneService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}

// withStore runs fn against the current index. The read lock is held until
// fn returns, so build_index cannot close the store while fn uses it. fn must
// not call back into methods that take s.mu.
func (s *SceneService) withStore(fn func(store graph.Store) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.store)
}

// project returns the root and config for a request. An explicit root other
// than the service's own has its config file loaded.
func (s *SceneService) project(root string) (string, *config.ProjectConfig, error) {
	s.mu.RLock()
	defaultRoot, cfg := s.projectRoot, s.cfg
	s.mu.RUnlock()

	if root == "" || root == defaultRoot {
		if defaultRoot == "" {
			return "", nil, fmt.Errorf("projectRoot is required")
		}
		return defaultRoot, cfg, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, fmt.Errorf("cannot access projectRoot: %w", err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("projectRoot is not a directory: %s", root)
	}
	cfg, err = config.Load(root)
	if err != nil {
		return "", nil, fmt.Errorf("load config: %w", err)
	}
	return root, cfg, nil
}

// BuildIndex discovers every scene and resource of the project, parses them
// and swaps the result in as the current index.
func (s *SceneService) BuildIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildIndexInput,
) (*mcp.CallToolResult, BuildIndexOutput, error) {
	root, cfg, err := s.project(input.ProjectRoot)
	if err != nil {
		return nil, BuildIndexOutput{}, err
	}
	if len(input.ExcludeDirs) > 0 {
		scoped := *cfg
		scoped.ExcludeDirs = append(slices.Clone(cfg.ExcludeDirs), input.ExcludeDirs...)
		cfg = &scoped
	}
	workers := input.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	paths, err := graph.DiscoverMapped(cfg.PathMap(root), cfg.Extensions, cfg.Excluded)
	if err != nil {
		return nil, BuildIndexOutput{}, err
	}

	store := graph.NewMemStore()
	if err := store.InitSchema(ctx); err != nil {
		return nil, BuildIndexOutput{}, fmt.Errorf("init schema: %w", err)
	}
	result, err := graph.BuildIndex(ctx, store, cfg.Loader(root), paths, workers)
	if err != nil {
		return nil, BuildIndexOutput{}, fmt.Errorf("build index: %w", err)
	}

	// Lock waits for in-flight readers of the old store; none can reach it
	// once the swap is done.
	s.mu.Lock()
	old := s.store
	s.store, s.projectRoot, s.cfg = store, root, cfg
	s.mu.Unlock()
	if err := old.Close(); err != nil {
		log.Printf("mcptools: close previous index: %v", err)
	}

	return nil, BuildIndexOutput{
		Indexed:  len(result.Indexed),
		Failed:   result.Failed,
		Clusters: len(result.Clusters),
		Stats:    *result.Stats,
	}, nil
}

// ParseScene parses one file with its external resources and returns the
// parsed document as JSON text, or the node tree as a Mermaid diagram.
func (s *SceneService) ParseScene(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ParseSceneInput,
) (*mcp.CallToolResult, any, error) {
	if input.Path == "" {
		return nil, nil, fmt.Errorf("path is required")
	}
	format := strings.ToLower(input.Format)
	if format != "" && format != "json" && format != "mermaid" {
		return nil, nil, fmt.Errorf("unknown format %q", input.Format)
	}
	root, cfg, err := s.project(input.ProjectRoot)
	if err != nil {
		return nil, nil, err
	}

	scene, err := cfg.Loader(root).Load(ctx, input.Path)
	if err != nil {
		return nil, nil, err
	}

	var text string
	if format == "mermaid" {
		text = export.SceneTreeMermaid(scene)
	} else {
		data, err := json.MarshalIndent(export.ExportScene(input.Path, scene), "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s: %w", input.Path, err)
		}
		text = string(data)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// QueryNodes searches indexed scene nodes by name or type substring.
func (s *SceneService) QueryNodes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryNodesInput,
) (*mcp.CallToolResult, QueryNodesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	// The type filter runs before the limit is applied.
	queryLimit := limit
	if input.Type != "" {
		queryLimit = 0
	}
	var nodes []graph.SceneNode
	err := s.withStore(func(store graph.Store) error {
		var err error
		nodes, err = store.QueryNodes(ctx, input.Query, queryLimit)
		return err
	})
	if err != nil {
		return nil, QueryNodesOutput{}, fmt.Errorf("query nodes: %w", err)
	}

	if input.Type != "" {
		filtered := nodes[:0]
		for _, n := range nodes {
			if strings.EqualFold(n.Type, input.Type) {
				filtered = append(filtered, n)
			}
		}
		nodes = filtered
		if len(nodes) > limit {
			nodes = nodes[:limit]
		}
	}

	return nil, QueryNodesOutput{
		Nodes: nodes,
		Total: len(nodes),
	}, nil
}

// GetDependencies traverses the dependency graph from a given file.
func (s *SceneService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Path == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("path is required")
	}

	direction := graph.DirectionDownstream
	if strings.EqualFold(input.Direction, "upstream") {
		direction = graph.DirectionUpstream
	}

	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 5
	}

	var chains []graph.DependencyChain
	err := s.withStore(func(store graph.Store) error {
		var err error
		chains, err = store.GetDependencies(ctx, input.Path, direction, maxDepth)
		return err
	})
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}

	return nil, GetDependenciesOutput{Chains: chains}, nil
}

// AssessImpact computes the blast radius of modifying a set of files.
func (s *SceneService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles is required")
	}

	var impact *graph.ImpactResult
	err := s.withStore(func(store graph.Store) error {
		var err error
		impact, err = store.AssessImpact(ctx, input.ChangedFiles)
		return err
	})
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}

	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// GetClusters returns all file clusters in the index.
func (s *SceneService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	var clusters []graph.ClusterNode
	err := s.withStore(func(store graph.Store) error {
		var err error
		clusters, err = store.GetClusters(ctx)
		return err
	})
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}

	return nil, GetClustersOutput{Clusters: clusters}, nil
}
