package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// ComputeClusters finds connected components in the file-to-file graph
// (DEPENDS_ON edges only) and stores them as ClusterNodes.
//
// Algorithm:
//  1. Build an undirected adjacency list from DEPENDS_ON edges among the given files.
//  2. Find connected components via BFS.
//  3. For each component with >= 2 files, compute a cohesion score and store the cluster.
//
// Clusters are named after their members' longest common directory; a
// repeated name gets a numeric suffix.
func ComputeClusters(ctx context.Context, store Store, files []FileNode) ([]ClusterNode, error) {
	adj, err := buildAdjacency(ctx, store, files)
	if err != nil {
		return nil, err
	}
	names := make(map[string]int)

	// BFS to find connected components.
	visited := make(map[string]bool, len(files))
	var clusters []ClusterNode

	for _, f := range files {
		if visited[f.Path] {
			continue
		}
		component := bfsComponent(f.Path, adj, visited)
		if len(component) < 2 {
			continue
		}
		slices.Sort(component)
		cohesion := computeCohesion(component, adj)
		name := clusterName(component, names)
		cluster := ClusterNode{
			Name:          name,
			CohesionScore: cohesion,
			Members:       component,
		}
		if err := store.AddCluster(ctx, cluster); err != nil {
			return nil, err
		}
		// Add BELONGS edges for each member.
		for _, member := range component {
			edge := Edge{
				SourceID: member,
				TargetID: name,
				Kind:     EdgeKindBelongs,
			}
			if err := store.AddEdge(ctx, edge); err != nil {
				return nil, err
			}
		}
		clusters = append(clusters, cluster)
	}

	return clusters, nil
}

// clusterName derives a unique cluster name from the members' common prefix.
func clusterName(members []string, seen map[string]int) string {
	base := longestCommonPrefix(members)
	if base == "" {
		base = members[0]
	}
	seen[base]++
	if n := seen[base]; n > 1 {
		return fmt.Sprintf("%s#%d", base, n)
	}
	return base
}

// buildAdjacency constructs a bidirectional adjacency list from DEPENDS_ON
// edges using a single pass over all edges.
func buildAdjacency(ctx context.Context, store Store, files []FileNode) (map[string]map[string]bool, error) {
	adj := make(map[string]map[string]bool, len(files))
	for _, f := range files {
		adj[f.Path] = make(map[string]bool)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("get edges: %w", err)
	}
	for _, e := range edges {
		if e.Kind != EdgeKindDependsOn {
			continue
		}
		// Only include edges between known files.
		if adj[e.SourceID] != nil && adj[e.TargetID] != nil {
			adj[e.SourceID][e.TargetID] = true
			adj[e.TargetID][e.SourceID] = true
		}
	}

	return adj, nil
}

// bfsComponent performs BFS from start on the adjacency list and returns
// all reachable nodes. It marks visited nodes as it goes.
func bfsComponent(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var component []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		component = append(component, node)
		for neighbor := range adj[node] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}

	return component
}

// computeCohesion returns the edge density of a component: internal edges
// divided by the number of member pairs. A chain scores low, a fully
// cross-referenced group scores 1.
func computeCohesion(component []string, adj map[string]map[string]bool) float64 {
	n := len(component)
	if n < 2 {
		return 0
	}
	memberSet := make(map[string]bool, n)
	for _, m := range component {
		memberSet[m] = true
	}

	// Count each undirected edge once (when m < neighbor).
	internal := 0
	for _, m := range component {
		for neighbor := range adj[m] {
			if memberSet[neighbor] && m < neighbor {
				internal++
			}
		}
	}
	return float64(internal) / float64(n*(n-1)/2)
}

// longestCommonPrefix finds the longest common path prefix among a set of
// file paths. Returns an empty string if no common prefix is found.
func longestCommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return paths[0]
	}

	prefix := paths[0]
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			// Trim to the last path separator (excluding any trailing slash).
			trimmed := strings.TrimRight(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1] // keep the trailing slash
			if prefix == "/" || prefix == "" {
				return prefix
			}
		}
	}

	// Ensure prefix ends at a directory boundary.
	if !strings.HasSuffix(prefix, "/") {
		idx := strings.LastIndex(prefix, "/")
		if idx >= 0 {
			prefix = prefix[:idx+1]
		}
	}

	return prefix
}
