package status

import (
	"context"
	"fmt"
	"slices"

	"github.com/dusk-indust/scenegraph/internal/graph"
)

// IndexStatus describes how a scene index compares with the files currently
// on disk.
type IndexStatus struct {
	Scenes    int
	Resources int
	External  int // referenced but never parsed
	Nodes     int
	Clusters  int
	Unindexed []string // discovered on disk, missing from the index
	Removed   []string // indexed as scene or resource, no longer discovered
}

// UpToDate reports whether every discovered file is indexed and no indexed
// file has disappeared.
func (s *IndexStatus) UpToDate() bool {
	return len(s.Unindexed) == 0 && len(s.Removed) == 0
}

// GetIndexStatus compares the files in store with the discovered virtual
// paths. External placeholders never count as removed since they were not
// discovered in the first place.
func GetIndexStatus(ctx context.Context, store graph.Store, discovered []string) (*IndexStatus, error) {
	files, err := store.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	st := &IndexStatus{Nodes: stats.NodeCount, Clusters: stats.ClusterCount}
	onDisk := make(map[string]bool, len(discovered))
	for _, p := range discovered {
		onDisk[p] = true
	}
	indexed := make(map[string]bool, len(files))

	for _, f := range files {
		switch f.Kind {
		case graph.FileKindScene:
			st.Scenes++
		case graph.FileKindResource:
			st.Resources++
		default:
			st.External++
			continue
		}
		indexed[f.Path] = true
		if !onDisk[f.Path] {
			st.Removed = append(st.Removed, f.Path)
		}
	}
	for _, p := range discovered {
		if !indexed[p] {
			st.Unindexed = append(st.Unindexed, p)
		}
	}
	slices.Sort(st.Unindexed)
	slices.Sort(st.Removed)
	return st, nil
}
