package graph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// IndexResult summarizes a BuildIndex run.
type IndexResult struct {
	Indexed  []string      `json:"indexed"`
	Failed   []FileError   `json:"failed,omitempty"`
	Clusters []ClusterNode `json:"clusters"`
	Stats    *GraphStats   `json:"stats"`
}

// FileError records a file that could not be parsed.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// BuildIndex loads every path with up to workers parses in flight, ingests
// the results into store in path order and computes dependency clusters.
// A file that fails to parse is reported in IndexResult.Failed and does not
// stop the run; cancellation of ctx does. workers <= 0 uses GOMAXPROCS.
func BuildIndex(ctx context.Context, store Store, loader SceneLoader, paths []string, workers int) (*IndexResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scenes := make([]*tscn.Scene, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			s, err := loader.Load(gctx, p)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			scenes[i], errs[i] = s, err
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &IndexResult{}
	for i, p := range paths {
		if errs[i] != nil {
			log.Printf("index: skip %s: %v", p, errs[i])
			result.Failed = append(result.Failed, FileError{Path: p, Error: errs[i].Error()})
			continue
		}
		if err := Ingest(ctx, store, p, scenes[i]); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", p, err)
		}
		result.Indexed = append(result.Indexed, p)
	}

	files, err := store.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	result.Clusters, err = ComputeClusters(ctx, store, files)
	if err != nil {
		return nil, fmt.Errorf("compute clusters: %w", err)
	}
	result.Stats, err = store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return result, nil
}

// Discover walks fsys and returns the virtual paths (prefix + slash path) of
// files whose extension is in exts, sorted. skipDir is consulted for every
// directory below the root; it may be nil.
func Discover(fsys fs.FS, prefix string, exts []string, skipDir func(name string) bool) ([]string, error) {
	if len(exts) == 0 {
		exts = tscn.DefaultExtensions
	}
	var out []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && skipDir != nil && skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, strings.ToLower(path.Ext(p))) {
			out = append(out, prefix+p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slices.Sort(out)
	return out, nil
}

// DiscoverMapped runs Discover over every mapping of paths and returns the
// distinct virtual paths, sorted.
func DiscoverMapped(paths tscn.PathMap, exts []string, skipDir func(name string) bool) ([]string, error) {
	var out []string
	for _, m := range paths {
		if m.Root == nil {
			continue
		}
		found, err := Discover(m.Root, m.Prefix, exts, skipDir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Prefix, err)
		}
		out = append(out, found...)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}
