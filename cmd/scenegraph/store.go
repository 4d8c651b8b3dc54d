package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dusk-indust/scenegraph/internal/config"
	"github.com/dusk-indust/scenegraph/internal/graph"
)

// persisted reports whether the project keeps its index on disk.
func (p *project) persisted() bool {
	return p.cfg.Store == config.StoreKuzu || p.cfg.Store == config.StoreSQLite
}

// storePath returns the on-disk index location, relative paths resolved
// against the project root.
func (p *project) storePath() string {
	path := p.cfg.StorePath
	if path == "" {
		name := "index.kuzu"
		if p.cfg.Store == config.StoreSQLite {
			name = "index.db"
		}
		path = filepath.Join(".scenegraph", name)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.root, path)
	}
	return path
}

// createIndex removes any previous on-disk index and opens an empty one. A
// memory store needs no location.
func (p *project) createIndex(ctx context.Context) (graph.Store, error) {
	if !p.persisted() {
		store := graph.NewMemStore()
		return store, store.InitSchema(ctx)
	}
	path := p.storePath()
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove old index: %w", err)
	}
	return p.open(ctx, path)
}

// openIndex opens the persisted index, or indexes the project into memory
// when no persistent store is configured.
func (p *project) openIndex(ctx context.Context) (graph.Store, error) {
	if !p.persisted() {
		store := graph.NewMemStore()
		if _, err := p.buildIndex(ctx, store); err != nil {
			return nil, err
		}
		return store, nil
	}
	path := p.storePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no index found at %s\nRun 'scenegraph index' first to index the project", path)
	}
	return p.open(ctx, path)
}

func (p *project) open(ctx context.Context, path string) (graph.Store, error) {
	store, err := openStore(p.cfg.Store, path)
	if err != nil {
		return nil, fmt.Errorf("open %s index: %w", p.cfg.Store, err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// buildIndex discovers and indexes every scene and resource of the project.
func (p *project) buildIndex(ctx context.Context, store graph.Store) (*graph.IndexResult, error) {
	paths, err := graph.DiscoverMapped(p.cfg.PathMap(p.root), p.cfg.Extensions, p.cfg.Excluded)
	if err != nil {
		return nil, err
	}
	if p.verbose {
		log.Printf("index: %d files discovered", len(paths))
	}
	return graph.BuildIndex(ctx, store, p.loader(), paths, p.cfg.Workers)
}
