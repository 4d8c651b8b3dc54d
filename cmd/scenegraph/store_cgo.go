//go:build cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/scenegraph/internal/config"
	"github.com/dusk-indust/scenegraph/internal/graph"
)

func openStore(kind, path string) (graph.Store, error) {
	switch kind {
	case config.StoreKuzu:
		return graph.NewKuzuFileStore(path)
	case config.StoreSQLite:
		return graph.NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}
