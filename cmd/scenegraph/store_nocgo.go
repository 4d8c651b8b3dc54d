//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/scenegraph/internal/graph"
)

func openStore(kind, _ string) (graph.Store, error) {
	return nil, fmt.Errorf("%s store requires a cgo build", kind)
}
