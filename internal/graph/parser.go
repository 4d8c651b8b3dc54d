package graph

import (
	"context"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// SceneLoader parses a scene or resource file by virtual path, resolving its
// external resources.
// Implementations: *tscn.Loader (production), stub loaders (testing).
type SceneLoader interface {
	Load(ctx context.Context, virtualPath string) (*tscn.Scene, error)
}

// Compile-time check that the tscn loader satisfies SceneLoader.
var _ SceneLoader = (*tscn.Loader)(nil)
