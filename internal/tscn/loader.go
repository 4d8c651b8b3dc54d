package tscn

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"path"
	"slices"
	"strings"
)

// DefaultExtensions are the file extensions of text scenes and resources the
// loader parses when resolving external resources.
var DefaultExtensions = []string{".tscn", ".tres", ".escn"}

// Option configures a Loader.
type Option func(*Loader)

// WithExtensions sets which external files are parsed. Resources with other
// extensions are recorded but left unresolved.
func WithExtensions(exts ...string) Option {
	return func(l *Loader) {
		l.extensions = append([]string(nil), exts...)
	}
}

// WithMaxDepth bounds how deeply external resources are followed. Zero means
// unbounded, in which case a cyclic resource graph recurses without end.
func WithMaxDepth(n int) Option {
	return func(l *Loader) {
		l.maxDepth = n
	}
}

// WithLogger enables debug logging of resolution decisions.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader parses scene text and recursively resolves its external resources
// through a PathMap. A Loader holds only immutable configuration and may be
// shared; every parse builds its own state.
type Loader struct {
	paths      PathMap
	extensions []string
	maxDepth   int
	logger     *log.Logger
}

// NewLoader returns a Loader resolving external resources through paths.
func NewLoader(paths PathMap, opts ...Option) *Loader {
	l := &Loader{
		paths:      slices.Clone(paths),
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse parses scene text without resolving external resources. The
// returned scene's ExtResources are all unresolved.
func Parse(text string) (*Scene, error) {
	return parseText(text)
}

// Parse parses scene text and resolves its external resources.
func (l *Loader) Parse(ctx context.Context, text string) (*Scene, error) {
	return l.parse(ctx, text, 0)
}

// ParseBytes is Parse for raw file contents.
func (l *Loader) ParseBytes(ctx context.Context, src []byte) (*Scene, error) {
	return l.parse(ctx, string(src), 0)
}

// Load resolves virtualPath through the loader's mappings and parses it.
func (l *Loader) Load(ctx context.Context, virtualPath string) (*Scene, error) {
	src, ok := l.paths.Resolve(virtualPath)
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", virtualPath, fs.ErrNotExist)
	}
	return l.loadSource(ctx, src, 0)
}

func (l *Loader) parse(ctx context.Context, text string, depth int) (*Scene, error) {
	scene, err := parseText(text)
	if err != nil {
		return nil, err
	}
	if err := l.resolveAll(ctx, scene, depth); err != nil {
		return nil, err
	}
	return scene, nil
}

// resolveAll loads every recorded external resource in ascending id order.
func (l *Loader) resolveAll(ctx context.Context, scene *Scene, depth int) error {
	ids := make([]int, 0, len(scene.ExtResources))
	for id := range scene.ExtResources {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		res := scene.ExtResources[id]
		if !l.parses(res.Path) {
			l.logf("skip ext_resource %d %s", id, res.Path)
			continue
		}
		src, ok := l.paths.Resolve(res.Path)
		if !ok {
			l.logf("unresolved ext_resource %d %s", id, res.Path)
			continue
		}
		nested, err := l.loadSource(ctx, src, depth+1)
		if err != nil {
			return err
		}
		res.Scene = nested
	}
	return nil
}

func (l *Loader) loadSource(ctx context.Context, src Source, depth int) (*Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.maxDepth > 0 && depth > l.maxDepth {
		return nil, fmt.Errorf("load %s: %w", src.VirtualPath, ErrMaxDepth)
	}

	data, err := src.Read()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.VirtualPath, err)
	}
	l.logf("load %s (depth %d)", src.VirtualPath, depth)

	// Each nested file gets a fresh parse state; only the loader's
	// configuration carries over.
	scene, err := l.parse(ctx, string(data), depth)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.VirtualPath, err)
	}
	return scene, nil
}

func (l *Loader) parses(virtualPath string) bool {
	if len(l.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(virtualPath))
	return slices.Contains(l.extensions, ext)
}

func (l *Loader) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Printf("tscn: "+format, args...)
	}
}
