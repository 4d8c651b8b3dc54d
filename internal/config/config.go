package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/scenegraph/internal/tscn"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreKuzu   = "kuzu"
	StoreSQLite = "sqlite"
)

// DefaultPrefix is the virtual path prefix mapped to the project root when no
// mappings are configured.
const DefaultPrefix = "res://"

// Mapping maps a virtual path prefix onto a directory. Relative directories
// are resolved against the project root.
type Mapping struct {
	Prefix string `yaml:"prefix" toml:"prefix"`
	Dir    string `yaml:"dir" toml:"dir"`
}

// ProjectConfig holds project-level settings loaded from scenegraph.yml,
// scenegraph.yaml or scenegraph.toml.
type ProjectConfig struct {
	Mappings    []Mapping `yaml:"mappings,omitempty" toml:"mappings"`
	Extensions  []string  `yaml:"extensions,omitempty" toml:"extensions"`
	MaxDepth    int       `yaml:"maxDepth,omitempty" toml:"maxDepth"`
	Store       string    `yaml:"store,omitempty" toml:"store"`
	StorePath   string    `yaml:"storePath,omitempty" toml:"storePath"`
	Workers     int       `yaml:"workers,omitempty" toml:"workers"`
	ExcludeDirs []string  `yaml:"excludeDirs,omitempty" toml:"excludeDirs"`
}

// Load attempts to read scenegraph.yml, scenegraph.yaml or scenegraph.toml
// from the given directory. Returns a zero-value config (not an error) if no
// config file exists. A config file that exists but cannot be read is an
// error.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"scenegraph.yml", "scenegraph.yaml", "scenegraph.toml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return Parse(name, data)
	}
	return &ProjectConfig{}, nil
}

// LoadFile reads a config file at an explicit path. The format is chosen by
// extension.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes config data; name selects TOML for a ".toml" extension and
// YAML otherwise.
func Parse(name string, data []byte) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &cfg, nil
}

// Validate checks field values that cannot be expressed in the file schema.
func (c *ProjectConfig) Validate() error {
	switch c.Store {
	case "", StoreMemory, StoreKuzu, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	for i, m := range c.Mappings {
		if m.Prefix == "" {
			return fmt.Errorf("mapping %d: empty prefix", i)
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// PathMap builds the resolver mapping table. Without configured mappings,
// DefaultPrefix maps to root.
func (c *ProjectConfig) PathMap(root string) tscn.PathMap {
	mappings := c.mappings()
	paths := make(tscn.PathMap, 0, len(mappings))
	for _, m := range mappings {
		paths = append(paths, tscn.Mapping{Prefix: m.Prefix, Root: os.DirFS(m.dir(root))})
	}
	return paths
}

// VirtualPath maps a file system path to a virtual path through the first
// mapping whose directory contains it.
func (c *ProjectConfig) VirtualPath(root, file string) (string, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	for _, m := range c.mappings() {
		dir, err := filepath.Abs(m.dir(root))
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return m.Prefix + filepath.ToSlash(rel), true
	}
	return "", false
}

func (c *ProjectConfig) mappings() []Mapping {
	if len(c.Mappings) == 0 {
		return []Mapping{{Prefix: DefaultPrefix, Dir: "."}}
	}
	return c.Mappings
}

func (m Mapping) dir(root string) string {
	if filepath.IsAbs(m.Dir) {
		return m.Dir
	}
	return filepath.Join(root, m.Dir)
}

// LoaderOptions translates loader settings into tscn options.
func (c *ProjectConfig) LoaderOptions() []tscn.Option {
	var opts []tscn.Option
	if len(c.Extensions) > 0 {
		opts = append(opts, tscn.WithExtensions(c.Extensions...))
	}
	if c.MaxDepth > 0 {
		opts = append(opts, tscn.WithMaxDepth(c.MaxDepth))
	}
	return opts
}

// Loader returns a scene loader resolving through PathMap(root) with the
// configured options followed by opts.
func (c *ProjectConfig) Loader(root string, opts ...tscn.Option) *tscn.Loader {
	return tscn.NewLoader(c.PathMap(root), append(c.LoaderOptions(), opts...)...)
}

// Excluded reports whether a directory name is skipped when scanning a
// project. Hidden directories are always skipped.
func (c *ProjectConfig) Excluded(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." {
		return true
	}
	for _, d := range c.ExcludeDirs {
		if d == name {
			return true
		}
	}
	return false
}
