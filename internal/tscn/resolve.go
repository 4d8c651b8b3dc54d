package tscn

import (
	"io/fs"
	"path"
	"strings"
)

// Mapping maps a virtual path prefix such as "res://" onto a file system.
type Mapping struct {
	Prefix string
	Root   fs.FS
}

// PathMap is an ordered list of mappings. Earlier mappings win.
type PathMap []Mapping

// Source is a resolved location of a virtual path.
type Source struct {
	VirtualPath string
	Root        fs.FS
	Name        string // slash-separated path inside Root
}

// Read returns the full contents of the source.
func (s Source) Read() ([]byte, error) {
	return fs.ReadFile(s.Root, s.Name)
}

// Resolve returns the source of the first mapping whose prefix matches
// virtualPath and under which the remapped file exists.
func (m PathMap) Resolve(virtualPath string) (Source, bool) {
	for _, mp := range m {
		if mp.Root == nil || !strings.HasPrefix(virtualPath, mp.Prefix) {
			continue
		}
		name, ok := remap(strings.TrimPrefix(virtualPath, mp.Prefix))
		if !ok {
			continue
		}
		info, err := fs.Stat(mp.Root, name)
		if err != nil || info.IsDir() {
			continue
		}
		return Source{VirtualPath: virtualPath, Root: mp.Root, Name: name}, true
	}
	return Source{}, false
}

// remap turns the remainder of a virtual path into a name valid for fs.FS.
func remap(rest string) (string, bool) {
	rest = strings.TrimLeft(rest, "/")
	if rest == "" {
		return "", false
	}
	name := path.Clean(rest)
	if !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}
