// Package datadir indexes an extracted ROSE client data directory.
//
// Client files refer to each other with Windows-style paths in arbitrary
// case (3DDATA\NPC\LIST_NPC.CHR). The index maps those virtual paths to the
// files actually on disk.
package datadir

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/Faultbox/midgard-rose/pkg/encoding"
)

// ErrNotFound is returned when a virtual path is not in the index.
var ErrNotFound = errors.New("file not found")

// Entry is one indexed file.
type Entry struct {
	Name string // Normalized virtual path
	Path string // Path on disk
	Size int64
}

// Dir is an indexed data directory.
type Dir struct {
	root    string
	entries map[string]*Entry
}

// Open walks root and indexes every regular file under it.
func Open(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening data directory: %s is not a directory", root)
	}

	d := &Dir{
		root:    root,
		entries: make(map[string]*Entry),
	}

	err = filepath.WalkDir(root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		fi, err := de.Info()
		if err != nil {
			return err
		}
		name := encoding.NormalizePath(filepath.ToSlash(rel))
		d.entries[name] = &Entry{Name: name, Path: p, Size: fi.Size()}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", root, err)
	}

	return d, nil
}

// Root returns the directory the index was built from.
func (d *Dir) Root() string {
	return d.root
}

// Len returns the number of indexed files.
func (d *Dir) Len() int {
	return len(d.entries)
}

// List returns all virtual paths in sorted order.
func (d *Dir) List() []string {
	result := make([]string, 0, len(d.entries))
	for name := range d.entries {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Match returns the sorted virtual paths matching a path.Match pattern.
// The pattern is normalized the same way as paths, so "3DDATA\NPC\*.ZSC"
// works.
func (d *Dir) Match(pattern string) ([]string, error) {
	pattern = encoding.NormalizePath(pattern)
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}

	var result []string
	for name := range d.entries {
		if ok, _ := path.Match(pattern, name); ok {
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result, nil
}

// Stat returns the entry for a virtual path.
func (d *Dir) Stat(name string) (*Entry, bool) {
	e, ok := d.entries[encoding.NormalizePath(name)]
	return e, ok
}

// Contains checks if a file exists.
func (d *Dir) Contains(name string) bool {
	_, ok := d.Stat(name)
	return ok
}

// Read reads a file by virtual path.
func (d *Dir) Read(name string) ([]byte, error) {
	e, ok := d.Stat(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := os.ReadFile(e.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}
