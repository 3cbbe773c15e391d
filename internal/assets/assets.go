// Package assets loads and decodes ROSE client files from one or more
// extracted data directories.
package assets

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-rose/pkg/datadir"
	"github.com/Faultbox/midgard-rose/pkg/formats"
)

// ErrNotFound is returned when no data directory holds the requested file.
var ErrNotFound = datadir.ErrNotFound

// Manager reads files from data directories and hands them to the decoders.
type Manager struct {
	roots []*datadir.Dir
	cache *Cache
	log   *zap.Logger
	mu    sync.RWMutex
}

// NewManager creates a new asset manager. A nil logger discards output.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		cache: NewCache(),
		log:   log,
	}
}

// AddRoot indexes a data directory and adds it to the search list.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(path string) error {
	dir, err := datadir.Open(path)
	if err != nil {
		return fmt.Errorf("adding root %s: %w", path, err)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	m.log.Debug("indexed data directory", zap.String("root", path), zap.Int("files", dir.Len()))
	return nil
}

// Roots returns the number of data directories.
func (m *Manager) Roots() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.roots)
}

// Load returns the raw bytes of a file and keeps them in the cache.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}
	data, err := m.read(path)
	if err != nil {
		return nil, err
	}
	m.cache.Set(path, data)
	return data, nil
}

// read returns the bytes of path from the highest-priority root holding it,
// bypassing the cache.
func (m *Manager) read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		if !m.roots[i].Contains(path) {
			continue
		}
		return m.roots[i].Read(path)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// List returns the union of all virtual paths in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, dir := range m.roots {
		for _, name := range dir.List() {
			seen[name] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Match returns the union of virtual paths matching pattern.
func (m *Manager) Match(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, dir := range m.roots {
		names, err := dir.Match(pattern)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(set map[string]struct{}) []string {
	result := make([]string, 0, len(set))
	for name := range set {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Decode loads path and decodes it according to its extension.
func (m *Manager) Decode(path string) (any, error) {
	return m.decode(path, m.Load)
}

func (m *Manager) decode(path string, fetch func(string) ([]byte, error)) (any, error) {
	kind := formats.KindFromPath(path)
	if kind == formats.KindUnknown {
		return nil, fmt.Errorf("%s: unrecognized file type", path)
	}
	data, err := fetch(path)
	if err != nil {
		return nil, err
	}
	model, err := formats.Decode(kind, data)
	if err != nil {
		m.logDecodeError(path, kind, err)
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return model, nil
}

func (m *Manager) logDecodeError(path string, kind formats.Kind, err error) {
	fields := []zap.Field{
		zap.String("path", path),
		zap.Stringer("kind", kind),
		zap.Error(err),
	}
	var de *formats.DecodeError
	if errors.As(err, &de) {
		fields = append(fields, zap.Int("offset", de.Offset))
	}
	m.log.Warn("decode failed", fields...)
}

func load[T any](m *Manager, path string, parse func([]byte) (*T, error)) (*T, error) {
	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}
	v, err := parse(data)
	if err != nil {
		m.logDecodeError(path, formats.KindFromPath(path), err)
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return v, nil
}

// LoadZMD loads a skeleton.
func (m *Manager) LoadZMD(path string) (*formats.Skeleton, error) {
	return load(m, path, formats.ParseZMD)
}

// LoadZMS loads a mesh.
func (m *Manager) LoadZMS(path string) (*formats.Mesh, error) {
	return load(m, path, formats.ParseZMS)
}

// LoadZMO loads an animation clip.
func (m *Manager) LoadZMO(path string) (*formats.AnimationClip, error) {
	return load(m, path, formats.ParseZMO)
}

// LoadZSC loads a scene catalog.
func (m *Manager) LoadZSC(path string) (*formats.SceneCatalog, error) {
	return load(m, path, formats.ParseZSC)
}

// LoadCHR loads a character table.
func (m *Manager) LoadCHR(path string) (*formats.CharacterTable, error) {
	return load(m, path, formats.ParseCHR)
}

// LoadHIM loads a heightmap.
func (m *Manager) LoadHIM(path string) (*formats.Heightmap, error) {
	return load(m, path, formats.ParseHIM)
}

// LoadIFO loads a map instance.
func (m *Manager) LoadIFO(path string) (*formats.MapInstance, error) {
	return load(m, path, formats.ParseIFO)
}

// LoadTIL loads a tile grid.
func (m *Manager) LoadTIL(path string) (*formats.TileGrid, error) {
	return load(m, path, formats.ParseTIL)
}

// CacheStats returns byte cache hits and misses.
func (m *Manager) CacheStats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all roots and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}
