package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-rose/pkg/formats"
)

func createTestTIL(width, height uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, width)
	binary.Write(&buf, binary.LittleEndian, height)
	for i := uint32(0); i < width*height; i++ {
		buf.Write([]byte{1, 2, 3})
		binary.Write(&buf, binary.LittleEndian, i)
	}
	return buf.Bytes()
}

func createTestHIM(size uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, size)
	binary.Write(&buf, binary.LittleEndian, size)
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	binary.Write(&buf, binary.LittleEndian, float32(250))
	for i := uint32(0); i < size*size; i++ {
		binary.Write(&buf, binary.LittleEndian, float32(i%7))
	}
	return buf.Bytes()
}

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, content, 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testZone(t *testing.T) *Manager {
	t.Helper()
	root := writeFiles(t, map[string][]byte{
		"MAPS/JDT01/31_30.TIL": createTestTIL(2, 2),
		"MAPS/JDT01/31_30.HIM": createTestHIM(65),
		"MAPS/JDT01/32_30.HIM": createTestHIM(64), // wrong size
		"MAPS/JDT01/notes.txt": []byte("x"),
	})
	m := NewManager(nil)
	if err := m.AddRoot(root); err != nil {
		t.Fatalf("AddRoot failed: %v", err)
	}
	return m
}

func TestManager_LoadPriority(t *testing.T) {
	base := writeFiles(t, map[string][]byte{
		"a.til": createTestTIL(1, 1),
		"b.til": createTestTIL(1, 1),
	})
	patch := writeFiles(t, map[string][]byte{
		"A.TIL": createTestTIL(3, 1),
	})

	m := NewManager(nil)
	if err := m.AddRoot(base); err != nil {
		t.Fatal(err)
	}
	if err := m.AddRoot(patch); err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	grid, err := m.LoadTIL("a.til")
	if err != nil {
		t.Fatalf("LoadTIL failed: %v", err)
	}
	if grid.Width != 3 {
		t.Errorf("expected the later root to win, got width %d", grid.Width)
	}
	if _, err := m.LoadTIL("B.TIL"); err != nil {
		t.Errorf("fallback to earlier root failed: %v", err)
	}

	if _, err := m.Load("c.til"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if got := m.List(); len(got) != 2 {
		t.Errorf("List() = %v, want the union of 2 files", got)
	}
}

func TestManager_Cache(t *testing.T) {
	m := testZone(t)

	if _, err := m.Load("maps/jdt01/31_30.til"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Load(`MAPS\JDT01\31_30.TIL`); err != nil {
		t.Fatal(err)
	}
	hits, misses := m.CacheStats()
	if hits != 1 || misses != 1 {
		t.Errorf("cache stats = %d hits, %d misses", hits, misses)
	}
}

func TestManager_Decode(t *testing.T) {
	m := testZone(t)

	model, err := m.Decode("maps/jdt01/31_30.him")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if _, ok := model.(*formats.Heightmap); !ok {
		t.Errorf("expected *Heightmap, got %T", model)
	}

	_, err = m.LoadHIM("maps/jdt01/32_30.him")
	if !errors.Is(err, formats.ErrInconsistentCount) {
		t.Errorf("expected ErrInconsistentCount, got %v", err)
	}

	if _, err := m.Decode("maps/jdt01/notes.txt"); err == nil {
		t.Error("expected error for unrecognized extension")
	}
}

func TestManager_DecodeAll(t *testing.T) {
	m := testZone(t)

	paths, err := m.Match("maps/jdt01/*")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 4 {
		t.Fatalf("Match returned %v", paths)
	}

	report := m.DecodeAll(context.Background(), paths, BatchOptions{Workers: 3})

	if len(report.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(report.Results))
	}
	for i, r := range report.Results {
		if r.Path != paths[i] {
			t.Errorf("result %d is for %s, want %s", i, r.Path, paths[i])
		}
	}
	if report.Decoded[formats.KindHIM] != 1 || report.Decoded[formats.KindTIL] != 1 {
		t.Errorf("decoded = %v", report.Decoded)
	}
	if report.Failed[formats.KindHIM] != 1 {
		t.Errorf("failed = %v", report.Failed)
	}
	if errs := report.Errors(); len(errs) != 1 {
		t.Errorf("expected 1 error, got %v", errs)
	}
	if got := report.Summary(); got != "2 decoded, 1 failed, 1 skipped" {
		t.Errorf("Summary() = %q", got)
	}
	if size := m.cache.Size(); size != 0 {
		t.Errorf("batch left %d bytes in the cache", size)
	}
}

func TestManager_DecodeAllCancelled(t *testing.T) {
	m := testZone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{"maps/jdt01/31_30.til", "maps/jdt01/31_30.him"}
	report := m.DecodeAll(ctx, paths, BatchOptions{Workers: 2})
	for _, r := range report.Results {
		if !r.Skipped {
			t.Errorf("%s should be skipped after cancellation", r.Path)
		}
	}
	if report.Err != nil {
		t.Errorf("unexpected error: %v", report.Err)
	}
}

func TestCache_Size(t *testing.T) {
	c := NewCache()
	c.Set("a", make([]byte, 10))
	c.Set("A", make([]byte, 4)) // same key after normalization
	c.Set("b", make([]byte, 6))
	if c.Size() != 10 {
		t.Errorf("Size() = %d, want 10", c.Size())
	}
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
}
