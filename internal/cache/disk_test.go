package cache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache failed: %v", err)
	}
	defer dc.Close() //nolint:errcheck

	tests := []struct {
		name  string
		value []byte
	}{
		{"small", []byte("hallo")},
		{"compressible", bytes.Repeat([]byte{0, 1}, 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dc.Put(tt.name, tt.value); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
			got, ok := dc.Get(tt.name)
			if !ok {
				t.Fatal("Get missed")
			}
			if !bytes.Equal(got, tt.value) {
				t.Error("value mismatch after round trip")
			}
		})
	}

	// The compressible value should take less room on disk than in memory.
	if dc.Size() >= int64(len("hallo")+8192) {
		t.Errorf("Size = %d, expected compression", dc.Size())
	}
}

func TestDiskCache_PersistsIndex(t *testing.T) {
	dir := t.TempDir()

	dc, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("key", []byte("value")); err != nil {
		t.Fatal(err)
	}
	if err := dc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewDiskCache(dir, 1<<20, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close() //nolint:errcheck

	got, ok := reopened.Get("key")
	if !ok || string(got) != "value" {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
}

func TestDiskCache_MissingFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("key", []byte("value"))
	if err := os.Remove(filepath.Join(dir, fileNameFor("key"))); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get("key"); ok {
		t.Error("expected miss for deleted file")
	}
	if dc.Contains("key") {
		t.Error("broken entry should be dropped from the index")
	}
}

func TestDiskCache_Eviction(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("a", make([]byte, 60))
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("b", make([]byte, 60))

	if dc.Contains("a") {
		t.Error("a should have been evicted")
	}
	if !dc.Contains("b") {
		t.Error("b should be cached")
	}
	if err := dc.Put("huge", make([]byte, 101)); !errors.Is(err, ErrItemTooLarge) {
		t.Errorf("expected ErrItemTooLarge, got %v", err)
	}
}

func TestDiskCache_RemoveOlderThan(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("old", []byte("1"))
	cutoff := time.Now().Add(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_ = dc.Put("new", []byte("2"))

	if n := dc.RemoveOlderThan(cutoff); n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if dc.Contains("old") || !dc.Contains("new") {
		t.Error("wrong entry removed")
	}
}

func TestDiskCache_Clear(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 1<<20, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close() //nolint:errcheck

	_ = dc.Put("a", []byte("1"))
	if err := dc.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if dc.Size() != 0 || dc.Contains("a") {
		t.Error("cache not empty after Clear")
	}
}
