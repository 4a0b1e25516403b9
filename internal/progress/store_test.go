package progress

import (
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveLoadBounds(t *testing.T) {
	const n = 5

	for i := -2; i <= n+1; i++ {
		s := New(NewMemoryBackend())
		s.SetLength(n)

		if err := s.Save(i); err != nil {
			t.Fatalf("Save(%d) failed: %v", i, err)
		}
		got, ok := s.Load()

		inRange := i >= 0 && i < n
		if ok != inRange {
			t.Errorf("Save(%d): Load ok = %v, want %v", i, ok, inRange)
		}
		if inRange && got != i {
			t.Errorf("Save(%d): Load = %d", i, got)
		}
	}
}

func TestStore_OutOfRangeSaveKeepsPrevious(t *testing.T) {
	s := New(NewMemoryBackend())
	s.SetLength(3)

	_ = s.Save(2)
	_ = s.Save(3)
	_ = s.Save(-1)

	if got, ok := s.Load(); !ok || got != 2 {
		t.Errorf("Load = %d, %v; want 2, true", got, ok)
	}
}

func TestStore_StaleProgress(t *testing.T) {
	backend := NewMemoryBackend()

	s := New(backend)
	s.SetLength(10)
	_ = s.Save(7)

	// A shorter list is loaded in a later session.
	s = New(backend)
	s.SetLength(5)
	if _, ok := s.Load(); ok {
		t.Error("index 7 must be absent for a list of 5")
	}

	// Growing the list again makes it valid.
	s.SetLength(8)
	if got, ok := s.Load(); !ok || got != 7 {
		t.Errorf("Load = %d, %v; want 7, true", got, ok)
	}
}

func TestStore_NoLength(t *testing.T) {
	s := New(NewMemoryBackend())
	_ = s.Save(0)
	if _, ok := s.Load(); ok {
		t.Error("Load must report absent before SetLength")
	}
}

func TestStore_Clear(t *testing.T) {
	s := New(NewMemoryBackend())
	s.SetLength(4)
	_ = s.Save(1)

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := s.Load(); ok {
		t.Error("Load must be absent after Clear")
	}

	// Clearing twice is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear failed: %v", err)
	}
}

func TestStore_GarbageValue(t *testing.T) {
	backend := NewMemoryBackend()
	_ = backend.Set(Key, "not a number")

	s := New(backend)
	s.SetLength(10)
	if _, ok := s.Load(); ok {
		t.Error("garbage value must be treated as absent")
	}
}

func TestStore_SavedAt(t *testing.T) {
	backend := NewMemoryBackend()
	stamp := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return stamp }

	s := New(backend)
	s.SetLength(3)

	if _, ok := s.SavedAt(); ok {
		t.Error("SavedAt must be absent before Save")
	}

	_ = s.Save(1)
	got, ok := s.SavedAt()
	if !ok || !got.Equal(stamp) {
		t.Errorf("SavedAt = %v, %v; want %v", got, ok, stamp)
	}
}

func TestSQLiteBackend_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.db")

	backend, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	s := New(backend)
	s.SetLength(20)
	if err := s.Save(12); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(13); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	backend, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer backend.Close() //nolint:errcheck

	s = New(backend)
	s.SetLength(20)
	if got, ok := s.Load(); !ok || got != 13 {
		t.Errorf("Load after reopen = %d, %v; want 13, true", got, ok)
	}
	if at, ok := s.SavedAt(); !ok || time.Since(at) > time.Minute {
		t.Errorf("SavedAt = %v, %v", at, ok)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := backend.Get(Key); err != ErrNotFound {
		t.Errorf("Get after Clear = %v, want ErrNotFound", err)
	}
}
