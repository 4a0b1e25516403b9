package cache

import (
	"errors"
	"time"
)

// ErrItemTooLarge is returned when an item exceeds the cache capacity
var ErrItemTooLarge = errors.New("item too large for cache")

// Level represents the cache tier
type Level int

const (
	// LevelMemory is the in-process LRU cache
	LevelMemory Level = iota

	// LevelDisk is the persistent cache
	LevelDisk
)

// String returns the string representation of the cache level
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of items in cache

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config holds configuration for a Manager
type Config struct {
	MemoryCapacity int64 // Bytes

	DiskCapacity     int64  // Bytes
	DiskPath         string // Directory for cache files
	CompressionLevel int    // zstd level (1-22), 0 disables compression

	TTL             time.Duration // Age after which disk entries expire
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultConfig returns default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity:   32 * 1024 * 1024,  // 32MB, a few hundred utterances
		DiskCapacity:     512 * 1024 * 1024, // 512MB
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}
