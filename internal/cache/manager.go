package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/vokabel/internal/ttypes"
)

// Manager coordinates the memory and disk tiers. Reads check memory first
// and promote disk hits; writes go to both tiers.
type Manager struct {
	l1 *MemoryCache
	l2 *DiskCache

	config *Config

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
	closeOnce   sync.Once

	mu    sync.Mutex
	stats ManagerStats
}

// ManagerStats aggregates counters across both tiers.
type ManagerStats struct {
	Hits        int64
	Misses      int64
	L1Hits      int64
	L2Hits      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time

	Memory Stats
	Disk   Stats
}

// HitRate returns hits / (hits + misses).
func (s ManagerStats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

var _ ttypes.AudioCache = (*Manager)(nil)

// NewManager creates a cache manager. A nil config uses DefaultConfig.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.DiskPath == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get cache directory: %w", err)
		}
		config.DiskPath = filepath.Join(dir, "vokabel", "audio")
	}

	l2, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		l1:          NewMemoryCache(config.MemoryCapacity),
		l2:          l2,
		config:      config,
		cleanupStop: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		m.startCleanupRoutine()
	}

	log.Debug("audio cache ready", "dir", config.DiskPath, "items", l2.Stats().ItemCount)
	return m, nil
}

// Get retrieves a value, checking memory then disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.l1.Get(key); ok {
		m.mu.Lock()
		m.stats.L1Hits++
		m.stats.Hits++
		m.mu.Unlock()
		return data, true
	}

	if data, ok := m.l2.Get(key); ok {
		m.mu.Lock()
		m.stats.L2Hits++
		m.stats.Hits++
		m.stats.Promotions++
		m.mu.Unlock()

		// Best effort: large items simply stay on disk.
		_ = m.l1.Put(key, data)
		return data, true
	}

	m.mu.Lock()
	m.stats.Misses++
	m.mu.Unlock()
	return nil, false
}

// Put stores a value in both tiers. Items too large for a tier are skipped
// by that tier.
func (m *Manager) Put(key string, value []byte) error {
	if err := m.l1.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("memory cache: %w", err)
	}
	if err := m.l2.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Delete removes an entry from both tiers.
func (m *Manager) Delete(key string) error {
	return errors.Join(m.l1.Delete(key), m.l2.Delete(key))
}

// Clear removes every entry from both tiers.
func (m *Manager) Clear() error {
	return errors.Join(m.l1.Clear(), m.l2.Clear())
}

// Stats returns aggregated statistics.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()

	stats.Memory = m.l1.Stats()
	stats.Disk = m.l2.Stats()
	return stats
}

// Close stops the cleanup routine and writes the disk index.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		m.cleanupWg.Wait()

		if cerr := m.l2.Close(); cerr != nil {
			err = fmt.Errorf("failed to close disk cache: %w", cerr)
		}
	})
	return err
}

func (m *Manager) startCleanupRoutine() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func() {
		defer m.cleanupWg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.cleanup()
			case <-m.cleanupStop:
				return
			}
		}
	}()
}

// cleanup expires old entries and persists the disk index.
func (m *Manager) cleanup() {
	m.mu.Lock()
	m.stats.CleanupRuns++
	m.stats.LastCleanup = time.Now()
	m.mu.Unlock()

	if m.config.TTL > 0 {
		if n := m.l2.RemoveOlderThan(time.Now().Add(-m.config.TTL)); n > 0 {
			log.Debug("expired disk cache entries", "count", n)
		}
		m.l1.Prune(m.config.TTL)
	}

	if err := m.l2.Flush(); err != nil {
		log.Warn("failed to write cache index", "err", err)
	}
}

// GenerateKey derives a cache key from everything that changes the
// synthesized audio.
func GenerateKey(engine, voice string, u ttypes.Utterance) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%.2f|%.2f", engine, voice, u.Locale, u.Text, u.Rate, u.Pitch)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16])
}
