package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/ttypes"
	gap "github.com/muesli/go-app-paths"
)

// Config controls the two cache levels.
type Config struct {
	MemoryCapacity   int64  // bytes
	DiskCapacity     int64  // bytes
	DiskPath         string // empty means the user cache directory
	CompressionLevel int    // zstd level, 0 disables compression
	TTL              time.Duration
	CleanupInterval  time.Duration
}

// DefaultConfig returns sizes suited to a few thousand short phrases.
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity:   32 << 20,
		DiskCapacity:     100 << 20,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Manager chains the memory and disk caches. It satisfies ttypes.AudioCache.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache
	config *Config

	stop chan struct{}
	wg   sync.WaitGroup

	mu    sync.Mutex
	stats struct {
		memoryHits int64
		diskHits   int64
		misses     int64
	}
}

var _ ttypes.AudioCache = (*Manager)(nil)

// NewManager builds both levels. A nil config means DefaultConfig.
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DiskPath == "" {
		dir, err := gap.NewScope(gap.User, "frasi").CacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to locate cache directory: %w", err)
		}
		config.DiskPath = filepath.Join(dir, "audio")
	}

	disk, err := NewDiskCache(config.DiskPath, config.DiskCapacity, config.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		memory: NewMemoryCache(config.MemoryCapacity),
		disk:   disk,
		config: config,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 && config.TTL > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return m, nil
}

// Get checks memory, then disk. Disk hits are promoted to memory.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.count(LevelMemory, true)
		return data, true
	}
	if data, ok := m.disk.Get(key); ok {
		m.count(LevelDisk, true)
		_ = m.memory.Put(key, data)
		return data, true
	}
	m.count(LevelMemory, false)
	return nil, false
}

// Put stores the clip in both levels. Clips too large for one level are kept
// in the other.
func (m *Manager) Put(key string, audio []byte) error {
	memErr := m.memory.Put(key, audio)
	diskErr := m.disk.Put(key, audio)
	if memErr != nil && diskErr != nil {
		return errors.Join(memErr, diskErr)
	}
	return nil
}

// Delete removes the clip from both levels.
func (m *Manager) Delete(key string) error {
	return errors.Join(m.memory.Delete(key), m.disk.Delete(key))
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	return errors.Join(m.memory.Clear(), m.disk.Clear())
}

// Size returns the bytes held on disk, the larger of the two levels.
func (m *Manager) Size() int64 {
	return m.disk.Size()
}

// Stats folds both levels into the shared stats shape.
func (m *Manager) Stats() ttypes.CacheStats {
	m.mu.Lock()
	hits := m.stats.memoryHits + m.stats.diskHits
	misses := m.stats.misses
	m.mu.Unlock()

	mem, disk := m.memory.Stats(), m.disk.Stats()
	return ttypes.CacheStats{
		Hits:      hits,
		Misses:    misses,
		Evictions: mem.Evictions + disk.Evictions,
		Size:      disk.Size,
		Capacity:  disk.Capacity,
	}
}

// LevelStats returns the per level counters.
func (m *Manager) LevelStats() (memory, disk Stats) {
	return m.memory.Stats(), m.disk.Stats()
}

// Close stops the cleanup loop and persists the disk index.
func (m *Manager) Close() error {
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
	m.wg.Wait()
	return m.disk.Close()
}

func (m *Manager) count(level Level, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !hit:
		m.stats.misses++
	case level == LevelMemory:
		m.stats.memoryHits++
	default:
		m.stats.diskHits++
	}
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			disk := m.disk.RemoveOlderThan(time.Now().Add(-m.config.TTL))
			mem := m.memory.Prune(m.config.TTL)
			if disk+mem > 0 {
				log.Debug("expired audio clips removed", "disk", disk, "memory", mem)
			}
		case <-m.stop:
			return
		}
	}
}

// GenerateCacheKey derives the cache key of a phrase rendered with a given
// voice and rate. Surrounding whitespace of the text does not change the key.
func GenerateCacheKey(text, voice string, rate float64) string {
	data := fmt.Sprintf("%s|%s|%.2f", strings.TrimSpace(text), voice, rate)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:16])
}
