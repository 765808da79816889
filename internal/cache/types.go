package cache

import (
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when a clip exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheClosed is returned by a disk cache after Close.
	ErrCacheClosed = errors.New("cache is closed")
)

// Level identifies a cache tier.
type Level int

const (
	// LevelMemory is the in-process LRU.
	LevelMemory Level = iota

	// LevelDisk is the persistent compressed store.
	LevelDisk
)

// String returns the string representation of the cache level.
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

// Stats holds cache counters.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes
	ItemCount int64

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}
