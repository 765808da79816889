// Package store persists flat string key/value pairs: the settings and
// revision counters. Three backends are provided: a JSON file, SQLite and
// memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value of key and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error

	// Keys returns every key in lexical order.
	Keys() ([]string, error)
	Close() error
}

// Watcher is implemented by stores that can notice changes made by other
// processes.
type Watcher interface {
	// Watch calls fn after every change until ctx is done.
	Watch(ctx context.Context, fn func()) error
}

// Open opens a store. path is ignored by the memory driver.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		return OpenFile(path)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(path)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want file, sqlite or memory)", ErrUnknownDriver, driver)
	}
}

// KeysWithPrefix returns the keys of s that start with prefix.
func KeysWithPrefix(s Store, prefix string) ([]string, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}
