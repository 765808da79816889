package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// backends returns, per persistent backend, a setup that picks a fresh path
// and returns an opener for it. Calling the opener again reopens the same
// path, as a new process would.
func backends() map[string]func(t *testing.T) func() Store {
	return map[string]func(t *testing.T) func() Store{
		"file": func(t *testing.T) func() Store {
			path := filepath.Join(t.TempDir(), "storage.json")
			return func() Store {
				s, err := Open(DriverFile, path)
				if err != nil {
					t.Fatalf("Open failed: %v", err)
				}
				return s
			}
		},
		"sqlite": func(t *testing.T) func() Store {
			path := filepath.Join(t.TempDir(), "storage.db")
			return func() Store {
				s, err := Open(DriverSQLite, path)
				if err != nil {
					t.Fatalf("Open failed: %v", err)
				}
				return s
			}
		},
	}
}

func TestStore_RoundTripSurvivesReopen(t *testing.T) {
	for name, setup := range backends() {
		t.Run(name, func(t *testing.T) {
			open := setup(t)
			s := open()

			if _, ok, err := s.Get("it-theme"); err != nil || ok {
				t.Fatalf("Get on empty store = %v, %v", ok, err)
			}
			for k, v := range map[string]string{"it-theme": "light", "it-show-fr": "0", "it-rev-total": "3"} {
				if err := s.Set(k, v); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
			if err := s.Set("it-rev-total", "5"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Delete("it-show-fr"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			s = open()
			defer s.Close()

			if v, ok, err := s.Get("it-rev-total"); err != nil || !ok || v != "5" {
				t.Errorf("Get(it-rev-total) = %q, %v, %v", v, ok, err)
			}
			if _, ok, _ := s.Get("it-show-fr"); ok {
				t.Error("Deleted key should stay deleted")
			}
			keys, err := s.Keys()
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if want := []string{"it-rev-total", "it-theme"}; !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys = %v, want %v", keys, want)
			}
		})
	}
}

func TestStore_ClosedErrors(t *testing.T) {
	stores := map[string]Store{"memory": NewMemory()}
	for name, setup := range backends() {
		stores[name] = setup(t)()
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_ = s.Close()
			if _, _, err := s.Get("k"); !errors.Is(err, ErrClosed) {
				t.Errorf("Get after Close = %v", err)
			}
			if err := s.Set("k", "v"); !errors.Is(err, ErrClosed) {
				t.Errorf("Set after Close = %v", err)
			}
			if _, err := s.Keys(); !errors.Is(err, ErrClosed) {
				t.Errorf("Keys after Close = %v", err)
			}
		})
	}
}

func TestOpen_Drivers(t *testing.T) {
	s, err := Open("memory", "")
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Expected *Memory, got %T", s)
	}

	if _, err := Open("redis", "x"); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
	if _, err := Open(DriverFile, ""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestKeysWithPrefix(t *testing.T) {
	s := NewMemory()
	_ = s.Set("it-rev-total", "1")
	_ = s.Set("it-rev-home", "1")
	_ = s.Set("it-theme", "dark")

	keys, err := KeysWithPrefix(s, "it-rev-")
	if err != nil {
		t.Fatalf("KeysWithPrefix failed: %v", err)
	}
	if want := []string{"it-rev-home", "it-rev-total"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("KeysWithPrefix = %v, want %v", keys, want)
	}
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenFile(path); err == nil {
		t.Error("Expected error for corrupt storage file")
	}
}

func TestFile_SharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	a, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	b, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	if err := a.Set("it-rev-total", "7"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _, _ := b.Get("it-rev-total"); v != "7" {
		t.Errorf("Second handle should see the write, got %q", v)
	}
}

func TestFile_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	watched, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	other, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watched.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	n := 0
	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-tick.C:
			n++
			_ = other.Set("it-rev-total", string(rune('0'+n%10)))
		case <-deadline:
			t.Fatal("Watch did not report the change")
		}
	}
}
