package engines

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// FallbackEngine wraps a primary engine with automatic fallback to a
// secondary engine once the primary fails maxFailures times in a row.
type FallbackEngine struct {
	primary       ttypes.TTSEngine
	fallback      ttypes.TTSEngine
	failures      int
	maxFailures   int
	usingFallback bool
	mu            sync.Mutex
}

var _ ttypes.TTSEngine = (*FallbackEngine)(nil)

// NewFallbackEngine creates an engine with automatic fallback capability.
func NewFallbackEngine(primary, fallback ttypes.TTSEngine, maxFailures int) *FallbackEngine {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

// Synthesize uses the active engine. Cancellation is not counted as a
// failure. The lock is only held to read and update the failure state, so
// concurrent calls and GetInfo do not wait on a slow synthesis.
func (f *FallbackEngine) Synthesize(ctx context.Context, text string, rate float64) ([]byte, error) {
	if f.UsingFallback() {
		return f.fallback.Synthesize(ctx, text, rate)
	}

	audio, err := f.primary.Synthesize(ctx, text, rate)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("primary engine recovered", "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return audio, nil
	}
	if ctx.Err() != nil || errors.Is(err, ErrEmptyText) {
		return nil, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switched := false
	if failures >= f.maxFailures && !f.usingFallback {
		f.usingFallback = true
		switched = true
	}
	fellBack := f.usingFallback
	f.mu.Unlock()

	log.Warn("primary engine failed", "attempt", failures, "max", f.maxFailures, "err", err)
	if !fellBack {
		return nil, err
	}
	if switched {
		log.Warn("switching to fallback engine", "engine", f.fallback.GetInfo().Name)
	}

	audio, ferr := f.fallback.Synthesize(ctx, text, rate)
	if ferr != nil {
		return nil, fmt.Errorf("both engines failed: %w", errors.Join(err, ferr))
	}
	return audio, nil
}

// UsingFallback reports whether the secondary engine is active.
func (f *FallbackEngine) UsingFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usingFallback
}

func (f *FallbackEngine) active() ttypes.TTSEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback
	}
	return f.primary
}

// Voices returns the voices of the active engine.
func (f *FallbackEngine) Voices() []ttypes.Voice {
	return f.active().Voices()
}

// GetInfo returns the info of the active engine.
func (f *FallbackEngine) GetInfo() ttypes.EngineInfo {
	return f.active().GetInfo()
}

// Validate succeeds when either engine is usable, switching to the fallback
// if only it is.
func (f *FallbackEngine) Validate() error {
	perr := f.primary.Validate()
	if perr == nil {
		return nil
	}
	ferr := f.fallback.Validate()
	if ferr != nil {
		return fmt.Errorf("no usable engine: %w", errors.Join(perr, ferr))
	}

	f.mu.Lock()
	f.usingFallback = true
	f.mu.Unlock()
	log.Warn("primary engine not available, using fallback", "err", perr)
	return nil
}

// Close closes both engines.
func (f *FallbackEngine) Close() error {
	return errors.Join(f.primary.Close(), f.fallback.Close())
}
