package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/queue"
	"golang.org/x/sync/errgroup"
)

// Strategy selects how playback is unlocked.
type Strategy string

const (
	// StrategyNone speaks right away.
	StrategyNone Strategy = "none"

	// StrategyPrime plays a near-silent word on first use and speaks once it
	// has ended.
	StrategyPrime Strategy = "prime"

	// StrategyQueue holds requests until a gesture and then replays them.
	StrategyQueue Strategy = "queue"

	// StrategyPreload synthesizes the deck into the audio cache at start.
	StrategyPreload Strategy = "preload"

	// StrategyGesture refuses to speak before a gesture.
	StrategyGesture Strategy = "gesture"
)

// Strategies lists every strategy.
var Strategies = []Strategy{StrategyNone, StrategyPrime, StrategyQueue, StrategyPreload, StrategyGesture}

// ParseStrategy returns the named strategy. An empty name is StrategyPrime.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StrategyPrime, nil
	}
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w %q (use none, prime, queue, preload or gesture)", ErrUnknownStrategy, name)
}

// Priming utterance.
const (
	PrimeText   = "pronto"
	PrimeVolume = 0.01
)

// Badge texts.
const (
	BadgeReady  = "Audio prêt"
	BadgeLocked = "Activer l'audio : touche Entrée / 1er clic"
)

var (
	// ErrLocked is returned by Speak before a gesture unlocked audio.
	ErrLocked = errors.New("audio is locked until a key press or click")

	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("unknown audio strategy")
)

// Status is the audio badge state.
type Status struct {
	Ready bool
	Label string
}

// Warn reports whether the badge is shown as a warning.
func (s Status) Warn() bool {
	return !s.Ready
}

func statusOf(ready bool) Status {
	if ready {
		return Status{Ready: true, Label: BadgeReady}
	}
	return Status{Label: BadgeLocked}
}

// Recorder counts spoken phrases.
type Recorder interface {
	Inc(n int) (int, error)
}

// Option configures a Speaker.
type Option func(*Speaker)

// WithStrategy sets the unlock strategy.
func WithStrategy(s Strategy) Option {
	return func(sp *Speaker) { sp.strategy = s }
}

// WithRecorder sets the revision counter.
func WithRecorder(r Recorder) Option {
	return func(sp *Speaker) { sp.recorder = r }
}

// WithStatus sets a callback run whenever the badge changes.
func WithStatus(fn func(Status)) Option {
	return func(sp *Speaker) { sp.onStatus = fn }
}

// WithRate sets the speaking rate.
func WithRate(rate float64) Option {
	return func(sp *Speaker) {
		if rate > 0 {
			sp.rate = rate
		}
	}
}

// WithQueueSize bounds the requests held by StrategyQueue.
func WithQueueSize(n int) Option {
	return func(sp *Speaker) { sp.queueSize = n }
}

// WithPreloadLimit bounds concurrent synthesis under StrategyPreload.
func WithPreloadLimit(n int) Option {
	return func(sp *Speaker) {
		if n > 0 {
			sp.preloadLimit = n
		}
	}
}

// Speaker speaks phrases through a Backend.
type Speaker struct {
	backend      Backend
	strategy     Strategy
	recorder     Recorder
	onStatus     func(Status)
	rate         float64
	queueSize    int
	preloadLimit int

	pending *queue.Queue[string]

	mu       sync.Mutex
	voice    *Voice
	ready    bool
	gestured bool
	priming  chan struct{}
	cancel   context.CancelFunc
	seq      uint64

	// speaking serializes backend utterances so a cancelled one has stopped
	// before the next starts.
	speaking sync.Mutex

	preloadDone   chan struct{}
	preloadCancel context.CancelFunc
	preloadErr    error
}

// NewSpeaker returns a speaker using StrategyPrime unless configured otherwise.
func NewSpeaker(backend Backend, opts ...Option) *Speaker {
	s := &Speaker{
		backend:      backend,
		strategy:     StrategyPrime,
		rate:         DefaultRate,
		preloadLimit: 2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.strategy == StrategyQueue {
		s.pending = queue.New[string](s.queueSize)
	}
	return s
}

// Strategy returns the unlock strategy.
func (s *Speaker) Strategy() Strategy {
	return s.strategy
}

// Start picks a voice and reports the initial badge. Under StrategyPreload
// the texts are synthesized in the background; see WaitPreload.
func (s *Speaker) Start(ctx context.Context, texts []string) {
	s.RefreshVoices()

	switch s.strategy {
	case StrategyNone:
		s.setReady()
	case StrategyPreload:
		s.setReady()
		s.preload(ctx, texts)
	default:
		s.notify(statusOf(false))
	}
}

// RefreshVoices picks the voice again, for backends whose voice list
// changes after start.
func (s *Speaker) RefreshVoices() {
	v := PickVoice(s.backend.Voices())

	s.mu.Lock()
	s.voice = v
	s.mu.Unlock()

	if v != nil {
		log.Debug("voice selected", "id", v.ID, "name", v.Name, "lang", v.Lang)
	} else {
		log.Debug("no voice available", "lang", FallbackLang)
	}
}

// Voice returns the picked voice, or nil.
func (s *Speaker) Voice() *Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// Ready reports whether audio is unlocked.
func (s *Speaker) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Status returns the current badge.
func (s *Speaker) Status() Status {
	return statusOf(s.Ready())
}

// Pending returns the number of requests waiting for a gesture.
func (s *Speaker) Pending() int {
	if s.pending == nil {
		return 0
	}
	return s.pending.Len()
}

func (s *Speaker) setReady() {
	s.mu.Lock()
	was := s.ready
	s.ready = true
	s.mu.Unlock()

	if !was {
		log.Debug("audio ready", "strategy", s.strategy)
		s.notify(statusOf(true))
	}
}

func (s *Speaker) notify(st Status) {
	if s.onStatus != nil {
		s.onStatus(st)
	}
}

func (s *Speaker) utterance(text string) Utterance {
	s.mu.Lock()
	v := s.voice
	s.mu.Unlock()
	return Utterance{
		Text:   text,
		Lang:   LangOf(v),
		Voice:  v,
		Rate:   s.rate,
		Pitch:  DefaultPitch,
		Volume: DefaultVolume,
	}
}

// Speak speaks text. Blank text is ignored. A new request cancels the one
// in flight. Every accepted request counts one revision, including those
// queued for later.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	switch s.strategy {
	case StrategyGesture:
		if !s.Ready() {
			return ErrLocked
		}
	case StrategyQueue:
		if !s.Ready() {
			if old, dropped, err := s.pending.Push(text); err != nil {
				return err
			} else if dropped {
				log.Debug("dropped queued phrase", "text", old)
			}
			s.record()
			return nil
		}
	case StrategyPrime:
		if !s.Ready() {
			if err := s.prime(ctx); err != nil {
				log.Warn("audio priming failed", "err", err)
			}
		}
	}

	s.record()
	_, err := s.speakNow(ctx, text)
	return err
}

func (s *Speaker) record() {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Inc(1); err != nil {
		log.Warn("failed to record revision", "err", err)
	}
}

// speakNow cancels the utterance in flight and speaks text. superseded is
// set when a newer request cancelled this one.
func (s *Speaker) speakNow(parent context.Context, text string) (superseded bool, err error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.seq == seq {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	s.speaking.Lock()
	defer s.speaking.Unlock()

	if ctx.Err() == nil {
		err = s.backend.Speak(ctx, s.utterance(text))
	} else {
		err = ctx.Err()
	}
	if err != nil && ctx.Err() != nil && parent.Err() == nil {
		return true, nil
	}
	if err != nil {
		log.Warn("speech failed", "text", text, "err", err)
	}
	return false, err
}

// prime plays the priming word once and marks audio ready when it ends.
// Concurrent callers wait for the same attempt.
func (s *Speaker) prime(ctx context.Context) error {
	s.mu.Lock()
	if s.ready {
		s.mu.Unlock()
		return nil
	}
	if wait := s.priming; wait != nil {
		s.mu.Unlock()
		select {
		case <-wait:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	s.priming = done
	s.mu.Unlock()

	s.RefreshVoices()
	u := s.utterance(PrimeText)
	u.Volume = PrimeVolume

	s.speaking.Lock()
	err := s.backend.Speak(ctx, u)
	s.speaking.Unlock()

	s.mu.Lock()
	s.priming = nil
	s.mu.Unlock()
	close(done)

	if err != nil {
		return err
	}
	s.setReady()
	return nil
}

// Gesture unlocks audio in response to the first Enter or Space key press
// or mouse click. Later calls do nothing once an unlock succeeded; a failed
// prime leaves the next gesture free to try again.
func (s *Speaker) Gesture(ctx context.Context) error {
	s.mu.Lock()
	if s.gestured {
		s.mu.Unlock()
		return nil
	}
	s.gestured = true
	s.mu.Unlock()

	switch s.strategy {
	case StrategyPrime, StrategyGesture:
		err := s.prime(ctx)
		if err != nil || !s.Ready() {
			s.mu.Lock()
			s.gestured = false
			s.mu.Unlock()
		}
		return err
	case StrategyQueue:
		s.setReady()
		return s.replay(ctx)
	default:
		return nil
	}
}

// replay speaks the queued requests in order. A newer request stops it.
func (s *Speaker) replay(ctx context.Context) error {
	texts := s.pending.Drain()
	if len(texts) > 0 {
		log.Debug("replaying queued phrases", "count", len(texts))
	}

	var errs []error
	for _, text := range texts {
		superseded, err := s.speakNow(ctx, text)
		if superseded {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// preload synthesizes texts into the backend cache with bounded parallelism.
func (s *Speaker) preload(ctx context.Context, texts []string) {
	s.preloadDone = make(chan struct{})
	p, ok := s.backend.(Prefetcher)
	if !ok {
		close(s.preloadDone)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.preloadCancel = cancel
	s.mu.Unlock()

	go func() {
		defer close(s.preloadDone)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.preloadLimit)

		var (
			mu     sync.Mutex
			failed int
		)
		for _, text := range texts {
			text := strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				err := p.Prefetch(gctx, s.utterance(text))
				switch {
				case err == nil:
				case errors.Is(err, ErrNoCache):
					return err
				case gctx.Err() != nil:
					return gctx.Err()
				default:
					log.Debug("preload failed", "text", text, "err", err)
					mu.Lock()
					failed++
					mu.Unlock()
				}
				return nil
			})
		}

		err := g.Wait()
		if err == nil && failed > 0 {
			err = fmt.Errorf("preload: %d of %d phrases failed", failed, len(texts))
		}
		switch {
		case errors.Is(err, context.Canceled):
			log.Debug("preload stopped")
		case err != nil:
			log.Warn("preload incomplete", "err", err)
		default:
			log.Debug("preload finished", "phrases", len(texts))
		}
		s.preloadErr = err
	}()
}

// WaitPreload waits for the preload started by Start.
func (s *Speaker) WaitPreload(ctx context.Context) error {
	if s.preloadDone == nil {
		return nil
	}
	select {
	case <-s.preloadDone:
		return s.preloadErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the utterance in flight.
func (s *Speaker) Cancel() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.backend.Cancel()
}

// Close cancels speech, drops queued requests and stops a running preload,
// returning once it has let go of the backend.
func (s *Speaker) Close() {
	s.Cancel()
	if s.pending != nil {
		s.pending.Close()
	}

	s.mu.Lock()
	stop := s.preloadCancel
	s.mu.Unlock()
	if stop != nil {
		stop()
		<-s.preloadDone
	}
}
