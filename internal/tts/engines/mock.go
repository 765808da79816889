package engines

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// MockEngine is a deterministic ttypes.TTSEngine for tests. Each rune of
// text yields 10ms of PCM whose bytes are derived from the text, so equal
// inputs give equal clips.
type MockEngine struct {
	Name  string
	Delay time.Duration

	// Err, when set, is returned by Synthesize. ValidateErr by Validate.
	Err         error
	ValidateErr error

	VoiceList []ttypes.Voice

	mu     sync.Mutex
	calls  []string
	closed bool
}

var _ ttypes.TTSEngine = (*MockEngine)(nil)

// NewMockEngine returns a mock with a single Italian voice.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Name:      "mock",
		VoiceList: []ttypes.Voice{{ID: "mock-it", Name: "Mock Italian", Lang: "it-IT"}},
	}
}

// Synthesize records the call and returns a clip for text.
func (m *MockEngine) Synthesize(ctx context.Context, text string, rate float64) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	delay, err := m.Delay, m.Err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	return MockPCM(text), nil
}

// MockPCM returns the clip MockEngine produces for text.
func MockPCM(text string) []byte {
	n := len([]rune(text)) * ttypes.DefaultSampleRate * 2 / 100
	sum := sha256.Sum256([]byte(text))
	pcm := make([]byte, n)
	for i := range pcm {
		pcm[i] = sum[i%len(sum)]
	}
	return pcm
}

// Calls returns the texts passed to Synthesize.
func (m *MockEngine) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// SetErr changes the error returned by Synthesize.
func (m *MockEngine) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

func (m *MockEngine) Voices() []ttypes.Voice {
	return m.VoiceList
}

func (m *MockEngine) GetInfo() ttypes.EngineInfo {
	return ttypes.EngineInfo{
		Name:        m.Name,
		Version:     "test",
		SampleRate:  ttypes.DefaultSampleRate,
		Channels:    ttypes.Channels,
		BitDepth:    ttypes.BitDepth,
		MaxTextSize: 5000,
	}
}

func (m *MockEngine) Validate() error {
	return m.ValidateErr
}

func (m *MockEngine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockEngine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
