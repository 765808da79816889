package tts

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEngineConfigured indicates no TTS engine has been selected.
	ErrNoEngineConfigured = errors.New("no TTS engine configured")

	// ErrEngineNotAvailable indicates the selected engine is not available.
	ErrEngineNotAvailable = errors.New("selected TTS engine is not available")

	// ErrInvalidEngine indicates an unknown engine was specified.
	ErrInvalidEngine = errors.New("invalid TTS engine specified")
)

// ErrorCode identifies specific error types.
type ErrorCode string

const (
	ErrorCodeEngineFailure     ErrorCode = "ENGINE_FAILURE"
	ErrorCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrorCodeEngineTimeout     ErrorCode = "ENGINE_TIMEOUT"
	ErrorCodeAudioDevice       ErrorCode = "AUDIO_DEVICE"
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
)

// TTSError is a speech error with a code and the failing engine.
type TTSError struct {
	Code    ErrorCode
	Engine  string
	Message string
	Cause   error
}

// NewTTSError creates a new TTS error.
func NewTTSError(code ErrorCode, engine, message string, cause error) *TTSError {
	return &TTSError{Code: code, Engine: engine, Message: message, Cause: cause}
}

func (e *TTSError) Error() string {
	prefix := string(e.Code)
	if e.Engine != "" {
		prefix = e.Engine + " " + prefix
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *TTSError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether speech should be given up for the session.
func (e *TTSError) IsFatal() bool {
	switch e.Code {
	case ErrorCodeEngineUnavailable, ErrorCodeAudioDevice:
		return true
	default:
		return false
	}
}

// IsFatal reports whether err carries a fatal TTSError.
func IsFatal(err error) bool {
	var te *TTSError
	return errors.As(err, &te) && te.IsFatal()
}
