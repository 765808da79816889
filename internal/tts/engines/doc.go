// Package engines contains the TTS engines frasi can speak with: Piper
// (offline) and gTTS (online), a fallback wrapper that switches between them
// and a deterministic mock for tests. Each engine implements
// ttypes.TTSEngine and produces 16-bit mono PCM.
package engines
