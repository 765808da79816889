// Package audio plays synthesized phrases through the system audio device
// using oto/v3. Every clip is 16-bit mono PCM at the engine's sample rate.
//
// Opening the device is asynchronous: oto reports readiness on a channel.
// NewPlayer waits for it, which is the moment a terminal session becomes
// able to produce sound.
package audio
