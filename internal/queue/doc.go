// Package queue holds phrases waiting for audio to be unlocked. It is a
// bounded FIFO: when full, the oldest entry is dropped to make room.
package queue
