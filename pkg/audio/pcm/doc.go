// Package pcm provides types and utilities for working with PCM (Pulse Code
// Modulation) audio data.
//
// The package defines audio formats for common configurations (16-bit mono at
// various sample rates) and conversion helpers between byte counts, sample
// counts, and durations.
//
// Example usage:
//
//	// The session input format: 16kHz mono little-endian s16.
//	format := pcm.L16Mono16K
//
//	// Bytes needed for one second of audio.
//	window := format.BytesInDuration(time.Second)
package pcm
