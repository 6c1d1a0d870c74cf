// Package vad provides voice activity detection over PCM audio.
//
// A Probe answers one question: does this span of audio contain speech?
// Probes hold no state between calls, so the same probe can serve many
// sessions concurrently.
package vad

import (
	"context"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
)

// Probe detects speech in a span of PCM audio.
type Probe interface {
	// Detect reports whether the given little-endian s16 PCM data contains
	// speech. Implementations must not retain data after returning.
	Detect(ctx context.Context, data []byte, format pcm.Format) (bool, error)
}

// DetectFunc is an adapter to allow the use of ordinary functions as Probes.
type DetectFunc func(ctx context.Context, data []byte, format pcm.Format) (bool, error)

// Detect calls the underlying function.
func (f DetectFunc) Detect(ctx context.Context, data []byte, format pcm.Format) (bool, error) {
	return f(ctx, data, format)
}
