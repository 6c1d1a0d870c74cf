// Package segment turns a stream of raw audio frames into finalized
// utterances using a voice activity probe.
//
// A Segmenter buffers inbound audio and re-evaluates the whole accumulated
// buffer once it exceeds the analysis window. The first silent window after
// any buffered audio longer than the minimum utterance finalizes the buffer.
// This is deliberately aggressive: one quiet window is enough to cut an
// utterance. The window and minimum are tuning parameters.
package segment

import (
	"context"
	"log/slog"
	"time"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/vad"
)

const (
	// DefaultAnalysisWindow is the buffered duration after which the probe
	// starts evaluating the buffer.
	DefaultAnalysisWindow = time.Second

	// DefaultMinUtterance is the minimum buffered duration required before a
	// boundary may be reported. Shorter buffers are never finalized, so
	// near-empty utterances are not emitted.
	DefaultMinUtterance = 500 * time.Millisecond

	// DefaultProbeTimeout bounds each probe call. The probe runs on the
	// session's read path, so a hung probe would stop the socket draining;
	// expiry is treated as a probe failure.
	DefaultProbeTimeout = 5 * time.Second
)

// Config configures a Segmenter.
type Config struct {
	// Format is the PCM format of inbound frames. Defaults to L16Mono16K.
	Format pcm.Format

	// AnalysisWindow overrides DefaultAnalysisWindow when positive.
	AnalysisWindow time.Duration

	// MinUtterance overrides DefaultMinUtterance when positive.
	MinUtterance time.Duration

	// ProbeTimeout overrides DefaultProbeTimeout when positive.
	ProbeTimeout time.Duration

	// Logger receives probe failure logs. Nil means slog.Default().
	Logger *slog.Logger
}

// Segmenter accumulates audio frames and decides utterance boundaries.
// It is owned by exactly one session and is not safe for concurrent use.
type Segmenter struct {
	probe        vad.Probe
	format       pcm.Format
	windowBytes  int
	minBytes     int
	probeTimeout time.Duration
	logger       *slog.Logger

	buf        []byte
	silenceRun int
}

// New creates a Segmenter that consults probe for speech detection.
func New(probe vad.Probe, cfg Config) *Segmenter {
	window := cfg.AnalysisWindow
	if window <= 0 {
		window = DefaultAnalysisWindow
	}
	min := cfg.MinUtterance
	if min <= 0 {
		min = DefaultMinUtterance
	}
	probeTimeout := cfg.ProbeTimeout
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		probe:        probe,
		format:       cfg.Format,
		windowBytes:  int(cfg.Format.BytesInDuration(window)),
		minBytes:     int(cfg.Format.BytesInDuration(min)),
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Ingest appends frame to the buffer and reports whether a boundary was
// reached. On a boundary the returned slice is the finalized utterance (an
// independent copy) and the internal buffer and silence counter are cleared.
//
// The probe evaluates the entire accumulated buffer, not just the newest
// frame, so detection is monotonically re-evaluated as audio arrives. A probe
// failure counts as "no speech": a noisy probe must never leave buffer growth
// unresolved.
func (s *Segmenter) Ingest(ctx context.Context, frame []byte) ([]byte, bool) {
	s.buf = append(s.buf, frame...)

	if len(s.buf) <= s.windowBytes {
		return nil, false
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	speech, err := s.probe.Detect(probeCtx, s.buf, s.format)
	cancel()
	if err != nil {
		s.logger.Warn("segment: probe failed, treating as silence", "error", err)
		speech = false
	}

	if speech {
		s.silenceRun = 0
		return nil, false
	}
	s.silenceRun++

	if s.silenceRun > 0 && len(s.buf) > s.minBytes {
		utterance := make([]byte, len(s.buf))
		copy(utterance, s.buf)
		s.buf = s.buf[:0]
		s.silenceRun = 0
		return utterance, true
	}
	return nil, false
}

// BufferedBytes returns the current buffered length in bytes.
func (s *Segmenter) BufferedBytes() int {
	return len(s.buf)
}

// Reset discards any buffered audio and clears the silence counter.
func (s *Segmenter) Reset() {
	s.buf = s.buf[:0]
	s.silenceRun = 0
}
