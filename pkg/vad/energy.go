package vad

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
)

// DefaultEnergyThreshold is the normalized RMS level above which a window is
// considered speech. Suitable for 16kHz close-mic input.
const DefaultEnergyThreshold = 0.015

// Energy is a pure-Go Probe based on RMS energy. It evaluates the whole span
// in fixed windows and reports speech if any window's normalized RMS exceeds
// the threshold.
type Energy struct {
	// Threshold is the normalized RMS level ([0,1]) that counts as speech.
	// Zero means DefaultEnergyThreshold.
	Threshold float64

	// Window is the analysis window size. Zero means 20ms.
	Window int // in samples; 0 means 20ms at the probed format's rate
}

var _ Probe = (*Energy)(nil)

// Detect implements Probe.
func (e *Energy) Detect(_ context.Context, data []byte, format pcm.Format) (bool, error) {
	if len(data)%2 != 0 {
		return false, fmt.Errorf("vad: odd-length PCM data (%d bytes)", len(data))
	}

	threshold := e.Threshold
	if threshold == 0 {
		threshold = DefaultEnergyThreshold
	}
	window := e.Window
	if window == 0 {
		window = int(format.SamplesInDuration(20 * time.Millisecond))
	}
	if window <= 0 {
		window = 320
	}

	samples := len(data) / 2
	for start := 0; start < samples; start += window {
		end := start + window
		if end > samples {
			end = samples
		}
		if rms(data[start*2:end*2]) >= threshold {
			return true, nil
		}
	}
	return false, nil
}

// rms returns the normalized root-mean-square level of little-endian s16
// samples, in [0, 1].
func rms(data []byte) float64 {
	n := len(data) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
