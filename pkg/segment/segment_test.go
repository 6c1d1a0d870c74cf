package segment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/vad"
)

func constProbe(speech bool) vad.Probe {
	return vad.DetectFunc(func(context.Context, []byte, pcm.Format) (bool, error) {
		return speech, nil
	})
}

func failingProbe() vad.Probe {
	return vad.DetectFunc(func(context.Context, []byte, pcm.Format) (bool, error) {
		return false, errors.New("model exploded")
	})
}

func TestSilenceEventuallyReportsBoundary(t *testing.T) {
	s := New(constProbe(false), Config{Format: pcm.L16Mono16K})

	frame := make([]byte, 3200) // 100ms
	ctx := context.Background()

	var utterance []byte
	var boundary bool
	for i := 0; i < 100; i++ {
		utterance, boundary = s.Ingest(ctx, frame)
		if boundary {
			break
		}
	}
	if !boundary {
		t.Fatal("no boundary after 10s of silence")
	}
	if len(utterance) <= int(pcm.L16Mono16K.BytesInDuration(time.Second)) {
		t.Errorf("utterance = %d bytes; want more than the analysis window", len(utterance))
	}
	if s.BufferedBytes() != 0 {
		t.Errorf("buffer not cleared after boundary: %d bytes", s.BufferedBytes())
	}
}

func TestNoBoundaryBelowMinUtterance(t *testing.T) {
	// Window shorter than the minimum forces the probe to run while the
	// buffer is still below the minimum threshold.
	s := New(constProbe(false), Config{
		Format:         pcm.L16Mono16K,
		AnalysisWindow: 100 * time.Millisecond,
		MinUtterance:   500 * time.Millisecond,
	})

	ctx := context.Background()
	frame := make([]byte, 1600) // 50ms
	minBytes := int(pcm.L16Mono16K.BytesInDuration(500 * time.Millisecond))

	for s.BufferedBytes()+len(frame) <= minBytes {
		if _, boundary := s.Ingest(ctx, frame); boundary {
			t.Fatalf("boundary at %d buffered bytes, below minimum %d", s.BufferedBytes(), minBytes)
		}
	}
}

func TestSpeechResetsSilenceRun(t *testing.T) {
	speech := true
	probe := vad.DetectFunc(func(context.Context, []byte, pcm.Format) (bool, error) {
		return speech, nil
	})
	s := New(probe, Config{Format: pcm.L16Mono16K})

	ctx := context.Background()
	frame := make([]byte, 3200)

	// Fill past the window with speech detected; no boundary may fire.
	for i := 0; i < 20; i++ {
		if _, boundary := s.Ingest(ctx, frame); boundary {
			t.Fatal("boundary reported while probe detects speech")
		}
	}

	// First silent window after speech finalizes immediately.
	speech = false
	utterance, boundary := s.Ingest(ctx, frame)
	if !boundary {
		t.Fatal("no boundary on first silent window past thresholds")
	}
	if len(utterance) != 21*len(frame) {
		t.Errorf("utterance = %d bytes; want %d", len(utterance), 21*len(frame))
	}
}

func TestProbeFailureCountsAsSilence(t *testing.T) {
	s := New(failingProbe(), Config{Format: pcm.L16Mono16K})

	ctx := context.Background()
	frame := make([]byte, 3200)

	boundary := false
	for i := 0; i < 100 && !boundary; i++ {
		_, boundary = s.Ingest(ctx, frame)
	}
	if !boundary {
		t.Fatal("segmenter grew unboundedly with a failing probe")
	}
}

func TestStallingProbeCountsAsSilence(t *testing.T) {
	// A probe that never answers must not block ingestion past its timeout.
	probe := vad.DetectFunc(func(ctx context.Context, _ []byte, _ pcm.Format) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	s := New(probe, Config{
		Format:       pcm.L16Mono16K,
		ProbeTimeout: 10 * time.Millisecond,
	})

	ctx := context.Background()
	frame := make([]byte, 3200)

	start := time.Now()
	boundary := false
	for i := 0; i < 100 && !boundary; i++ {
		_, boundary = s.Ingest(ctx, frame)
	}
	if !boundary {
		t.Fatal("segmenter grew unboundedly with a stalling probe")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("ingestion blocked %v on a stalling probe", elapsed)
	}
}

func TestBelowWindowNeverProbes(t *testing.T) {
	called := false
	probe := vad.DetectFunc(func(context.Context, []byte, pcm.Format) (bool, error) {
		called = true
		return false, nil
	})
	s := New(probe, Config{Format: pcm.L16Mono16K})

	// One second exactly does not exceed the window.
	s.Ingest(context.Background(), make([]byte, 32000))
	if called {
		t.Error("probe invoked before the buffer exceeded the analysis window")
	}
}

func TestReset(t *testing.T) {
	s := New(constProbe(false), Config{Format: pcm.L16Mono16K})
	s.Ingest(context.Background(), make([]byte, 6400))
	s.Reset()
	if s.BufferedBytes() != 0 {
		t.Errorf("BufferedBytes after Reset = %d; want 0", s.BufferedBytes())
	}
}

func TestUtteranceIsACopy(t *testing.T) {
	s := New(constProbe(false), Config{Format: pcm.L16Mono16K})
	ctx := context.Background()

	frame := make([]byte, 16000)
	for i := range frame {
		frame[i] = 0x7f
	}
	var utterance []byte
	var boundary bool
	for i := 0; i < 10 && !boundary; i++ {
		utterance, boundary = s.Ingest(ctx, frame)
	}
	if !boundary {
		t.Fatal("no boundary")
	}

	// Later ingestion must not alias the finalized utterance.
	s.Ingest(ctx, make([]byte, 16000))
	for _, b := range utterance {
		if b != 0x7f {
			t.Fatal("finalized utterance mutated by later ingestion")
		}
	}
}
