// Package asr provides speech-to-text transcription of finalized utterances.
package asr

import (
	"context"

	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/route"
)

// LangUnknown is reported when the transcriber cannot identify the language.
const LangUnknown route.Lang = "unknown"

// Transcriber converts one utterance of PCM audio into text plus the detected
// language. An empty text with a nil error means the utterance contained no
// recognizable speech.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, format pcm.Format) (text string, lang route.Lang, err error)
}

// TranscribeFunc is an adapter to allow the use of ordinary functions as
// Transcribers.
type TranscribeFunc func(ctx context.Context, data []byte, format pcm.Format) (string, route.Lang, error)

// Transcribe calls the underlying function.
func (f TranscribeFunc) Transcribe(ctx context.Context, data []byte, format pcm.Format) (string, route.Lang, error) {
	return f(ctx, data, format)
}
