// Package tts synthesizes speech audio from translated text.
package tts

import (
	"context"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// Synthesizer converts text in the given language into audio bytes. The
// returned payload is in the backend's native encoding and is treated as an
// opaque blob by the rest of the system.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, lang route.Lang) ([]byte, error)
}

// SynthesizeFunc is an adapter to allow the use of ordinary functions as
// Synthesizers.
type SynthesizeFunc func(ctx context.Context, text string, lang route.Lang) ([]byte, error)

// Synthesize calls the underlying function.
func (f SynthesizeFunc) Synthesize(ctx context.Context, text string, lang route.Lang) ([]byte, error) {
	return f(ctx, text, lang)
}
