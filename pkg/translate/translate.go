// Package translate converts transcript text between session languages.
package translate

import (
	"context"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// Translator translates text from src to dst.
type Translator interface {
	Translate(ctx context.Context, text string, src, dst route.Lang) (string, error)
}

// TranslateFunc is an adapter to allow the use of ordinary functions as
// Translators.
type TranslateFunc func(ctx context.Context, text string, src, dst route.Lang) (string, error)

// Translate calls the underlying function.
func (f TranslateFunc) Translate(ctx context.Context, text string, src, dst route.Lang) (string, error) {
	return f(ctx, text, src, dst)
}
