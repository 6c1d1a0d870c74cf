// Package pipeline sequences the per-utterance stage chain: transcribe,
// route, translate, synthesize.
//
// The pipeline never fails an utterance outright. Each stage has a typed
// fallback so one bad utterance degrades instead of terminating the session:
// a failed transcription becomes NoSpeech, a failed translation falls back to
// the original transcript, and a failed synthesis delivers text with no audio.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/babelbridge/babelbridge/pkg/asr"
	"github.com/babelbridge/babelbridge/pkg/audio/pcm"
	"github.com/babelbridge/babelbridge/pkg/route"
	"github.com/babelbridge/babelbridge/pkg/translate"
	"github.com/babelbridge/babelbridge/pkg/tts"
)

// DefaultStageTimeout bounds each collaborator call.
const DefaultStageTimeout = 30 * time.Second

// Outcome classifies the result of processing one utterance.
type Outcome int

const (
	// NoSpeech means transcription produced no text; nothing is emitted.
	NoSpeech Outcome = iota
	// NoRoute means the active mode has no target language for the detected
	// language; nothing is emitted or logged.
	NoRoute
	// Translated means the full stage chain ran, possibly with per-stage
	// fallbacks applied.
	Translated
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case NoSpeech:
		return "no_speech"
	case NoRoute:
		return "no_route"
	case Translated:
		return "translated"
	}
	return "unknown"
}

// Result is the outcome of one utterance pass. The translation fields are
// populated only when Outcome is Translated.
type Result struct {
	Outcome    Outcome
	Original   string
	SrcLang    route.Lang
	TargetLang route.Lang
	Translated string
	Audio      []byte
}

// Pipeline runs the stage chain for finalized utterances. One Pipeline may be
// shared by many sessions; it holds no per-utterance state.
type Pipeline struct {
	Transcriber asr.Transcriber
	Translator  translate.Translator
	Synthesizer tts.Synthesizer

	// Format is the PCM format of utterance audio.
	Format pcm.Format

	// StageTimeout bounds each collaborator call. Zero means
	// DefaultStageTimeout. Expiry is treated as a stage failure.
	StageTimeout time.Duration

	// Logger receives stage fallback logs. Nil means slog.Default().
	Logger *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) stageTimeout() time.Duration {
	if p.StageTimeout > 0 {
		return p.StageTimeout
	}
	return DefaultStageTimeout
}

// Process runs one utterance through the stage chain. Stages run strictly in
// sequence; mode is the caller's snapshot and is never re-read mid-pass.
func (p *Pipeline) Process(ctx context.Context, mode route.Mode, utterance []byte) Result {
	logger := p.logger()

	text, detected, err := p.transcribe(ctx, utterance)
	if err != nil {
		// One failed utterance must not terminate the session.
		logger.Warn("pipeline: transcription failed", "error", err)
		return Result{Outcome: NoSpeech}
	}
	if text == "" {
		return Result{Outcome: NoSpeech}
	}

	target, ok := route.Route(mode, detected)
	if !ok {
		return Result{Outcome: NoRoute, Original: text, SrcLang: detected}
	}

	translated, err := p.translateText(ctx, text, detected, target)
	if err != nil {
		// Degraded but non-fatal: the user still gets a response.
		logger.Warn("pipeline: translation failed, falling back to original",
			"error", err, "src_lang", detected, "target_lang", target)
		translated = text
	}

	audio, err := p.synthesize(ctx, translated, target)
	if err != nil {
		// Text delivery must not be blocked by synthesis failure.
		logger.Warn("pipeline: synthesis failed, delivering text only",
			"error", err, "lang", target)
		audio = nil
	}

	return Result{
		Outcome:    Translated,
		Original:   text,
		SrcLang:    detected,
		TargetLang: target,
		Translated: translated,
		Audio:      audio,
	}
}

func (p *Pipeline) transcribe(ctx context.Context, utterance []byte) (string, route.Lang, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout())
	defer cancel()
	return p.Transcriber.Transcribe(ctx, utterance, p.Format)
}

func (p *Pipeline) translateText(ctx context.Context, text string, src, dst route.Lang) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout())
	defer cancel()
	return p.Translator.Translate(ctx, text, src, dst)
}

func (p *Pipeline) synthesize(ctx context.Context, text string, lang route.Lang) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout())
	defer cancel()
	return p.Synthesizer.Synthesize(ctx, text, lang)
}
