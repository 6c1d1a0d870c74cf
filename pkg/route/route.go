// Package route maps a detected source language and an active session mode to
// a translation target language. The table in this package is the single
// source of translation-direction policy; adding a mode touches nothing else.
package route

// Mode is a session-level setting selecting the bidirectional language pair.
type Mode string

const (
	// ModeZhTh translates between Chinese and Thai. English input is
	// translated to Chinese.
	ModeZhTh Mode = "zh-th"
	// ModeZhEn translates between Chinese and English.
	ModeZhEn Mode = "zh-en"

	// DefaultMode is the mode a fresh session starts in.
	DefaultMode = ModeZhTh
)

// Lang is an ISO 639-1 language code as reported by the transcriber.
type Lang string

const (
	Chinese Lang = "zh"
	Thai    Lang = "th"
	English Lang = "en"
)

// ParseMode returns s as a Mode, or DefaultMode when s is empty. Unknown
// values are kept verbatim: Route refuses them for every language, so a
// session holding an unrecognized mode translates nothing rather than
// silently reverting to the default direction.
func ParseMode(s string) Mode {
	if s == "" {
		return DefaultMode
	}
	return Mode(s)
}

// Route returns the target language for the detected language under the given
// mode. The second return value is false when the mode performs no translation
// for the detected language, including any unrecognized mode or language.
func Route(mode Mode, detected Lang) (Lang, bool) {
	switch mode {
	case ModeZhTh:
		switch detected {
		case Chinese:
			return Thai, true
		case Thai:
			return Chinese, true
		case English:
			return Chinese, true
		}
	case ModeZhEn:
		switch detected {
		case Chinese:
			return English, true
		case English:
			return Chinese, true
		}
	}
	return "", false
}
