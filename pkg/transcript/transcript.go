// Package transcript records completed translation events in append-only
// sinks: one JSONL file per UTC day, and optionally a badger-backed store.
package transcript

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/babelbridge/babelbridge/pkg/route"
)

// Entry is one completed translation event. Entries are written once and
// never updated.
type Entry struct {
	ID         string     `json:"id" msgpack:"id"`
	Timestamp  time.Time  `json:"timestamp" msgpack:"timestamp"`
	Mode       route.Mode `json:"mode" msgpack:"mode"`
	SrcLang    route.Lang `json:"src_lang" msgpack:"src_lang"`
	Original   string     `json:"original" msgpack:"original"`
	Translated string     `json:"translated" msgpack:"translated"`
}

// NewEntry stamps a translation event with an ID and the current UTC time.
func NewEntry(mode route.Mode, src route.Lang, original, translated string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Mode:       mode,
		SrcLang:    src,
		Original:   original,
		Translated: translated,
	}
}

// Day returns the UTC calendar day the entry belongs to, as YYYYMMDD.
func (e Entry) Day() string {
	return e.Timestamp.UTC().Format("20060102")
}

// Log is an append-only sink for transcript entries.
type Log interface {
	// Append records one entry. Implementations must not block on slow
	// storage; outbound frame delivery takes priority over logging.
	Append(ctx context.Context, e Entry) error

	// Close flushes and releases the sink.
	Close() error
}

// MultiLog fans every entry out to several sinks.
type MultiLog []Log

var _ Log = (MultiLog)(nil)

// Append implements Log. The first error is returned but all sinks are tried.
func (m MultiLog) Append(ctx context.Context, e Entry) error {
	var first error
	for _, l := range m {
		if err := l.Append(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close implements Log.
func (m MultiLog) Close() error {
	var first error
	for _, l := range m {
		if err := l.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
