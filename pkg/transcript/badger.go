package transcript

import (
	"context"
	"fmt"
	"iter"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// BadgerLog is a Log backed by BadgerDB. Keys sort chronologically
// (ts:<RFC3339Nano>:<id>), so a day of entries is one prefix scan. Values are
// msgpack-encoded entries.
type BadgerLog struct {
	db *badger.DB
}

var _ Log = (*BadgerLog)(nil)

// BadgerOptions configures the store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless InMemory.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for tests.
	InMemory bool

	// Logger sets the badger logger. Nil silences badger output.
	Logger badger.Logger
}

// NewBadgerLog opens or creates the store.
func NewBadgerLog(opts BadgerOptions) (*BadgerLog, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, fmt.Errorf("transcript: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	dbOpts = dbOpts.WithLogger(opts.Logger)
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("transcript: open badger: %w", err)
	}
	return &BadgerLog{db: db}, nil
}

func badgerKey(e Entry) []byte {
	return []byte("ts:" + e.Timestamp.UTC().Format(time.RFC3339Nano) + ":" + e.ID)
}

// Append implements Log.
func (l *BadgerLog) Append(_ context.Context, e Entry) error {
	val, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("transcript: encode entry: %w", err)
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(e), val)
	})
	if err != nil {
		return fmt.Errorf("transcript: badger append: %w", err)
	}
	return nil
}

// Day iterates the entries recorded on a UTC calendar day (YYYY-MM-DD prefix
// of the stored timestamps), in chronological order.
func (l *BadgerLog) Day(ctx context.Context, day time.Time) iter.Seq2[Entry, error] {
	prefix := []byte("ts:" + day.UTC().Format("2006-01-02"))
	return func(yield func(Entry, error) bool) {
		err := l.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Rewind(); it.Valid(); it.Next() {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				var e Entry
				err := it.Item().Value(func(val []byte) error {
					return msgpack.Unmarshal(val, &e)
				})
				if err != nil {
					return err
				}
				if !yield(e, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, fmt.Errorf("transcript: badger scan: %w", err))
		}
	}
}

// Close implements Log.
func (l *BadgerLog) Close() error {
	return l.db.Close()
}
