package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

const fileQueueDepth = 256

// FileLog appends entries as JSONL to one file per UTC day
// (transcript_YYYYMMDD.jsonl) in a directory. Appends flow through a buffered
// queue to a single writer goroutine, so Append never waits on the disk; when
// the queue is full the entry is dropped with a warning.
type FileLog struct {
	dir    string
	logger *slog.Logger

	queue chan Entry
	done  chan struct{}

	mu     sync.Mutex
	closed bool

	// writer-goroutine state
	day  string
	file *os.File
}

var _ Log = (*FileLog)(nil)

// NewFileLog creates the directory if needed and starts the writer.
func NewFileLog(dir string, logger *slog.Logger) (*FileLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transcript: create log dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &FileLog{
		dir:    dir,
		logger: logger,
		queue:  make(chan Entry, fileQueueDepth),
		done:   make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Path returns the file path for a given YYYYMMDD day.
func (l *FileLog) Path(day string) string {
	return filepath.Join(l.dir, "transcript_"+day+".jsonl")
}

// Append implements Log.
func (l *FileLog) Append(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("transcript: file log closed")
	}
	select {
	case l.queue <- e:
		return nil
	default:
		l.logger.Warn("transcript: file log queue full, dropping entry", "id", e.ID)
		return nil
	}
}

// Close stops the writer after draining queued entries.
func (l *FileLog) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *FileLog) run() {
	defer close(l.done)
	defer func() {
		if l.file != nil {
			l.file.Close()
		}
	}()

	for e := range l.queue {
		if err := l.write(e); err != nil {
			l.logger.Error("transcript: write failed", "error", err, "id", e.ID)
		}
	}
}

func (l *FileLog) write(e Entry) error {
	day := e.Day()
	if l.file == nil || day != l.day {
		if l.file != nil {
			l.file.Close()
		}
		f, err := os.OpenFile(l.Path(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		l.file = f
		l.day = day
	}

	line, err := json.Marshal(e)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = l.file.Write(line)
	return err
}

// ReadDay loads all entries recorded for a YYYYMMDD day from dir. Missing
// files yield an empty slice.
func ReadDay(dir, day string) ([]Entry, error) {
	path := filepath.Join(dir, "transcript_"+day+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("transcript: read %s: %w", path, err)
	}

	var entries []Entry
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return entries, fmt.Errorf("transcript: parse %s: %w", path, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
