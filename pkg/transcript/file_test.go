package transcript

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/babelbridge/babelbridge/pkg/route"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileLog_AppendAndReadDay(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFileLog(dir, quiet())
	if err != nil {
		t.Fatalf("NewFileLog error: %v", err)
	}

	ts := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "a", Timestamp: ts, Mode: route.ModeZhTh, SrcLang: route.Chinese, Original: "你好", Translated: "สวัสดี"},
		{ID: "b", Timestamp: ts.Add(time.Minute), Mode: route.ModeZhTh, SrcLang: route.Thai, Original: "สวัสดี", Translated: "你好"},
	}
	for _, e := range entries {
		if err := l.Append(context.Background(), e); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	got, err := ReadDay(dir, "20260901")
	if err != nil {
		t.Fatalf("ReadDay error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ReadDay returned %d entries; want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("entry order = %q, %q; want a, b", got[0].ID, got[1].ID)
	}
	if got[0].Original != "你好" || got[0].Translated != "สวัสดี" {
		t.Errorf("entry a = (%q, %q)", got[0].Original, got[0].Translated)
	}
}

func TestFileLog_DayRollover(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFileLog(dir, quiet())
	if err != nil {
		t.Fatalf("NewFileLog error: %v", err)
	}

	day1 := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 9, 1, 0, 1, 0, 0, time.UTC)
	l.Append(context.Background(), Entry{ID: "x", Timestamp: day1, Mode: route.ModeZhTh})
	l.Append(context.Background(), Entry{ID: "y", Timestamp: day2, Mode: route.ModeZhTh})
	if err := l.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	d1, err := ReadDay(dir, "20260831")
	if err != nil {
		t.Fatalf("ReadDay error: %v", err)
	}
	d2, err := ReadDay(dir, "20260901")
	if err != nil {
		t.Fatalf("ReadDay error: %v", err)
	}
	if len(d1) != 1 || d1[0].ID != "x" {
		t.Errorf("day1 = %v; want one entry x", d1)
	}
	if len(d2) != 1 || d2[0].ID != "y" {
		t.Errorf("day2 = %v; want one entry y", d2)
	}
}

func TestFileLog_AppendAfterClose(t *testing.T) {
	l, err := NewFileLog(t.TempDir(), quiet())
	if err != nil {
		t.Fatalf("NewFileLog error: %v", err)
	}
	l.Close()
	if err := l.Append(context.Background(), NewEntry(route.ModeZhTh, route.Chinese, "a", "b")); err == nil {
		t.Error("Append accepted entry after Close")
	}
}

func TestReadDay_Missing(t *testing.T) {
	got, err := ReadDay(t.TempDir(), "19700101")
	if err != nil {
		t.Fatalf("ReadDay error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadDay = %d entries; want 0", len(got))
	}
}
