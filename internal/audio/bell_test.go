package audio

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestBellWritesBEL(t *testing.T) {
	var buf bytes.Buffer
	b := NewBell(&buf, true)
	now := time.Unix(100, 0)
	b.now = func() time.Time { return now }

	if err := b.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if err := b.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a" {
		t.Fatalf("expected one bell inside the gap, got %q", buf.String())
	}
	now = now.Add(MinGap)
	if err := b.Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.String() != "\a\a" {
		t.Fatalf("expected two bells, got %q", buf.String())
	}
}

func TestDisabledBellIsSilent(t *testing.T) {
	var buf bytes.Buffer
	if err := NewBell(&buf, false).Play(); err != nil {
		t.Fatalf("play: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestBellReportsWriteErrors(t *testing.T) {
	if err := NewBell(failingWriter{}, true).Play(); err == nil {
		t.Fatalf("expected write error")
	}
}
