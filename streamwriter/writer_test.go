package streamwriter

import (
	"bytes"
	"context"
	"testing"
)

func TestMaybeFlushAsync_BelowThresholdDoesNotFlush(t *testing.T) {
	var sunk [][]byte
	w := NewWriter(func(_ context.Context, data []byte) error {
		sunk = append(sunk, append([]byte(nil), data...))
		return nil
	}, 1024)

	w.Raw().WriteString("small")
	if err := w.MaybeFlushAsync(context.Background()); err != nil {
		t.Fatalf("MaybeFlushAsync: %v", err)
	}
	if len(sunk) != 0 {
		t.Errorf("expected no flush below threshold, got %d flushes", len(sunk))
	}
}

func TestMaybeFlushAsync_AboveThresholdFlushes(t *testing.T) {
	var sunk [][]byte
	w := NewWriter(func(_ context.Context, data []byte) error {
		sunk = append(sunk, append([]byte(nil), data...))
		return nil
	}, 4)

	w.Raw().WriteString("this is definitely more than four bytes")
	if err := w.MaybeFlushAsync(context.Background()); err != nil {
		t.Fatalf("MaybeFlushAsync: %v", err)
	}
	if len(sunk) != 1 {
		t.Fatalf("expected exactly one flush above threshold, got %d", len(sunk))
	}
	if w.Raw().Len() != 0 {
		t.Error("buffer should be reset after a flush")
	}
}

func TestMaybeFlushAsync_ZeroThresholdNeverFlushesEarly(t *testing.T) {
	flushes := 0
	w := NewWriter(func(context.Context, []byte) error {
		flushes++
		return nil
	}, 0)

	w.Raw().WriteString("abc")
	if err := w.MaybeFlushAsync(context.Background()); err != nil {
		t.Fatalf("MaybeFlushAsync: %v", err)
	}
	if flushes != 0 {
		t.Errorf("maxBuffer<=0 should never flush early, got %d flushes", flushes)
	}
}

func TestFlushAsync_DrainsAndTracksFlushed(t *testing.T) {
	var got bytes.Buffer
	w := NewWriter(func(_ context.Context, data []byte) error {
		got.Write(data)
		return nil
	}, 0)

	w.Raw().WriteString("hello")
	if err := w.FlushAsync(context.Background()); err != nil {
		t.Fatalf("FlushAsync: %v", err)
	}
	if w.Flushed() != got.Len() {
		t.Errorf("Flushed() = %d, want %d", w.Flushed(), got.Len())
	}
	if w.Raw().Len() != 0 {
		t.Error("buffer should be empty after FlushAsync")
	}
}

func TestFlushAsync_NoOpOnEmptyBuffer(t *testing.T) {
	calls := 0
	w := NewWriter(func(context.Context, []byte) error {
		calls++
		return nil
	}, 0)

	if err := w.FlushAsync(context.Background()); err != nil {
		t.Fatalf("FlushAsync: %v", err)
	}
	if calls != 0 {
		t.Error("FlushAsync should not invoke the sink when nothing is buffered")
	}
}
