// Package streamwriter provides the async writer side of spec §4.2's
// fragmented-buffer model: an accumulating buffer that flushes to a
// caller-supplied sink only at explicit, bounded points, never mid-value.
package streamwriter

import (
	"context"

	"github.com/zoobzio/shapepack/wire"
)

// FlushFunc drains buffered bytes to their destination (a socket, a
// channel, a file): the only suspension point on the write side (spec
// §4.2 async control flow note, mirrored for writes).
type FlushFunc func(ctx context.Context, data []byte) error

// Writer wraps wire.Writer with a size threshold at which MaybeFlushAsync
// yields to FlushFunc. Buffered bytes are drained only when MaybeFlushAsync
// or FlushAsync is called, so a value being encoded is held in memory
// whole until it is complete.
type Writer struct {
	w         *wire.Writer
	flush     FlushFunc
	maxBuffer int
	flushed   int
}

// NewWriter returns a Writer whose MaybeFlushAsync calls flush once
// buffered bytes reach maxBuffer (the max_async_buffer option, spec §6); maxBuffer <= 0 means
// never flush early, deferring entirely to a final FlushAsync.
func NewWriter(flush FlushFunc, maxBuffer int) *Writer {
	return &Writer{w: wire.NewWriter(), flush: flush, maxBuffer: maxBuffer}
}

// Raw exposes the underlying primitive writer for converters.
func (w *Writer) Raw() *wire.Writer { return w.w }

// MaybeFlushAsync flushes buffered bytes to the sink if the configured
// threshold has been reached. SerializeAsync calls this once the whole
// top-level value has been encoded, never mid-value, and no converter
// calls it between elements, so a
// flush never splits an encoded structure across two sink writes from
// the sink's point of view — the sink only ever sees whole prior bytes,
// never a value currently being built.
func (w *Writer) MaybeFlushAsync(ctx context.Context) error {
	if w.maxBuffer <= 0 || w.w.Len() < w.maxBuffer {
		return nil
	}
	return w.FlushAsync(ctx)
}

// FlushAsync unconditionally drains whatever is currently buffered.
func (w *Writer) FlushAsync(ctx context.Context) error {
	pending := w.w.Bytes()
	if len(pending) == 0 {
		return nil
	}
	if err := w.flush(ctx, pending); err != nil {
		return err
	}
	w.flushed += len(pending)
	w.w = wire.NewWriter()
	return nil
}

// Flushed reports total bytes handed to the sink so far.
func (w *Writer) Flushed() int { return w.flushed }
