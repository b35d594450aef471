package streamreader

import (
	"context"
	"testing"

	"github.com/zoobzio/shapepack/wire"
)

func encodeFixture() []byte {
	w := wire.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteString("hello")
	w.WriteInt(7)
	return w.Bytes()
}

func TestBufferedReader_RoundTrip(t *testing.T) {
	r := NewBufferedReader(encodeFixture())
	n, err := r.ReadArrayHeader()
	if err != nil || n != 2 {
		t.Fatalf("ReadArrayHeader() = %d, %v", n, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString() = %q, %v", s, err)
	}
	v, err := r.ReadInt()
	if err != nil || v != 7 {
		t.Fatalf("ReadInt() = %d, %v", v, err)
	}
}

func TestBufferedReader_CreatePeekReaderIndependence(t *testing.T) {
	r := NewBufferedReader(encodeFixture())
	peek := r.CreatePeekReader()
	if err := peek.Skip(); err != nil {
		t.Fatalf("peek.Skip: %v", err)
	}
	if r.Consumed() != 0 {
		t.Error("advancing the peek reader should not advance the original")
	}
}

func TestBufferedReader_Remaining(t *testing.T) {
	data := encodeFixture()
	r := NewBufferedReader(data)
	r.ReadArrayHeader()
	if len(r.Remaining()) >= len(data) {
		t.Error("Remaining should shrink after a read")
	}
}

// fetchFromBuffer builds a FetchFunc that serves the remainder of whole, past
// however much was already handed to the reader as its initial seed, in one
// shot on its first call (simulating a source that delivers the rest of the
// stream in one chunk after the first short read). The return value is
// always the tail beyond what has already been delivered in total, never a
// slice keyed off consumed/examined, since sharedBuffer.grow appends
// whatever is returned onto the end of its existing buffer.
func fetchFromBuffer(whole []byte, alreadyBuffered int) FetchFunc {
	sent := alreadyBuffered
	return func(_ context.Context, _, _ int) ([]byte, error) {
		if sent >= len(whole) {
			return nil, nil
		}
		chunk := whole[sent:]
		sent = len(whole)
		return chunk, nil
	}
}

func retryUntilSuccess(t *testing.T, rr *ResumableReader, attempt func() (Status, error)) {
	t.Helper()
	for {
		status, err := attempt()
		if err != nil {
			t.Fatalf("attempt: %v", err)
		}
		if status == Success {
			return
		}
		if status != InsufficientBuffer && status != EmptyBuffer {
			t.Fatalf("unexpected status %v", status)
		}
		if err := rr.FetchMoreAsync(context.Background()); err != nil {
			t.Fatalf("FetchMoreAsync: %v", err)
		}
	}
}

func TestResumableReader_GrowsOnInsufficientBuffer(t *testing.T) {
	whole := encodeFixture()
	rr := NewResumableReader(whole[:1], fetchFromBuffer(whole, 1))

	var n int
	retryUntilSuccess(t, rr, func() (Status, error) {
		var status Status
		var err error
		n, status, err = rr.ReadArrayHeader()
		return status, err
	})
	if n != 2 {
		t.Fatalf("got array len %d, want 2", n)
	}

	var s string
	retryUntilSuccess(t, rr, func() (Status, error) {
		var status Status
		var err error
		s, status, err = rr.ReadString()
		return status, err
	})
	if s != "hello" {
		t.Fatalf("ReadString() = %q, want hello", s)
	}
}

func TestResumableReader_EmptyBufferReportsEmptyBuffer(t *testing.T) {
	rr := NewResumableReader(nil, func(context.Context, int, int) ([]byte, error) {
		return nil, nil
	})
	_, status, err := rr.ReadInt()
	if err != nil {
		t.Fatalf("ReadInt: %v", err)
	}
	if status != EmptyBuffer {
		t.Errorf("status = %v, want EmptyBuffer", status)
	}
}

func TestResumableReader_Bytes_ExposesBufferedRemainder(t *testing.T) {
	whole := encodeFixture()
	rr := NewResumableReader(whole, func(context.Context, int, int) ([]byte, error) {
		return nil, nil
	})
	if got := rr.Bytes(); len(got) != len(whole) {
		t.Errorf("Bytes() len = %d, want %d", len(got), len(whole))
	}
}

func TestBufferNextStructuresAsync_BuffersCompleteStructureWithoutAdvancingReader(t *testing.T) {
	whole := encodeFixture()
	rr := NewResumableReader(whole[:1], fetchFromBuffer(whole, 1))

	if err := BufferNextStructuresAsync(context.Background(), rr, 1); err != nil {
		t.Fatalf("BufferNextStructuresAsync: %v", err)
	}
	if rr.Consumed() != 0 {
		t.Error("BufferNextStructuresAsync should not move the reader's own decode position")
	}
	if len(rr.Bytes()) < len(whole) {
		t.Errorf("expected the shared buffer to hold the full structure, got %d of %d bytes", len(rr.Bytes()), len(whole))
	}

	n, status, err := rr.ReadArrayHeader()
	if err != nil || status != Success || n != 2 {
		t.Fatalf("ReadArrayHeader() after buffering = %d, %v, %v", n, status, err)
	}
}

func TestResumableReader_SkipResumesAcrossFetches(t *testing.T) {
	w := wire.NewWriter()
	w.WriteArrayHeader(1)
	w.WriteMapHeader(2)
	w.WriteString("a")
	w.WriteInt(1)
	w.WriteString("b")
	w.WriteInt(2)
	whole := w.Bytes()

	rr := NewResumableReader(whole[:2], fetchFromBuffer(whole, 2))
	state := &SkipState{stack: []skipFrame{{remaining: 1}}}
	retryUntilSuccess(t, rr, func() (Status, error) {
		return rr.Skip(state)
	})
	if rr.Consumed() != len(whole) {
		t.Errorf("Consumed() = %d, want %d", rr.Consumed(), len(whole))
	}
}
