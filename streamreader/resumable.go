package streamreader

import (
	"context"
	"errors"

	"github.com/zoobzio/shapepack/wire"
)

// Status is the outcome of a single resumable decode attempt (spec §4.2).
type Status int

const (
	Success Status = iota
	InsufficientBuffer
	EmptyBuffer
	TypeMismatch
)

// FetchFunc supplies more bytes to a ResumableReader. consumed is the
// offset up to which bytes may be discarded; examined is how far the
// reader has looked without finding enough to proceed. Implementations
// must not return fewer bytes than before for the same consumed offset.
type FetchFunc func(ctx context.Context, consumed, examined int) ([]byte, error)

// sharedBuffer is the growable backing store a ResumableReader and any
// peek readers cloned from it all observe; growth by one is visible to
// all (spec §4.2 "the original and the peek share the same growable
// buffer").
type sharedBuffer struct {
	data  []byte
	fetch FetchFunc
}

func (s *sharedBuffer) grow(ctx context.Context, consumed, examined int) error {
	more, err := s.fetch(ctx, consumed, examined)
	if err != nil {
		return err
	}
	if len(more) == 0 {
		return nil
	}
	s.data = append(s.data[:len(s.data):len(s.data)], more...)
	return nil
}

// ResumableReader decodes against a buffer that grows on demand. Each
// decode method returns a Status instead of erroring on short input;
// only InsufficientBuffer should trigger a fetch.
type ResumableReader struct {
	shared   *sharedBuffer
	offset   int // independent decode position into shared.data
	examined int
}

// NewResumableReader starts a reader over an initial (possibly empty)
// buffer, using fetch to grow it on InsufficientBuffer.
func NewResumableReader(initial []byte, fetch FetchFunc) *ResumableReader {
	return &ResumableReader{shared: &sharedBuffer{data: initial, fetch: fetch}}
}

// CreatePeekReader clones the decode position onto the same shared
// buffer: growth performed through either reader is visible to both, but
// their cursors move independently.
func (r *ResumableReader) CreatePeekReader() *ResumableReader {
	return &ResumableReader{shared: r.shared, offset: r.offset, examined: r.offset}
}

// Consumed reports r's own decode offset, the boundary fetch_more_bytes
// is told it may discard bytes before.
func (r *ResumableReader) Consumed() int { return r.offset }

func (r *ResumableReader) remaining() []byte { return r.shared.data[r.offset:] }

// Bytes exposes r's currently buffered, not-yet-decoded bytes, for
// handing off to a BufferedReader once BufferNextStructuresAsync has
// guaranteed a complete top-level structure is resident (spec §4.2: the
// synchronous converters decode "over a contiguous byte span" between
// suspension points).
func (r *ResumableReader) Bytes() []byte { return r.remaining() }

// FetchMoreAsync grows the shared buffer by invoking FetchFunc, to be
// called by the caller after a decode attempt reports InsufficientBuffer
// (spec §4.2: "only requests more bytes when a decode returned
// InsufficientBuffer").
func (r *ResumableReader) FetchMoreAsync(ctx context.Context) error {
	return r.shared.grow(ctx, r.offset, r.examined)
}

// try runs attempt against the currently buffered remainder, classifying
// a short-buffer failure as InsufficientBuffer (advancing examined so the
// next fetch is told how far decoding has looked) rather than an error.
func try[T any](r *ResumableReader, attempt func(*wire.Reader) (T, error)) (T, Status, error) {
	var zero T
	if len(r.remaining()) == 0 {
		return zero, EmptyBuffer, nil
	}
	rr := wire.NewReader(r.remaining())
	v, err := attempt(rr)
	if err == nil {
		r.offset += rr.Consumed()
		r.examined = r.offset
		return v, Success, nil
	}
	if errors.Is(err, wire.ErrShortBuffer) {
		if r.offset+rr.Consumed() > r.examined {
			r.examined = r.offset + rr.Consumed()
		}
		return zero, InsufficientBuffer, nil
	}
	return zero, TypeMismatch, err
}

func (r *ResumableReader) ReadBool() (bool, Status, error) {
	return try(r, func(rr *wire.Reader) (bool, error) { return rr.ReadBool() })
}

func (r *ResumableReader) ReadInt() (int64, Status, error) {
	return try(r, func(rr *wire.Reader) (int64, error) { return rr.ReadInt() })
}

func (r *ResumableReader) ReadUint() (uint64, Status, error) {
	return try(r, func(rr *wire.Reader) (uint64, error) { return rr.ReadUint() })
}

func (r *ResumableReader) ReadFloat32() (float32, Status, error) {
	return try(r, func(rr *wire.Reader) (float32, error) { return rr.ReadFloat32() })
}

func (r *ResumableReader) ReadFloat64() (float64, Status, error) {
	return try(r, func(rr *wire.Reader) (float64, error) { return rr.ReadFloat64() })
}

func (r *ResumableReader) ReadString() (string, Status, error) {
	return try(r, func(rr *wire.Reader) (string, error) { return rr.ReadString() })
}

func (r *ResumableReader) ReadBytes() ([]byte, Status, error) {
	return try(r, func(rr *wire.Reader) ([]byte, error) { return rr.ReadBytes() })
}

func (r *ResumableReader) ReadArrayHeader() (int, Status, error) {
	return try(r, func(rr *wire.Reader) (int, error) { return rr.ReadArrayHeader() })
}

func (r *ResumableReader) ReadMapHeader() (int, Status, error) {
	return try(r, func(rr *wire.Reader) (int, error) { return rr.ReadMapHeader() })
}

func (r *ResumableReader) PeekCode() (byte, Status, error) {
	return try(r, func(rr *wire.Reader) (byte, error) { return rr.PeekCode() })
}

func (r *ResumableReader) ReadExtensionHeader() (wire.ExtensionHeader, Status, error) {
	return try(r, func(rr *wire.Reader) (wire.ExtensionHeader, error) { return rr.ReadExtensionHeader() })
}

func (r *ResumableReader) ReadExtensionBody(n int) ([]byte, Status, error) {
	return try(r, func(rr *wire.Reader) ([]byte, error) { return rr.ReadExtensionBody(n) })
}

// skipFrame is one pending "consume N more values as trees" obligation,
// used by Skip to do O(remaining) work per resume instead of restarting
// the whole tree from its root on every InsufficientBuffer (spec §4.2:
// "maintains a small stack ... so that each resume does O(remaining)
// work").
type skipFrame struct {
	remaining int
}

// SkipState carries a Skip operation's stack across suspension points.
type SkipState struct {
	stack []skipFrame
}

// Skip consumes the next value as an opaque tree. On InsufficientBuffer
// the returned SkipState should be passed back into the next Skip call
// (after FetchMoreAsync) to resume rather than restart.
func (r *ResumableReader) Skip(state *SkipState) (Status, error) {
	if state == nil {
		state = &SkipState{stack: []skipFrame{{remaining: 1}}}
	}
	for len(state.stack) > 0 {
		top := &state.stack[len(state.stack)-1]
		if top.remaining == 0 {
			state.stack = state.stack[:len(state.stack)-1]
			continue
		}
		code, status, err := r.PeekCode()
		if status != Success {
			return status, err
		}
		top.remaining--
		n, consumedHeader, err := r.skipOneHeader(code)
		if err != nil {
			return TypeMismatch, err
		}
		if !consumedHeader {
			return InsufficientBuffer, nil
		}
		if n > 0 {
			state.stack = append(state.stack, skipFrame{remaining: n})
		}
	}
	return Success, nil
}

// skipOneHeader consumes exactly one value's header (or scalar) and
// reports how many child values remain to be skipped beneath it.
func (r *ResumableReader) skipOneHeader(code byte) (children int, ok bool, err error) {
	switch {
	case wire.IsArrayCode(code):
		n, status, err := r.ReadArrayHeader()
		if status != Success {
			return 0, false, err
		}
		return n, true, nil
	case wire.IsMapCode(code):
		n, status, err := r.ReadMapHeader()
		if status != Success {
			return 0, false, err
		}
		return n * 2, true, nil
	default:
		// Scalar or string/bytes/ext: consume via a best-effort buffered
		// skip against the currently available bytes.
		rr := wire.NewReader(r.remaining())
		if err := rr.Skip(); err != nil {
			if errors.Is(err, wire.ErrShortBuffer) {
				return 0, false, nil
			}
			return 0, false, err
		}
		r.offset += rr.Consumed()
		r.examined = r.offset
		return 0, true, nil
	}
}
