// Package streamreader provides the two reader interfaces spec §4.2 sits
// over a single MessagePack buffer: a synchronous BufferedReader for
// buffers already known to hold a complete structure, and an async
// ResumableReader that grows its buffer on demand via a caller-supplied
// fetch callback.
package streamreader

import (
	"errors"
	"time"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/wire"
)

// BufferedReader operates on a contiguous byte sequence already known to
// contain at least one complete top-level structure. It never asks for
// more bytes; running out mid-structure is an error, not a suspension
// point.
type BufferedReader struct {
	r *wire.Reader
}

// NewBufferedReader wraps data for synchronous, in-place decoding.
func NewBufferedReader(data []byte) *BufferedReader {
	return &BufferedReader{r: wire.NewReader(data)}
}

func wrapBuffered(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wire.ErrShortBuffer) {
		return cerr.New(cerr.CodeUnexpectedEnd, err)
	}
	return err
}

func (b *BufferedReader) PeekCode() (byte, error) {
	code, err := b.r.PeekCode()
	return code, wrapBuffered(err)
}

func (b *BufferedReader) ReadNil() error { return wrapBuffered(b.r.ReadNil()) }

func (b *BufferedReader) IsNil() (bool, error) {
	ok, err := b.r.IsNil()
	return ok, wrapBuffered(err)
}

func (b *BufferedReader) ReadBool() (bool, error) {
	v, err := b.r.ReadBool()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadInt() (int64, error) {
	v, err := b.r.ReadInt()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadUint() (uint64, error) {
	v, err := b.r.ReadUint()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadFloat32() (float32, error) {
	v, err := b.r.ReadFloat32()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadFloat64() (float64, error) {
	v, err := b.r.ReadFloat64()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadString() (string, error) {
	v, err := b.r.ReadString()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadBytes() ([]byte, error) {
	v, err := b.r.ReadBytes()
	return v, wrapBuffered(err)
}

func (b *BufferedReader) ReadTime() (time.Time, error) {
	tv, err := b.r.ReadTime()
	return tv, wrapBuffered(err)
}

func wrapHeader(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wire.ErrShortBuffer) {
		return cerr.New(cerr.CodeUnexpectedEnd, err)
	}
	return cerr.New(cerr.CodeTypeMismatch, err)
}

// ReadArrayHeader reads an array header unconditionally, failing with
// TypeMismatch if the next value is not one.
func (b *BufferedReader) ReadArrayHeader() (int, error) {
	n, err := b.r.ReadArrayHeader()
	return n, wrapHeader(err)
}

// ReadMapHeader reads a map header unconditionally.
func (b *BufferedReader) ReadMapHeader() (int, error) {
	n, err := b.r.ReadMapHeader()
	return n, wrapHeader(err)
}

// TryReadArrayHeader reports ok=false (TypeMismatch) without consuming
// when the next value is not an array header.
func (b *BufferedReader) TryReadArrayHeader() (n int, ok bool, err error) {
	n, ok, err = b.r.TryReadArrayHeader()
	return n, ok, wrapBuffered(err)
}

func (b *BufferedReader) TryReadMapHeader() (n int, ok bool, err error) {
	n, ok, err = b.r.TryReadMapHeader()
	return n, ok, wrapBuffered(err)
}

func (b *BufferedReader) TryReadStringSpan() (s string, ok bool, err error) {
	s, ok, err = b.r.TryReadStringSpan()
	return s, ok, wrapBuffered(err)
}

func (b *BufferedReader) ReadExtensionHeader() (wire.ExtensionHeader, error) {
	h, err := b.r.ReadExtensionHeader()
	return h, wrapBuffered(err)
}

func (b *BufferedReader) ReadExtensionBody(n int) ([]byte, error) {
	v, err := b.r.ReadExtensionBody(n)
	return v, wrapBuffered(err)
}

// Skip consumes the next value as an opaque tree.
func (b *BufferedReader) Skip() error { return wrapBuffered(b.r.Skip()) }

// CreatePeekReader clones the current position without consuming (spec
// §4.2): the clone and b decode independently from here on.
func (b *BufferedReader) CreatePeekReader() *BufferedReader {
	return &BufferedReader{r: b.r.CreatePeekReader()}
}

// Consumed reports the byte offset reached so far.
func (b *BufferedReader) Consumed() int { return b.r.Consumed() }

// Remaining returns the unread tail, e.g. so a path navigator's
// leave_open mode can restore an outer reader past a sub-value it
// yielded (spec §4.6).
func (b *BufferedReader) Remaining() []byte { return b.r.Remaining() }

// Raw exposes the underlying primitive reader for converters that need
// extension helpers (ReadGuid, ReadDecimal, ...) not mirrored here.
func (b *BufferedReader) Raw() *wire.Reader { return b.r }
