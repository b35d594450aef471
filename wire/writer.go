// Package wire adapts github.com/vmihailenco/msgpack/v5's low-level
// Encoder/Decoder into the primitive-codec surface the engine's converters
// are written against (spec §1: "assumed to exist as a low-level codec
// providing WriteInt, ReadArrayHeader, TryReadStringSpan, WriteExtension,
// etc."). Nothing above this package talks to vmihailenco/msgpack
// directly.
package wire

import (
	"bytes"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Writer accumulates a MessagePack byte stream. It is not safe for
// concurrent use; callers serialize one top-level value per Writer.
type Writer struct {
	buf *bytes.Buffer
	enc *msgpack.Encoder
}

// NewWriter returns a Writer with a fresh backing buffer.
func NewWriter() *Writer {
	buf := &bytes.Buffer{}
	return &Writer{buf: buf, enc: msgpack.NewEncoder(buf)}
}

// Bytes returns the accumulated stream. The slice is only valid until the
// next write.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len reports the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

func (w *Writer) WriteNil() error              { return w.enc.EncodeNil() }
func (w *Writer) WriteBool(v bool) error       { return w.enc.EncodeBool(v) }
func (w *Writer) WriteInt(v int64) error       { return w.enc.EncodeInt64(v) }
func (w *Writer) WriteUint(v uint64) error     { return w.enc.EncodeUint64(v) }
func (w *Writer) WriteFloat32(v float32) error { return w.enc.EncodeFloat32(v) }
func (w *Writer) WriteFloat64(v float64) error { return w.enc.EncodeFloat64(v) }
func (w *Writer) WriteString(v string) error   { return w.enc.EncodeString(v) }
func (w *Writer) WriteBytes(v []byte) error    { return w.enc.EncodeBytes(v) }
func (w *Writer) WriteTime(v time.Time) error  { return w.enc.EncodeTime(v) }

// WriteArrayHeader writes a fixed-length array header; the caller writes
// exactly n values next.
func (w *Writer) WriteArrayHeader(n int) error { return w.enc.EncodeArrayLen(n) }

// WriteMapHeader writes a fixed-length map header; the caller writes
// exactly n key/value pairs next.
func (w *Writer) WriteMapHeader(n int) error { return w.enc.EncodeMapLen(n) }

// WriteRaw appends already-encoded bytes directly to the stream, used to
// re-emit a version-safe object's unused-data packet without decoding
// and re-encoding it (spec §3: "re-emits them on write").
func (w *Writer) WriteRaw(b []byte) error {
	_, err := w.buf.Write(b)
	return err
}

// WriteExtension writes a complete extension value (header + body) with
// the given type code, used for ObjectReference, Decimal, BigInteger,
// Int128/UInt128, Guid, and non-UTC hi-fi DateTime (spec §6).
func (w *Writer) WriteExtension(typeCode int8, body []byte) error {
	if err := w.enc.EncodeExtHeader(typeCode, len(body)); err != nil {
		return err
	}
	_, err := w.buf.Write(body)
	return err
}
