package wire

import (
	"bytes"
	"errors"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrShortBuffer is returned by any Read* method when the underlying byte
// slice ends before a complete value was read. The streaming layer
// (streamreader package) turns this into InsufficientBuffer by checking
// errors.Is(err, ErrShortBuffer).
var ErrShortBuffer = errors.New("wire: short buffer")

// Reader decodes MessagePack primitives from a fixed byte slice. It never
// blocks and never asks for more data; the caller (streamreader) is
// responsible for ensuring enough bytes are present, or for retrying after
// an ErrShortBuffer-class error once more bytes have arrived.
type Reader struct {
	data []byte
	br   *bytes.Reader
	dec  *msgpack.Decoder
}

// NewReader wraps data for decoding starting at offset 0.
func NewReader(data []byte) *Reader {
	br := bytes.NewReader(data)
	return &Reader{data: data, br: br, dec: msgpack.NewDecoder(br)}
}

// Consumed reports how many bytes have been read off the front of data.
func (r *Reader) Consumed() int { return len(r.data) - r.br.Len() }

// Remaining returns the unread tail of data.
func (r *Reader) Remaining() []byte { return r.data[r.Consumed():] }

// Clone returns an independent reader positioned at the same offset,
// sharing no mutable state with r: this is the "peek reader" of spec §4.2
// — advancing the clone never advances r.
func (r *Reader) Clone() *Reader { return NewReader(r.Remaining()) }

func wrapShort(err error) error {
	if err == nil {
		return nil
	}
	if msgpack.IsEOF(err) {
		return ErrShortBuffer
	}
	return err
}

func (r *Reader) PeekCode() (byte, error) {
	code, err := r.dec.PeekCode()
	return code, wrapShort(err)
}

func (r *Reader) ReadNil() error {
	return wrapShort(r.dec.DecodeNil())
}

// IsNil reports whether the next value is nil, without consuming it.
func (r *Reader) IsNil() (bool, error) {
	code, err := r.PeekCode()
	if err != nil {
		return false, err
	}
	return code == codeNil, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.dec.DecodeBool()
	return v, wrapShort(err)
}

func (r *Reader) ReadInt() (int64, error) {
	v, err := r.dec.DecodeInt64()
	return v, wrapShort(err)
}

func (r *Reader) ReadUint() (uint64, error) {
	v, err := r.dec.DecodeUint64()
	return v, wrapShort(err)
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.dec.DecodeFloat32()
	return v, wrapShort(err)
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.dec.DecodeFloat64()
	return v, wrapShort(err)
}

func (r *Reader) ReadString() (string, error) {
	v, err := r.dec.DecodeString()
	return v, wrapShort(err)
}

func (r *Reader) ReadBytes() ([]byte, error) {
	v, err := r.dec.DecodeBytes()
	return v, wrapShort(err)
}

func (r *Reader) ReadTime() (time.Time, error) {
	v, err := r.dec.DecodeTime()
	return v, wrapShort(err)
}

// TryReadStringSpan reads a string only if the next value is actually a
// string-coded value; otherwise it reports ok=false without consuming
// anything (spec §4.2's TryRead* family).
func (r *Reader) TryReadStringSpan() (s string, ok bool, err error) {
	code, err := r.PeekCode()
	if err != nil {
		return "", false, err
	}
	if !isStringCode(code) {
		return "", false, nil
	}
	s, err = r.ReadString()
	return s, err == nil, err
}

func (r *Reader) ReadArrayHeader() (int, error) {
	n, err := r.dec.DecodeArrayLen()
	return n, wrapShort(err)
}

// TryReadArrayHeader is the non-consuming-on-mismatch counterpart used by
// the object converter to choose between map and array layout on read.
func (r *Reader) TryReadArrayHeader() (n int, ok bool, err error) {
	code, err := r.PeekCode()
	if err != nil {
		return 0, false, err
	}
	if !isArrayCode(code) {
		return 0, false, nil
	}
	n, err = r.ReadArrayHeader()
	return n, err == nil, err
}

func (r *Reader) ReadMapHeader() (int, error) {
	n, err := r.dec.DecodeMapLen()
	return n, wrapShort(err)
}

func (r *Reader) TryReadMapHeader() (n int, ok bool, err error) {
	code, err := r.PeekCode()
	if err != nil {
		return 0, false, err
	}
	if !isMapCode(code) {
		return 0, false, nil
	}
	n, err = r.ReadMapHeader()
	return n, err == nil, err
}

// ExtensionHeader describes a decoded extension's type code and body
// length, before the body itself has been read.
type ExtensionHeader struct {
	TypeCode int8
	Length   int
}

func (r *Reader) ReadExtensionHeader() (ExtensionHeader, error) {
	typeCode, length, err := r.dec.DecodeExtHeader()
	if err != nil {
		return ExtensionHeader{}, wrapShort(err)
	}
	return ExtensionHeader{TypeCode: typeCode, Length: length}, nil
}

// ReadExtensionBody reads exactly n raw bytes, meant to follow
// ReadExtensionHeader.
func (r *Reader) ReadExtensionBody(n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := r.br.Read(buf[read:])
		read += m
		if err != nil {
			return nil, wrapShort(err)
		}
	}
	return buf, nil
}

// Skip consumes the next value as an opaque tree without decoding it,
// leaving the cursor immediately after it (spec §4.2 skip).
func (r *Reader) Skip() error {
	return wrapShort(r.dec.Skip())
}

// CreatePeekReader is an alias for Clone kept for readability at call
// sites that mirror the spec's naming directly.
func (r *Reader) CreatePeekReader() *Reader { return r.Clone() }

// Reset repositions r to decode from remaining, discarding any buffered
// decoder state. Used by the path navigator's leave_open restore (spec
// §4.6): a peek reader establishes where the enclosing structure ends,
// and the real reader is reset to that tail so sibling top-level
// structures stay decodable.
func (r *Reader) Reset(remaining []byte) {
	*r = *NewReader(remaining)
}
