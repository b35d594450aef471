package wire

import (
	"encoding/binary"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WriteGuid writes a 16-byte Guid extension (spec §6), backed by
// google/uuid's standard big-endian byte layout.
func (w *Writer) WriteGuid(id uuid.UUID) error {
	b, err := id.MarshalBinary()
	if err != nil {
		return err
	}
	return w.WriteExtension(ExtGuid, b)
}

// ReadGuid reads a Guid extension body already separated from its header
// by ReadExtensionHeader.
func ReadGuid(body []byte) (uuid.UUID, error) {
	var id uuid.UUID
	err := id.UnmarshalBinary(body)
	return id, err
}

// WriteDecimal writes a Decimal extension as a one-byte sign (1 for a
// negative coefficient), a 4-byte big-endian exponent, and then the
// coefficient's magnitude as unsigned big-endian bytes, matching the
// precision decimal.Decimal itself tracks (spec §6's 16-byte fixed
// payload is the common case; this engine uses a variable-length
// coefficient so values outside 96-bit range round-trip too).
func (w *Writer) WriteDecimal(d decimal.Decimal) error {
	coeff := d.Coefficient()
	exp := d.Exponent()
	coeffBytes := coeff.Bytes()
	sign := byte(0)
	if coeff.Sign() < 0 {
		sign = 1
	}
	body := make([]byte, 0, len(coeffBytes)+5)
	body = append(body, sign)
	var expBuf [4]byte
	binary.BigEndian.PutUint32(expBuf[:], uint32(exp))
	body = append(body, expBuf[:]...)
	body = append(body, coeffBytes...)
	return w.WriteExtension(ExtDecimal, body)
}

// ReadDecimal reverses WriteDecimal.
func ReadDecimal(body []byte) (decimal.Decimal, error) {
	if len(body) < 5 {
		return decimal.Decimal{}, ErrShortBuffer
	}
	sign := body[0]
	exp := int32(binary.BigEndian.Uint32(body[1:5]))
	coeff := new(big.Int).SetBytes(body[5:])
	if sign == 1 {
		coeff.Neg(coeff)
	}
	return decimal.NewFromBigInt(coeff, exp), nil
}

// WriteBigInteger writes a minimal-length two's complement big-endian
// integer extension (spec §6 BigInteger).
func (w *Writer) WriteBigInteger(v *big.Int) error {
	body := bigIntBytes(v)
	return w.WriteExtension(ExtBigInteger, body)
}

// ReadBigInteger reverses WriteBigInteger.
func ReadBigInteger(body []byte) *big.Int {
	return bigIntFromBytes(body)
}

func bigIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return []byte{0}
	}
	abs := new(big.Int).Abs(v)
	b := abs.Bytes()
	// Ensure a clear sign bit for positives sharing a byte boundary with
	// the two's complement high bit.
	if v.Sign() > 0 && b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	if v.Sign() < 0 {
		twos := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		twos.Add(twos, v)
		b = twos.Bytes()
		if len(b) == 0 || b[0]&0x80 == 0 {
			b = append([]byte{0xff}, b...)
		}
	}
	return b
}

func bigIntFromBytes(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, full)
	}
	return v
}

// WriteInt128 writes a 16-byte big-endian two's complement signed
// 128-bit integer.
func (w *Writer) WriteInt128(hi, lo uint64) error {
	body := make([]byte, 16)
	binary.BigEndian.PutUint64(body[0:8], hi)
	binary.BigEndian.PutUint64(body[8:16], lo)
	return w.WriteExtension(ExtInt128, body)
}

// ReadInt128 reverses WriteInt128, returning the high and low 64-bit
// halves of the big-endian payload.
func ReadInt128(body []byte) (hi, lo uint64, err error) {
	if len(body) != 16 {
		return 0, 0, ErrShortBuffer
	}
	return binary.BigEndian.Uint64(body[0:8]), binary.BigEndian.Uint64(body[8:16]), nil
}

// DateTimeKind mirrors the assumed_datetime_kind option's vocabulary for
// the non-UTC hi-fi wire shape (spec §6).
type DateTimeKind int

const (
	DateTimeUnspecified DateTimeKind = iota
	DateTimeUTC
	DateTimeLocal
)

// WriteDateTimeHiFi writes an extension whose 9-byte body is t's UnixNano
// as a big-endian 64-bit integer followed by one kind byte, used
// when hi_fi_datetime is enabled and the value is not UTC, preserving the
// distinction a plain timestamp would lose.
func (w *Writer) WriteDateTimeHiFi(t time.Time, kind DateTimeKind) error {
	body := make([]byte, 9)
	binary.BigEndian.PutUint64(body[0:8], uint64(t.UnixNano()))
	body[8] = byte(kind)
	return w.WriteExtension(ExtDateTimeHiFi, body)
}

// ReadDateTimeHiFi reverses WriteDateTimeHiFi.
func ReadDateTimeHiFi(body []byte) (time.Time, DateTimeKind, error) {
	if len(body) != 9 {
		return time.Time{}, 0, ErrShortBuffer
	}
	nanos := int64(binary.BigEndian.Uint64(body[0:8]))
	return time.Unix(0, nanos).UTC(), DateTimeKind(body[8]), nil
}
