package wire

// PutVarint and Varint implement the unsigned LEB128 varint encoding used
// for the ObjectReference extension's id payload (spec §4.5: "payload is
// the id, varint-packed").

// PutVarint appends the LEB128 encoding of v to dst and returns the
// result.
func PutVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Varint decodes a LEB128 value from the front of b, returning the value
// and the number of bytes consumed, or ok=false if b ends mid-varint.
func Varint(b []byte) (v uint64, n int, ok bool) {
	var shift uint
	for n < len(b) {
		c := b[n]
		v |= uint64(c&0x7f) << shift
		n++
		if c&0x80 == 0 {
			return v, n, true
		}
		shift += 7
	}
	return 0, n, false
}
