package wire

// MessagePack format byte ranges, used only to classify the next code
// peeked off the stream for the Try* family; actual decoding is always
// delegated to the vmihailenco/msgpack decoder.
const (
	codeNil = 0xc0

	codeFixStrMin = 0xa0
	codeFixStrMax = 0xbf
	codeStr8      = 0xd9
	codeStr16     = 0xda
	codeStr32     = 0xdb

	codeFixArrayMin = 0x90
	codeFixArrayMax = 0x9f
	codeArray16     = 0xdc
	codeArray32     = 0xdd

	codeFixMapMin = 0x80
	codeFixMapMax = 0x8f
	codeMap16     = 0xde
	codeMap32     = 0xdf
)

func isStringCode(code byte) bool {
	switch {
	case code >= codeFixStrMin && code <= codeFixStrMax:
		return true
	case code == codeStr8, code == codeStr16, code == codeStr32:
		return true
	default:
		return false
	}
}

func isArrayCode(code byte) bool {
	switch {
	case code >= codeFixArrayMin && code <= codeFixArrayMax:
		return true
	case code == codeArray16, code == codeArray32:
		return true
	default:
		return false
	}
}

// IsArrayCode reports whether code is an array-header leading byte,
// exposed for callers (the streamreader package's Skip) that need to
// classify a peeked code without a full Reader.
func IsArrayCode(code byte) bool { return isArrayCode(code) }

// IsStringCode reports whether code leads a string value, exposed for
// callers (the path package's generic map-key decoding) that need to
// classify a peeked code without a full Reader.
func IsStringCode(code byte) bool { return isStringCode(code) }

// IsMapCode reports whether code is a map-header leading byte.
func IsMapCode(code byte) bool { return isMapCode(code) }

const (
	codeFixExt1  = 0xd4
	codeFixExt16 = 0xd8
	codeExt8     = 0xc7
	codeExt16    = 0xc8
	codeExt32    = 0xc9
)

// IsExtCode reports whether code leads a MessagePack extension value.
func IsExtCode(code byte) bool {
	switch {
	case code >= codeFixExt1 && code <= codeFixExt16:
		return true
	case code == codeExt8, code == codeExt16, code == codeExt32:
		return true
	default:
		return false
	}
}

func isMapCode(code byte) bool {
	switch {
	case code >= codeFixMapMin && code <= codeFixMapMax:
		return true
	case code == codeMap16, code == codeMap32:
		return true
	default:
		return false
	}
}

// Extension type codes for the spec §6 library extensions. These occupy
// the application-defined range (0 to 127) of MessagePack's ext type
// byte, chosen to avoid collision with each other. They are fixed: no
// Config option remaps them.
const (
	ExtObjectReference = int8(1)
	ExtDecimal         = int8(2)
	ExtBigInteger      = int8(3)
	ExtInt128          = int8(4)
	ExtUInt128         = int8(5)
	ExtGuid            = int8(6)
	ExtDateTimeHiFi    = int8(7)
)
