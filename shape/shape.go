package shape

import "reflect"

// Marshaller converts between a user type and a proxy type for Surrogate
// shapes. Implementations are supplied by callers (e.g. for guid/decimal
// string forms, which this engine treats as external collaborators per
// spec §1).
type Marshaller interface {
	// ToProxy converts a user value into its proxy representation.
	ToProxy(value reflect.Value) (reflect.Value, error)
	// FromProxy converts a decoded proxy value back into the user type.
	FromProxy(proxy reflect.Value) (reflect.Value, error)
}

// UnionCase pairs a discriminator with the sub-shape it selects.
type UnionCase struct {
	// IntTag is used when the union's discriminator encoding is integer.
	IntTag int32
	// StringTag is used when the union's discriminator encoding is string.
	StringTag string
	// UseString reports which of IntTag/StringTag is active for this case.
	UseString bool
	Type      reflect.Type
	Shape     *Shape
}

// Shape is a passive description of a type's structure. Exactly the fields
// relevant to Kind are meaningful; the rest are zero.
type Shape struct {
	Kind Kind
	Type reflect.Type
	// Name is a diagnostic label (e.g. for SerializationError paths and
	// telemetry), not necessarily the wire name.
	Name string

	// --- KindScalar ---
	Scalar ScalarKind

	// --- KindEnum ---
	EnumNames map[int64]string
	EnumByWire map[string]int64
	EnumByName bool // serialize_enums_by_name

	// --- KindNullable / KindSequence (Elem) ---
	Elem *Shape
	// Ordered is meaningful for KindSequence: true for slices/arrays
	// (position-significant), false for set-like sequences.
	Ordered bool
	// IsPointer distinguishes a Nullable backed by a pointer (reference
	// null) from one backed by a value wrapper (nullable value type),
	// per the object layer's "Null object rule" (spec §4.3).
	IsPointer bool

	// --- KindMap ---
	Key   *Shape
	Value *Shape

	// --- KindObject ---
	Members     []Member
	Constructor Constructor
	// PreferArray records that every member has a Key. The converter does
	// not read it: it chooses the layout per write from the members that
	// write emits and the configured slack.
	PreferArray bool
	// UnusedDataField is the FieldIndex of a member of type
	// shapepack.UnusedData, if the struct declares one, identifying the
	// slot the version-safe unused-data packet is stored/restored through
	// (spec §3: "captures exactly the bytes read for members the target
	// type did not recognize, and re-emits them on write"). Nil when the
	// struct opts out of version-safety.
	UnusedDataField []int

	// --- KindUnion ---
	Base        *Shape
	Cases       []UnionCase
	DuckTyped   bool
	discriminant string // "int" or "string"; set by RegisterUnion.

	// --- KindSurrogate ---
	Proxy      *Shape
	Marshaller Marshaller

	// CanBeReferencePreserved mirrors the converter-level flag from spec
	// §3: primitives are never reference-tracked even when reached through
	// a shape that nests them.
	CanBeReferencePreserved bool
}

// IsPrimitive reports whether values of this shape are excluded from
// reference tracking (spec §4.5 invariants): scalars, and enums backed by
// scalars, are never tracked.
func (s *Shape) IsPrimitive() bool {
	return s.Kind == KindScalar || s.Kind == KindEnum
}
