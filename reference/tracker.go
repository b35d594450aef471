// Package reference implements the object-reference tracker of spec
// §4.5: identity-keyed tables on write, id-indexed resolution on read,
// and the two-phase "hole" mechanism that lets AllowCycles mode
// construct cyclic graphs.
package reference

import (
	"reflect"
	"unsafe"

	"github.com/zoobzio/shapepack/cerr"
)

// Mode selects how the tracker treats repeated/cyclic references.
type Mode int

const (
	Off Mode = iota
	RejectCycles
	AllowCycles
)

// slot tracks one write-side sighting, or one read-side allocation.
type slot struct {
	id        uint32
	value     reflect.Value
	hole      bool
	populated bool
}

// Tracker is created fresh per top-level serialize/deserialize call (spec
// §3 "Reference tables: created per serialize/deserialize call; discarded
// at the end.") and is not safe for concurrent use from multiple calls.
type Tracker struct {
	mode Mode

	nextID uint32

	// write side: identity (pointer value or map/slice data pointer) -> slot
	byIdentity map[uintptr]*slot
	// read side: id -> slot
	byID map[uint32]*slot

	// inFlight tracks identities currently being written, for
	// RejectCycles detection before a write-side id is even assigned.
	inFlight map[uintptr]bool
}

// New creates a tracker in the given mode.
func New(mode Mode) *Tracker {
	return &Tracker{
		mode:       mode,
		byIdentity: make(map[uintptr]*slot),
		byID:       make(map[uint32]*slot),
		inFlight:   make(map[uintptr]bool),
	}
}

// Mode reports the tracker's configured mode.
func (t *Tracker) Mode() Mode { return t.mode }

// Identity returns a stable, comparable key for v's underlying storage,
// and ok=false for kinds with no meaningful identity (tracked values are
// non-nil pointers, maps and slices, and non-empty strings; every other
// kind, an interface included, reports ok=false).
func Identity(v reflect.Value) (uintptr, bool) {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.UnsafePointer:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.Slice:
		if v.IsNil() {
			return 0, false
		}
		return v.Pointer(), true
	case reflect.String:
		// A string's identity is its backing byte array, not its
		// contents: two equal-but-distinct strings must not collapse
		// to one id (spec §4.5 preserve_string_identity tracks object
		// identity, string interning tracks content equality instead).
		s := v.String()
		if s == "" {
			return 0, false
		}
		return uintptr(unsafe.Pointer(unsafe.StringData(s))), true
	default:
		return 0, false
	}
}

// WriteSeen reports whether v has already been written under this
// tracker. firstSighting is true the first time an identity is seen, in
// which case the caller must proceed to emit the body alone (the id is
// implied by the order of first sightings and is not written); otherwise
// the caller must emit only a back-reference to id.
func (t *Tracker) WriteSeen(v reflect.Value) (id uint32, firstSighting bool, track bool) {
	if t.mode == Off {
		return 0, true, false
	}
	key, ok := Identity(v)
	if !ok {
		return 0, true, false
	}
	if s, exists := t.byIdentity[key]; exists {
		return s.id, false, true
	}
	id = t.nextID
	t.nextID++
	t.byIdentity[key] = &slot{id: id, value: v}
	return id, true, true
}

// ReadAllocateID assigns the next id on the read side before decoding a
// non-primitive value's body, per spec §4.5 ("assign the next id before
// decoding the body").
func (t *Tracker) ReadAllocateID() uint32 {
	id := t.nextID
	t.nextID++
	return id
}

// ReadRecord stores the fully-decoded value under id.
func (t *Tracker) ReadRecord(id uint32, v reflect.Value) {
	t.byID[id] = &slot{id: id, value: v, populated: true}
}

// ReadHole allocates a placeholder container for id, to be populated
// later (AllowCycles two-phase construction). placeholder must be an
// addressable, already-constructed zero value of the target type (e.g.
// reflect.New(t).Elem() for a struct, or a freshly made map/slice).
func (t *Tracker) ReadHole(id uint32, placeholder reflect.Value) {
	t.byID[id] = &slot{id: id, value: placeholder, hole: true}
}

// FillHole marks a previously allocated hole as populated, once its
// member assignments have been applied in place.
func (t *Tracker) FillHole(id uint32) {
	if s, ok := t.byID[id]; ok {
		s.hole = false
		s.populated = true
	}
}

// ReadResolve returns the value previously recorded for id. Under
// AllowCycles it also succeeds for a hole not yet filled (the caller gets
// the same container, which will observe later in-place fills via shared
// identity); under any other mode such a hole fails UnresolvedReference.
func (t *Tracker) ReadResolve(id uint32) (reflect.Value, error) {
	s, ok := t.byID[id]
	if !ok {
		return reflect.Value{}, cerr.New(cerr.CodeUnresolvedReference, nil)
	}
	if s.hole && t.mode != AllowCycles {
		return reflect.Value{}, cerr.New(cerr.CodeUnresolvedReference, nil)
	}
	return s.value, nil
}

// InFlight reports whether v's identity is currently under construction
// by an enclosing BeginConstruct call that has not yet released. Always
// false outside RejectCycles mode. Used to tell a legitimate repeat
// reference (the same object written twice, sequentially, from
// unrelated fields) apart from a genuine cycle (a repeat sighting that
// occurs while the first sighting's body is still being written).
func (t *Tracker) InFlight(v reflect.Value) bool {
	if t.mode != RejectCycles {
		return false
	}
	key, ok := Identity(v)
	if !ok {
		return false
	}
	return t.inFlight[key]
}

// BeginConstruct marks key as under construction for RejectCycles
// detection; the returned release func must be called (typically via
// defer) once the value is fully built.
func (t *Tracker) BeginConstruct(v reflect.Value) (release func(), cycle bool) {
	if t.mode != RejectCycles {
		return func() {}, false
	}
	key, ok := Identity(v)
	if !ok {
		return func() {}, false
	}
	if t.inFlight[key] {
		return func() {}, true
	}
	t.inFlight[key] = true
	return func() { delete(t.inFlight, key) }, false
}
