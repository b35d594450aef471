package shape

import "reflect"

// Member describes one property on an Object shape.
type Member struct {
	// Name is the wire-visible label, before any converter-level naming
	// policy has run (naming is applied per-Kernel, not here, since the
	// underlying Shape is shared across every Config — see
	// converter.Kernel.composeObject).
	Name string
	// HasExplicitName reports whether Name came from an explicit
	// `msgpack:"..."` tag, which pins it against the naming policy.
	HasExplicitName bool
	// Key is the array-layout slot, when the object supports array form.
	// Nil means this member has no fixed slot and forces map form.
	Key *int
	// IsRequired means deserialization fails with MissingRequiredProperty
	// when the member is absent, unless the policy allows it.
	IsRequired bool
	// HasDefault means a default value is substituted when the member is
	// absent on read and not required; a required member left absent
	// under the allow-missing policy keeps its zero value instead.
	HasDefault bool
	// Default is the value used when HasDefault is true and the member was
	// not seen on read.
	Default any
	// IsNullable means a nil on the wire is an acceptable value.
	IsNullable bool
	// IsValueType distinguishes value-like members (affects the
	// serialize_default_values ValueTypes/ReferenceTypes flag split).
	IsValueType bool
	// Shape is the member's own shape, resolved lazily by the kernel.
	Shape *Shape
	// FieldIndex is the reflect.Value.FieldByIndex path for the default
	// reflection-based accessor.
	FieldIndex []int
	// CanGet / CanSet mirror the spec's getter/setter capability handles:
	// constructor-only params are set-only, computed members are get-only.
	CanGet bool
	CanSet bool
}

// Get reads the member's value off obj using the reflection accessor.
func (m Member) Get(obj reflect.Value) reflect.Value {
	return obj.FieldByIndex(m.FieldIndex)
}

// Set writes val into the member's slot on obj using the reflection
// accessor. obj must be addressable.
func (m Member) Set(obj, val reflect.Value) {
	field := obj.FieldByIndex(m.FieldIndex)
	field.Set(val)
}

// Constructor describes how an Object shape builds a value from staged
// member values. The zero Constructor means "use the zero value of the
// struct type and set fields directly" (Go's default construction path);
// Params is only populated for types that require constructor-style
// binding (every required member must be set before the type is usable).
type Constructor struct {
	// Params lists members that must be bound at construction time, in
	// declaration order, mirroring the spec's "parameters are bound in
	// constructor declaration order from staging" rule.
	Params []Member
	// CanConstructEmpty reports whether the shape supports two-phase
	// construction: an empty/default instance now, members assigned later.
	// Shapes without this capability cannot participate in both edges of
	// a reference cycle (see reference.Tracker, spec §4.5.1).
	CanConstructEmpty bool
}
