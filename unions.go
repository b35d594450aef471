package shapepack

import (
	"reflect"

	"github.com/zoobzio/shapepack/shape"
)

// CaseOption configures one UnionCase entry.
type CaseOption func(*shape.UnionCaseDef)

// WithIntTag sets the integer discriminator for a union case.
func WithIntTag(tag int32) CaseOption {
	return func(d *shape.UnionCaseDef) { d.IntTag = tag }
}

// WithStringTag sets the string discriminator for a union case.
func WithStringTag(tag string) CaseOption {
	return func(d *shape.UnionCaseDef) { d.StringTag = tag }
}

// UnionCase declares one dispatchable sub-type of a union, typically
// passed to RegisterUnion or RegisterDuckTypedUnion.
func UnionCase[T any](opts ...CaseOption) shape.UnionCaseDef {
	var zero T
	d := shape.UnionCaseDef{Type: reflect.TypeOf(zero)}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// RegisterUnion declares Base's dispatchable sub-types at init/config time
// (spec §4.4). useString selects a string discriminator over an int one.
func RegisterUnion[Base any](useString bool, cases ...shape.UnionCaseDef) {
	shape.RegisterUnion(baseType[Base](), useString, cases...)
}

// RegisterUnionOverride installs a runtime override for Base, replacing any
// statically registered case set entirely.
func RegisterUnionOverride[Base any](useString bool, cases ...shape.UnionCaseDef) {
	shape.RegisterUnionOverride(baseType[Base](), useString, cases...)
}

// RegisterDuckTypedUnion declares a union dispatched by the presence of a
// required property unique to exactly one sub-type (spec §4.4).
func RegisterDuckTypedUnion[Base any](cases ...shape.UnionCaseDef) {
	shape.RegisterDuckTypedUnion(baseType[Base](), cases...)
}

// RegisterEnum declares the wire names for an enum type's values.
func RegisterEnum[T any](values map[int64]string) {
	var zero T
	shape.RegisterEnum(reflect.TypeOf(zero), values)
}

func baseType[T any]() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}
