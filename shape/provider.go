package shape

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/zoobzio/sentinel"
)

// init registers the struct tags this provider reads off fields with
// sentinel, mirroring processor.go's init() in the teacher repo: sentinel
// only captures tag keys that have been registered.
func init() {
	sentinel.Tag("msgpack")
	sentinel.Tag("mpkey")
	sentinel.Tag("required")
	sentinel.Tag("default")
}

// shapeCache holds shapes built for a reflect.Type. Per the Lifecycle
// invariant in spec §3, a shape is created once per type per provider and
// referenced thereafter; this is that single provider.
var (
	shapeCache   = make(map[reflect.Type]*Shape)
	shapeCacheMu sync.RWMutex
)

var timeType = reflect.TypeOf(time.Time{})

// Of returns the Shape describing T, building and caching it on first use.
// This is the engine's default (reflection + sentinel-tag) type-shape
// provider; §1 of the spec treats shape extraction as an external
// collaborator, so callers may instead hand-construct a *Shape (e.g. for
// generated code) and bypass Of entirely.
func Of[T any]() *Shape {
	var zero T
	return OfType(reflect.TypeOf(zero))
}

// OfType is the non-generic entry point, used internally when recursing
// into member/element/key/value types discovered via reflection.
func OfType(rt reflect.Type) *Shape {
	if rt == nil {
		// An untyped nil (e.g. the zero value of an interface field) has
		// no static shape; callers treat this as KindOpaque so composition
		// fails loudly instead of silently mishandling it.
		return &Shape{Kind: KindOpaque, Name: "<nil>"}
	}

	shapeCacheMu.RLock()
	if s, ok := shapeCache[rt]; ok {
		shapeCacheMu.RUnlock()
		return s
	}
	shapeCacheMu.RUnlock()

	shapeCacheMu.Lock()
	defer shapeCacheMu.Unlock()
	if s, ok := shapeCache[rt]; ok {
		return s
	}

	// Publish a placeholder before recursing so that self-referential
	// struct graphs (A has a field *A) terminate instead of looping
	// forever while we build members (the shape-graph analogue of the
	// kernel's tie-the-knot cache, see converter/cache.go).
	placeholder := &Shape{Kind: KindOpaque, Type: rt, Name: rt.String()}
	shapeCache[rt] = placeholder

	built := build(rt)
	*placeholder = *built
	return placeholder
}

func build(rt reflect.Type) *Shape {
	if union, ok := lookupUnion(rt); ok {
		return union
	}

	switch rt.Kind() {
	case reflect.Ptr:
		elem := OfType(rt.Elem())
		return &Shape{
			Kind: KindNullable, Type: rt, Name: rt.String(),
			Elem: elem, IsPointer: true,
			CanBeReferencePreserved: elem.Kind == KindObject || elem.Kind == KindSequence || elem.Kind == KindMap,
		}

	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarBytes}
		}
		return &Shape{
			Kind: KindSequence, Type: rt, Name: rt.String(),
			Elem: OfType(rt.Elem()), Ordered: true,
			CanBeReferencePreserved: true,
		}

	case reflect.Map:
		return &Shape{
			Kind: KindMap, Type: rt, Name: rt.String(),
			Key: OfType(rt.Key()), Value: OfType(rt.Elem()),
			CanBeReferencePreserved: true,
		}

	case reflect.Struct:
		if rt == timeType {
			return &Shape{Kind: KindScalar, Type: rt, Name: "time.Time", Scalar: ScalarTime}
		}
		return buildObject(rt)

	case reflect.String:
		if isEnum(rt) {
			return buildEnum(rt, ScalarString)
		}
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarString}

	case reflect.Bool:
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarBool}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isEnum(rt) {
			return buildEnum(rt, ScalarInt)
		}
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarInt}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isEnum(rt) {
			return buildEnum(rt, ScalarUint)
		}
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarUint}

	case reflect.Float32:
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarFloat32}
	case reflect.Float64:
		return &Shape{Kind: KindScalar, Type: rt, Name: rt.String(), Scalar: ScalarFloat64}

	case reflect.Interface:
		// An unregistered interface type has no automatic shape: a custom
		// converter factory or union registration is required (spec §4.1,
		// ConverterComposition on Opaque with nothing attached).
		return &Shape{Kind: KindOpaque, Type: rt, Name: rt.String()}

	default:
		return &Shape{Kind: KindOpaque, Type: rt, Name: rt.String()}
	}
}

// isEnum reports whether rt has at least one exported named constant
// discoverable by callers via RegisterEnum; bare named scalar types with no
// registered value set are treated as plain scalars.
func isEnum(rt reflect.Type) bool {
	enumRegistryMu.RLock()
	defer enumRegistryMu.RUnlock()
	_, ok := enumRegistry[rt]
	return ok
}

func buildEnum(rt reflect.Type, underlying ScalarKind) *Shape {
	enumRegistryMu.RLock()
	def := enumRegistry[rt]
	enumRegistryMu.RUnlock()

	names := make(map[int64]string, len(def))
	byWire := make(map[string]int64, len(def))
	for val, name := range def {
		names[val] = name
		byWire[name] = val
	}
	_ = underlying
	return &Shape{
		Kind: KindEnum, Type: rt, Name: rt.String(),
		EnumNames: names, EnumByWire: byWire, EnumByName: true,
	}
}

var (
	enumRegistryMu sync.RWMutex
	enumRegistry   = make(map[reflect.Type]map[int64]string)
)

// RegisterEnum declares the wire names for an enum type's values. Until a
// type is registered here, Of treats it as a plain integer/string scalar.
func RegisterEnum(rt reflect.Type, values map[int64]string) {
	enumRegistryMu.Lock()
	defer enumRegistryMu.Unlock()
	enumRegistry[rt] = values
}

func buildObject(rt reflect.Type) *Shape {
	spec := sentinel.Scan(reflect.New(rt).Elem().Interface())
	s := &Shape{
		Kind: KindObject, Type: rt, Name: spec.TypeName,
		CanBeReferencePreserved: true,
	}
	if s.Name == "" {
		s.Name = rt.Name()
	}

	canConstructEmpty := true
	allHaveKeys := true

	for _, field := range spec.Fields {
		if field.Kind == sentinel.KindStruct || field.Kind == sentinel.KindPointer ||
			field.Kind == sentinel.KindSlice || field.Kind == sentinel.KindMap ||
			field.Kind == sentinel.KindInterface || field.Kind == sentinel.KindScalar {
			// fall through: every field kind sentinel recognizes maps onto
			// a member; the Kind value itself is informational only here,
			// the real shape comes from OfType(field.ReflectType).
		}

		if field.ReflectType.Kind() == reflect.Map && field.ReflectType.Name() == "UnusedData" {
			s.UnusedDataField = field.Index
			continue
		}

		name := field.Name
		explicit := false
		if tag, ok := field.Tags["msgpack"]; ok && tag != "" && tag != "-" {
			name = tag
			explicit = true
		}
		if tag, ok := field.Tags["msgpack"]; ok && tag == "-" {
			continue
		}

		m := Member{
			Name:            name,
			HasExplicitName: explicit,
			FieldIndex:      field.Index,
			Shape:           OfType(field.ReflectType),
			CanGet:          true,
			CanSet:          true,
		}
		m.IsNullable = m.Shape.Kind == KindNullable
		m.IsValueType = !m.IsNullable && m.Shape.Kind != KindObject && m.Shape.Kind != KindMap && m.Shape.Kind != KindSequence

		if keyTag, ok := field.Tags["mpkey"]; ok {
			var idx int
			if _, err := fmt.Sscanf(keyTag, "%d", &idx); err == nil {
				m.Key = &idx
			}
		}
		if m.Key == nil {
			allHaveKeys = false
		}

		if reqTag, ok := field.Tags["required"]; ok && reqTag == "true" {
			m.IsRequired = true
		}
		if defTag, ok := field.Tags["default"]; ok {
			m.HasDefault = true
			m.Default = defTag
		} else if !m.IsRequired {
			m.HasDefault = true
			m.Default = reflect.Zero(field.ReflectType).Interface()
		}

		s.Members = append(s.Members, m)
	}

	s.PreferArray = allHaveKeys && len(s.Members) > 0
	s.Constructor = Constructor{CanConstructEmpty: canConstructEmpty}
	return s
}
