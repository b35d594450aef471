package shape

import (
	"reflect"
	"sync"
)

// UnionCaseDef declares one sub-type of a union at registration time.
type UnionCaseDef struct {
	// IntTag is the discriminator when the union encodes integers.
	IntTag int32
	// StringTag is the discriminator when the union encodes strings.
	StringTag string
	// Type is the concrete sub-type (a struct, or a pointer-to-struct for
	// reference-like cases).
	Type reflect.Type
}

type unionDef struct {
	base      reflect.Type
	useString bool
	duckTyped bool
	cases     []UnionCaseDef
}

var (
	unionRegistryMu sync.RWMutex
	// unionRegistry maps the base (interface) type to its static,
	// attribute/registration-time case set.
	unionRegistry = make(map[reflect.Type]*unionDef)
	// unionOverride holds runtime registrations that replace the static
	// set wholesale, per spec §4.4 "runtime registration overrides static
	// registration; partial registration does not merge".
	unionOverride = make(map[reflect.Type]*unionDef)
)

// RegisterUnion declares the base interface type and its dispatchable
// sub-types at init/config time (the "static" registration the spec
// contrasts with DerivedTypeMappings runtime overrides).
func RegisterUnion(base reflect.Type, useString bool, cases ...UnionCaseDef) {
	unionRegistryMu.Lock()
	defer unionRegistryMu.Unlock()
	unionRegistry[base] = &unionDef{base: base, useString: useString, cases: cases}
	delete(shapeCacheFor(base), base)
}

// RegisterUnionOverride installs a runtime override for base, replacing any
// statically registered set entirely (spec §4.4: "partial registration does
// not merge").
func RegisterUnionOverride(base reflect.Type, useString bool, cases ...UnionCaseDef) {
	unionRegistryMu.Lock()
	defer unionRegistryMu.Unlock()
	unionOverride[base] = &unionDef{base: base, useString: useString, cases: cases}
	delete(shapeCacheFor(base), base)
}

// RegisterDuckTypedUnion declares a union dispatched by the presence of a
// required property unique to exactly one sub-type, rather than an
// explicit discriminator (spec §4.4 "Duck-typed discrimination").
func RegisterDuckTypedUnion(base reflect.Type, cases ...UnionCaseDef) {
	unionRegistryMu.Lock()
	defer unionRegistryMu.Unlock()
	unionRegistry[base] = &unionDef{base: base, duckTyped: true, cases: cases}
	delete(shapeCacheFor(base), base)
}

// shapeCacheFor is a tiny indirection so Register* can invalidate a
// previously cached shape for base after a (re)registration; in steady
// state registration happens before first use and this is a no-op.
func shapeCacheFor(reflect.Type) map[reflect.Type]*Shape {
	shapeCacheMu.Lock()
	defer shapeCacheMu.Unlock()
	return shapeCache
}

func lookupUnion(rt reflect.Type) (*Shape, bool) {
	unionRegistryMu.RLock()
	def, ok := unionOverride[rt]
	if !ok {
		def, ok = unionRegistry[rt]
	}
	unionRegistryMu.RUnlock()
	if !ok {
		return nil, false
	}

	s := &Shape{
		Kind: KindUnion, Type: rt, Name: rt.String(),
		DuckTyped:               def.duckTyped,
		CanBeReferencePreserved: true,
	}
	if def.useString {
		s.discriminant = "string"
	} else {
		s.discriminant = "int"
	}

	for _, c := range def.cases {
		caseShape := OfType(c.Type)
		s.Cases = append(s.Cases, UnionCase{
			IntTag: c.IntTag, StringTag: c.StringTag, UseString: def.useString,
			Type: c.Type, Shape: caseShape,
		})
	}
	return s, true
}

// NearestAncestor resolves the spec §4.4 dispatch rule for a runtime type
// that is not itself registered: the registered type that is its shortest
// ancestor, found by walking embedded fields outward. This is computed once
// per (base, runtime type) pair by the union converter and cached there
// (spec §9: "a table precomputation, not a runtime search"), rather than
// here, since only the converter knows which runtime types it has seen.
// Returns ok=false when no ancestor is registered (the base's own
// converter, nil discriminator, applies).
func NearestAncestor(s *Shape, runtime reflect.Type) (UnionCase, bool) {
	for _, c := range s.Cases {
		if c.Type == runtime {
			return c, true
		}
	}

	// Walk embedded-struct ancestry outward from runtime, preferring the
	// shortest chain to a registered case (spec: "among multiple
	// ancestors, the one with the shortest ancestor chain ... wins").
	type frontier struct {
		t     reflect.Type
		depth int
	}
	seen := map[reflect.Type]bool{runtime: true}
	queue := []frontier{{runtime, 0}}
	var best *UnionCase
	bestDepth := -1

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		base := cur.t
		for base.Kind() == reflect.Ptr {
			base = base.Elem()
		}
		if base.Kind() != reflect.Struct {
			continue
		}
		for i := 0; i < base.NumField(); i++ {
			f := base.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			for _, c := range s.Cases {
				if c.Type == ft && (bestDepth == -1 || cur.depth+1 < bestDepth) {
					cc := c
					best = &cc
					bestDepth = cur.depth + 1
				}
			}
			if !seen[ft] {
				seen[ft] = true
				queue = append(queue, frontier{ft, cur.depth + 1})
			}
		}
	}

	if best != nil {
		return *best, true
	}
	return UnionCase{}, false
}

// Discriminant reports "int" or "string" for a union shape.
func (s *Shape) Discriminant() string { return s.discriminant }
