package converter

import (
	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/telemetry"
)

// Factory gives user code a chance to supply a converter for a shape the
// kernel would not otherwise know how to handle (Opaque shapes), or to
// override intrinsic composition entirely. The first factory returning a
// non-nil converter wins (spec §4.1); factories run before intrinsic
// composition.
type Factory func(s *shape.Shape, k *Kernel) (Converter, error)

// Kernel composes and caches converters for one Config's lifetime. A
// fresh Kernel (and Cache) is created whenever a layout-affecting option
// changes (spec "Reconfiguration reset").
type Kernel struct {
	cache     *Cache
	factories []Factory

	naming shape.NamingPolicy
}

// New builds a kernel over a fresh cache, with layout identifying the
// combination of layout-affecting flags this kernel's converters were
// composed under.
func New(layout uint64, factories []Factory, naming shape.NamingPolicy) *Kernel {
	k := &Kernel{factories: factories, naming: naming}
	k.cache = newCache(k, layout)
	return k
}

// Get returns the converter for s, composing and caching it on first use
// (spec §4.1 contract: never returns nil on success).
func (k *Kernel) Get(s *shape.Shape) (Converter, error) {
	cl, mustCompose := k.cache.getOrCreate(s)
	if !mustCompose {
		// Either already complete, or being composed by an in-progress
		// recursive call higher on this goroutine's stack: the cell
		// itself is a valid tie-the-knot Converter in that case, and by
		// the time anyone calls Read/Write on it composition above will
		// have finished (composition never reads or writes values).
		return cl, nil
	}

	telemetry.EmitCacheMiss(s.Name)
	conv, err := k.compose(s)
	if err != nil {
		return nil, err
	}
	cl.install(conv)
	telemetry.EmitConverterComposed(s.Name, s.Kind.String())
	return cl, nil
}

func (k *Kernel) compose(s *shape.Shape) (Converter, error) {
	for _, f := range k.factories {
		conv, err := f(s, k)
		if err != nil {
			return nil, cerr.New(cerr.CodeConverterComposition, err)
		}
		if conv != nil {
			return conv, nil
		}
	}

	switch s.Kind {
	case shape.KindScalar:
		return composeScalar(s)
	case shape.KindEnum:
		return composeEnum(s)
	case shape.KindNullable:
		inner, err := k.Get(s.Elem)
		if err != nil {
			return nil, err
		}
		return &nullableConverter{inner: inner, elemIsPointer: s.Elem.Kind == shape.KindNullable || s.IsPointer}, nil
	case shape.KindSequence:
		elemConv, err := k.Get(s.Elem)
		if err != nil {
			return nil, err
		}
		return &sequenceConverter{shape: s, elem: elemConv}, nil
	case shape.KindMap:
		keyConv, err := k.Get(s.Key)
		if err != nil {
			return nil, err
		}
		valConv, err := k.Get(s.Value)
		if err != nil {
			return nil, err
		}
		return &mapConverter{shape: s, key: keyConv, value: valConv}, nil
	case shape.KindObject:
		return k.composeObject(s)
	case shape.KindUnion:
		return k.composeUnion(s)
	case shape.KindSurrogate:
		return k.composeSurrogate(s)
	case shape.KindOpaque:
		return nil, cerr.New(cerr.CodeConverterComposition, errOpaqueWithoutConverter(s))
	default:
		return nil, cerr.New(cerr.CodeConverterComposition, errUnsupportedKind(s))
	}
}
