package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/wire"
)

// unionConverter implements spec §4.4: discriminator read/write, dispatch
// to sub-converters, and nearest-ancestor resolution for unregistered
// runtime types.
type unionConverter struct {
	shape *shape.Shape
	base  Converter

	// byType is a precomputed table of runtime type -> case converter,
	// including entries discovered via NearestAncestor the first time a
	// given runtime type is seen (spec §9: "a table precomputation, not
	// runtime search" — this map is that table).
	byType     map[reflect.Type]*unionCase
	caseByTag  map[string]*unionCase
	caseByITag map[int32]*unionCase
}

type unionCase struct {
	conv      Converter
	tag       shape.UnionCase
	duckField string // for duck-typed dispatch: the property unique to this case
}

func (k *Kernel) composeUnion(s *shape.Shape) (Converter, error) {
	uc := &unionConverter{
		shape:      s,
		byType:     map[reflect.Type]*unionCase{},
		caseByTag:  map[string]*unionCase{},
		caseByITag: map[int32]*unionCase{},
	}
	if s.Base != nil {
		bc, err := k.Get(s.Base)
		if err != nil {
			return nil, err
		}
		uc.base = bc
	}

	seenDuckFields := map[string]reflect.Type{}
	for _, c := range s.Cases {
		conv, err := k.Get(c.Shape)
		if err != nil {
			return nil, err
		}
		uec := &unionCase{conv: conv, tag: c}
		uc.byType[c.Type] = uec
		if c.UseString {
			uc.caseByTag[c.StringTag] = uec
		} else {
			uc.caseByITag[c.IntTag] = uec
		}

		if s.DuckTyped {
			field, err := uniqueRequiredField(c.Shape)
			if err != nil {
				return nil, cerr.New(cerr.CodeAmbiguousUnionShape, err)
			}
			if owner, dup := seenDuckFields[field]; dup && owner != c.Type {
				return nil, cerr.New(cerr.CodeAmbiguousUnionShape, errAmbiguousDuckField(field))
			}
			seenDuckFields[field] = c.Type
			uec.duckField = field
		}
	}
	return uc, nil
}

// uniqueRequiredField returns the name of the first required member on
// s, or of its first member when none is required, for use as a
// duck-typed discriminator. Callers are responsible for checking that
// the chosen field is not shared by another case in the same union.
func uniqueRequiredField(s *shape.Shape) (string, error) {
	for _, m := range s.Members {
		if m.IsRequired {
			return m.Name, nil
		}
	}
	if len(s.Members) > 0 {
		return s.Members[0].Name, nil
	}
	return "", errNoDuckField(s)
}

func (c *unionConverter) CanBeReferencePreserved() bool { return true }

func (c *unionConverter) resolveForWrite(rt reflect.Type) (*unionCase, bool) {
	if uec, ok := c.byType[rt]; ok {
		return uec, true
	}
	base := rt
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if sc, ok := shape.NearestAncestor(c.shape, base); ok {
		uec := c.byType[sc.Type]
		c.byType[rt] = uec // memoize so repeated writes skip the BFS (spec §9)
		return uec, uec != nil
	}
	return nil, false
}

func (c *unionConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return writeWithReference(w, v, ctx, func() error {
		path := ctx.PathString()
		if c.shape.DuckTyped {
			uec, ok := c.resolveForWrite(v.Type())
			if !ok {
				return cerr.At(cerr.CodeConverterComposition, path, nil)
			}
			return uec.conv.Write(w, v, ctx.Push(uec.tag.Type.String()))
		}
		if err := w.Raw().WriteArrayHeader(2); err != nil {
			return cerr.WithPath(err, path)
		}

		rt := v.Type()
		uec, ok := c.resolveForWrite(rt)
		if !ok {
			if err := w.Raw().WriteNil(); err != nil {
				return cerr.WithPath(err, path)
			}
			if c.base == nil {
				return cerr.At(cerr.CodeConverterComposition, path, nil)
			}
			return c.base.Write(w, v, ctx.Push("base"))
		}

		if uec.tag.UseString {
			if err := w.Raw().WriteString(uec.tag.StringTag); err != nil {
				return cerr.WithPath(err, path)
			}
		} else {
			if err := w.Raw().WriteInt(int64(uec.tag.IntTag)); err != nil {
				return cerr.WithPath(err, path)
			}
		}
		return uec.conv.Write(w, v, ctx.Push(uec.tag.Type.String()))
	})
}

func (c *unionConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	return readWithReference(r, ctx, func(uint32) (reflect.Value, error) {
		return c.readBody(r, ctx)
	})
}

func (c *unionConverter) readBody(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()

	if c.shape.DuckTyped {
		return c.readDuckTyped(r, ctx)
	}

	n, err := r.ReadArrayHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	if n != 2 {
		return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, path, nil)
	}

	isNil, err := r.IsNil()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	if isNil {
		if err := r.ReadNil(); err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		if c.base == nil {
			return reflect.Value{}, cerr.At(cerr.CodeConverterComposition, path, nil)
		}
		return c.base.Read(r, ctx.Push("base"))
	}

	code, err := r.PeekCode()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}

	var uec *unionCase
	if wire.IsStringCode(code) {
		tag, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		uec = c.caseByTag[tag]
	} else {
		tag, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		uec = c.caseByITag[int32(tag)]
	}
	if uec == nil {
		return reflect.Value{}, cerr.At(cerr.CodeUnrecognizedUnionTag, path, nil)
	}
	return uec.conv.Read(r, ctx.Push(uec.tag.Type.String()))
}

// readDuckTyped peeks the body with a cloned reader and selects a
// sub-case by which one has the unique required field present (spec
// §4.4 "the base peeks at the body ... and selects a sub-type by the
// presence of a required property unique to exactly one sub-type").
func (c *unionConverter) readDuckTyped(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()
	peek := r.CreatePeekReader()
	n, ok, err := peek.TryReadMapHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	if !ok {
		return reflect.Value{}, cerr.At(cerr.CodeTypeMismatch, path, nil)
	}

	present := map[string]bool{}
	for i := 0; i < n; i++ {
		name, err := peek.ReadString()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		present[name] = true
		if err := peek.Skip(); err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
	}

	for _, candidate := range c.byType {
		if candidate.duckField != "" && present[candidate.duckField] {
			return candidate.conv.Read(r, ctx.Push(candidate.tag.Type.String()))
		}
	}
	return reflect.Value{}, cerr.At(cerr.CodeUnrecognizedUnionTag, path, nil)
}
