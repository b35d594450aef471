package converter

import (
	"reflect"
	"time"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/wire"
)

// scalarConverter handles the primitive kinds a shape's Scalar field
// names directly, with no reference tracking (spec §4.5: "Primitives ...
// are never reference-tracked").
type scalarConverter struct {
	kind       shape.ScalarKind
	reflectTyp reflect.Type
}

func composeScalar(s *shape.Shape) (Converter, error) {
	return &scalarConverter{kind: s.Scalar, reflectTyp: s.Type}, nil
}

func (c *scalarConverter) CanBeReferencePreserved() bool { return false }

func (c *scalarConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()
	switch c.kind {
	case shape.ScalarBool:
		v, err := r.ReadBool()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		return reflect.ValueOf(v), nil
	case shape.ScalarInt:
		v, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		rv := reflect.New(c.reflectTyp).Elem()
		rv.SetInt(v)
		return rv, nil
	case shape.ScalarUint:
		v, err := r.ReadUint()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		rv := reflect.New(c.reflectTyp).Elem()
		rv.SetUint(v)
		return rv, nil
	case shape.ScalarFloat32:
		v, err := r.ReadFloat32()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		return reflect.ValueOf(v), nil
	case shape.ScalarFloat64:
		v, err := r.ReadFloat64()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		rv := reflect.New(c.reflectTyp).Elem()
		rv.SetFloat(v)
		return rv, nil
	case shape.ScalarString:
		if ctx.PreserveStringIdentity {
			return readWithReference(r, ctx, func(uint32) (reflect.Value, error) {
				s, err := r.ReadString()
				if err != nil {
					return reflect.Value{}, cerr.WithPath(err, path)
				}
				rv := reflect.New(c.reflectTyp).Elem()
				rv.SetString(ctx.intern(s))
				return rv, nil
			})
		}
		v, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		rv := reflect.New(c.reflectTyp).Elem()
		rv.SetString(ctx.intern(v))
		return rv, nil
	case shape.ScalarBytes:
		v, err := r.ReadBytes()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		return reflect.ValueOf(v), nil
	case shape.ScalarTime:
		code, err := r.PeekCode()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		if wire.IsExtCode(code) {
			peek := r.CreatePeekReader()
			hdr, err := peek.ReadExtensionHeader()
			if err == nil && hdr.TypeCode == wire.ExtDateTimeHiFi {
				if _, err := r.ReadExtensionHeader(); err != nil {
					return reflect.Value{}, cerr.WithPath(err, path)
				}
				body, err := r.ReadExtensionBody(hdr.Length)
				if err != nil {
					return reflect.Value{}, cerr.WithPath(err, path)
				}
				t, kind, err := wire.ReadDateTimeHiFi(body)
				if err != nil {
					return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, path, err)
				}
				if kind == wire.DateTimeLocal {
					t = t.Local()
				}
				return reflect.ValueOf(t), nil
			}
		}
		v, err := r.ReadTime()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		if ctx.AssumedDateTimeKind == wire.DateTimeLocal {
			v = v.Local()
		}
		return reflect.ValueOf(v), nil
	default:
		return reflect.Value{}, cerr.At(cerr.CodeTypeMismatch, path, nil)
	}
}

func (c *scalarConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	path := ctx.PathString()
	var err error
	switch c.kind {
	case shape.ScalarBool:
		err = w.Raw().WriteBool(v.Bool())
	case shape.ScalarInt:
		err = w.Raw().WriteInt(v.Int())
	case shape.ScalarUint:
		err = w.Raw().WriteUint(v.Uint())
	case shape.ScalarFloat32:
		err = w.Raw().WriteFloat32(float32(v.Float()))
	case shape.ScalarFloat64:
		err = w.Raw().WriteFloat64(v.Float())
	case shape.ScalarString:
		if ctx.PreserveStringIdentity {
			err = writeWithReference(w, v, ctx, func() error {
				return w.Raw().WriteString(v.String())
			})
		} else {
			err = w.Raw().WriteString(v.String())
		}
	case shape.ScalarBytes:
		err = w.Raw().WriteBytes(v.Bytes())
	case shape.ScalarTime:
		t := v.Interface().(time.Time)
		if ctx.HiFiDateTime && t.Location() != time.UTC {
			err = w.Raw().WriteDateTimeHiFi(t, wire.DateTimeLocal)
		} else {
			err = w.Raw().WriteTime(t)
		}
	default:
		return cerr.At(cerr.CodeTypeMismatch, path, nil)
	}
	if err != nil {
		return cerr.WithPath(err, path)
	}
	return nil
}
