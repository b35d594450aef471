package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/wire"
)

// enumConverter writes either the underlying integer or the registered
// wire name, per the serialize_enums_by_name config flag (spec §6).
type enumConverter struct {
	shape *shape.Shape
}

func composeEnum(s *shape.Shape) (Converter, error) {
	return &enumConverter{shape: s}, nil
}

func (c *enumConverter) CanBeReferencePreserved() bool { return false }

func (c *enumConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()
	code, err := r.PeekCode()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}

	var ordinal int64
	if wire.IsStringCode(code) {
		name, err := r.ReadString()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		v, ok := c.shape.EnumByWire[name]
		if !ok {
			return reflect.Value{}, cerr.At(cerr.CodeTypeMismatch, path, nil)
		}
		ordinal = v
	} else {
		v, err := r.ReadInt()
		if err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		ordinal = v
	}

	rv := reflect.New(c.shape.Type).Elem()
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(c.shape.EnumNames[ordinal])
	default:
		if rv.CanInt() {
			rv.SetInt(ordinal)
		} else {
			rv.SetUint(uint64(ordinal))
		}
	}
	return rv, nil
}

func (c *enumConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	path := ctx.PathString()
	var ordinal int64
	switch v.Kind() {
	case reflect.String:
		for k, name := range c.shape.EnumNames {
			if name == v.String() {
				ordinal = k
				break
			}
		}
	default:
		if v.CanInt() {
			ordinal = v.Int()
		} else {
			ordinal = int64(v.Uint())
		}
	}

	if ctx.SerializeEnumsByName {
		name, ok := c.shape.EnumNames[ordinal]
		if !ok {
			return cerr.At(cerr.CodeTypeMismatch, path, nil)
		}
		if err := w.Raw().WriteString(name); err != nil {
			return cerr.WithPath(err, path)
		}
		return nil
	}
	if err := w.Raw().WriteInt(ordinal); err != nil {
		return cerr.WithPath(err, path)
	}
	return nil
}
