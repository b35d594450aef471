package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
)

// nullableConverter wraps an inner converter, handling MessagePack nil as
// the absent case (spec §3 Nullable(inner); §4.3 "Null object rule").
// elemIsPointer reports whether the Go representation is itself a
// pointer (nil means the zero pointer) vs. a value type that needs a
// zero-value sentinel on absence.
type nullableConverter struct {
	inner         Converter
	elemIsPointer bool
}

func (c *nullableConverter) CanBeReferencePreserved() bool { return c.inner.CanBeReferencePreserved() }

func (c *nullableConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	isNil, err := r.IsNil()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
	}
	if isNil {
		if err := r.ReadNil(); err != nil {
			return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
		}
		return reflect.Value{}, nil
	}
	return c.inner.Read(r, ctx)
}

func (c *nullableConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	if !v.IsValid() || (c.elemIsPointer && v.Kind() == reflect.Ptr && v.IsNil()) {
		return w.Raw().WriteNil()
	}
	return c.inner.Write(w, v, ctx)
}
