package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
)

// mapConverter handles Map(key, value) shapes.
type mapConverter struct {
	shape *shape.Shape
	key   Converter
	value Converter
}

func (c *mapConverter) CanBeReferencePreserved() bool { return true }

func (c *mapConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	return readWithReference(r, ctx, func(uint32) (reflect.Value, error) {
		return c.readBody(r, ctx)
	})
}

func (c *mapConverter) readBody(r *Reader, ctx *Context) (reflect.Value, error) {
	path := ctx.PathString()
	isNil, err := r.IsNil()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	if isNil {
		if err := r.ReadNil(); err != nil {
			return reflect.Value{}, cerr.WithPath(err, path)
		}
		return reflect.Zero(c.shape.Type), nil
	}

	n, err := r.ReadMapHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	out := reflect.MakeMapWithSize(c.shape.Type, n)
	for i := 0; i < n; i++ {
		kctx := ctx.Push("key")
		k, err := c.key.Read(r, kctx)
		if err != nil {
			return reflect.Value{}, err
		}
		vctx := ctx.Push(mapKeyLabel(k))
		v, err := c.value.Read(r, vctx)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, v)
	}
	return out, nil
}

func (c *mapConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	if v.Kind() == reflect.Map && v.IsNil() {
		return w.Raw().WriteNil()
	}
	return writeWithReference(w, v, ctx, func() error {
		keys := v.MapKeys()
		if err := w.Raw().WriteMapHeader(len(keys)); err != nil {
			return cerr.WithPath(err, ctx.PathString())
		}
		for _, k := range keys {
			if err := c.key.Write(w, k, ctx.Push("key")); err != nil {
				return err
			}
			if err := c.value.Write(w, v.MapIndex(k), ctx.Push(mapKeyLabel(k))); err != nil {
				return err
			}
		}
		return nil
	})
}

func mapKeyLabel(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	default:
		return "?"
	}
}
