package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
)

// sequenceConverter handles Sequence(elem, ordered) shapes: Go slices,
// encoded as a MessagePack array.
type sequenceConverter struct {
	shape *shape.Shape
	elem  Converter
}

func (c *sequenceConverter) CanBeReferencePreserved() bool { return true }

func (c *sequenceConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	return readWithReference(r, ctx, func(uint32) (reflect.Value, error) {
		return c.readBody(r, ctx)
	})
}

func (c *sequenceConverter) readBody(r *Reader, ctx *Context) (reflect.Value, error) {
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

	n, err := r.ReadArrayHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	out := reflect.MakeSlice(c.shape.Type, n, n)
	for i := 0; i < n; i++ {
		ictx := ctx.Push(indexSegment(i))
		v, err := c.elem.Read(r, ictx)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.IsValid() {
			out.Index(i).Set(v)
		}
	}
	return out, nil
}

func (c *sequenceConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	if v.Kind() == reflect.Slice && v.IsNil() {
		return w.Raw().WriteNil()
	}
	return writeWithReference(w, v, ctx, func() error {
		n := v.Len()
		if err := w.Raw().WriteArrayHeader(n); err != nil {
			return cerr.WithPath(err, ctx.PathString())
		}
		for i := 0; i < n; i++ {
			ictx := ctx.Push(indexSegment(i))
			if err := c.elem.Write(w, v.Index(i), ictx); err != nil {
				return err
			}
		}
		return nil
	})
}

func indexSegment(i int) string {
	return "[" + itoa(i) + "]"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
