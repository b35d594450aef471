package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/shape"
)

// surrogateConverter delegates to a user-supplied Marshaller, converting
// to/from a proxy shape the kernel already knows how to encode (spec §3
// Surrogate(user, proxy, marshaller)). Used for a user type that prefers a
// hand-written mapping over structural composition; the Guid and Decimal
// extension types do not go through it, they have their own extension
// converters.
type surrogateConverter struct {
	shape *shape.Shape
	proxy Converter
}

func (k *Kernel) composeSurrogate(s *shape.Shape) (Converter, error) {
	proxyConv, err := k.Get(s.Proxy)
	if err != nil {
		return nil, err
	}
	return &surrogateConverter{shape: s, proxy: proxyConv}, nil
}

func (c *surrogateConverter) CanBeReferencePreserved() bool { return c.shape.CanBeReferencePreserved }

func (c *surrogateConverter) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	proxyVal, err := c.proxy.Read(r, ctx)
	if err != nil {
		return reflect.Value{}, err
	}
	return c.shape.Marshaller.FromProxy(proxyVal)
}

func (c *surrogateConverter) Write(w *Writer, v reflect.Value, ctx *Context) error {
	proxyVal, err := c.shape.Marshaller.ToProxy(v)
	if err != nil {
		return err
	}
	return c.proxy.Write(w, proxyVal, ctx)
}
