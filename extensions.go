package shapepack

import (
	"math/big"
	"reflect"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/converter"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/wire"
)

var (
	guidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	bigIntType  = reflect.TypeOf(big.Int{})
	bigIntPtr   = reflect.TypeOf(&big.Int{})
)

// WithStandardExtensions registers the library extension types spec §6
// names (Guid, Decimal, BigInteger) as a converter factory, so uuid.UUID,
// decimal.Decimal, and *big.Int round-trip through the engine without a
// struct-by-struct Surrogate declaration from the caller. These types are
// external collaborators (spec §1): the factory composes converters over
// them directly rather than letting the shape provider walk their
// (unexported) internals.
func WithStandardExtensions() Option {
	return WithConverterFactory(extensionFactory)
}

func extensionFactory(s *shape.Shape, _ *converter.Kernel) (converter.Converter, error) {
	switch s.Type {
	case guidType:
		return guidConverter{}, nil
	case decimalType:
		return decimalConverter{}, nil
	case bigIntType:
		return bigIntConverter{byValue: true}, nil
	case bigIntPtr:
		return bigIntConverter{}, nil
	default:
		return nil, nil
	}
}

type guidConverter struct{}

func (guidConverter) CanBeReferencePreserved() bool { return false }

func (guidConverter) Read(r *converter.Reader, ctx *converter.Context) (reflect.Value, error) {
	path := ctx.PathString()
	h, err := r.ReadExtensionHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	body, err := r.ReadExtensionBody(h.Length)
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	id, err := wire.ReadGuid(body)
	if err != nil {
		return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, path, err)
	}
	return reflect.ValueOf(id), nil
}

func (guidConverter) Write(w *converter.Writer, v reflect.Value, ctx *converter.Context) error {
	id := v.Interface().(uuid.UUID)
	if err := w.Raw().WriteGuid(id); err != nil {
		return cerr.WithPath(err, ctx.PathString())
	}
	return nil
}

type decimalConverter struct{}

func (decimalConverter) CanBeReferencePreserved() bool { return false }

func (decimalConverter) Read(r *converter.Reader, ctx *converter.Context) (reflect.Value, error) {
	path := ctx.PathString()
	h, err := r.ReadExtensionHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	body, err := r.ReadExtensionBody(h.Length)
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	d, err := wire.ReadDecimal(body)
	if err != nil {
		return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, path, err)
	}
	return reflect.ValueOf(d), nil
}

func (decimalConverter) Write(w *converter.Writer, v reflect.Value, ctx *converter.Context) error {
	d := v.Interface().(decimal.Decimal)
	if err := w.Raw().WriteDecimal(d); err != nil {
		return cerr.WithPath(err, ctx.PathString())
	}
	return nil
}

type bigIntConverter struct {
	byValue bool
}

func (bigIntConverter) CanBeReferencePreserved() bool { return false }

func (c bigIntConverter) Read(r *converter.Reader, ctx *converter.Context) (reflect.Value, error) {
	path := ctx.PathString()
	h, err := r.ReadExtensionHeader()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	body, err := r.ReadExtensionBody(h.Length)
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, path)
	}
	v := wire.ReadBigInteger(body)
	if c.byValue {
		return reflect.ValueOf(*v), nil
	}
	return reflect.ValueOf(v), nil
}

func (c bigIntConverter) Write(w *converter.Writer, v reflect.Value, ctx *converter.Context) error {
	var bi *big.Int
	if c.byValue {
		val := v.Interface().(big.Int)
		bi = &val
	} else {
		bi = v.Interface().(*big.Int)
	}
	if err := w.Raw().WriteBigInteger(bi); err != nil {
		return cerr.WithPath(err, ctx.PathString())
	}
	return nil
}
