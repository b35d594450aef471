package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/reference"
	"github.com/zoobzio/shapepack/telemetry"
	"github.com/zoobzio/shapepack/wire"
)

// writeWithReference implements the write side of spec §4.5 around any
// non-primitive converter's body encoding: first sighting of an identity
// emits the body as-is; a repeat sighting emits an ObjectReference
// extension instead of the body.
func writeWithReference(w *Writer, v reflect.Value, ctx *Context, body func() error) error {
	if ctx.Refs == nil || ctx.Refs.Mode() == reference.Off {
		return body()
	}
	id, first, track := ctx.Refs.WriteSeen(v)
	if !track {
		return body()
	}
	if !first {
		if ctx.Refs.InFlight(v) {
			return cerr.At(cerr.CodeUnorderableCycle, ctx.PathString(), nil)
		}
		telemetry.EmitReferenceCycleFound(v.Type().String())
		payload := wire.PutVarint(nil, uint64(id))
		return w.Raw().WriteExtension(wire.ExtObjectReference, payload)
	}

	release, cycle := ctx.Refs.BeginConstruct(v)
	if cycle {
		return cerr.At(cerr.CodeUnorderableCycle, ctx.PathString(), nil)
	}
	defer release()
	return body()
}

// readWithReference implements the read side: peeks for an
// ObjectReference extension and resolves it if present; otherwise
// allocates the next id, decodes the body, and records it.
func readWithReference(r *Reader, ctx *Context, decode func(id uint32) (reflect.Value, error)) (reflect.Value, error) {
	if ctx.Refs == nil || ctx.Refs.Mode() == reference.Off {
		return decode(0)
	}

	code, err := r.PeekCode()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
	}
	if wire.IsExtCode(code) {
		peek := r.CreatePeekReader()
		hdr, err := peek.ReadExtensionHeader()
		if err == nil && hdr.TypeCode == wire.ExtObjectReference {
			if _, err := r.ReadExtensionHeader(); err != nil {
				return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
			}
			body, err := r.ReadExtensionBody(hdr.Length)
			if err != nil {
				return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
			}
			id, _, ok := wire.Varint(body)
			if !ok {
				return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, ctx.PathString(), nil)
			}
			telemetry.EmitReferenceCycleFound(ctx.PathString())
			return ctx.Refs.ReadResolve(uint32(id))
		}
	}

	id := ctx.Refs.ReadAllocateID()
	v, err := decode(id)
	if err != nil {
		return reflect.Value{}, err
	}
	ctx.Refs.ReadRecord(id, v)
	return v, nil
}

// readWithReferenceHole is readWithReference's two-phase variant, used by
// converters whose shape can construct an empty/default instance up front
// (spec §4.5.1): under AllowCycles, the placeholder is published via
// ReadHole before populate runs, so a back-edge encountered while
// populating a cycle resolves to the same, still-being-built value instead
// of failing UnresolvedReference. Under any other mode this degrades to
// the same single-phase behavior as readWithReference.
func readWithReferenceHole(r *Reader, ctx *Context, empty func() reflect.Value, populate func(reflect.Value, uint32) error) (reflect.Value, error) {
	if ctx.Refs == nil || ctx.Refs.Mode() == reference.Off {
		v := empty()
		return v, populate(v, 0)
	}

	code, err := r.PeekCode()
	if err != nil {
		return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
	}
	if wire.IsExtCode(code) {
		peek := r.CreatePeekReader()
		hdr, err := peek.ReadExtensionHeader()
		if err == nil && hdr.TypeCode == wire.ExtObjectReference {
			if _, err := r.ReadExtensionHeader(); err != nil {
				return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
			}
			body, err := r.ReadExtensionBody(hdr.Length)
			if err != nil {
				return reflect.Value{}, cerr.WithPath(err, ctx.PathString())
			}
			id, _, ok := wire.Varint(body)
			if !ok {
				return reflect.Value{}, cerr.At(cerr.CodeMalformedFormat, ctx.PathString(), nil)
			}
			telemetry.EmitReferenceCycleFound(ctx.PathString())
			return ctx.Refs.ReadResolve(uint32(id))
		}
	}

	id := ctx.Refs.ReadAllocateID()
	if ctx.Refs.Mode() != reference.AllowCycles {
		v := empty()
		if err := populate(v, id); err != nil {
			return reflect.Value{}, err
		}
		ctx.Refs.ReadRecord(id, v)
		return v, nil
	}

	v := empty()
	ctx.Refs.ReadHole(id, v)
	if err := populate(v, id); err != nil {
		return reflect.Value{}, err
	}
	ctx.Refs.FillHole(id)
	return v, nil
}
