// Package shapepack is a MessagePack serialization engine driven by a
// type-shape model: reflection-derived or hand-built Shape values
// describe each Go type, and a composition kernel turns each one into a
// cached, reusable Converter.
//
// # Basic usage
//
//	cfg := shapepack.New()
//	data, err := shapepack.Serialize(cfg, user)
//	back, err := shapepack.Deserialize[User](cfg, data)
//
// # Struct tags
//
//	type User struct {
//	    ID   string `msgpack:"id" mpkey:"0" required:"true"`
//	    Name string `msgpack:"name" mpkey:"1" default:"anonymous"`
//	}
//
// mpkey assigns the object-as-array slot (spec §4.3); a value is written
// in map layout whenever a member it emits has no mpkey (members elided
// as defaults are not considered). required and default
// control the missing-property policy on read.
//
// # Polymorphism
//
// Register a union's sub-types once, typically in an init function:
//
//	shapepack.RegisterUnion[Shape](false,
//	    shapepack.UnionCase[Circle](shapepack.WithIntTag(1)),
//	    shapepack.UnionCase[Square](shapepack.WithIntTag(2)),
//	)
package shapepack

import (
	"context"
	"reflect"
	"time"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/streamreader"
	"github.com/zoobzio/shapepack/streamwriter"
	"github.com/zoobzio/shapepack/telemetry"
)

// UnusedData holds the raw encoded bytes of object members a reading
// type did not recognize, keyed by wire name (or by array slot index as
// a decimal string). Embed a field of this type to opt an object shape
// into version-safety (spec §3 "UnusedDataPacket").
type UnusedData map[string][]byte

// Serialize encodes v as MessagePack under cfg.
func Serialize[T any](cfg *Config, v T) ([]byte, error) {
	typeName := reflect.TypeOf(v).String()
	telemetry.EmitSerializeStart(typeName)
	start := time.Now()

	s := shape.Of[T]()
	conv, err := cfg.kernel.Get(s)
	if err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return nil, err
	}

	w := streamwriter.NewWriter(nil, 0)
	ctx := cfg.newContext()
	if err := conv.Write(w, reflect.ValueOf(v), ctx); err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return nil, err
	}

	out := w.Raw().Bytes()
	telemetry.EmitSerializeComplete(typeName, len(out), time.Since(start), nil)
	return append([]byte(nil), out...), nil
}

// Deserialize decodes a complete MessagePack buffer into a T under cfg.
func Deserialize[T any](cfg *Config, data []byte) (T, error) {
	var zero T
	typeName := reflect.TypeOf(zero).String()
	telemetry.EmitDeserializeStart(typeName, len(data))
	start := time.Now()

	s := shape.Of[T]()
	conv, err := cfg.kernel.Get(s)
	if err != nil {
		telemetry.EmitDeserializeComplete(typeName, time.Since(start), err)
		return zero, err
	}

	r := streamreader.NewBufferedReader(data)
	ctx := cfg.newContext()
	v, err := conv.Read(r, ctx)
	if err != nil {
		telemetry.EmitDeserializeComplete(typeName, time.Since(start), err)
		return zero, err
	}
	telemetry.EmitDeserializeComplete(typeName, time.Since(start), nil)

	if !v.IsValid() {
		return zero, nil
	}
	out, ok := v.Interface().(T)
	if !ok {
		err := cerr.New(cerr.CodeTypeMismatch, nil)
		return zero, err
	}
	return out, nil
}

// DeserializeInto decodes data into an existing *T, for callers that want
// to reuse an allocation rather than receive a fresh value.
func DeserializeInto[T any](cfg *Config, data []byte, target *T) error {
	v, err := Deserialize[T](cfg, data)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

// SerializeAsync encodes v, then hands the encoding to sink through the
// async writer rather than returning it as one in-memory []byte. Member
// writes themselves stay synchronous (spec §5: "only flush_async /
// buffer-grow yields"); a completed top-level value is the writer's one
// safe suspension point, so cfg's max_async_buffer (spec §6) decides
// there whether that single handoff is a threshold-triggered flush or a
// plain final drain, not how many pieces the value arrives in.
func SerializeAsync[T any](ctx context.Context, cfg *Config, v T, sink streamwriter.FlushFunc) error {
	typeName := reflect.TypeOf(v).String()
	telemetry.EmitSerializeStart(typeName)
	start := time.Now()

	s := shape.Of[T]()
	conv, err := cfg.kernel.Get(s)
	if err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return err
	}

	w := streamwriter.NewWriter(sink, cfg.maxAsyncBuffer)
	wctx := cfg.newContext()
	if err := conv.Write(w, reflect.ValueOf(v), wctx); err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return err
	}
	n := w.Raw().Len()
	if err := w.MaybeFlushAsync(ctx); err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return err
	}
	if err := w.FlushAsync(ctx); err != nil {
		telemetry.EmitSerializeComplete(typeName, 0, time.Since(start), err)
		return err
	}
	telemetry.EmitSerializeComplete(typeName, n, time.Since(start), nil)
	return nil
}

// DeserializeAsync decodes a single top-level T from a source that may
// not yet hold a complete structure, growing its buffer via fetch as
// needed (spec §4.2 resumable reader). It buffers exactly one complete
// top-level structure via BufferNextStructuresAsync and then hands that
// contiguous span to the same synchronous converters Deserialize uses
// (spec §4.2: "the original and the peek share the same growable
// buffer" — the resumable path exists to *discover* a safe span, not to
// reimplement decoding over it).
func DeserializeAsync[T any](ctx context.Context, cfg *Config, fetch streamreader.FetchFunc) (T, error) {
	var zero T
	typeName := reflect.TypeOf(zero).String()
	telemetry.EmitDeserializeStart(typeName, 0)
	start := time.Now()

	rr := streamreader.NewResumableReader(nil, fetch)
	if err := streamreader.BufferNextStructuresAsync(ctx, rr, 1); err != nil {
		telemetry.EmitDeserializeComplete(typeName, time.Since(start), err)
		return zero, err
	}

	s := shape.Of[T]()
	conv, err := cfg.kernel.Get(s)
	if err != nil {
		telemetry.EmitDeserializeComplete(typeName, time.Since(start), err)
		return zero, err
	}

	r := streamreader.NewBufferedReader(rr.Bytes())
	rctx := cfg.newContext()
	v, err := conv.Read(r, rctx)
	if err != nil {
		telemetry.EmitDeserializeComplete(typeName, time.Since(start), err)
		return zero, err
	}
	telemetry.EmitDeserializeComplete(typeName, time.Since(start), nil)

	if !v.IsValid() {
		return zero, nil
	}
	out, ok := v.Interface().(T)
	if !ok {
		return zero, cerr.New(cerr.CodeTypeMismatch, nil)
	}
	return out, nil
}
