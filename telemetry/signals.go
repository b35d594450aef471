// Package telemetry emits structured signals for the engine's top-level
// operations, grounded on the teacher's signals.go capitan usage.
package telemetry

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for serialization events.
var (
	SignalSerializeStart       = capitan.NewSignal("shapepack.serialize.start", "Serialize operation beginning")
	SignalSerializeComplete    = capitan.NewSignal("shapepack.serialize.complete", "Serialize operation finished")
	SignalDeserializeStart     = capitan.NewSignal("shapepack.deserialize.start", "Deserialize operation beginning")
	SignalDeserializeComplete  = capitan.NewSignal("shapepack.deserialize.complete", "Deserialize operation finished")
	SignalConverterComposed    = capitan.NewSignal("shapepack.converter.compose", "Converter composed for a shape")
	SignalCacheMiss            = capitan.NewSignal("shapepack.cache.miss", "Converter cache miss")
	SignalReferenceCycleFound  = capitan.NewSignal("shapepack.reference.cycle.detected", "Reference cycle detected during traversal")
)

// Keys for typed event data.
var (
	KeyTypeName  = capitan.NewStringKey("type_name")
	KeySize      = capitan.NewIntKey("size")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
	KeyShapeKind = capitan.NewStringKey("shape_kind")
)

// EmitSerializeStart emits an event when serialization begins.
func EmitSerializeStart(typeName string) {
	capitan.Emit(context.Background(), SignalSerializeStart, KeyTypeName.Field(typeName))
}

// EmitSerializeComplete emits an event when serialization finishes.
func EmitSerializeComplete(typeName string, size int, duration time.Duration, err error) {
	ctx := context.Background()
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSerializeComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalSerializeComplete, fields...)
}

// EmitDeserializeStart emits an event when deserialization begins.
func EmitDeserializeStart(typeName string, size int) {
	capitan.Emit(context.Background(), SignalDeserializeStart,
		KeyTypeName.Field(typeName), KeySize.Field(size),
	)
}

// EmitDeserializeComplete emits an event when deserialization finishes.
func EmitDeserializeComplete(typeName string, duration time.Duration, err error) {
	ctx := context.Background()
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDeserializeComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalDeserializeComplete, fields...)
}

// EmitConverterComposed emits an event when the kernel finishes composing
// a converter for a shape it had not seen before.
func EmitConverterComposed(typeName, shapeKind string) {
	capitan.Emit(context.Background(), SignalConverterComposed,
		KeyTypeName.Field(typeName), KeyShapeKind.Field(shapeKind),
	)
}

// EmitCacheMiss emits an event when the converter cache must compose a
// fresh entry rather than reuse one.
func EmitCacheMiss(typeName string) {
	capitan.Emit(context.Background(), SignalCacheMiss, KeyTypeName.Field(typeName))
}

// EmitReferenceCycleFound emits an event when the reference tracker
// resolves a back-edge during a graph traversal.
func EmitReferenceCycleFound(typeName string) {
	capitan.Emit(context.Background(), SignalReferenceCycleFound, KeyTypeName.Field(typeName))
}
