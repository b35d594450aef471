package telemetry

import (
	"errors"
	"testing"
	"time"
)

func TestEmitSerializeStart(_ *testing.T) {
	EmitSerializeStart("TestType")
}

func TestEmitSerializeComplete_Success(_ *testing.T) {
	EmitSerializeComplete("TestType", 128, 100*time.Millisecond, nil)
}

func TestEmitSerializeComplete_Error(_ *testing.T) {
	EmitSerializeComplete("TestType", 0, 100*time.Millisecond, errors.New("test error"))
}

func TestEmitDeserializeStart(_ *testing.T) {
	EmitDeserializeStart("TestType", 128)
}

func TestEmitDeserializeComplete_Success(_ *testing.T) {
	EmitDeserializeComplete("TestType", 100*time.Millisecond, nil)
}

func TestEmitDeserializeComplete_Error(_ *testing.T) {
	EmitDeserializeComplete("TestType", 100*time.Millisecond, errors.New("test error"))
}

func TestEmitConverterComposed(_ *testing.T) {
	EmitConverterComposed("TestType", "object")
}

func TestEmitCacheMiss(_ *testing.T) {
	EmitCacheMiss("TestType")
}

func TestEmitReferenceCycleFound(_ *testing.T) {
	EmitReferenceCycleFound("TestType")
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalSerializeStart", SignalSerializeStart},
		{"SignalSerializeComplete", SignalSerializeComplete},
		{"SignalDeserializeStart", SignalDeserializeStart},
		{"SignalDeserializeComplete", SignalDeserializeComplete},
		{"SignalConverterComposed", SignalConverterComposed},
		{"SignalCacheMiss", SignalCacheMiss},
		{"SignalReferenceCycleFound", SignalReferenceCycleFound},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeySize", KeySize},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
		{"KeyShapeKind", KeyShapeKind},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
