package shape_test

import (
	"reflect"
	"testing"

	"github.com/zoobzio/shapepack/shape"
)

type unionTestShape interface{ isUnionTestShape() }

type unionTestCircle struct {
	Radius float64 `msgpack:"radius" required:"true"`
}

func (unionTestCircle) isUnionTestShape() {}

type unionTestSquare struct {
	Side float64 `msgpack:"side" required:"true"`
}

func (unionTestSquare) isUnionTestShape() {}

type unionTestAnimal interface{ isUnionTestAnimal() }

type unionTestCat struct {
	Meow bool `msgpack:"meow" required:"true"`
}

func (unionTestCat) isUnionTestAnimal() {}

type unionTestDog struct {
	Bark bool `msgpack:"bark" required:"true"`
}

func (unionTestDog) isUnionTestAnimal() {}

type unionTestPersianCat struct {
	unionTestCat
	FurLength int `msgpack:"fur_length"`
}

func init() {
	shape.RegisterUnion(reflect.TypeOf((*unionTestShape)(nil)).Elem(), false,
		shape.UnionCaseDef{IntTag: 1, Type: reflect.TypeOf(unionTestCircle{})},
		shape.UnionCaseDef{IntTag: 2, Type: reflect.TypeOf(unionTestSquare{})},
	)
	shape.RegisterDuckTypedUnion(reflect.TypeOf((*unionTestAnimal)(nil)).Elem(),
		shape.UnionCaseDef{Type: reflect.TypeOf(unionTestCat{})},
		shape.UnionCaseDef{Type: reflect.TypeOf(unionTestDog{})},
	)
}

func TestUnion_RegisteredCasesResolve(t *testing.T) {
	s := shape.OfType(reflect.TypeOf((*unionTestShape)(nil)).Elem())
	if s.Kind != shape.KindUnion {
		t.Fatalf("Kind = %v, want KindUnion", s.Kind)
	}
	if s.DuckTyped {
		t.Error("an explicitly int-tagged union should not be DuckTyped")
	}
	if s.Discriminant() != "int" {
		t.Errorf("Discriminant() = %q, want %q", s.Discriminant(), "int")
	}
	if len(s.Cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(s.Cases))
	}
}

func TestUnion_DuckTypedFlag(t *testing.T) {
	s := shape.OfType(reflect.TypeOf((*unionTestAnimal)(nil)).Elem())
	if !s.DuckTyped {
		t.Error("RegisterDuckTypedUnion should produce a DuckTyped union shape")
	}
}

func TestNearestAncestor_ExactMatch(t *testing.T) {
	s := shape.OfType(reflect.TypeOf((*unionTestShape)(nil)).Elem())
	c, ok := shape.NearestAncestor(s, reflect.TypeOf(unionTestCircle{}))
	if !ok {
		t.Fatal("NearestAncestor should find an exact registered match")
	}
	if c.Type != reflect.TypeOf(unionTestCircle{}) {
		t.Errorf("resolved type = %v, want unionTestCircle", c.Type)
	}
}

func TestNearestAncestor_ViaEmbedding(t *testing.T) {
	s := shape.OfType(reflect.TypeOf((*unionTestAnimal)(nil)).Elem())
	c, ok := shape.NearestAncestor(s, reflect.TypeOf(unionTestPersianCat{}))
	if !ok {
		t.Fatal("NearestAncestor should resolve through an embedded registered type")
	}
	if c.Type != reflect.TypeOf(unionTestCat{}) {
		t.Errorf("resolved ancestor = %v, want unionTestCat", c.Type)
	}
}

func TestNearestAncestor_UnregisteredReturnsFalse(t *testing.T) {
	s := shape.OfType(reflect.TypeOf((*unionTestShape)(nil)).Elem())
	_, ok := shape.NearestAncestor(s, reflect.TypeOf(42))
	if ok {
		t.Error("NearestAncestor should report ok=false for a type with no registered ancestor")
	}
}
