package shape_test

import (
	"testing"

	"github.com/zoobzio/shapepack/internal/shapetest"
	"github.com/zoobzio/shapepack/shape"
)

func TestOf_ObjectWithNoKeysIsMapLayout(t *testing.T) {
	s := shape.Of[shapetest.Address]()
	if s.Kind != shape.KindObject {
		t.Fatalf("Kind = %v, want KindObject", s.Kind)
	}
	if s.PreferArray {
		t.Error("a struct with no mpkey tags should not prefer array layout")
	}
	if len(s.Members) != 3 {
		t.Fatalf("got %d members, want 3", len(s.Members))
	}
}

func TestOf_ObjectWithAllKeysPrefersArray(t *testing.T) {
	s := shape.Of[shapetest.Point]()
	if !s.PreferArray {
		t.Error("a struct where every member has mpkey should prefer array layout")
	}
}

func TestOf_RequiredAndDefaultTags(t *testing.T) {
	s := shape.Of[shapetest.Person]()
	var name, age *shape.Member
	for i := range s.Members {
		switch s.Members[i].Name {
		case "name":
			name = &s.Members[i]
		case "age":
			age = &s.Members[i]
		}
	}
	if name == nil || !name.IsRequired {
		t.Fatal("name field should be required")
	}
	if age == nil || !age.HasDefault {
		t.Fatal("age field should carry a default")
	}
}

func TestOf_CachesByReflectType(t *testing.T) {
	a := shape.Of[shapetest.Address]()
	b := shape.Of[shapetest.Address]()
	if a != b {
		t.Error("Of should return the same cached *Shape for the same type")
	}
}

func TestOf_SelfReferentialTypeTerminates(t *testing.T) {
	s := shape.Of[shapetest.Node]()
	if s.Kind != shape.KindObject {
		t.Fatalf("Kind = %v, want KindObject", s.Kind)
	}
	var next *shape.Member
	for i := range s.Members {
		if s.Members[i].Name == "next" {
			next = &s.Members[i]
		}
	}
	if next == nil {
		t.Fatal("missing next member")
	}
	if next.Shape.Kind != shape.KindNullable {
		t.Fatalf("next.Shape.Kind = %v, want KindNullable", next.Shape.Kind)
	}
	if next.Shape.Elem.Type != s.Type {
		t.Error("the self-referential member's element shape should resolve back to Node's own shape")
	}
}

func TestOf_SliceOfBytesIsScalarBytes(t *testing.T) {
	s := shape.Of[[]byte]()
	if s.Kind != shape.KindScalar || s.Scalar != shape.ScalarBytes {
		t.Errorf("Kind/Scalar = %v/%v, want KindScalar/ScalarBytes", s.Kind, s.Scalar)
	}
}

func TestOf_SliceOfIntIsSequence(t *testing.T) {
	s := shape.Of[[]int]()
	if s.Kind != shape.KindSequence {
		t.Fatalf("Kind = %v, want KindSequence", s.Kind)
	}
	if !s.Ordered {
		t.Error("a slice shape should be Ordered")
	}
	if s.Elem.Scalar != shape.ScalarInt {
		t.Errorf("Elem.Scalar = %v, want ScalarInt", s.Elem.Scalar)
	}
}

func TestIsPrimitive(t *testing.T) {
	scalar := shape.Of[int]()
	if !scalar.IsPrimitive() {
		t.Error("a scalar shape should be primitive")
	}
	obj := shape.Of[shapetest.Address]()
	if obj.IsPrimitive() {
		t.Error("an object shape should not be primitive")
	}
}
