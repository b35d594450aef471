package shape_test

import (
	"reflect"
	"testing"

	"github.com/zoobzio/shapepack/internal/shapetest"
	"github.com/zoobzio/shapepack/shape"
)

func TestMember_GetSet(t *testing.T) {
	s := shape.Of[shapetest.Point]()
	var x *shape.Member
	for i := range s.Members {
		if s.Members[i].Name == "x" {
			x = &s.Members[i]
		}
	}
	if x == nil {
		t.Fatal("missing x member")
	}

	p := shapetest.Point{X: 5, Y: 9}
	rv := reflect.ValueOf(&p).Elem()

	got := x.Get(rv)
	if got.Int() != 5 {
		t.Errorf("Get() = %v, want 5", got.Int())
	}

	x.Set(rv, reflect.ValueOf(42))
	if p.X != 42 {
		t.Errorf("after Set, p.X = %d, want 42", p.X)
	}
}

func TestMember_KeyAssignedFromMpkeyTag(t *testing.T) {
	s := shape.Of[shapetest.Point]()
	for _, m := range s.Members {
		if m.Key == nil {
			t.Fatalf("member %q should have a non-nil Key (every field of Point carries mpkey)", m.Name)
		}
	}
}
