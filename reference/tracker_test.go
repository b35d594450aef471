package reference

import (
	"reflect"
	"testing"
)

func TestWriteSeen_OffModeNeverTracks(t *testing.T) {
	tr := New(Off)
	s := "shared"
	v := reflect.ValueOf(&s)

	_, first, track := tr.WriteSeen(v)
	if track {
		t.Error("Off mode should never track")
	}
	if !first {
		t.Error("Off mode should always report firstSighting true")
	}
}

func TestWriteSeen_SameIdentityIsSecondSighting(t *testing.T) {
	tr := New(AllowCycles)
	n := 7
	v := reflect.ValueOf(&n)

	id1, first1, track1 := tr.WriteSeen(v)
	if !first1 || !track1 {
		t.Fatalf("first sighting should be (first=true, track=true), got (%v, %v)", first1, track1)
	}

	id2, first2, track2 := tr.WriteSeen(v)
	if first2 {
		t.Error("second sighting of the same identity should not be firstSighting")
	}
	if !track2 {
		t.Error("second sighting should still be tracked")
	}
	if id1 != id2 {
		t.Errorf("id should be stable across sightings: got %d then %d", id1, id2)
	}
}

func TestWriteSeen_DistinctPointersGetDistinctIDs(t *testing.T) {
	tr := New(AllowCycles)
	a, b := 1, 2

	idA, _, _ := tr.WriteSeen(reflect.ValueOf(&a))
	idB, _, _ := tr.WriteSeen(reflect.ValueOf(&b))
	if idA == idB {
		t.Errorf("distinct identities should get distinct ids, both got %d", idA)
	}
}

func TestIdentity_EqualButDistinctStringsDiffer(t *testing.T) {
	a := []byte("hello")
	b := []byte("hello")
	sa := string(a)
	sb := string(b)

	idA, okA := Identity(reflect.ValueOf(sa))
	idB, okB := Identity(reflect.ValueOf(sb))
	if !okA || !okB {
		t.Fatal("non-empty strings should have a meaningful identity")
	}
	if idA == idB {
		t.Error("two distinct string backing arrays with equal content should not share an identity")
	}
}

func TestIdentity_EmptyStringHasNoIdentity(t *testing.T) {
	_, ok := Identity(reflect.ValueOf(""))
	if ok {
		t.Error("empty string should report ok=false")
	}
}

func TestIdentity_NilPointerHasNoIdentity(t *testing.T) {
	var p *int
	_, ok := Identity(reflect.ValueOf(p))
	if ok {
		t.Error("nil pointer should report ok=false")
	}
}

func TestReadHole_UnresolvedOutsideAllowCycles(t *testing.T) {
	tr := New(RejectCycles)
	placeholder := reflect.New(reflect.TypeOf(0)).Elem()
	tr.ReadHole(1, placeholder)

	if _, err := tr.ReadResolve(1); err == nil {
		t.Error("resolving an unfilled hole outside AllowCycles should fail")
	}
}

func TestReadHole_ResolvesInAllowCycles(t *testing.T) {
	tr := New(AllowCycles)
	placeholder := reflect.New(reflect.TypeOf(0)).Elem()
	tr.ReadHole(1, placeholder)

	v, err := tr.ReadResolve(1)
	if err != nil {
		t.Fatalf("resolving an in-progress hole under AllowCycles should succeed: %v", err)
	}
	if v != placeholder {
		t.Error("ReadResolve should return the same placeholder container")
	}
}

func TestReadRecord_ThenResolve(t *testing.T) {
	tr := New(AllowCycles)
	id := tr.ReadAllocateID()
	tr.ReadRecord(id, reflect.ValueOf(42))

	v, err := tr.ReadResolve(id)
	if err != nil {
		t.Fatalf("ReadResolve: %v", err)
	}
	if v.Interface() != 42 {
		t.Errorf("got %v, want 42", v.Interface())
	}
}

func TestReadResolve_UnknownIDFails(t *testing.T) {
	tr := New(AllowCycles)
	if _, err := tr.ReadResolve(99); err == nil {
		t.Error("resolving an id never recorded should fail")
	}
}

func TestBeginConstruct_DetectsGenuineCycle(t *testing.T) {
	tr := New(RejectCycles)
	n := 1
	v := reflect.ValueOf(&n)

	release, cycle := tr.BeginConstruct(v)
	if cycle {
		t.Fatal("first BeginConstruct of an identity should not report a cycle")
	}
	defer release()

	if !tr.InFlight(v) {
		t.Error("identity under construction should report InFlight true")
	}

	_, cycle2 := tr.BeginConstruct(v)
	if !cycle2 {
		t.Error("re-entering construction of the same in-flight identity should report a cycle")
	}
}

func TestBeginConstruct_SequentialRepeatIsNotACycle(t *testing.T) {
	tr := New(RejectCycles)
	n := 1
	v := reflect.ValueOf(&n)

	release1, cycle1 := tr.BeginConstruct(v)
	if cycle1 {
		t.Fatal("first construction should not be a cycle")
	}
	release1()

	_, cycle2 := tr.BeginConstruct(v)
	if cycle2 {
		t.Error("a second, non-overlapping construction of the same identity should not be a cycle")
	}
}

func TestBeginConstruct_OffOutsideRejectCycles(t *testing.T) {
	tr := New(AllowCycles)
	n := 1
	v := reflect.ValueOf(&n)

	tr.BeginConstruct(v)
	if tr.InFlight(v) {
		t.Error("InFlight should always report false outside RejectCycles mode")
	}
}
