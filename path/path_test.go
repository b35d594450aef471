package path_test

import (
	"context"
	"testing"

	"github.com/zoobzio/shapepack/converter"
	"github.com/zoobzio/shapepack/path"
	"github.com/zoobzio/shapepack/reference"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/streamreader"
	"github.com/zoobzio/shapepack/wire"
)

func newContext() *converter.Context {
	return &converter.Context{Refs: reference.New(reference.Off)}
}

func encodeMapObject() []byte {
	w := wire.NewWriter()
	w.WriteMapHeader(2)
	w.WriteString("name")
	w.WriteString("Ada")
	w.WriteString("age")
	w.WriteInt(36)
	return w.Bytes()
}

func encodeArrayObject() []byte {
	w := wire.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteString("Ada")
	w.WriteInt(36)
	return w.Bytes()
}

func TestNavigate_MemberInMapLayout(t *testing.T) {
	r := streamreader.NewBufferedReader(encodeMapObject())
	found, err := path.Navigate(r, []path.Step{path.Member("age")}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !found {
		t.Fatal("Navigate should find the age member")
	}
	v, err := r.ReadInt()
	if err != nil || v != 36 {
		t.Fatalf("ReadInt() after Navigate = %d, %v", v, err)
	}
}

func TestNavigate_MemberAbsentReportsNotFound(t *testing.T) {
	r := streamreader.NewBufferedReader(encodeMapObject())
	found, err := path.Navigate(r, []path.Step{path.Member("missing")}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if found {
		t.Fatal("Navigate should report not-found for an absent member")
	}
}

func TestNavigate_MemberInArrayLayoutViaResolver(t *testing.T) {
	resolver := func(name string) (int, bool) {
		switch name {
		case "name":
			return 0, true
		case "age":
			return 1, true
		}
		return 0, false
	}
	r := streamreader.NewBufferedReader(encodeArrayObject())
	found, err := path.Navigate(r, []path.Step{path.Member("age")}, resolver)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !found {
		t.Fatal("Navigate should find age via the resolver")
	}
	v, err := r.ReadInt()
	if err != nil || v != 36 {
		t.Fatalf("ReadInt() after Navigate = %d, %v", v, err)
	}
}

func TestNavigate_ArrayIndex(t *testing.T) {
	w := wire.NewWriter()
	w.WriteArrayHeader(3)
	w.WriteInt(10)
	w.WriteInt(20)
	w.WriteInt(30)

	r := streamreader.NewBufferedReader(w.Bytes())
	found, err := path.Navigate(r, []path.Step{path.ArrayIndex(1)}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !found {
		t.Fatal("Navigate should find index 1")
	}
	v, err := r.ReadInt()
	if err != nil || v != 20 {
		t.Fatalf("ReadInt() = %d, %v, want 20", v, err)
	}
}

func TestNavigate_ArrayIndexOutOfRange(t *testing.T) {
	w := wire.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteInt(1)
	w.WriteInt(2)

	r := streamreader.NewBufferedReader(w.Bytes())
	found, err := path.Navigate(r, []path.Step{path.ArrayIndex(5)}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if found {
		t.Fatal("Navigate should report not-found for an out-of-range index")
	}
}

func TestNavigate_MapKey(t *testing.T) {
	w := wire.NewWriter()
	w.WriteMapHeader(2)
	w.WriteString("a")
	w.WriteInt(1)
	w.WriteString("b")
	w.WriteInt(2)

	r := streamreader.NewBufferedReader(w.Bytes())
	found, err := path.Navigate(r, []path.Step{path.MapKey("b")}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !found {
		t.Fatal("Navigate should find map key \"b\"")
	}
	v, err := r.ReadInt()
	if err != nil || v != 2 {
		t.Fatalf("ReadInt() = %d, %v, want 2", v, err)
	}
}

func TestNavigate_NestedSteps(t *testing.T) {
	w := wire.NewWriter()
	w.WriteMapHeader(1)
	w.WriteString("home")
	w.WriteMapHeader(1)
	w.WriteString("city")
	w.WriteString("Boston")

	r := streamreader.NewBufferedReader(w.Bytes())
	found, err := path.Navigate(r, []path.Step{path.Member("home"), path.Member("city")}, nil)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !found {
		t.Fatal("Navigate should resolve a nested path")
	}
	s, err := r.ReadString()
	if err != nil || s != "Boston" {
		t.Fatalf("ReadString() = %q, %v, want Boston", s, err)
	}
}

func TestDeserializeAt_DecodesTargetValue(t *testing.T) {
	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(encodeMapObject())
	v, err := path.DeserializeAt(r, []path.Step{path.Member("age")}, nil, conv, newContext(), path.Options{})
	if err != nil {
		t.Fatalf("DeserializeAt: %v", err)
	}
	if v.Int() != 36 {
		t.Errorf("DeserializeAt() = %v, want 36", v.Interface())
	}
}

func TestDeserializeAt_MissingPathFailsByDefault(t *testing.T) {
	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(encodeMapObject())
	_, err = path.DeserializeAt(r, []path.Step{path.Member("missing")}, nil, conv, newContext(), path.Options{})
	if err == nil {
		t.Fatal("DeserializeAt should fail for a missing path by default")
	}
}

func TestDeserializeAt_DefaultForMissingPath(t *testing.T) {
	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(encodeMapObject())
	v, err := path.DeserializeAt(r, []path.Step{path.Member("missing")}, nil, conv, newContext(), path.Options{DefaultForMissingPath: true})
	if err != nil {
		t.Fatalf("DeserializeAt: %v", err)
	}
	if v.IsValid() {
		t.Error("DefaultForMissingPath should return the zero reflect.Value")
	}
}

func TestDeserializeAt_LeaveOpenRestoresTail(t *testing.T) {
	w := wire.NewWriter()
	w.WriteArrayHeader(2)
	w.WriteMapHeader(1)
	w.WriteString("age")
	w.WriteInt(36)
	w.WriteString("sibling")

	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(w.Bytes())
	if _, err := r.ReadArrayHeader(); err != nil {
		t.Fatalf("ReadArrayHeader: %v", err)
	}

	v, err := path.DeserializeAt(r, []path.Step{path.Member("age")}, nil, conv, newContext(), path.Options{LeaveOpen: true})
	if err != nil {
		t.Fatalf("DeserializeAt: %v", err)
	}
	if v.Int() != 36 {
		t.Fatalf("DeserializeAt() = %v, want 36", v.Interface())
	}

	s, err := r.ReadString()
	if err != nil || s != "sibling" {
		t.Fatalf("after LeaveOpen, ReadString() = %q, %v, want sibling", s, err)
	}
}

func TestOpenSequenceAt_IteratesElements(t *testing.T) {
	w := wire.NewWriter()
	w.WriteMapHeader(1)
	w.WriteString("items")
	w.WriteArrayHeader(3)
	w.WriteInt(1)
	w.WriteInt(2)
	w.WriteInt(3)

	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(w.Bytes())
	it, err := path.OpenSequenceAt(r, []path.Step{path.Member("items")}, nil, conv, newContext(), false)
	if err != nil {
		t.Fatalf("OpenSequenceAt: %v", err)
	}

	var got []int64
	for {
		v, ok, err := it.Next(context.Background())
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v.Int())
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("got %v, want [1 2 3]", got)
	}
	if it.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", it.Remaining())
	}
}

func TestOpenSequenceAt_NilSequenceEmptyWhenAllowed(t *testing.T) {
	w := wire.NewWriter()
	w.WriteMapHeader(1)
	w.WriteString("items")
	w.WriteNil()

	k := converter.New(0, nil, shape.Identity)
	conv, err := k.Get(shape.Of[int]())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	r := streamreader.NewBufferedReader(w.Bytes())
	it, err := path.OpenSequenceAt(r, []path.Step{path.Member("items")}, nil, conv, newContext(), true)
	if err != nil {
		t.Fatalf("OpenSequenceAt: %v", err)
	}
	_, ok, err := it.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Error("a nil sequence with emptyForUndiscoverable should yield no elements")
	}
}
