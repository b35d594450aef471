package path

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/shape"
	"github.com/zoobzio/shapepack/streamreader"
	"github.com/zoobzio/shapepack/wire"
)

// MemberResolver maps a member name to its object-as-array slot, for
// navigating a Member step when the current position is array-with-keys
// rather than a map. A nil resolver means array-with-keys positions can
// never be reached by name.
type MemberResolver func(name string) (index int, ok bool)

// ResolverForShape builds a MemberResolver from an object shape's
// declared members, for callers that have a *shape.Shape in hand (the
// common case: navigating toward a field of a known Go type).
func ResolverForShape(s *shape.Shape) MemberResolver {
	byName := make(map[string]int, len(s.Members))
	for _, m := range s.Members {
		if m.Key != nil {
			byName[m.Name] = *m.Key
		}
	}
	return func(name string) (int, bool) {
		idx, ok := byName[name]
		return idx, ok
	}
}

// Navigate advances r past every step in turn, leaving the reader
// positioned at the value named by the final step. found is false when a
// Member or MapKey step's target was absent in the encoded data, or an
// ArrayIndex step was past the end of its array (the caller decides, per
// default_for_missing_path, whether that is an error or a cue to return
// no value); a false found
// always means r's position afterward is unspecified and must not be
// read further.
func Navigate(r *streamreader.BufferedReader, steps []Step, resolver MemberResolver) (found bool, err error) {
	for _, step := range steps {
		switch step.Kind {
		case KindMember:
			found, err = navigateMember(r, step.Name, resolver)
		case KindArrayIndex:
			found, err = navigateArrayIndex(r, step.Index)
		case KindMapKey:
			found, err = navigateMapKey(r, step.Key)
		}
		if err != nil || !found {
			return found, err
		}
	}
	return true, nil
}

func navigateMember(r *streamreader.BufferedReader, name string, resolver MemberResolver) (bool, error) {
	if n, ok, err := r.TryReadArrayHeader(); err != nil {
		return false, cerr.New(cerr.CodeTypeMismatch, err)
	} else if ok {
		if resolver == nil {
			return false, cerr.New(cerr.CodePathUnresolved, nil)
		}
		idx, ok := resolver(name)
		if !ok || idx >= n {
			for i := 0; i < n; i++ {
				if err := r.Raw().Skip(); err != nil {
					return false, cerr.New(cerr.CodeMalformedFormat, err)
				}
			}
			return false, nil
		}
		for i := 0; i < idx; i++ {
			if err := r.Raw().Skip(); err != nil {
				return false, cerr.New(cerr.CodeMalformedFormat, err)
			}
		}
		return true, nil
	}

	n, err := r.ReadMapHeader()
	if err != nil {
		return false, cerr.New(cerr.CodeTypeMismatch, err)
	}
	for i := 0; i < n; i++ {
		key, err := r.Raw().ReadString()
		if err != nil {
			return false, cerr.New(cerr.CodeMalformedFormat, err)
		}
		if key == name {
			return true, nil
		}
		if err := r.Raw().Skip(); err != nil {
			return false, cerr.New(cerr.CodeMalformedFormat, err)
		}
	}
	return false, nil
}

func navigateArrayIndex(r *streamreader.BufferedReader, idx int) (bool, error) {
	n, err := r.ReadArrayHeader()
	if err != nil {
		return false, cerr.New(cerr.CodeTypeMismatch, err)
	}
	if idx < 0 || idx >= n {
		for i := 0; i < n; i++ {
			if err := r.Raw().Skip(); err != nil {
				return false, cerr.New(cerr.CodeMalformedFormat, err)
			}
		}
		return false, nil
	}
	for i := 0; i < idx; i++ {
		if err := r.Raw().Skip(); err != nil {
			return false, cerr.New(cerr.CodeMalformedFormat, err)
		}
	}
	return true, nil
}

func navigateMapKey(r *streamreader.BufferedReader, key any) (bool, error) {
	n, err := r.ReadMapHeader()
	if err != nil {
		return false, cerr.New(cerr.CodeTypeMismatch, err)
	}
	for i := 0; i < n; i++ {
		k, err := decodeScalar(r.Raw())
		if err != nil {
			return false, cerr.New(cerr.CodeMalformedFormat, err)
		}
		if reflect.DeepEqual(k, key) {
			return true, nil
		}
		if err := r.Raw().Skip(); err != nil {
			return false, cerr.New(cerr.CodeMalformedFormat, err)
		}
	}
	return false, nil
}

// decodeScalar reads a map key generically enough to compare against a
// caller-supplied Go value (string, integer, bool); MapKey steps are only
// meaningful against maps with such keys.
func decodeScalar(r *wire.Reader) (any, error) {
	code, err := r.PeekCode()
	if err != nil {
		return nil, err
	}
	switch {
	case wire.IsStringCode(code):
		return r.ReadString()
	case code == 0xc2 || code == 0xc3: // msgpack false/true
		return r.ReadBool()
	default:
		return r.ReadInt()
	}
}
