package path

import (
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/converter"
	"github.com/zoobzio/shapepack/streamreader"
)

// Options controls the spec §4.6 flags that govern a path's edge cases.
type Options struct {
	// DefaultForMissingPath makes DeserializeAt return an invalid (zero)
	// reflect.Value and a nil error, instead of failing PathUnresolved,
	// whenever Navigate reports the target absent.
	DefaultForMissingPath bool
	// LeaveOpen restores r to the end of the top-level structure after
	// yielding the subvalue, so sibling structures remain decodable.
	LeaveOpen bool
}

// DeserializeAt navigates r through steps and decodes the value found
// there with conv, applying Options. r must be positioned at the start
// of a complete top-level structure.
func DeserializeAt(r *streamreader.BufferedReader, steps []Step, resolver MemberResolver, conv converter.Converter, ctx *converter.Context, opts Options) (reflect.Value, error) {
	var tailAfterWhole []byte
	if opts.LeaveOpen {
		peek := r.CreatePeekReader()
		if err := peek.Skip(); err != nil {
			return reflect.Value{}, cerr.New(cerr.CodeMalformedFormat, err)
		}
		tailAfterWhole = peek.Remaining()
	}

	found, err := Navigate(r, steps, resolver)
	if err != nil {
		return reflect.Value{}, err
	}
	if !found {
		if opts.DefaultForMissingPath {
			return reflect.Value{}, nil
		}
		return reflect.Value{}, cerr.At(cerr.CodePathUnresolved, pathString(steps), nil)
	}

	v, err := conv.Read(r, ctx)
	if err != nil {
		return reflect.Value{}, err
	}

	if opts.LeaveOpen {
		r.Raw().Reset(tailAfterWhole)
	}
	return v, nil
}

func pathString(steps []Step) string {
	out := ""
	for i, s := range steps {
		if i > 0 {
			out += "."
		}
		out += s.String()
	}
	return out
}
