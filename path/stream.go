package path

import (
	"context"
	"reflect"

	"github.com/zoobzio/shapepack/cerr"
	"github.com/zoobzio/shapepack/converter"
	"github.com/zoobzio/shapepack/streamreader"
)

// SequenceIterator pulls successive elements of a sequence positioned at
// a path, per spec §4.6's "streaming enumeration at a path": each Next
// call decodes exactly one element rather than materializing the whole
// sequence.
type SequenceIterator struct {
	r         *streamreader.BufferedReader
	elem      converter.Converter
	ctx       *converter.Context
	remaining int
	index     int
	empty     bool
}

// OpenSequenceAt navigates r through steps and opens an iterator over the
// sequence found there. emptyForUndiscoverable controls the nil-enclosing
// case: true yields an iterator with zero elements, false fails
// PathUnresolved.
func OpenSequenceAt(r *streamreader.BufferedReader, steps []Step, resolver MemberResolver, elem converter.Converter, ctx *converter.Context, emptyForUndiscoverable bool) (*SequenceIterator, error) {
	found, err := Navigate(r, steps, resolver)
	if err != nil {
		return nil, err
	}
	if !found {
		if emptyForUndiscoverable {
			return &SequenceIterator{empty: true}, nil
		}
		return nil, cerr.At(cerr.CodePathUnresolved, pathString(steps), nil)
	}

	isNil, err := r.IsNil()
	if err != nil {
		return nil, err
	}
	if isNil {
		if err := r.ReadNil(); err != nil {
			return nil, err
		}
		if emptyForUndiscoverable {
			return &SequenceIterator{empty: true}, nil
		}
		return nil, cerr.At(cerr.CodePathUnresolved, pathString(steps), nil)
	}

	n, err := r.ReadArrayHeader()
	if err != nil {
		return nil, err
	}
	return &SequenceIterator{r: r, elem: elem, ctx: ctx, remaining: n}, nil
}

// Next decodes the next element, reporting ok=false once the sequence is
// exhausted. ctx is checked between elements so cancellation propagates
// immediately past a yield point, per spec §7's async cancellation rule.
func (it *SequenceIterator) Next(ctx context.Context) (reflect.Value, bool, error) {
	if it.empty || it.remaining <= 0 {
		return reflect.Value{}, false, nil
	}
	select {
	case <-ctx.Done():
		return reflect.Value{}, false, cerr.New(cerr.CodeCancelled, ctx.Err())
	default:
	}

	ectx := it.ctx.Push(itoa(it.index))
	v, err := it.elem.Read(it.r, ectx)
	if err != nil {
		return reflect.Value{}, false, err
	}
	it.remaining--
	it.index++
	return v, true, nil
}

// Remaining reports how many elements have not yet been yielded.
func (it *SequenceIterator) Remaining() int { return it.remaining }
