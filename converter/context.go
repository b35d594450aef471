// Package converter is the composition kernel (spec §4.1): it turns a
// shape into a cached, immutable Converter, and holds the leaf/composite
// converters for every intrinsic shape kind.
package converter

import (
	"reflect"

	"github.com/zoobzio/shapepack/reference"
	"github.com/zoobzio/shapepack/streamreader"
	"github.com/zoobzio/shapepack/streamwriter"
	"github.com/zoobzio/shapepack/wire"
)

// Reader is the read-side surface converters are written against: the
// synchronous buffered reader for the common in-memory path. The
// resumable path drives the same converters indirectly, by buffering a
// complete top-level structure (via BufferNextStructuresAsync) before
// handing it to a BufferedReader-backed call.
type Reader = streamreader.BufferedReader

// Writer is the write-side surface converters are written against.
type Writer = streamwriter.Writer

// DefaultValuesPolicy is serialize_default_values (spec §6): a flag set
// over {Never, Always, Required, ReferenceTypes, ValueTypes}, combined
// bitwise, that decides which members are still emitted when their
// value sits at its default.
type DefaultValuesPolicy uint8

const (
	// Never omits every member whose value equals its default, except a
	// required member, which spec §4.3 step 1 always emits regardless of
	// policy so a round trip never depends on allow_missing_required.
	Never DefaultValuesPolicy = 0
	// Required forces emission of defaulted required members. Redundant
	// with the unconditional required-member rule above, but kept as its
	// own bit so a caller can name the reason in a combined policy (e.g.
	// Required|ValueTypes) rather than relying on an implicit baseline.
	Required DefaultValuesPolicy = 1 << 0
	// ValueTypes forces emission of defaulted value-type members (scalars,
	// enums — anything shape.Member.IsValueType reports true for).
	ValueTypes DefaultValuesPolicy = 1 << 1
	// ReferenceTypes forces emission of defaulted reference-like members
	// (objects, maps, sequences, nullables).
	ReferenceTypes DefaultValuesPolicy = 1 << 2
	// Always is the union of every bit: no member is ever elided for
	// sitting at its default.
	Always = Required | ValueTypes | ReferenceTypes
)

// forces reports whether policy unconditionally includes a member of
// this value/reference-type-ness even though its value is at default.
func (p DefaultValuesPolicy) forces(isValueType bool) bool {
	if isValueType {
		return p&ValueTypes != 0
	}
	return p&ReferenceTypes != 0
}

// Context carries the per-call state a converter needs beyond the bytes
// themselves: the reference tracker, the structural path for error
// messages, and layout-affecting config flags frozen at composition time.
type Context struct {
	Refs *reference.Tracker
	Path []string

	SerializeDefaultValues  DefaultValuesPolicy
	AllowMissingRequired    bool
	AllowNullForNonNullable bool
	PreferArraySlack        int
	SerializeEnumsByName    bool
	PreserveStringIdentity  bool
	InternStrings           bool
	HiFiDateTime            bool
	AssumedDateTimeKind     wire.DateTimeKind

	interned map[string]string
}

// intern returns s, replaced with a previously-seen equal string's
// backing storage if one has been read earlier in this call (spec
// §4.5: "string interning is independent [of preserve_string_identity]
// and can coexist"). No-op when the Config's intern_strings option is
// off, or on repeated calls with distinct content.
func (c *Context) intern(s string) string {
	if !c.InternStrings {
		return s
	}
	if c.interned == nil {
		c.interned = make(map[string]string)
	}
	if existing, ok := c.interned[s]; ok {
		return existing
	}
	c.interned[s] = s
	return s
}

// Push returns a copy of ctx with segment appended to Path, used when
// descending into a member/element so an error built lower down can be
// annotated with cerr.WithPath one segment at a time.
func (c *Context) Push(segment string) *Context {
	cp := *c
	cp.Path = append(append([]string{}, c.Path...), segment)
	return &cp
}

// PathString renders the current path for error messages.
func (c *Context) PathString() string {
	out := ""
	for i, seg := range c.Path {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// Converter reads and writes values of one shape. Implementations must
// not retain reader/writer references beyond a single call.
type Converter interface {
	Read(r *Reader, ctx *Context) (reflect.Value, error)
	Write(w *Writer, v reflect.Value, ctx *Context) error
	// CanBeReferencePreserved reports whether the reference tracker
	// should wrap this converter's calls (spec §4.5): false for
	// primitives and (by default) strings.
	CanBeReferencePreserved() bool
}
