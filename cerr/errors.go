// Package cerr defines the engine's single structured error kind,
// SerializationError, grounded on the teacher's ConfigError/TransformError/
// CodecError pattern (sentinel error + Unwrap, see zoobzio/cereal's
// errors.go) and on spec.md §7.
package cerr

import (
	"errors"
	"fmt"
)

// Code identifies the class of failure, per spec §7.
type Code string

const (
	CodeUnexpectedEnd         Code = "UnexpectedEnd"
	CodeTypeMismatch          Code = "TypeMismatch"
	CodeMalformedFormat       Code = "MalformedFormat"
	CodeMissingRequired       Code = "MissingRequiredProperty"
	CodeDisallowedNull        Code = "DisallowedNullValue"
	CodeDuplicateProperty     Code = "DuplicateProperty"
	CodeUnrecognizedUnionTag  Code = "UnrecognizedUnionTag"
	CodeAmbiguousUnionShape   Code = "AmbiguousUnionShape"
	CodeUnorderableCycle      Code = "UnorderableCycle"
	CodeUnresolvedReference   Code = "UnresolvedReference"
	CodePathUnresolved        Code = "PathUnresolved"
	CodeConverterComposition  Code = "ConverterComposition"
	CodeCancelled             Code = "Cancelled"
	CodeUnsupported           Code = "Unsupported"
)

// Sentinel errors for errors.Is checks independent of path/cause context.
var (
	ErrUnexpectedEnd        = errors.New("unexpected end of buffer")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrMalformedFormat      = errors.New("malformed messagepack format")
	ErrMissingRequired      = errors.New("missing required property")
	ErrDisallowedNull       = errors.New("null not allowed for non-nullable member")
	ErrDuplicateProperty    = errors.New("duplicate property")
	ErrUnrecognizedUnionTag = errors.New("unrecognized union discriminator")
	ErrAmbiguousUnionShape  = errors.New("ambiguous duck-typed union shape")
	ErrUnorderableCycle     = errors.New("cycle cannot be ordered for construction")
	ErrUnresolvedReference  = errors.New("unresolved object reference")
	ErrPathUnresolved       = errors.New("path did not resolve")
	ErrConverterComposition = errors.New("converter composition failed")
	ErrCancelled            = errors.New("cancelled")
	ErrUnsupported          = errors.New("unsupported for current configuration")
)

var sentinelByCode = map[Code]error{
	CodeUnexpectedEnd:        ErrUnexpectedEnd,
	CodeTypeMismatch:         ErrTypeMismatch,
	CodeMalformedFormat:      ErrMalformedFormat,
	CodeMissingRequired:      ErrMissingRequired,
	CodeDisallowedNull:       ErrDisallowedNull,
	CodeDuplicateProperty:    ErrDuplicateProperty,
	CodeUnrecognizedUnionTag: ErrUnrecognizedUnionTag,
	CodeAmbiguousUnionShape:  ErrAmbiguousUnionShape,
	CodeUnorderableCycle:     ErrUnorderableCycle,
	CodeUnresolvedReference:  ErrUnresolvedReference,
	CodePathUnresolved:       ErrPathUnresolved,
	CodeConverterComposition: ErrConverterComposition,
	CodeCancelled:            ErrCancelled,
	CodeUnsupported:          ErrUnsupported,
}

// SerializationError is the single error kind surfaced to callers (spec
// §7): a code, a structural path, and an optional wrapped cause.
type SerializationError struct {
	Code  Code
	Path  string
	Cause error
}

func (e *SerializationError) Error() string {
	sentinel := sentinelByCode[e.Code]
	msg := string(e.Code)
	if sentinel != nil {
		msg = sentinel.Error()
	}
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("%s at %s: %v", msg, e.Path, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("%s at %s", msg, e.Path)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	default:
		return msg
	}
}

// Unwrap exposes the sentinel error for the code so errors.Is(err,
// cerr.ErrMissingRequired) works regardless of path/cause, plus the
// wrapped cause for errors.As on lower-level error types.
func (e *SerializationError) Unwrap() []error {
	sentinel := sentinelByCode[e.Code]
	if sentinel == nil && e.Cause == nil {
		return nil
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	if sentinel == nil {
		return []error{e.Cause}
	}
	return []error{sentinel, e.Cause}
}

// New builds a SerializationError with no path, for composition-time
// failures (e.g. ConverterComposition) that precede any reader position.
func New(code Code, cause error) error {
	return &SerializationError{Code: code, Cause: cause}
}

// At builds a SerializationError anchored to a structural path, for
// failures discovered mid-read/write.
func At(code Code, path string, cause error) error {
	return &SerializationError{Code: code, Path: path, Cause: cause}
}

// WithPath returns a copy of err with Path set, if err is a
// *SerializationError; otherwise wraps err fresh under CodeMalformedFormat.
// Used by the kernel to annotate an error bubbling up through nested
// converters with the enclosing member's path segment, building up the
// "c.Inner.Values[2]" style path spec §6 describes.
func WithPath(err error, path string) error {
	var se *SerializationError
	if errors.As(err, &se) {
		cp := *se
		if cp.Path == "" {
			cp.Path = path
		} else {
			cp.Path = path + "." + cp.Path
		}
		return &cp
	}
	return &SerializationError{Code: CodeMalformedFormat, Path: path, Cause: err}
}
