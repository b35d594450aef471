package cerr

import (
	"errors"
	"testing"
)

func TestSerializationError_Is(t *testing.T) {
	err := At(CodeMissingRequired, "User.Name", nil)

	if !errors.Is(err, ErrMissingRequired) {
		t.Error("SerializationError should unwrap to ErrMissingRequired")
	}
	if errors.Is(err, ErrDisallowedNull) {
		t.Error("SerializationError should not match ErrDisallowedNull")
	}
}

func TestSerializationError_Message(t *testing.T) {
	cause := errors.New("short buffer")

	tests := []struct {
		name string
		err  *SerializationError
		want string
	}{
		{
			name: "path and cause",
			err:  &SerializationError{Code: CodeMalformedFormat, Path: "Items[2]", Cause: cause},
			want: "malformed messagepack format at Items[2]: short buffer",
		},
		{
			name: "path only",
			err:  &SerializationError{Code: CodeMissingRequired, Path: "User.Name"},
			want: "missing required property at User.Name",
		},
		{
			name: "cause only",
			err:  &SerializationError{Code: CodeTypeMismatch, Cause: cause},
			want: "type mismatch: short buffer",
		},
		{
			name: "bare",
			err:  &SerializationError{Code: CodeUnorderableCycle},
			want: "cycle cannot be ordered for construction",
		},
		{
			name: "unknown code falls back to code string",
			err:  &SerializationError{Code: Code("CustomThing")},
			want: "CustomThing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithPath_AnnotatesSerializationError(t *testing.T) {
	inner := At(CodeDisallowedNull, "Email", nil)
	outer := WithPath(inner, "User")

	var se *SerializationError
	if !errors.As(outer, &se) {
		t.Fatalf("WithPath() should preserve *SerializationError, got %T", outer)
	}
	if se.Path != "User.Email" {
		t.Errorf("Path = %q, want %q", se.Path, "User.Email")
	}
	if !errors.Is(outer, ErrDisallowedNull) {
		t.Error("annotated error should still unwrap to ErrDisallowedNull")
	}
}

func TestWithPath_SetsPathWhenEmpty(t *testing.T) {
	inner := New(CodeConverterComposition, nil)
	outer := WithPath(inner, "Root")

	var se *SerializationError
	if !errors.As(outer, &se) {
		t.Fatalf("WithPath() should preserve *SerializationError, got %T", outer)
	}
	if se.Path != "Root" {
		t.Errorf("Path = %q, want %q", se.Path, "Root")
	}
}

func TestWithPath_WrapsForeignError(t *testing.T) {
	foreign := errors.New("boom")
	wrapped := WithPath(foreign, "Root.Field")

	var se *SerializationError
	if !errors.As(wrapped, &se) {
		t.Fatalf("WithPath() should wrap a foreign error in *SerializationError, got %T", wrapped)
	}
	if se.Code != CodeMalformedFormat {
		t.Errorf("Code = %q, want %q", se.Code, CodeMalformedFormat)
	}
	if se.Path != "Root.Field" {
		t.Errorf("Path = %q, want %q", se.Path, "Root.Field")
	}
	if !errors.Is(wrapped, foreign) {
		t.Error("wrapped error should still unwrap to the foreign cause")
	}
}

func TestNew_NoPath(t *testing.T) {
	err := New(CodeUnsupported, nil)

	var se *SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("New() should return *SerializationError, got %T", err)
	}
	if se.Path != "" {
		t.Errorf("Path = %q, want empty", se.Path)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("New() error should be ErrUnsupported")
	}
}
