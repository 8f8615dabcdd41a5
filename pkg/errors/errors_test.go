package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrNotFound, "action not found")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %s, want %s", err.Code, ErrNotFound)
	}

	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("Error() should contain the code, got %q", err.Error())
	}

	if !strings.Contains(err.Error(), "action not found") {
		t.Errorf("Error() should contain the message, got %q", err.Error())
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrKindCollision, "Could not add %s, already registered as %s with identity %v", "widget", "store", "bar")

	want := "Could not add widget, already registered as store with identity bar"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestWrap(t *testing.T) {
	t.Run("wraps non-nil error", func(t *testing.T) {
		cause := fmt.Errorf("boom")
		err := Wrap(cause, ErrResolution, "factory failed")

		if !stderrors.Is(err, cause) {
			t.Error("wrapped error should match errors.Is on the cause")
		}

		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("Error() should contain the cause, got %q", err.Error())
		}
	})

	t.Run("nil cause returns nil", func(t *testing.T) {
		if err := Wrap(nil, ErrResolution, "ignored"); err != nil {
			t.Errorf("Wrap(nil, ...) = %v, want nil", err)
		}
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", New(ErrNotFound, "x"), ErrNotFound, true},
		{"different code", New(ErrNotFound, "x"), ErrKindCollision, false},
		{"wrapped wire error", fmt.Errorf("outer: %w", New(ErrValueIdentified, "x")), ErrValueIdentified, true},
		{"plain error", fmt.Errorf("plain"), ErrNotFound, false},
		{"nil error", nil, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsErrorCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsErrorCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(New(ErrDuplicateIdentifier, "x")); got != ErrDuplicateIdentifier {
		t.Errorf("GetErrorCode() = %s, want %s", got, ErrDuplicateIdentifier)
	}

	if got := GetErrorCode(fmt.Errorf("plain")); got != ErrUnknown {
		t.Errorf("GetErrorCode() on plain error = %s, want %s", got, ErrUnknown)
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrDefinitionInvalid, "bad entry").WithDetail("index", 3)

	details := GetErrorDetails(err)
	if details == nil || details["index"] != 3 {
		t.Errorf("GetErrorDetails() = %v, want index=3", details)
	}
}

func TestErrorsIs(t *testing.T) {
	a := New(ErrNotFound, "first")
	b := New(ErrNotFound, "second")

	if !stderrors.Is(a, b) {
		t.Error("errors with the same code should satisfy errors.Is")
	}

	c := New(ErrInternal, "third")
	if stderrors.Is(a, c) {
		t.Error("errors with different codes should not satisfy errors.Is")
	}
}
