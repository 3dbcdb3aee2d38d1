package richdoc

import (
	"errors"
	"io"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	err := NewError("InsertTable", ErrInvalidTableSpec)
	if !errors.Is(err, ErrInvalidTableSpec) {
		t.Fatalf("errors.Is failed for %v", err)
	}
	if got, want := err.Error(), "richdoc.InsertTable: "+ErrInvalidTableSpec.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := &Error{Op: "Render"}
	if err.Error() != "richdoc.Render: unknown error" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if errors.Is(err, io.EOF) {
		t.Fatal("nil cause must not match")
	}
}
