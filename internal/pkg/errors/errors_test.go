package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := New(KindNotFound, "no such profile")
	wrapped := fmt.Errorf("load history detail: %w", inner)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf: want=%q got=%q", KindNotFound, got)
	}
	if !IsNotFound(wrapped) {
		t.Fatalf("IsNotFound: want=true got=false")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if got := KindOf(stderrors.New("boom")); got != KindUnknown {
		t.Fatalf("KindOf foreign: want=%q got=%q", KindUnknown, got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Fatalf("KindOf nil: want=%q got=%q", KindUnknown, got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(KindNetwork, "start session", cause)

	if !stderrors.Is(err, cause) {
		t.Fatalf("wrapped error should match its cause via errors.Is")
	}
	if got := KindOf(err); got != KindNetwork {
		t.Fatalf("KindOf: want=%q got=%q", KindNetwork, got)
	}
}

func TestErrorMessageFormats(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", New(KindValidation, "question is required"), "question is required"},
		{"message and cause", Wrap(KindNetwork, "fetch product", stderrors.New("eof")), "fetch product: eof"},
		{"cause only", &Error{Kind: KindNetwork, Err: stderrors.New("eof")}, "eof"},
		{"kind only", &Error{Kind: KindInvalidState}, "invalid_state"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error(): want=%q got=%q", tc.want, got)
			}
		})
	}
}
