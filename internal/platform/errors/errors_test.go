package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeInvalidArgument, 2},
		{ErrorCodeValidation, 2},
		{ErrorCodeConfig, 3},
		{ErrorCodeNotFound, 4},
		{ErrorCodeDecode, 5},
		{ErrorCodeIO, 6},
		{ErrorCodeCanceled, 130},
		{ErrorCodeUnknown, 1},
		{9999, 1}, // default branch
	}
	for _, c := range cases {
		if got := ExitCodeOf(c.code); got != c.want {
			t.Fatalf("ExitCodeOf(%v) = %d, want %d", c.code, got, c.want)
		}
	}
	if ExitCode(nil) != 0 {
		t.Fatalf("ExitCode(nil) should be 0")
	}
	if got := ExitCode(Configf("window too small")); got != 3 {
		t.Fatalf("ExitCode(config) = %d, want 3", got)
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrorCodeDecode.String() != "decode" || ErrorCode(9999).String() != "unknown" {
		t.Fatalf("String labels mismatch")
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeDecode, "bad frame %d", 12)
	if got := e2.Error(); got != "bad frame 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeIO, "write failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if CodeOf(e3) != ErrorCodeIO {
		t.Fatalf("CodeOf(Wrap) = %v", CodeOf(e3))
	}
	e4 := Wrapf(src, ErrorCodeNotFound, "missing %s", "meta")
	if want := "missing meta: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Message() != "missing meta" {
		t.Fatalf("Message() should exclude the cause")
	}

	if got, ok := As(e4); !ok || got.Code() != ErrorCodeNotFound {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	e5 := Wrap(src, ErrorCodeInvalidArgument, "oops")
	e6 := WithField(e5, "quota")
	e7 := WithOp(e6, "validate")
	if fe, ok := As(e6); !ok || fe.Field() != "quota" {
		t.Fatalf("WithField failed")
	}
	if oe, ok := As(e7); !ok || oe.Op() != "validate" {
		t.Fatalf("WithOp failed")
	}
	if fe0, _ := As(e5); fe0.Field() != "" || fe0.Op() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithField(src, "x") != src || WithOp(src, "x") != src {
		t.Fatalf("foreign errors should pass through unchanged")
	}

	wrapped := WithFieldChain(src, "name")
	we, ok := As(wrapped)
	if !ok || we.Field() != "name" || we.Code() != ErrorCodeUnknown {
		t.Fatalf("WithFieldChain failed: %+v", we)
	}

	if !IsCode(NotFoundf("x"), ErrorCodeNotFound) ||
		!IsCode(InvalidArgf("x"), ErrorCodeInvalidArgument) ||
		!IsCode(Validationf("x"), ErrorCodeValidation) ||
		!IsCode(Configf("x"), ErrorCodeConfig) ||
		!IsCode(Decodef("x"), ErrorCodeDecode) ||
		!IsCode(IOf("x"), ErrorCodeIO) ||
		!IsCode(Internalf("x"), ErrorCodeUnknown) {
		t.Fatalf("sugar helpers code mismatch")
	}

	if WrapIf(nil, ErrorCodeIO, "ignored") != nil {
		t.Fatalf("WrapIf(nil) should return nil")
	}
	if WrapIf(src, ErrorCodeIO, "io") == nil {
		t.Fatalf("WrapIf(non-nil) should wrap")
	}

	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}
	if Root(nil) != nil {
		t.Fatalf("Root(nil) should be nil")
	}
}

func TestCanceled(t *testing.T) {
	if Canceled(nil, "tally") != nil {
		t.Fatalf("Canceled(nil) should be nil")
	}
	err := Canceled(context.Canceled, "tally")
	if !IsCode(err, ErrorCodeCanceled) || !stderrs.Is(err, context.Canceled) {
		t.Fatalf("Canceled should keep code and cause: %v", err)
	}
	if e, _ := As(err); e.Op() != "tally" {
		t.Fatalf("Canceled op = %q", e.Op())
	}
	// bare context errors classify without wrapping
	if CodeOf(fmt.Errorf("x: %w", context.DeadlineExceeded)) != ErrorCodeCanceled {
		t.Fatalf("bare deadline should map to Canceled")
	}
}
