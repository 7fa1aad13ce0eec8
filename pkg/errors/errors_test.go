package errors

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type testHandler struct {
	onError func(*PieceError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *PieceError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func TestPieceErrorString(t *testing.T) {
	err := &PieceError{
		Op:   "piece.Mount",
		Kind: KindMount,
		Err:  stderrors.New("boom"),
	}
	if got, want := err.Error(), "piece.Mount [mount]: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPieceErrorWithID(t *testing.T) {
	err := &PieceError{
		Op:   "piece.Unmount",
		Kind: KindTeardown,
		ID:   "cjsp-7-abc",
		Err:  stderrors.New("boom"),
	}
	got := err.Error()
	if want := "id=cjsp-7-abc"; !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestPieceErrorUnwrap(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := &PieceError{Op: "piece.Update", Kind: KindUpdate, Err: sentinel}
	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should see the wrapped error")
	}
	var pe *PieceError
	if !stderrors.As(error(err), &pe) {
		t.Fatal("errors.As should find *PieceError")
	}
	if pe.Kind != KindUpdate {
		t.Errorf("Kind = %v, want %v", pe.Kind, KindUpdate)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindMount, "mount"},
		{KindUpdate, "update"},
		{KindTeardown, "teardown"},
		{KindState, "state"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "cmd.render"
	if got, want := err.Error(), "panic in cmd.render: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *PieceError
	handler := &testHandler{
		onError: func(err *PieceError) {
			capturedErr = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&PieceError{
		Op:   "test.op",
		Kind: KindMount,
		Err:  stderrors.New("failed"),
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}

	// nil is ignored
	capturedErr = nil
	Report(nil)
	if capturedErr != nil {
		t.Error("Report(nil) should not reach the handler")
	}
}

func TestReportPanic(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	ReportPanic(&PanicError{
		Value:     "test panic value",
		Timestamp: time.Now(),
	})

	if capturedPanic == nil {
		t.Fatal("expected panic to be captured")
	}
	if capturedPanic.Value != "test panic value" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "test panic value")
	}
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(NopHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()

	if got != 42 {
		t.Errorf("callback value = %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if DefaultHandler == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
		Verbose: true,
	}

	h.HandleError(&PieceError{
		Op:         "piece.Unmount",
		Kind:       KindTeardown,
		ID:         "cjsp-1-x",
		Err:        stderrors.New("teardown failed"),
		StackTrace: "frame",
	})
	out := buf.String()
	for _, want := range []string{"piece error", "op=piece.Unmount", "kind=teardown", "id=cjsp-1-x", "teardown failed", "stack=frame"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}

	buf.Reset()
	h.HandlePanic(&PanicError{Op: "cmd.render", Value: "bad"})
	out = buf.String()
	for _, want := range []string{"piece panic", "op=cmd.render", "value=bad"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}

	// nil values are ignored
	buf.Reset()
	h.HandleError(nil)
	h.HandlePanic(nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for nil errors, got %q", buf.String())
	}
}
