package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestMakeAndParseCode(t *testing.T) {
	code := MakeCode(ServiceAskWX, CategoryNetwork, 2)
	if code != 2110002 {
		t.Fatalf("MakeCode() = %d, want 2110002", code)
	}
	s, c, q := ParseCode(code)
	if s != ServiceAskWX || c != CategoryNetwork || q != 2 {
		t.Errorf("ParseCode() = (%d, %d, %d)", s, c, q)
	}
	if !IsServerError(code) || IsClientError(code) {
		t.Error("network category should be a server error")
	}
}

func TestAskErrorsHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *Errno
		want int
	}{
		{"client", ErrAskInvalidRequest, http.StatusBadRequest},
		{"retrieval", ErrAskRetrieval, http.StatusBadGateway},
		{"backend", ErrAskGeneration, http.StatusBadGateway},
		{"auth", ErrAskAuth, http.StatusInternalServerError},
		{"timeout", ErrAskTimeout, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
			if _, ok := Lookup(tt.err.Code); !ok {
				t.Errorf("code %d is not registered", tt.err.Code)
			}
		})
	}
}

func TestWithCauseKeepsMessage(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := ErrAskAuth.WithCause(cause)

	if err.MessageEN != ErrAskAuth.MessageEN {
		t.Errorf("MessageEN = %q, want %q", err.MessageEN, ErrAskAuth.MessageEN)
	}
	if !stderrors.Is(err, ErrAskAuth) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, ErrAskRetrieval) {
		t.Error("errors.Is should not match a different code")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	if ErrAskAuth.Cause() != nil {
		t.Error("WithCause must not mutate the registered errno")
	}
}

func TestWithCauseMessage(t *testing.T) {
	cause := fmt.Errorf("discovery: query: request failed with status code 404: project not found")
	err := ErrAskRetrieval.WithCauseMessage(cause)

	want := "Passage retrieval failed: " + cause.Error()
	if err.MessageEN != want {
		t.Errorf("MessageEN = %q, want %q", err.MessageEN, want)
	}
	if !stderrors.Is(err, ErrAskRetrieval) || !stderrors.Is(err, cause) {
		t.Error("errors.Is should match both the code and the cause")
	}
	if ErrAskRetrieval.MessageEN != "Passage retrieval failed" {
		t.Error("WithCauseMessage must not mutate the registered errno")
	}
	if got := ErrAskTimeout.WithCauseMessage(nil); got.MessageEN != ErrAskTimeout.MessageEN {
		t.Errorf("nil cause: MessageEN = %q", got.MessageEN)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}

	wrapped := fmt.Errorf("stage: %w", ErrAskRetrieval)
	if got := FromError(wrapped); got.Code != ErrAskRetrieval.Code {
		t.Errorf("FromError() code = %d, want %d", got.Code, ErrAskRetrieval.Code)
	}

	plain := stderrors.New("boom")
	if got := FromError(plain); got.Code != ErrInternal.Code {
		t.Errorf("FromError() code = %d, want %d", got.Code, ErrInternal.Code)
	}
	if GetCode(plain) != -1 {
		t.Error("GetCode of plain error should be -1")
	}
	if !IsCode(wrapped, ErrAskRetrieval.Code) {
		t.Error("IsCode should see through wrapping")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Register should panic on duplicate code")
		}
	}()
	Register(New(ErrAskRetrieval.Code, http.StatusBadGateway, codes.Unavailable, "dup", ""))
}

func TestNewErrorValidation(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewError should panic on invalid service code")
		}
	}()
	NewError(100, CategoryRequest, 1, http.StatusBadRequest, codes.InvalidArgument, "x", "")
}
