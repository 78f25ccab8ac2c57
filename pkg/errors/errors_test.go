package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew_SetsCodeMessageStack(t *testing.T) {
	err := New(ErrCodeItemNotFound, "item missing")
	if err.Code != ErrCodeItemNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeItemNotFound, err.Code)
	}
	if err.Message != "item missing" {
		t.Errorf("expected message 'item missing', got %q", err.Message)
	}
	if err.Stack == "" {
		t.Error("expected stack to be captured")
	}
}

func TestError_Format(t *testing.T) {
	err := New(ErrCodeValidation, "bad input")
	if got := err.Error(); got != "[COMMON_010] bad input" {
		t.Errorf("unexpected format: %q", got)
	}
	withDetail := err.WithDetail("field=keywords")
	if got := withDetail.Error(); got != "[COMMON_010] bad input: field=keywords" {
		t.Errorf("unexpected detail format: %q", got)
	}
	// WithDetail must not mutate the receiver.
	if strings.Contains(err.Error(), "field=keywords") {
		t.Error("WithDetail mutated the original error")
	}
}

func TestNew_FormatsArgs(t *testing.T) {
	err := New(ErrCodeItemNotFound, "monitoring item %s not found", "abc-123")
	if err.Message != "monitoring item abc-123 not found" {
		t.Errorf("unexpected message: %q", err.Message)
	}
	// Without args the message is verbatim, even with percent signs.
	raw := New(ErrCodeValidation, "rate must be < 100%")
	if raw.Message != "rate must be < 100%" {
		t.Errorf("literal percent mangled: %q", raw.Message)
	}
}

func TestWrap_FormatsArgs(t *testing.T) {
	inner := stderrors.New("connection refused")
	outer := Wrap(inner, ErrCodeDatabaseError, "failed to delete item %s", "abc-123")
	if outer.Message != "failed to delete item abc-123" {
		t.Errorf("unexpected message: %q", outer.Message)
	}
	if !stderrors.Is(outer, inner) {
		t.Error("expected errors.Is to traverse the chain")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
}

func TestWrap_PreservesOriginalCode(t *testing.T) {
	inner := New(ErrCodeRegistryTimeout, "deadline exceeded")
	outer := Wrap(inner, ErrCodeInternal, "search failed")
	if outer.Code != ErrCodeRegistryTimeout {
		t.Errorf("expected preserved code %s, got %s", ErrCodeRegistryTimeout, outer.Code)
	}
	if !stderrors.Is(outer, inner) {
		t.Error("expected errors.Is to traverse the chain")
	}
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := New(ErrCodeEmptyKeywords, "no keywords")
	wrapped := fmt.Errorf("run check: %w", inner)
	if !IsCode(wrapped, ErrCodeEmptyKeywords) {
		t.Error("IsCode should find the code through fmt.Errorf wrapping")
	}
	if IsCode(wrapped, ErrCodeItemNotFound) {
		t.Error("IsCode matched the wrong code")
	}
}

func TestIsNotFound(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeNotFound, ErrCodeItemNotFound, ErrCodeAlertNotFound, ErrCodeRecordNotFound} {
		if !IsNotFound(New(code, "gone")) {
			t.Errorf("IsNotFound should be true for %s", code)
		}
	}
	if IsNotFound(New(ErrCodeInternal, "boom")) {
		t.Error("IsNotFound should be false for internal errors")
	}
	if IsNotFound(nil) {
		t.Error("IsNotFound(nil) should be false")
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(NewValidation("bad")) {
		t.Error("expected validation error to match")
	}
	if !IsValidation(New(ErrCodeEmptyKeywords, "empty")) {
		t.Error("expected empty-keywords error to count as validation")
	}
	if IsValidation(NewInternal("boom")) {
		t.Error("internal error must not count as validation")
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != ErrorCode("OK") {
		t.Error("GetCode(nil) should return OK")
	}
	if GetCode(stderrors.New("plain")) != ErrCodeInternal {
		t.Error("plain errors map to ErrCodeInternal")
	}
	if GetCode(NewUnsupported("type %q", "video")) != ErrCodeUnsupportedItemType {
		t.Error("expected unsupported-item-type code")
	}
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeItemNotFound, 404},
		{ErrCodeValidation, 422},
		{ErrCodeRegistryRateLimited, 429},
		{ErrCodeCheckInProgress, 409},
		{ErrorCode("NOPE_999"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatusForCode(tt.code); got != tt.status {
			t.Errorf("HTTPStatusForCode(%s) = %d, want %d", tt.code, got, tt.status)
		}
	}
}

func TestModuleForCode(t *testing.T) {
	if ModuleForCode(ErrCodeRegistryTimeout) != "REG" {
		t.Errorf("expected REG, got %s", ModuleForCode(ErrCodeRegistryTimeout))
	}
	if ModuleForCode(ErrCodeDetectionFailed) != "DET" {
		t.Errorf("expected DET, got %s", ModuleForCode(ErrCodeDetectionFailed))
	}
}
