package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name:     "simple validation error",
			err:      ValidationError("keyword is required"),
			contains: []string{"validation", "keyword is required"},
		},
		{
			name:     "lookup error with cause",
			err:      LookupError("user-42", cause),
			contains: []string{"lookup", "user-42", "connection refused"},
		},
		{
			name:     "error with code",
			err:      ConfigError("bad database type").WithCode("CFG001"),
			contains: []string{"config", "code=CFG001"},
		},
		{
			name:     "error with context",
			err:      GatewayError("reply", cause).WithContext("sender", "s1"),
			contains: []string{"gateway", "reply", "sender=s1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("Error() = %q, missing %q", msg, want)
				}
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := DeactivationError("rule-1", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestIsType(t *testing.T) {
	if !IsType(LookupError("u1", nil), ErrTypeLookup) {
		t.Error("IsType should match lookup errors")
	}
	if IsType(LookupError("u1", nil), ErrTypeGateway) {
		t.Error("IsType should not match a different type")
	}
	if IsType(errors.New("plain"), ErrTypeInternal) {
		t.Error("IsType should reject non-AppError values")
	}
	if IsType(nil, ErrTypeInternal) {
		t.Error("IsType should reject nil")
	}
}

func TestGetType(t *testing.T) {
	if got := GetType(ClassifierError("bad model", nil)); got != ErrTypeClassifier {
		t.Errorf("GetType() = %q, want %q", got, ErrTypeClassifier)
	}
	if got := GetType(errors.New("plain")); got != ErrTypeInternal {
		t.Errorf("GetType(plain) = %q, want %q", got, ErrTypeInternal)
	}
	if got := GetType(nil); got != ErrorType("") {
		t.Errorf("GetType(nil) = %q, want empty", got)
	}
}
