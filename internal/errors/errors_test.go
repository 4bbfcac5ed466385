package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrAcquire,
		ErrAction,
		ErrNotFound,
		ErrPermission,
		ErrUnsupported,
		ErrSafety,
		ErrExport,
		ErrAgent,
		ErrTerminal,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .systrix.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "safety error",
			code:       ErrSafety,
			message:    "Refusing to signal system process (PID 1)",
			suggestion: "Use --force to override",
		},
		{
			name:       "unsupported error",
			code:       ErrUnsupported,
			message:    "Suspend is not supported on this platform",
			suggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .systrix.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .systrix.yaml syntax"},
		},
		{
			name:          "error with cause",
			err:           WrapWithCode(fmt.Errorf("operation not permitted"), ErrPermission, "Cannot signal process 42", ""),
			expectedParts: []string{"Cannot signal process 42", "operation not permitted"},
		},
		{
			name:          "no suggestion",
			err:           New(ErrAcquire, "Acquisition failed", ""),
			expectedParts: []string{"Acquisition failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, out, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, out, part)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, "outer")

	assert.Equal(t, ErrAction, err.Code)
	assert.True(t, errors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	base := New(ErrNotFound, "Process 42 not found", "")
	wrapped := fmt.Errorf("dispatch: %w", base)

	assert.True(t, IsCode(base, ErrNotFound))
	assert.True(t, IsCode(wrapped, ErrNotFound))
	assert.False(t, IsCode(wrapped, ErrPermission))
	assert.False(t, IsCode(nil, ErrNotFound))
	assert.False(t, IsCode(errors.New("plain"), ErrNotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrSafety, CodeOf(New(ErrSafety, "x", "")))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "", Describe(nil))
	assert.Equal(t, "plain", Describe(errors.New("plain")))

	err := WrapWithCode(errors.New("permission denied"), ErrPermission, "Cannot kill 7", "try sudo")
	desc := Describe(err)
	assert.Equal(t, "Cannot kill 7: permission denied", desc)
	assert.False(t, strings.Contains(desc, "\n"))
}
