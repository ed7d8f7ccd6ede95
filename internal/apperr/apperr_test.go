package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"not found", NotFound("document %s not found", "x"), CodeNotFound},
		{"forbidden", Forbidden("no access"), CodeForbidden},
		{"conflict", Conflict("duplicate name"), CodeConflict},
		{"invalid input", InvalidInput("bad permission"), CodeInvalidInput},
		{"internal", Internal(errors.New("boom")), CodeInternal},
		{"untyped", errors.New("plain"), CodeInternal},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("gone")), CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("op failed: %w", Forbidden("nope"))
	assert.True(t, errors.Is(err, Forbidden("different message")))
	assert.False(t, errors.Is(err, NotFound("nope")))
	assert.True(t, IsForbidden(err))
	assert.False(t, IsConflict(err))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "internal error")
}
