package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "key pair not found")

	assert.EqualError(t, wrapped, "key pair not found: not found")
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NoError(t, Wrap(nil, "ignored"))
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrConflict, "request of %s already pending", "alice")

	assert.EqualError(t, wrapped, "request of alice already pending: conflict")
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))
}

func TestNew(t *testing.T) {
	a, b := New("verification failed"), New("verification failed")

	assert.EqualError(t, a, "verification failed")
	assert.NotErrorIs(t, a, b)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"invalid input", Wrap(ErrInvalidInput, "owner id is required"), ExitInvalidInput},
		{"not found", fmt.Errorf("cli: %w", Wrap(ErrNotFound, "key pair not found")), ExitNotFound},
		{"conflict", Wrap(ErrConflict, "transition"), ExitConflict},
		{"other", errors.New("connection refused"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
