package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	lifecycleMocks "github.com/allisson/sealkeeper/internal/lifecycle/usecase/mocks"
)

func TestRunSetSharedValue(t *testing.T) {
	ctx := context.Background()
	sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
	sharedValues.On("Set", ctx, "alice", "smtp_password", []byte("hunter2")).Return(nil).Once()

	err := RunSetSharedValue(ctx, sharedValues, discardLogger(), IOTuple{
		Reader: strings.NewReader("hunter2"),
		Writer: &bytes.Buffer{},
	}, "alice", "smtp_password")

	require.NoError(t, err)
	sharedValues.AssertExpectations(t)
}

func TestRunGetSharedValue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
		sharedValues.On("Get", ctx, "alice", "smtp_password", []byte("secret")).
			Return([]byte("hunter2"), nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunGetSharedValue(ctx, sharedValues, &out, "alice", "smtp_password", "secret"))

		assert.Equal(t, "hunter2", out.String())
	})

	t.Run("Error_WrongPassphrase", func(t *testing.T) {
		sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
		sharedValues.On("Get", ctx, "alice", "smtp_password", []byte("wrong")).
			Return(nil, cryptoDomain.ErrInvalidPassphrase).Once()

		var out bytes.Buffer
		err := RunGetSharedValue(ctx, sharedValues, &out, "alice", "smtp_password", "wrong")

		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPassphrase)
		assert.Empty(t, out.String())
	})
}

func TestRunDeleteSharedValue(t *testing.T) {
	ctx := context.Background()
	sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
	sharedValues.On("Delete", ctx, "alice", "smtp_password").Return(errors.New("boom")).Once()

	err := RunDeleteSharedValue(ctx, sharedValues, discardLogger(), "alice", "smtp_password")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete shared value")
}

func TestRunListSharedValues(t *testing.T) {
	ctx := context.Background()

	t.Run("Text", func(t *testing.T) {
		sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
		sharedValues.On("ListKeys", ctx, "alice").Return([]string{"a", "b"}, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunListSharedValues(ctx, sharedValues, &out, "alice", "text"))

		assert.Equal(t, "a\nb\n", out.String())
	})

	t.Run("JSON_Empty", func(t *testing.T) {
		sharedValues := &lifecycleMocks.MockSharedValueUseCase{}
		sharedValues.On("ListKeys", ctx, "alice").Return(nil, nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunListSharedValues(ctx, sharedValues, &out, "alice", "json"))

		assert.JSONEq(t, "[]", out.String())
	})
}
