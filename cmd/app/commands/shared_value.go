package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	lifecycleUsecase "github.com/allisson/sealkeeper/internal/lifecycle/usecase"
)

// RunSetSharedValue seals the value read from ioTuple.Reader for ownerID under key.
func RunSetSharedValue(
	ctx context.Context,
	sharedValues lifecycleUsecase.SharedValueUseCase,
	logger *slog.Logger,
	ioTuple IOTuple,
	ownerID, key string,
) error {
	value, err := readInput(ioTuple.Reader)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(value)

	if err := sharedValues.Set(ctx, ownerID, key, value); err != nil {
		return fmt.Errorf("failed to set shared value: %w", err)
	}

	logger.Info("shared value stored", slog.String("owner_id", ownerID), slog.String("key", key))
	return nil
}

// RunGetSharedValue writes the plaintext of ownerID's shared value.
func RunGetSharedValue(
	ctx context.Context,
	sharedValues lifecycleUsecase.SharedValueUseCase,
	writer io.Writer,
	ownerID, key, passphrase string,
) error {
	value, err := sharedValues.Get(ctx, ownerID, key, []byte(passphrase))
	if err != nil {
		return fmt.Errorf("failed to get shared value: %w", err)
	}
	defer cryptoDomain.Zero(value)

	_, _ = writer.Write(value)
	return nil
}

// RunDeleteSharedValue removes ownerID's shared value.
func RunDeleteSharedValue(
	ctx context.Context,
	sharedValues lifecycleUsecase.SharedValueUseCase,
	logger *slog.Logger,
	ownerID, key string,
) error {
	if err := sharedValues.Delete(ctx, ownerID, key); err != nil {
		return fmt.Errorf("failed to delete shared value: %w", err)
	}

	logger.Info("shared value deleted", slog.String("owner_id", ownerID), slog.String("key", key))
	return nil
}

// RunListSharedValues prints the keys of ownerID's shared values.
func RunListSharedValues(
	ctx context.Context,
	sharedValues lifecycleUsecase.SharedValueUseCase,
	writer io.Writer,
	ownerID, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keys, err := sharedValues.ListKeys(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list shared values: %w", err)
	}

	if keys == nil {
		keys = []string{}
	}
	if format == "json" {
		return outputJSON(writer, keys)
	}
	if len(keys) > 0 {
		_, _ = fmt.Fprintln(writer, strings.Join(keys, "\n"))
	}
	return nil
}
