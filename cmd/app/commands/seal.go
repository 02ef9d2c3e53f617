package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	sealUsecase "github.com/allisson/sealkeeper/internal/seal/usecase"
)

// RunSeal reads plaintext from ioTuple.Reader and writes an envelope readable by
// every owner in the comma-separated owners list that has a key pair.
func RunSeal(
	ctx context.Context,
	seal sealUsecase.SealUseCase,
	logger *slog.Logger,
	ioTuple IOTuple,
	owners string,
) error {
	ownerIDs := splitOwners(owners)
	if len(ownerIDs) == 0 {
		return errors.New("at least one owner is required")
	}

	plaintext, err := readInput(ioTuple.Reader)
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(plaintext)

	output, err := seal.SealForOwners(ctx, plaintext, ownerIDs)
	if err != nil {
		return fmt.Errorf("failed to seal value: %w", err)
	}

	if len(output.Skipped) > 0 {
		logger.Warn("owners without key pair skipped", slog.Any("owners", output.Skipped))
	}

	_, _ = fmt.Fprintln(ioTuple.Writer, string(output.Sealed))
	return nil
}

// RunUnseal reads an envelope from ioTuple.Reader and writes the plaintext opened
// with ownerID's key pair.
func RunUnseal(
	ctx context.Context,
	seal sealUsecase.SealUseCase,
	ioTuple IOTuple,
	ownerID, passphrase string,
) error {
	sealed, err := readInput(ioTuple.Reader)
	if err != nil {
		return err
	}
	sealed = []byte(strings.TrimSpace(string(sealed)))

	if !seal.IsSealed(sealed) {
		return errors.New("input is not a sealed value")
	}

	secret := []byte(passphrase)
	plaintext, err := seal.Unseal(ctx, sealed, ownerID, secret)
	defer cryptoDomain.Zero(plaintext, secret)
	if err != nil {
		return fmt.Errorf("failed to unseal value: %w", err)
	}

	_, _ = ioTuple.Writer.Write(plaintext)
	return nil
}

func readInput(reader io.Reader) ([]byte, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func splitOwners(owners string) []string {
	ids := make([]string, 0)
	for _, id := range strings.Split(owners, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
