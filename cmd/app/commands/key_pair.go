package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	lifecycleDomain "github.com/allisson/sealkeeper/internal/lifecycle/domain"
	lifecycleUsecase "github.com/allisson/sealkeeper/internal/lifecycle/usecase"
)

// keyPairOutput describes a key pair without any key material.
type keyPairOutput struct {
	OwnerID     string `json:"owner_id"`
	Backend     string `json:"backend"`
	Fingerprint string `json:"fingerprint"`
}

// RunInitKeyPair makes sure ownerID has a usable key pair, creating one on first use.
// An existing pair is left untouched. Empty ownerID or passphrase fall back to the
// configured credentials.
func RunInitKeyPair(
	ctx context.Context,
	keyLifecycle lifecycleUsecase.KeyLifecycleUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ownerID, passphrase, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	pair, err := keyLifecycle.InitOrRotate(ctx, lifecycleDomain.InitOrRotateInput{
		OwnerID:    ownerID,
		Passphrase: []byte(passphrase),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize key pair: %w", err)
	}

	output := describeKeyPair(pair)
	logger.Info("key pair ready",
		slog.String("owner_id", output.OwnerID),
		slog.String("fingerprint", output.Fingerprint),
	)
	return writeKeyPair(writer, "Key pair ready", output, format)
}

// RunRotateKeyPair replaces ownerID's key pair and re-encrypts every shared value.
// oldPassphrase unlocks the current pair; it defaults to passphrase when empty.
func RunRotateKeyPair(
	ctx context.Context,
	keyLifecycle lifecycleUsecase.KeyLifecycleUseCase,
	logger *slog.Logger,
	writer io.Writer,
	ownerID, passphrase, oldPassphrase, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	pair, err := keyLifecycle.InitOrRotate(ctx, lifecycleDomain.InitOrRotateInput{
		OwnerID:       ownerID,
		Passphrase:    []byte(passphrase),
		OldPassphrase: []byte(oldPassphrase),
		ForceNew:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to rotate key pair: %w", err)
	}

	output := describeKeyPair(pair)
	logger.Info("key pair rotated",
		slog.String("owner_id", output.OwnerID),
		slog.String("fingerprint", output.Fingerprint),
	)
	return writeKeyPair(writer, "Key pair rotated", output, format)
}

// RunChangePassphrase re-locks ownerID's private key under newPassphrase.
func RunChangePassphrase(
	ctx context.Context,
	keyLifecycle lifecycleUsecase.KeyLifecycleUseCase,
	logger *slog.Logger,
	ownerID, oldPassphrase, newPassphrase string,
) error {
	if newPassphrase == "" {
		return errors.New("new passphrase is required")
	}

	if err := keyLifecycle.ChangePassphrase(ctx, ownerID, []byte(oldPassphrase), []byte(newPassphrase)); err != nil {
		return fmt.Errorf("failed to change passphrase: %w", err)
	}

	logger.Info("passphrase changed", slog.String("owner_id", ownerID))
	return nil
}

// RunRestoreKeyPair copies the backup named tag over ownerID's current pair.
func RunRestoreKeyPair(
	ctx context.Context,
	keyLifecycle lifecycleUsecase.KeyLifecycleUseCase,
	logger *slog.Logger,
	ownerID, tag string,
) error {
	if tag == "" {
		tag = lifecycleDomain.BackupTag
	}

	if err := keyLifecycle.RestoreKeyPair(ctx, ownerID, tag); err != nil {
		return fmt.Errorf("failed to restore key pair: %w", err)
	}

	logger.Info("key pair restored", slog.String("owner_id", ownerID), slog.String("tag", tag))
	return nil
}

// RunWipeKeyPair irreversibly deletes ownerID's pair, backups and shared values.
// confirmed must be set.
func RunWipeKeyPair(
	ctx context.Context,
	keyLifecycle lifecycleUsecase.KeyLifecycleUseCase,
	logger *slog.Logger,
	ownerID string,
	confirmed bool,
) error {
	if !confirmed {
		return errors.New("refusing to wipe key pair without --yes")
	}

	if err := keyLifecycle.DeleteEncryptionKeyPair(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to wipe key pair: %w", err)
	}

	logger.Warn("key pair wiped", slog.String("owner_id", ownerID))
	return nil
}

func describeKeyPair(pair *cryptoDomain.KeyPair) keyPairOutput {
	defer cryptoDomain.Zero(pair.PrivateKey)

	return keyPairOutput{
		OwnerID:     pair.OwnerID,
		Backend:     string(pair.Backend),
		Fingerprint: pair.Fingerprint(),
	}
}

func writeKeyPair(writer io.Writer, title string, output keyPairOutput, format string) error {
	if format == "json" {
		return outputJSON(writer, output)
	}

	_, _ = fmt.Fprintf(writer, "%s\n", title)
	_, _ = fmt.Fprintf(writer, "Owner: %s\n", output.OwnerID)
	_, _ = fmt.Fprintf(writer, "Backend: %s\n", output.Backend)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", output.Fingerprint)
	return nil
}
