// Package domain defines the values protected by an owner's key pair and the
// errors raised while rotating it.
package domain

import (
	"github.com/allisson/sealkeeper/internal/errors"
)

// SharedNamespace is the key/value namespace holding shared private values.
const SharedNamespace = "shared"

// BackupTag names the backup slot written immediately before a rotation.
const BackupTag = "rotation"

// SharedPrivateValue is one named secret of an owner, encrypted under the owner's
// current public key. Ciphertext is base64 encoded for storage.
type SharedPrivateValue struct {
	OwnerID    string
	Key        string
	Ciphertext string
}

// InitOrRotateInput selects the owner and passphrases for a key initialization or
// rotation. Empty OwnerID and Passphrase are resolved through the configured
// credential source. OldPassphrase unlocks the pair being replaced and defaults
// to Passphrase.
type InitOrRotateInput struct {
	OwnerID       string
	Passphrase    []byte
	OldPassphrase []byte
	ForceNew      bool
}

var (
	// ErrRecryptionFailed means bulk re-encryption aborted and was rolled back. The
	// old key pair is active again; the rotation may be retried from scratch.
	ErrRecryptionFailed = errors.New("recryption failed")

	// ErrSharedValueNotFound indicates the owner has no value under the requested key.
	ErrSharedValueNotFound = errors.Wrap(errors.ErrNotFound, "shared value not found")
)
