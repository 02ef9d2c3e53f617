package domain

import (
	"github.com/allisson/sealkeeper/internal/errors"
)

// Key custody and cryptographic operation errors.
//
// Capability errors (ErrCannot*) are returned before any cryptographic call is
// attempted; ErrEncryptionFailed, ErrDecryptionFailed and ErrSigningFailed mean
// the backend itself rejected the operation. Neither kind is retried automatically: both require a
// human decision (re-enter the passphrase or rotate the key pair).
var (
	// ErrKeyMissingOrInvalid indicates there is no usable owner, passphrase or key.
	ErrKeyMissingOrInvalid = errors.Wrap(errors.ErrInvalidInput, "key missing or invalid")

	// ErrInvalidPassphrase indicates the stored private key could not be unlocked with
	// the supplied passphrase. It is distinct from ErrKeyPairNotFound so callers can
	// prompt for the correct passphrase instead of regenerating the pair.
	ErrInvalidPassphrase = errors.Wrap(ErrKeyMissingOrInvalid, "private key cannot be unlocked with the supplied passphrase")

	// ErrBackendMismatch indicates stored key material was produced by a different
	// backend than the one reading it.
	ErrBackendMismatch = errors.Wrap(ErrKeyMissingOrInvalid, "key backend mismatch")

	// ErrKeyPairNotFound indicates the owner has no complete key pair yet. A half
	// pair (only one of the two keys stored) is reported the same way.
	ErrKeyPairNotFound = errors.Wrap(errors.ErrNotFound, "key pair not found")

	// ErrBackupNotFound indicates no backup exists under the requested tag.
	ErrBackupNotFound = errors.Wrap(errors.ErrNotFound, "key pair backup not found")

	// ErrCannotEncrypt indicates no key able to encrypt is installed.
	ErrCannotEncrypt = errors.Wrap(errors.ErrInvalidInput, "cannot encrypt")

	// ErrCannotDecrypt indicates no key able to decrypt is installed.
	ErrCannotDecrypt = errors.Wrap(errors.ErrInvalidInput, "cannot decrypt")

	// ErrCannotSign indicates no private key is installed.
	ErrCannotSign = errors.Wrap(errors.ErrInvalidInput, "cannot sign")

	// ErrCannotVerify indicates no public key is installed.
	ErrCannotVerify = errors.Wrap(errors.ErrInvalidInput, "cannot verify")

	// ErrEncryptionFailed indicates the cryptographic backend failed to encrypt.
	ErrEncryptionFailed = errors.Wrap(errors.ErrInvalidInput, "encryption failed")

	// ErrSigningFailed indicates the cryptographic backend failed to sign.
	ErrSigningFailed = errors.Wrap(errors.ErrInvalidInput, "signing failed")

	// ErrDecryptionFailed indicates the cryptographic backend failed to decrypt.
	//
	// Causes include a wrong key, tampered ciphertext or corrupted data. The specific
	// cause is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrVerificationFailed is the common kind of every signature verification failure.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrSignatureInvalid means the signature is well formed but does not match the data.
	ErrSignatureInvalid = errors.Wrap(ErrVerificationFailed, "signature invalid")

	// ErrSignatureMalformed means verification could not be carried out at all
	// (e.g. wrong signature length or undecodable key).
	ErrSignatureMalformed = errors.Wrap(ErrVerificationFailed, "signature malformed")

	// ErrUnsupportedAlgorithm indicates the requested symmetric algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedBackend indicates the requested asymmetric backend is not supported.
	ErrUnsupportedBackend = errors.Wrap(errors.ErrInvalidInput, "unsupported backend")

	// ErrInvalidKeySize indicates a symmetric key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidKeyFormat indicates stored key material could not be parsed.
	ErrInvalidKeyFormat = errors.Wrap(ErrKeyMissingOrInvalid, "invalid key format")
)
