package service

import (
	"context"
	"errors"
	"fmt"

	"gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// KeeperCipher implements AEAD on top of a gocloud.dev localsecrets keeper
// (NaCl secretbox, XSalsa20-Poly1305). Keepers do not support associated data.
type KeeperCipher struct {
	key [cryptoDomain.KeySize]byte
}

// NewKeeperCipher creates a keeper-backed cipher. The key must be exactly 32 bytes.
func NewKeeperCipher(key []byte) (*KeeperCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	var k [cryptoDomain.KeySize]byte
	copy(k[:], key)
	return &KeeperCipher{key: k}, nil
}

// Seal encrypts plaintext through a short-lived keeper.
func (k *KeeperCipher) Seal(plaintext, aad []byte) ([]byte, error) {
	if len(aad) > 0 {
		return nil, errors.New("localsecrets keeper does not support associated data")
	}

	keeper := localsecrets.NewKeeper(k.key)
	defer keeper.Close() //nolint:errcheck

	ciphertext, err := keeper.Encrypt(context.Background(), plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with keeper: %w", err)
	}
	return ciphertext, nil
}

// Open decrypts a frame produced by Seal.
func (k *KeeperCipher) Open(frame, aad []byte) ([]byte, error) {
	if len(aad) > 0 {
		return nil, errors.New("localsecrets keeper does not support associated data")
	}

	keeper := localsecrets.NewKeeper(k.key)
	defer keeper.Close() //nolint:errcheck

	plaintext, err := keeper.Decrypt(context.Background(), frame)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt with keeper: %w", err)
	}
	return plaintext, nil
}
