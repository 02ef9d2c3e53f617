package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// AESGCMCipher implements AEAD using AES-256-GCM.
//
// Each Seal generates a random 12-byte nonce and prepends it to the ciphertext, so a
// frame is self-contained: nonce || ciphertext || 16-byte tag. The cipher is stateless
// and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher. The key must be exactly 32 bytes.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext, binding aad, and returns nonce||ciphertext.
func (a *AESGCMCipher) Seal(plaintext, aad []byte) ([]byte, error) {
	return sealFrame(a.aead, plaintext, aad)
}

// Open authenticates and decrypts a frame produced by Seal.
func (a *AESGCMCipher) Open(frame, aad []byte) ([]byte, error) {
	return openFrame(a.aead, frame, aad)
}

// sealFrame encrypts with a random nonce and prefixes it to the output.
func sealFrame(aead cipher.AEAD, plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// openFrame splits nonce||ciphertext and decrypts.
func openFrame(aead cipher.AEAD, frame, aad []byte) ([]byte, error) {
	if len(frame) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := frame[:aead.NonceSize()], frame[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
