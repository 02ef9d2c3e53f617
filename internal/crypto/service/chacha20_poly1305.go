package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements AEAD using ChaCha20-Poly1305.
//
// Frames use the same nonce||ciphertext layout as AESGCMCipher with a 12-byte nonce.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a new ChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Seal encrypts plaintext, binding aad, and returns nonce||ciphertext.
func (c *ChaCha20Poly1305Cipher) Seal(plaintext, aad []byte) ([]byte, error) {
	return sealFrame(c.aead, plaintext, aad)
}

// Open authenticates and decrypts a frame produced by Seal.
func (c *ChaCha20Poly1305Cipher) Open(frame, aad []byte) ([]byte, error) {
	return openFrame(c.aead, frame, aad)
}
