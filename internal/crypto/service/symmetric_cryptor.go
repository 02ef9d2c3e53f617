package service

import (
	"bytes"
	"fmt"
	"sync"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// symmetricMagic prefixes every ciphertext produced by SymmetricCryptorService,
// followed by one format-version byte and one algorithm byte.
var symmetricMagic = []byte("SKSY")

const (
	symmetricVersion    byte = 1
	symmetricHeaderSize      = 6
)

var algorithmCodes = map[cryptoDomain.Algorithm]byte{
	cryptoDomain.AESGCM:       1,
	cryptoDomain.ChaCha20:     2,
	cryptoDomain.LocalSecrets: 3,
}

// SymmetricCryptorService implements SymmetricCryptor over an AEADManager.
//
// Ciphertext layout: "SKSY" | version | algorithm | nonce || ciphertext. The
// algorithm byte lets data written under one algorithm be read after the
// configured algorithm changes, as long as the key is the same.
type SymmetricCryptorService struct {
	mu          sync.RWMutex
	alg         cryptoDomain.Algorithm
	aeadManager AEADManager
	key         []byte
}

// NewSymmetricCryptor creates a cryptor with no key installed.
func NewSymmetricCryptor(aeadManager AEADManager, alg cryptoDomain.Algorithm) (*SymmetricCryptorService, error) {
	if _, ok := algorithmCodes[alg]; !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	return &SymmetricCryptorService{alg: alg, aeadManager: aeadManager}, nil
}

// Algorithm returns the algorithm used for new ciphertexts.
func (s *SymmetricCryptorService) Algorithm() cryptoDomain.Algorithm {
	return s.alg
}

// SetKey installs key and returns the previously installed one. Passing nil
// switches the cryptor to pass-through mode.
func (s *SymmetricCryptorService) SetKey(key []byte) ([]byte, error) {
	if key != nil && len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.key
	if key == nil {
		s.key = nil
	} else {
		s.key = append([]byte(nil), key...)
	}
	return previous, nil
}

// Encrypt encrypts plaintext, or returns it unchanged when no key is installed.
func (s *SymmetricCryptorService) Encrypt(plaintext []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return plaintext, nil
	}

	aead, err := s.aeadManager.CreateCipher(s.key, s.alg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	frame, err := aead.Seal(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	out := make([]byte, 0, symmetricHeaderSize+len(frame))
	out = append(out, symmetricMagic...)
	out = append(out, symmetricVersion, algorithmCodes[s.alg])
	return append(out, frame...), nil
}

// Decrypt decrypts ciphertext. Input without the marker is returned unchanged so
// historical unencrypted values remain readable.
func (s *SymmetricCryptorService) Decrypt(ciphertext []byte) ([]byte, error) {
	if !s.IsEncrypted(ciphertext) {
		return ciphertext, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return nil, cryptoDomain.ErrCannotDecrypt
	}

	alg, ok := algorithmForCode(ciphertext[5])
	if !ok {
		return nil, fmt.Errorf("%w: unknown algorithm code %d", cryptoDomain.ErrDecryptionFailed, ciphertext[5])
	}

	aead, err := s.aeadManager.CreateCipher(s.key, alg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}

	plaintext, err := aead.Open(ciphertext[symmetricHeaderSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// IsEncrypted reports whether data starts with the ciphertext marker.
func (s *SymmetricCryptorService) IsEncrypted(data []byte) bool {
	return len(data) > symmetricHeaderSize &&
		bytes.HasPrefix(data, symmetricMagic) &&
		data[4] == symmetricVersion
}

// CanEncrypt reports whether a key is installed.
func (s *SymmetricCryptorService) CanEncrypt() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// CanDecrypt reports whether a key is installed.
func (s *SymmetricCryptorService) CanDecrypt() bool {
	return s.CanEncrypt()
}

func algorithmForCode(code byte) (cryptoDomain.Algorithm, bool) {
	for alg, c := range algorithmCodes {
		if c == code {
			return alg, true
		}
	}
	return "", false
}
