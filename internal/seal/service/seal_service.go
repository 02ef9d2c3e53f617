// Package service implements multi-recipient envelope encryption.
//
// Sealing encrypts the plaintext once under a body key derived with HKDF-SHA256
// from a random content key and a random salt. The content key is then wrapped
// for every recipient with that recipient's AsymmetricCryptor. Any recipient able
// to unwrap its copy recovers the body key.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"sort"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
	sealDomain "github.com/allisson/sealkeeper/internal/seal/domain"
)

const saltSize = 32

// SealService seals and unseals envelopes. It holds no key material and is safe
// for concurrent use.
type SealService struct {
	aeadManager cryptoService.AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewSealService creates a SealService encrypting bodies with alg.
func NewSealService(aeadManager cryptoService.AEADManager, alg cryptoDomain.Algorithm) (*SealService, error) {
	if _, err := aeadManager.CreateCipher(make([]byte, cryptoDomain.KeySize), alg); err != nil {
		return nil, err
	}
	return &SealService{aeadManager: aeadManager, algorithm: alg}, nil
}

// Seal encrypts plaintext for every recipient able to encrypt. Recipients that
// cannot encrypt are reported in the result's Skipped list. Sealing fails with
// ErrCannotEncrypt when no recipient at all can encrypt.
func (s *SealService) Seal(
	plaintext []byte,
	recipients map[string]cryptoService.AsymmetricCryptor,
) (*sealDomain.SealResult, error) {
	contentKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(contentKey); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	defer memguard.WipeBytes(contentKey)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	result := &sealDomain.SealResult{
		Envelope: &sealDomain.SealedEnvelope{
			Version:    sealDomain.EnvelopeVersion,
			Algorithm:  s.algorithm,
			Salt:       salt,
			Recipients: make(map[string][]byte, len(recipients)),
		},
		Skipped: make([]string, 0),
	}

	for _, id := range sortedIDs(recipients) {
		cryptor := recipients[id]
		if cryptor == nil || !cryptor.CanEncrypt() {
			result.Skipped = append(result.Skipped, id)
			continue
		}

		wrapped, err := cryptor.Encrypt(contentKey)
		if err != nil {
			return nil, fmt.Errorf("recipient %s: %w", id, err)
		}
		result.Envelope.Recipients[id] = wrapped
	}

	if len(result.Envelope.Recipients) == 0 {
		return nil, fmt.Errorf("%w: no recipient can encrypt", cryptoDomain.ErrCannotEncrypt)
	}

	aead, err := s.bodyCipher(contentKey, salt, s.algorithm)
	if err != nil {
		return nil, err
	}
	result.Envelope.Ciphertext, err = aead.Seal(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	return result, nil
}

// Unseal opens envelope with the first candidate, in id order, that is a
// recipient and can decrypt. When unwrapping fails for one candidate the next one
// is tried. It fails with ErrNoValidCandidate when no candidate qualifies.
func (s *SealService) Unseal(
	envelope *sealDomain.SealedEnvelope,
	candidates map[string]cryptoService.AsymmetricCryptor,
) ([]byte, error) {
	if envelope == nil {
		return nil, sealDomain.ErrMalformedEnvelope
	}

	var lastErr error
	for _, id := range sortedIDs(candidates) {
		cryptor := candidates[id]
		wrapped, ok := envelope.Recipients[id]
		if !ok || cryptor == nil || !cryptor.CanDecrypt() {
			continue
		}

		contentKey, err := cryptor.Decrypt(wrapped)
		if err != nil {
			lastErr = fmt.Errorf("recipient %s: %w", id, err)
			continue
		}

		plaintext, err := s.openBody(envelope, contentKey)
		memguard.WipeBytes(contentKey)
		if err != nil {
			return nil, err
		}
		return plaintext, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, sealDomain.ErrNoValidCandidate
}

// CanEncrypt reports whether every recipient can encrypt.
func (s *SealService) CanEncrypt(recipients map[string]cryptoService.AsymmetricCryptor) bool {
	if len(recipients) == 0 {
		return false
	}
	for _, cryptor := range recipients {
		if cryptor == nil || !cryptor.CanEncrypt() {
			return false
		}
	}
	return true
}

// CanDecrypt reports whether at least one candidate can decrypt.
func (s *SealService) CanDecrypt(candidates map[string]cryptoService.AsymmetricCryptor) bool {
	for _, cryptor := range candidates {
		if cryptor != nil && cryptor.CanDecrypt() {
			return true
		}
	}
	return false
}

// IsSealedData reports whether data looks like a sealed envelope.
func (s *SealService) IsSealedData(data []byte) bool {
	return sealDomain.IsSealedData(data)
}

func (s *SealService) openBody(envelope *sealDomain.SealedEnvelope, contentKey []byte) ([]byte, error) {
	aead, err := s.bodyCipher(contentKey, envelope.Salt, envelope.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(envelope.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// bodyCipher derives the body key. The info string binds it to the envelope
// version and algorithm.
func (s *SealService) bodyCipher(
	contentKey, salt []byte,
	alg cryptoDomain.Algorithm,
) (cryptoService.AEAD, error) {
	info := []byte(fmt.Sprintf("sealkeeper-seal-v%d:%s", sealDomain.EnvelopeVersion, alg))
	reader := hkdf.New(sha256.New, contentKey, salt, info)

	bodyKey := make([]byte, cryptoDomain.KeySize)
	defer memguard.WipeBytes(bodyKey)
	if _, err := io.ReadFull(reader, bodyKey); err != nil {
		return nil, err
	}

	return s.aeadManager.CreateCipher(bodyKey, alg)
}

func sortedIDs(cryptors map[string]cryptoService.AsymmetricCryptor) []string {
	ids := make([]string, 0, len(cryptors))
	for id := range cryptors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
