package service

import (
	"bytes"
	"fmt"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// CryptorFactoryService implements CryptorFactory.
type CryptorFactoryService struct {
	backend      cryptoDomain.Backend
	rsaBits      int
	symmetricAlg cryptoDomain.Algorithm
	aeadManager  AEADManager
	locker       *KeyLocker
}

// NewCryptorFactory validates the configured backend and algorithm and creates a factory.
func NewCryptorFactory(
	backend cryptoDomain.Backend,
	rsaBits int,
	symmetricAlg cryptoDomain.Algorithm,
	kdf KDFParams,
) (*CryptorFactoryService, error) {
	switch backend {
	case cryptoDomain.RSA, cryptoDomain.Sodium:
	default:
		return nil, cryptoDomain.ErrUnsupportedBackend
	}
	if _, ok := algorithmCodes[symmetricAlg]; !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}

	aeadManager := NewAEADManager()
	return &CryptorFactoryService{
		backend:      backend,
		rsaBits:      rsaBits,
		symmetricAlg: symmetricAlg,
		aeadManager:  aeadManager,
		locker:       NewKeyLocker(kdf, aeadManager, symmetricAlg),
	}, nil
}

// Backend returns the backend used for new key pairs.
func (f *CryptorFactoryService) Backend() cryptoDomain.Backend {
	return f.backend
}

// Locker returns the passphrase key locker shared by all cryptors.
func (f *CryptorFactoryService) Locker() *KeyLocker {
	return f.locker
}

// NewAsymmetric returns an empty cryptor for backend.
func (f *CryptorFactoryService) NewAsymmetric(backend cryptoDomain.Backend) (AsymmetricCryptor, error) {
	switch backend {
	case cryptoDomain.RSA:
		return NewRSACryptor(f.rsaBits, f.locker), nil
	case cryptoDomain.Sodium:
		return NewSodiumCryptor(f.locker), nil
	default:
		return nil, cryptoDomain.ErrUnsupportedBackend
	}
}

// NewSymmetric returns an empty symmetric cryptor.
func (f *CryptorFactoryService) NewSymmetric() SymmetricCryptor {
	// The algorithm was validated in NewCryptorFactory.
	cryptor, _ := NewSymmetricCryptor(f.aeadManager, f.symmetricAlg)
	return cryptor
}

// ForKeyPair returns a cryptor holding both halves of pair. The stored public
// key must match the one derived from the private key.
func (f *CryptorFactoryService) ForKeyPair(pair *cryptoDomain.KeyPair) (AsymmetricCryptor, error) {
	if !pair.IsComplete() {
		return nil, cryptoDomain.ErrKeyPairNotFound
	}

	cryptor, err := f.NewAsymmetric(pair.Backend)
	if err != nil {
		return nil, err
	}
	if err := cryptor.SetPrivateKey(pair.PrivateKey, nil); err != nil {
		return nil, err
	}
	if !bytes.Equal(cryptor.PublicKey(), pair.PublicKey) {
		return nil, fmt.Errorf("%w: public key does not match private key", cryptoDomain.ErrKeyMissingOrInvalid)
	}
	return cryptor, nil
}

// ForPublicKey returns an encrypt/verify-only cryptor.
func (f *CryptorFactoryService) ForPublicKey(
	backend cryptoDomain.Backend,
	publicKey []byte,
) (AsymmetricCryptor, error) {
	cryptor, err := f.NewAsymmetric(backend)
	if err != nil {
		return nil, err
	}
	if err := cryptor.SetPublicKey(publicKey); err != nil {
		return nil, err
	}
	return cryptor, nil
}
