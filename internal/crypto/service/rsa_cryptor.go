package service

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// DefaultRSAKeyBits is the modulus size used when none is configured.
const DefaultRSAKeyBits = 3072

// RSACryptor implements AsymmetricCryptor with RSA keys.
//
// Keys are PEM encoded: PKCS#8 for the private key, PKIX for the public key.
// Encryption is hybrid: a random AES-256-GCM content key encrypts the payload and
// is itself wrapped with RSA-OAEP-SHA256. Output layout:
//
//	uint16 wrapped key length | wrapped key | nonce || ciphertext
//
// Signatures use RSA-PSS with SHA-256.
type RSACryptor struct {
	mu         sync.RWMutex
	bits       int
	locker     *KeyLocker
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	publicPEM  []byte
}

// NewRSACryptor creates an empty RSA cryptor.
func NewRSACryptor(bits int, locker *KeyLocker) *RSACryptor {
	if bits <= 0 {
		bits = DefaultRSAKeyBits
	}
	return &RSACryptor{bits: bits, locker: locker}
}

// Backend returns cryptoDomain.RSA.
func (c *RSACryptor) Backend() cryptoDomain.Backend {
	return cryptoDomain.RSA
}

// GenerateKeyPair creates a fresh PEM-encoded key pair.
func (c *RSACryptor) GenerateKeyPair() ([]byte, []byte, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, c.bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	defer memguard.WipeBytes(privDER)

	pubPEM, err := encodeRSAPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	return pubPEM, privPEM, nil
}

// SetPrivateKey installs a PEM private key, unlocking it first when passphrase is set.
func (c *RSACryptor) SetPrivateKey(key, passphrase []byte) error {
	raw, err := unlockPrivateKey(c.locker, cryptoDomain.RSA, key, passphrase)
	if err != nil {
		return err
	}
	defer memguard.WipeBytes(raw)

	privateKey, err := parseRSAPrivateKey(raw)
	if err != nil {
		return err
	}

	pubPEM, err := encodeRSAPublicKey(&privateKey.PublicKey)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateKey = privateKey
	c.publicKey = &privateKey.PublicKey
	c.publicPEM = pubPEM
	return nil
}

// SetPublicKey installs a PEM public key and drops any installed private key.
func (c *RSACryptor) SetPublicKey(key []byte) error {
	publicKey, err := parseRSAPublicKey(key)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.privateKey = nil
	c.publicKey = publicKey
	c.publicPEM = append([]byte(nil), key...)
	return nil
}

// PublicKey returns the installed PEM public key.
func (c *RSACryptor) PublicKey() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]byte(nil), c.publicPEM...)
}

// Encrypt encrypts plaintext for the installed public key.
func (c *RSACryptor) Encrypt(plaintext []byte) ([]byte, error) {
	c.mu.RLock()
	publicKey := c.publicKey
	c.mu.RUnlock()

	if publicKey == nil {
		return nil, cryptoDomain.ErrCannotEncrypt
	}

	contentKey := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(contentKey); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	defer memguard.WipeBytes(contentKey)

	wrappedKey, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, contentKey, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	body, err := NewAESGCM(contentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	frame, err := body.Seal(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	out := make([]byte, 2, 2+len(wrappedKey)+len(frame))
	binary.BigEndian.PutUint16(out, uint16(len(wrappedKey))) //nolint:gosec // bounded by modulus size
	out = append(out, wrappedKey...)
	return append(out, frame...), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
func (c *RSACryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	c.mu.RLock()
	privateKey := c.privateKey
	c.mu.RUnlock()

	if privateKey == nil {
		return nil, cryptoDomain.ErrCannotDecrypt
	}

	if len(ciphertext) < 2 {
		return nil, fmt.Errorf("%w: ciphertext too short", cryptoDomain.ErrDecryptionFailed)
	}
	wrappedLen := int(binary.BigEndian.Uint16(ciphertext))
	if len(ciphertext) < 2+wrappedLen {
		return nil, fmt.Errorf("%w: ciphertext too short", cryptoDomain.ErrDecryptionFailed)
	}

	contentKey, err := rsa.DecryptOAEP(sha256.New(), nil, privateKey, ciphertext[2:2+wrappedLen], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	defer memguard.WipeBytes(contentKey)

	body, err := NewAESGCM(contentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	plaintext, err := body.Open(ciphertext[2+wrappedLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Sign returns an RSA-PSS signature over the SHA-256 digest of data.
func (c *RSACryptor) Sign(data []byte) ([]byte, error) {
	c.mu.RLock()
	privateKey := c.privateKey
	c.mu.RUnlock()

	if privateKey == nil {
		return nil, cryptoDomain.ErrCannotSign
	}

	digest := sha256.Sum256(data)
	signature, err := rsa.SignPSS(rand.Reader, privateKey, crypto.SHA256, digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrSigningFailed, err)
	}
	return signature, nil
}

// Verify checks an RSA-PSS signature.
func (c *RSACryptor) Verify(data, signature []byte) error {
	c.mu.RLock()
	publicKey := c.publicKey
	c.mu.RUnlock()

	if publicKey == nil {
		return cryptoDomain.ErrCannotVerify
	}
	if len(signature) != publicKey.Size() {
		return fmt.Errorf("%w: expected %d bytes, got %d", cryptoDomain.ErrSignatureMalformed, publicKey.Size(), len(signature))
	}

	digest := sha256.Sum256(data)
	if err := rsa.VerifyPSS(publicKey, crypto.SHA256, digest[:], signature, nil); err != nil {
		return cryptoDomain.ErrSignatureInvalid
	}
	return nil
}

// CanEncrypt reports whether a public key is installed.
func (c *RSACryptor) CanEncrypt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.publicKey != nil
}

// CanDecrypt reports whether a private key is installed.
func (c *RSACryptor) CanDecrypt() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.privateKey != nil
}

// CanSign reports whether a private key is installed.
func (c *RSACryptor) CanSign() bool {
	return c.CanDecrypt()
}

// CanVerify reports whether a public key is installed.
func (c *RSACryptor) CanVerify() bool {
	return c.CanEncrypt()
}

func parseRSAPrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: private key is not PEM encoded", cryptoDomain.ErrInvalidKeyFormat)
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		// Older tooling writes PKCS#1.
		if pkcs1, pkcs1Err := x509.ParsePKCS1PrivateKey(block.Bytes); pkcs1Err == nil {
			return pkcs1, nil
		}
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeyFormat, err)
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", cryptoDomain.ErrBackendMismatch)
	}
	return rsaKey, nil
}

func parseRSAPublicKey(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: public key is not PEM encoded", cryptoDomain.ErrInvalidKeyFormat)
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidKeyFormat, err)
	}

	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", cryptoDomain.ErrBackendMismatch)
	}
	return rsaKey, nil
}

func encodeRSAPublicKey(publicKey *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}
