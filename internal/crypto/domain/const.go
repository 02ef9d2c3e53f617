package domain

// Algorithm identifies the symmetric cipher behind a SymmetricCryptor.
//
// All supported algorithms provide Authenticated Encryption with Associated Data (AEAD),
// so a wrong key or tampered ciphertext is detected instead of producing garbage.
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	//
	// Key features:
	//   - 256-bit key size
	//   - 12-byte nonce (96 bits)
	//   - 16-byte authentication tag
	//   - Hardware acceleration on modern CPUs
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	//
	// Preferred on platforms without AES hardware acceleration; constant-time in software.
	ChaCha20 Algorithm = "chacha20-poly1305"

	// LocalSecrets delegates to a gocloud.dev localsecrets keeper (NaCl secretbox).
	LocalSecrets Algorithm = "localsecrets"
)

// Backend identifies an AsymmetricCryptor implementation. Every stored public and
// private key is tagged with the backend that produced it so keys from different
// backends are never mixed for one owner.
type Backend string

const (
	// RSA uses RSA-OAEP (SHA-256) to wrap a per-message AES-256-GCM key and RSA-PSS for signatures.
	RSA Backend = "rsa"

	// Sodium uses X25519 sealed boxes for encryption and Ed25519 for signatures.
	Sodium Backend = "sodium"
)

// KeySize is the size in bytes of every symmetric key handled by this module.
const KeySize = 32
