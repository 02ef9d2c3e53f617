package service

import (
	"fmt"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
)

// unlockPrivateKey returns the raw private key material for backend. Without a
// passphrase key is taken as-is; otherwise it must be a serialized
// WrappedPrivateKey produced by the same backend.
func unlockPrivateKey(
	locker *KeyLocker,
	backend cryptoDomain.Backend,
	key, passphrase []byte,
) ([]byte, error) {
	if len(key) == 0 {
		return nil, cryptoDomain.ErrKeyMissingOrInvalid
	}
	if len(passphrase) == 0 {
		return append([]byte(nil), key...), nil
	}
	if locker == nil {
		return nil, fmt.Errorf("%w: no key locker configured", cryptoDomain.ErrKeyMissingOrInvalid)
	}

	wrapped, err := cryptoDomain.ParseWrappedPrivateKey(string(key))
	if err != nil {
		return nil, err
	}
	if wrapped.Backend != backend {
		return nil, fmt.Errorf("%w: key was produced by %s", cryptoDomain.ErrBackendMismatch, wrapped.Backend)
	}

	return locker.Unlock(wrapped, passphrase)
}
