// Package service provides the process-wide state shared by lifecycle use cases:
// a short-lived cache of unlocked key pairs and cryptors, and per-owner locks.
package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/pmylund/go-cache"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	cryptoService "github.com/allisson/sealkeeper/internal/crypto/service"
)

type ownerEntry struct {
	pair    *cryptoDomain.KeyPair
	cryptor cryptoService.AsymmetricCryptor
	token   []byte
}

// OwnerCache maps owner ids to their unlocked KeyPair and AsymmetricCryptor.
//
// An entry is only returned to callers presenting the passphrase it was cached
// with; the cache keeps an HMAC of that passphrase under a per-process key, never
// the passphrase itself. Key pairs are stored and returned as clones, and a
// pair's private key is wiped when its entry is invalidated or expires. A ttl of
// zero keeps entries until they are invalidated.
type OwnerCache struct {
	cache    *cache.Cache
	tokenKey []byte
}

// NewOwnerCache creates an OwnerCache.
func NewOwnerCache(ttl time.Duration) (*OwnerCache, error) {
	tokenKey := make([]byte, sha256.Size)
	if _, err := rand.Read(tokenKey); err != nil {
		return nil, err
	}

	c := cache.New(ttl, ttl)
	c.OnEvicted(func(_ string, value interface{}) {
		if entry, ok := value.(*ownerEntry); ok {
			cryptoDomain.Zero(entry.pair.PrivateKey)
		}
	})
	return &OwnerCache{cache: c, tokenKey: tokenKey}, nil
}

// Get returns a copy of the cached pair and the cached cryptor for ownerID.
func (o *OwnerCache) Get(
	ownerID string,
	passphrase []byte,
) (*cryptoDomain.KeyPair, cryptoService.AsymmetricCryptor, bool) {
	value, found := o.cache.Get(ownerID)
	if !found {
		return nil, nil, false
	}
	entry := value.(*ownerEntry)
	if !hmac.Equal(entry.token, o.token(passphrase)) {
		return nil, nil, false
	}
	return entry.pair.Clone(), entry.cryptor, true
}

// Put replaces the entry for pair.OwnerID.
func (o *OwnerCache) Put(
	pair *cryptoDomain.KeyPair,
	cryptor cryptoService.AsymmetricCryptor,
	passphrase []byte,
) {
	o.Invalidate(pair.OwnerID)
	o.cache.SetDefault(pair.OwnerID, &ownerEntry{
		pair:    pair.Clone(),
		cryptor: cryptor,
		token:   o.token(passphrase),
	})
}

// Invalidate evicts the entry for ownerID.
func (o *OwnerCache) Invalidate(ownerID string) {
	o.cache.Delete(ownerID)
}

// Flush evicts every entry.
func (o *OwnerCache) Flush() {
	for ownerID := range o.cache.Items() {
		o.cache.Delete(ownerID)
	}
}

func (o *OwnerCache) token(passphrase []byte) []byte {
	mac := hmac.New(sha256.New, o.tokenKey)
	mac.Write(passphrase)
	return mac.Sum(nil)
}

// OwnerLocks serializes key changes per owner. Operations on different owners
// never block each other.
type OwnerLocks struct {
	locks sync.Map
}

// NewOwnerLocks creates an OwnerLocks.
func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{}
}

// Lock acquires the lock for ownerID and returns its release function.
func (l *OwnerLocks) Lock(ownerID string) func() {
	value, _ := l.locks.LoadOrStore(ownerID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
