// Package domain defines the key/value persistence contract used to hold key
// material, shared values and workflow state.
//
// Every value is an opaque string addressed by (owner, namespace, key). The store
// knows nothing about what it holds: ciphertexts, public keys and backup slots all
// look the same to it.
package domain

import "context"

// Store is the owner-scoped key/value persistence collaborator.
//
// All methods participate in a transaction carried by ctx when one is present.
type Store interface {
	// GetValue returns the stored value, or defaultValue when the entry does not exist.
	GetValue(ctx context.Context, ownerID, namespace, key, defaultValue string) (string, error)

	// SetValue creates or replaces an entry.
	SetValue(ctx context.Context, ownerID, namespace, key, value string) error

	// DeleteValue removes an entry. Removing a missing entry is not an error.
	DeleteValue(ctx context.Context, ownerID, namespace, key string) error

	// ListKeys returns the keys an owner has in namespace, sorted ascending.
	ListKeys(ctx context.Context, ownerID, namespace string) ([]string, error)

	// ListOwnersHavingKey returns every owner with an entry for (namespace, key), sorted ascending.
	ListOwnersHavingKey(ctx context.Context, namespace, key string) ([]string, error)
}
