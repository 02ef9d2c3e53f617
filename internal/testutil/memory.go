// Package testutil provides test helpers: in-memory fakes of the key/value store,
// transaction manager and notification sink, plus migrated databases for
// integration tests (see SetupDB).
package testutil

import (
	"context"
	"sort"
	"sync"
)

type memoryTxKey struct{}

type memoryEntry struct {
	owner, namespace, key string
}

// MemoryStore is an in-memory key/value Store.
//
// FailOn, when set, is consulted before every write and its error is returned
// instead of applying the write. Tests use it to inject storage faults.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memoryEntry]string

	FailOn func(op, ownerID, namespace, key string) error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memoryEntry]string)}
}

// GetValue returns the stored value or defaultValue.
func (s *MemoryStore) GetValue(_ context.Context, ownerID, namespace, key, defaultValue string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if value, ok := s.entries[memoryEntry{ownerID, namespace, key}]; ok {
		return value, nil
	}
	return defaultValue, nil
}

// SetValue creates or replaces an entry.
func (s *MemoryStore) SetValue(_ context.Context, ownerID, namespace, key, value string) error {
	if err := s.fail("set", ownerID, namespace, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memoryEntry{ownerID, namespace, key}] = value
	return nil
}

// DeleteValue removes an entry.
func (s *MemoryStore) DeleteValue(_ context.Context, ownerID, namespace, key string) error {
	if err := s.fail("delete", ownerID, namespace, key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, memoryEntry{ownerID, namespace, key})
	return nil
}

// ListKeys returns the owner's keys in namespace, sorted.
func (s *MemoryStore) ListKeys(_ context.Context, ownerID, namespace string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for entry := range s.entries {
		if entry.owner == ownerID && entry.namespace == namespace {
			keys = append(keys, entry.key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// ListOwnersHavingKey returns the owners holding (namespace, key), sorted.
func (s *MemoryStore) ListOwnersHavingKey(_ context.Context, namespace, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]string, 0)
	for entry := range s.entries {
		if entry.namespace == namespace && entry.key == key {
			owners = append(owners, entry.owner)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) fail(op, ownerID, namespace, key string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op, ownerID, namespace, key)
}

func (s *MemoryStore) snapshot() map[memoryEntry]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[memoryEntry]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) restore(entries map[memoryEntry]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// MemoryTxManager provides transactions over a MemoryStore by snapshotting it on
// begin and restoring the snapshot on rollback. Nested calls join the outer one.
type MemoryTxManager struct {
	store *MemoryStore

	mu        sync.Mutex
	Commits   int
	Rollbacks int
}

// NewMemoryTxManager creates a transaction manager for store.
func NewMemoryTxManager(store *MemoryStore) *MemoryTxManager {
	return &MemoryTxManager{store: store}
}

// WithTx runs fn in a transaction.
func (m *MemoryTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}

	snapshot := m.store.snapshot()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		m.store.restore(snapshot)
		m.mu.Lock()
		m.Rollbacks++
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.Commits++
	m.mu.Unlock()
	return nil
}
