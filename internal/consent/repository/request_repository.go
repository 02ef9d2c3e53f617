// Package repository persists recryption requests in the key/value store and
// notifications in PostgreSQL or MySQL.
package repository

import (
	"context"
	"encoding/json"

	"github.com/allisson/sealkeeper/internal/consent/domain"
	apperrors "github.com/allisson/sealkeeper/internal/errors"
	keyvalueDomain "github.com/allisson/sealkeeper/internal/keyvalue/domain"
)

const (
	// RequestNamespace is the key/value namespace holding recryption requests.
	RequestNamespace = "recryption"

	requestKey = "request"
)

// KeyValueRequestRepository stores one JSON-encoded RecryptionRequest per owner.
type KeyValueRequestRepository struct {
	store keyvalueDomain.Store
}

// NewKeyValueRequestRepository creates a KeyValueRequestRepository.
func NewKeyValueRequestRepository(store keyvalueDomain.Store) *KeyValueRequestRepository {
	return &KeyValueRequestRepository{store: store}
}

// Get returns the owner's request or ErrRequestNotFound.
func (r *KeyValueRequestRepository) Get(ctx context.Context, ownerID string) (*domain.RecryptionRequest, error) {
	encoded, err := r.store.GetValue(ctx, ownerID, RequestNamespace, requestKey, "")
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, domain.ErrRequestNotFound
	}

	var request domain.RecryptionRequest
	if err := json.Unmarshal([]byte(encoded), &request); err != nil {
		return nil, apperrors.Wrapf(err, "failed to decode recryption request of %s", ownerID)
	}
	return &request, nil
}

// Save creates or replaces the owner's request.
func (r *KeyValueRequestRepository) Save(ctx context.Context, request *domain.RecryptionRequest) error {
	encoded, err := json.Marshal(request)
	if err != nil {
		return apperrors.Wrap(err, "failed to encode recryption request")
	}
	return r.store.SetValue(ctx, request.OwnerID, RequestNamespace, requestKey, string(encoded))
}

// Delete removes the owner's request. Missing requests are not an error.
func (r *KeyValueRequestRepository) Delete(ctx context.Context, ownerID string) error {
	return r.store.DeleteValue(ctx, ownerID, RequestNamespace, requestKey)
}
