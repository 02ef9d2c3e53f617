package service

import (
	"context"
)

// StaticCredentials is a credential source answering with fixed values, used by
// the CLI where the operator supplies the owner through the environment.
type StaticCredentials struct {
	OwnerID    string
	Passphrase string
}

// CurrentOwnerID returns the configured owner id.
func (s StaticCredentials) CurrentOwnerID(_ context.Context) (string, error) {
	return s.OwnerID, nil
}

// LoginPassphrase returns the configured passphrase when ownerID is the configured owner.
func (s StaticCredentials) LoginPassphrase(_ context.Context, ownerID string) ([]byte, error) {
	if ownerID != s.OwnerID || s.Passphrase == "" {
		return nil, nil
	}
	return []byte(s.Passphrase), nil
}
