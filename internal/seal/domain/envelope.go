// Package domain defines the multi-recipient sealed envelope and its wire format.
//
// A sealed value is the prefix "seal:v1:" followed by the base64url encoding of
// the envelope's JSON form. The prefix makes IsSealedData a cheap structural check
// that never attempts decryption.
package domain

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"

	cryptoDomain "github.com/allisson/sealkeeper/internal/crypto/domain"
	"github.com/allisson/sealkeeper/internal/errors"
)

// EnvelopePrefix marks serialized envelopes.
const EnvelopePrefix = "seal:v1:"

// EnvelopeVersion is the version written into new envelopes.
const EnvelopeVersion = 1

// SealedEnvelope is one ciphertext body plus one wrapped copy of its content key
// per recipient. Envelopes are immutable: revoking a recipient means sealing a
// new envelope without it.
type SealedEnvelope struct {
	Version    int                    `json:"v"`
	Algorithm  cryptoDomain.Algorithm `json:"alg"`
	Salt       []byte                 `json:"salt"`
	Ciphertext []byte                 `json:"ct"`
	Recipients map[string][]byte      `json:"rcpt"`
}

// SealResult is the outcome of sealing. Skipped lists the recipients that could
// not encrypt and therefore cannot open the envelope.
type SealResult struct {
	Envelope *SealedEnvelope
	Skipped  []string
}

var (
	// ErrNoValidCandidate indicates none of the candidates is a recipient able to decrypt.
	ErrNoValidCandidate = errors.Wrap(errors.ErrNotFound, "no valid candidate for sealed envelope")

	// ErrMalformedEnvelope indicates the data is not a parseable sealed envelope.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed sealed envelope")
)

// RecipientIDs returns the recipient ids in sorted order.
func (e *SealedEnvelope) RecipientIDs() []string {
	ids := make([]string, 0, len(e.Recipients))
	for id := range e.Recipients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasRecipient reports whether id holds a wrapped content key.
func (e *SealedEnvelope) HasRecipient(id string) bool {
	_, ok := e.Recipients[id]
	return ok
}

// Marshal serializes the envelope to its prefixed wire form.
func (e *SealedEnvelope) Marshal() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(EnvelopePrefix)+base64.RawURLEncoding.EncodedLen(len(payload)))
	copy(out, EnvelopePrefix)
	base64.RawURLEncoding.Encode(out[len(EnvelopePrefix):], payload)
	return out, nil
}

// ParseSealedEnvelope parses the wire form produced by Marshal.
func ParseSealedEnvelope(data []byte) (*SealedEnvelope, error) {
	if !IsSealedData(data) {
		return nil, ErrMalformedEnvelope
	}

	payload := make([]byte, base64.RawURLEncoding.DecodedLen(len(data)-len(EnvelopePrefix)))
	n, err := base64.RawURLEncoding.Decode(payload, data[len(EnvelopePrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	var envelope SealedEnvelope
	if err := json.Unmarshal(payload[:n], &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if envelope.Version != EnvelopeVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedEnvelope, envelope.Version)
	}
	if len(envelope.Ciphertext) == 0 || len(envelope.Recipients) == 0 {
		return nil, fmt.Errorf("%w: missing ciphertext or recipients", ErrMalformedEnvelope)
	}
	return &envelope, nil
}

// IsSealedData reports whether data looks like a sealed envelope. It only checks
// the prefix.
func IsSealedData(data []byte) bool {
	return bytes.HasPrefix(data, []byte(EnvelopePrefix))
}
