/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

// StatusListType is the credentialStatus type written into issued credentials
// when a status registry is configured.
const StatusListType = "RevocationList2020Status"

const statusStoreName = "credentialstatus"

// StatusEntry records the revocation state of a single credential. Revocation is
// permanent once marked: there is no un-revoke, only the Permanent flag telling
// the caller whether the revocation was declared temporary.
type StatusEntry struct {
	CredentialID string    `json:"credentialId"`
	Permanent    bool      `json:"permanent"`
	Reason       string    `json:"reason,omitempty"`
	RevokedAt    time.Time `json:"revokedAt"`
}

// StatusRegistry tracks revoked credentials.
type StatusRegistry struct {
	store spistorage.Store
}

// NewStatusRegistry opens the status store on the given provider.
func NewStatusRegistry(provider spistorage.Provider) (*StatusRegistry, error) {
	store, err := provider.OpenStore(statusStoreName)
	if err != nil {
		return nil, fmt.Errorf("open status store: %w", err)
	}

	return &StatusRegistry{store: store}, nil
}

// Revoke marks a credential revoked. Revoking an already revoked credential
// leaves the original entry untouched, so a temporary revocation can never be
// rewritten into a permanent one after the fact, nor the other way around.
func (r *StatusRegistry) Revoke(credentialID string, permanent bool, reason string) error {
	if credentialID == "" {
		return errors.New("credential id is empty")
	}

	if _, err := r.Status(credentialID); err == nil {
		return nil
	}

	entry := &StatusEntry{
		CredentialID: credentialID,
		Permanent:    permanent,
		Reason:       reason,
		RevokedAt:    time.Now().UTC(),
	}

	entryBytes, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal status entry: %w", err)
	}

	return r.store.Put(credentialID, entryBytes)
}

// Status returns the revocation entry for a credential. A credential that was
// never revoked yields an error wrapping storage.ErrDataNotFound.
func (r *StatusRegistry) Status(credentialID string) (*StatusEntry, error) {
	entryBytes, err := r.store.Get(credentialID)
	if err != nil {
		return nil, fmt.Errorf("get status entry: %w", err)
	}

	entry := &StatusEntry{}
	if err := json.Unmarshal(entryBytes, entry); err != nil {
		return nil, fmt.Errorf("unmarshal status entry: %w", err)
	}

	return entry, nil
}

// IsRevoked reports whether a credential has been revoked.
func (r *StatusRegistry) IsRevoked(credentialID string) (bool, error) {
	_, err := r.Status(credentialID)
	if err != nil {
		if errors.Is(err, spistorage.ErrDataNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
