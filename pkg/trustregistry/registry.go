/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustregistry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trustfabric/trustkit-go/pkg/common/log"
	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

var logger = log.New("trustkit-framework/trustregistry")

// ErrAnchorNotFound is returned when no anchor is registered for a subject DID.
var ErrAnchorNotFound = errors.New("trust anchor not found")

const (
	anchorStoreName      = "trustanchor"
	attestationStoreName = "trustattestation"

	attestationKeySep = "|"
)

// Registry is a domain's trust anchor registry. Reads are concurrent; mutation
// takes the write lock only for the single entry being changed.
type Registry struct {
	mu           sync.RWMutex
	anchors      spistorage.Store
	attestations spistorage.Store
	policy       *Policy
}

// Opt configures a Registry.
type Opt func(*Registry)

// WithPolicy sets the domain's trust policy. Without it the default
// direct-trust-only policy applies.
func WithPolicy(policy *Policy) Opt {
	return func(r *Registry) {
		r.policy = policy
	}
}

// New opens the registry stores on the given provider.
func New(provider spistorage.Provider, opts ...Opt) (*Registry, error) {
	anchors, err := provider.OpenStore(anchorStoreName)
	if err != nil {
		return nil, fmt.Errorf("open anchor store: %w", err)
	}

	attestations, err := provider.OpenStore(attestationStoreName)
	if err != nil {
		return nil, fmt.Errorf("open attestation store: %w", err)
	}

	r := &Registry{anchors: anchors, attestations: attestations, policy: DefaultPolicy()}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// AddAnchor registers a trust anchor. Registering a subject DID that already
// has an anchor is a no-op returning the existing anchor, not a duplicate and
// not an error.
func (r *Registry) AddAnchor(anchor *Anchor) (*Anchor, error) {
	if err := validateAnchor(anchor); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.getAnchor(anchor.SubjectDID)

	switch {
	case err == nil:
		logger.Debugf("anchor for %s already registered, returning existing", anchor.SubjectDID)
		return existing, nil
	case !errors.Is(err, ErrAnchorNotFound):
		return nil, err
	}

	stored := *anchor

	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	if stored.Status == "" {
		stored.Status = StatusPending
	}

	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	if err := r.putAnchor(&stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetAnchor returns the anchor registered for a subject DID.
func (r *Registry) GetAnchor(subjectDID string) (*Anchor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.getAnchor(subjectDID)
}

// UpdateAnchor applies an explicit configuration update to an existing anchor.
func (r *Registry) UpdateAnchor(anchor *Anchor) (*Anchor, error) {
	if err := validateAnchor(anchor); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.getAnchor(anchor.SubjectDID)
	if err != nil {
		return nil, err
	}

	updated := *anchor
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := r.putAnchor(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

// RemoveAnchor deletes the anchor for a subject DID.
func (r *Registry) RemoveAnchor(subjectDID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getAnchor(subjectDID); err != nil {
		return err
	}

	return r.anchors.Delete(subjectDID)
}

// Anchors returns every registered anchor.
func (r *Registry) Anchors() ([]*Anchor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys, err := r.anchors.Keys()
	if err != nil {
		return nil, fmt.Errorf("list anchors: %w", err)
	}

	result := make([]*Anchor, 0, len(keys))

	for _, key := range keys {
		anchor, err := r.getAnchor(key)
		if err != nil {
			return nil, err
		}

		result = append(result, anchor)
	}

	return result, nil
}

// AddAttestation records a directed trust edge between two issuers. Re-adding
// an existing edge overwrites its score: attestations are configuration, not
// history.
func (r *Registry) AddAttestation(fromDID, toDID string, score float64) error {
	if fromDID == "" || toDID == "" {
		return errors.New("attestation endpoints must not be empty")
	}

	if strings.Contains(fromDID, attestationKeySep) || strings.Contains(toDID, attestationKeySep) {
		return fmt.Errorf("attestation DIDs must not contain %q", attestationKeySep)
	}

	if score < 0 || score > 1 {
		return fmt.Errorf("attestation score %v out of range [0,1]", score)
	}

	attestation := &Attestation{
		FromDID: fromDID,
		ToDID:   toDID,
		Score:   score,
		AddedAt: time.Now().UTC(),
	}

	attestationBytes, err := json.Marshal(attestation)
	if err != nil {
		return fmt.Errorf("marshal attestation: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.attestations.Put(fromDID+attestationKeySep+toDID, attestationBytes)
}

// Attestations returns every recorded trust edge.
func (r *Registry) Attestations() ([]*Attestation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.attestationList()
}

func (r *Registry) attestationList() ([]*Attestation, error) {
	keys, err := r.attestations.Keys()
	if err != nil {
		return nil, fmt.Errorf("list attestations: %w", err)
	}

	result := make([]*Attestation, 0, len(keys))

	for _, key := range keys {
		attestationBytes, err := r.attestations.Get(key)
		if err != nil {
			return nil, fmt.Errorf("get attestation %s: %w", key, err)
		}

		attestation := &Attestation{}
		if err := json.Unmarshal(attestationBytes, attestation); err != nil {
			return nil, fmt.Errorf("unmarshal attestation %s: %w", key, err)
		}

		result = append(result, attestation)
	}

	return result, nil
}

func (r *Registry) getAnchor(subjectDID string) (*Anchor, error) {
	anchorBytes, err := r.anchors.Get(subjectDID)
	if err != nil {
		if errors.Is(err, spistorage.ErrDataNotFound) {
			return nil, fmt.Errorf("anchor for %s: %w", subjectDID, ErrAnchorNotFound)
		}

		return nil, fmt.Errorf("get anchor %s: %w", subjectDID, err)
	}

	anchor := &Anchor{}
	if err := json.Unmarshal(anchorBytes, anchor); err != nil {
		return nil, fmt.Errorf("unmarshal anchor %s: %w", subjectDID, err)
	}

	return anchor, nil
}

func (r *Registry) putAnchor(anchor *Anchor) error {
	anchorBytes, err := json.Marshal(anchor)
	if err != nil {
		return fmt.Errorf("marshal anchor: %w", err)
	}

	return r.anchors.Put(anchor.SubjectDID, anchorBytes)
}

func validateAnchor(anchor *Anchor) error {
	if anchor == nil {
		return errors.New("anchor is nil")
	}

	if anchor.SubjectDID == "" {
		return errors.New("anchor subject DID must not be empty")
	}

	if anchor.TrustScore < 0 || anchor.TrustScore > 1 {
		return fmt.Errorf("anchor trust score %v out of range [0,1]", anchor.TrustScore)
	}

	switch anchor.Status {
	case "", StatusActive, StatusInactive, StatusPending, StatusSuspended:
	default:
		return fmt.Errorf("unknown anchor status %q", anchor.Status)
	}

	return nil
}
