/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"context"

	"github.com/bluele/gcache"

	"github.com/trustfabric/trustkit-go/pkg/common/log"
	spikms "github.com/trustfabric/trustkit-go/spi/kms"
)

var logger = log.New("trustkit-framework/kms")

const defaultMetadataCacheSize = 1024

// Manager implements KeyManager in front of a single backend plugin. It owns the
// algorithm-compatibility check and a read-mostly key-metadata cache keyed by key ID,
// invalidated on delete and rotate.
type Manager struct {
	backend  spikms.Backend
	metadata gcache.Cache
}

// Option is a Manager instance option.
type Option func(*managerOpts)

type managerOpts struct {
	cacheSize int
}

// WithMetadataCacheSize overrides the key-metadata cache capacity.
func WithMetadataCacheSize(size int) Option {
	return func(o *managerOpts) {
		o.cacheSize = size
	}
}

// NewManager wires a backend plugin behind the KeyManager contract. The backend's
// declared capabilities are negotiated here: if any required algorithm is missing,
// the backend is rejected now, with an Unsupported error, rather than at first use.
func NewManager(backend spikms.Backend, required []Algorithm, opts ...Option) (*Manager, error) {
	if backend == nil {
		return nil, NewError(CodeInvalidInput, "backend is nil")
	}

	options := &managerOpts{cacheSize: defaultMetadataCacheSize}

	for _, opt := range opts {
		opt(options)
	}

	supported := make(map[Algorithm]struct{})

	for _, alg := range backend.Capabilities() {
		supported[alg] = struct{}{}
	}

	for _, alg := range required {
		if _, ok := supported[alg]; !ok {
			return nil, &Error{
				Code:    CodeUnsupported,
				Message: "backend does not support required algorithm",
				Field:   string(alg),
			}
		}
	}

	return &Manager{
		backend:  backend,
		metadata: gcache.New(options.cacheSize).ARC().Build(),
	}, nil
}

// Generate creates a new key of the given algorithm and returns its handle.
func (m *Manager) Generate(ctx context.Context, alg Algorithm) (*KeyHandle, error) {
	if !alg.Valid() {
		return nil, &Error{Code: CodeInvalidInput, Message: "unknown algorithm", Field: string(alg)}
	}

	keyID, err := m.backend.Generate(ctx, alg)
	if err != nil {
		return nil, err
	}

	// cache write happens only after the backend confirms, so a cancelled call
	// leaves no cached-but-unconfirmed entry
	m.cacheAlgorithm(keyID, alg)

	return &KeyHandle{KeyID: keyID, Algorithm: alg}, nil
}

// Sign signs data with the key referenced by the handle. The key's actual algorithm
// is fetched at most once per call (from cache or via one metadata lookup) and
// checked for compatibility with the handle's algorithm before the backend signs.
func (m *Manager) Sign(ctx context.Context, handle *KeyHandle, data []byte) ([]byte, error) {
	if handle == nil {
		return nil, NewError(CodeInvalidInput, "key handle is nil")
	}

	actual, err := m.keyAlgorithm(ctx, handle.KeyID)
	if err != nil {
		return nil, err
	}

	if !actual.Compatible(handle.Algorithm) {
		return nil, &Error{
			Code:    CodeAlgorithmIncompatible,
			Message: "requested algorithm " + string(handle.Algorithm) + " does not match key algorithm " + string(actual),
			Field:   handle.KeyID,
		}
	}

	return m.backend.Sign(ctx, handle.KeyID, data)
}

// PublicKey exports the public key material of the key referenced by the handle.
func (m *Manager) PublicKey(ctx context.Context, handle *KeyHandle) (*PublicKey, error) {
	if handle == nil {
		return nil, NewError(CodeInvalidInput, "key handle is nil")
	}

	pub, err := m.backend.PublicKey(ctx, handle.KeyID)
	if err != nil {
		return nil, err
	}

	m.cacheAlgorithm(handle.KeyID, pub.Algorithm)

	return pub, nil
}

// Rotate replaces the key behind the handle with a fresh key of the same algorithm.
func (m *Manager) Rotate(ctx context.Context, handle *KeyHandle) (*KeyHandle, error) {
	if handle == nil {
		return nil, NewError(CodeInvalidInput, "key handle is nil")
	}

	// drop the stale entry before the backend call so a cancelled rotation cannot
	// leave metadata for a key that no longer exists
	m.metadata.Remove(handle.KeyID)

	newID, err := m.backend.Rotate(ctx, handle.KeyID)
	if err != nil {
		return nil, err
	}

	m.cacheAlgorithm(newID, handle.Algorithm)

	return &KeyHandle{KeyID: newID, Algorithm: handle.Algorithm}, nil
}

// Delete destroys the key behind the handle and invalidates its metadata entry.
func (m *Manager) Delete(ctx context.Context, handle *KeyHandle) error {
	if handle == nil {
		return NewError(CodeInvalidInput, "key handle is nil")
	}

	m.metadata.Remove(handle.KeyID)

	return m.backend.Delete(ctx, handle.KeyID)
}

func (m *Manager) keyAlgorithm(ctx context.Context, keyID string) (Algorithm, error) {
	if cached, err := m.metadata.Get(keyID); err == nil {
		if alg, ok := cached.(Algorithm); ok {
			return alg, nil
		}
	}

	pub, err := m.backend.PublicKey(ctx, keyID)
	if err != nil {
		return "", err
	}

	m.cacheAlgorithm(keyID, pub.Algorithm)

	return pub.Algorithm, nil
}

func (m *Manager) cacheAlgorithm(keyID string, alg Algorithm) {
	if err := m.metadata.Set(keyID, alg); err != nil {
		logger.Debugf("metadata cache set failed for key %s: %v", keyID, err)
	}
}
