/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms provides the key management service of the framework: a closed,
// algorithm-aware contract over pluggable signing backends. The Manager validates
// algorithm compatibility once, in front of every backend, so that individual
// backends do not re-implement that logic.
package kms

import (
	"context"

	spikms "github.com/trustfabric/trustkit-go/spi/kms"
)

// Algorithm is re-exported from spi/kms for convenience.
type Algorithm = spikms.Algorithm

// AlgorithmInfo is re-exported from spi/kms for convenience.
type AlgorithmInfo = spikms.AlgorithmInfo

// SecurityTier is re-exported from spi/kms for convenience.
type SecurityTier = spikms.SecurityTier

// Supported algorithms, re-exported from spi/kms.
const (
	ED25519        = spikms.ED25519
	ECDSAP256      = spikms.ECDSAP256
	ECDSAP384      = spikms.ECDSAP384
	ECDSAP521      = spikms.ECDSAP521
	ECDSASecp256k1 = spikms.ECDSASecp256k1
	RSA2048        = spikms.RSA2048
	RSA3072        = spikms.RSA3072
	RSA4096        = spikms.RSA4096
	X25519         = spikms.X25519
)

// Security tiers, re-exported from spi/kms.
const (
	TierLegacy   = spikms.TierLegacy
	TierStandard = spikms.TierStandard
	TierHigh     = spikms.TierHigh
)

// PublicKey is re-exported from spi/kms for convenience.
type PublicKey = spikms.PublicKey

// KeyHandle is an opaque reference to a key held by a backend. It carries no key
// material; it only pairs the backend-assigned key ID with the key's algorithm.
type KeyHandle struct {
	KeyID     string
	Algorithm Algorithm
}

// KeyManager is the key management contract consumed by the rest of the framework.
type KeyManager interface {
	// Generate creates a new key of the given algorithm and returns its handle.
	Generate(ctx context.Context, alg Algorithm) (*KeyHandle, error)

	// Sign signs data with the key referenced by the handle. The requested algorithm
	// is validated against the key's actual algorithm before the backend is called.
	Sign(ctx context.Context, handle *KeyHandle, data []byte) ([]byte, error)

	// PublicKey exports the public key material of the key referenced by the handle.
	PublicKey(ctx context.Context, handle *KeyHandle) (*PublicKey, error)

	// Rotate replaces the key behind the handle with a fresh key of the same
	// algorithm, returning the new handle. The old handle becomes unusable.
	Rotate(ctx context.Context, handle *KeyHandle) (*KeyHandle, error)

	// Delete destroys the key behind the handle. Further operations on the handle
	// fail with a NotFound error; they never silently no-op.
	Delete(ctx context.Context, handle *KeyHandle) error
}
