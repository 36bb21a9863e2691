/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms provides the KMS contracts of the framework. This includes the backend
// plugin interface implemented by each provider, the closed set of signing algorithms
// supported by the service, and the error taxonomy every backend must translate its
// provider-specific faults into.
package kms

import "context"

// Algorithm represents a signing or encryption algorithm supported by the KMS.
// Algorithm values are immutable and comparable by identity.
type Algorithm string

// Supported algorithms.
const (
	// ED25519 algorithm value.
	ED25519 = Algorithm("ED25519")
	// ECDSAP256 algorithm value.
	ECDSAP256 = Algorithm("ECDSAP256")
	// ECDSAP384 algorithm value.
	ECDSAP384 = Algorithm("ECDSAP384")
	// ECDSAP521 algorithm value.
	ECDSAP521 = Algorithm("ECDSAP521")
	// ECDSASecp256k1 algorithm value.
	ECDSASecp256k1 = Algorithm("ECDSASecp256k1")
	// RSA2048 algorithm value. Marked legacy: valid, but discouraged for new keys.
	RSA2048 = Algorithm("RSA2048")
	// RSA3072 algorithm value.
	RSA3072 = Algorithm("RSA3072")
	// RSA4096 algorithm value.
	RSA4096 = Algorithm("RSA4096")
	// X25519 algorithm value (key agreement only).
	X25519 = Algorithm("X25519")
)

// SecurityTier classifies an algorithm for policy purposes. The tier is runtime
// metadata so that policy code can query it, rather than a compile-time annotation.
type SecurityTier int

// Security tiers.
const (
	// TierLegacy marks algorithms that remain valid but are discouraged for new keys.
	TierLegacy SecurityTier = iota
	// TierStandard marks the default tier.
	TierStandard
	// TierHigh marks algorithms suitable for high-assurance deployments.
	TierHigh
)

// AlgorithmInfo carries the metadata of an Algorithm.
type AlgorithmInfo struct {
	Tier    SecurityTier
	KeySize int    // key size in bits, 0 where not applicable
	Curve   string // curve name, empty where not applicable
	Family  string // algorithm family: EdDSA, ECDSA, RSA, ECDH
}

//nolint:gochecknoglobals
var algorithmInfo = map[Algorithm]AlgorithmInfo{
	ED25519:        {Tier: TierHigh, KeySize: 256, Curve: "Ed25519", Family: "EdDSA"},
	ECDSAP256:      {Tier: TierStandard, KeySize: 256, Curve: "P-256", Family: "ECDSA"},
	ECDSAP384:      {Tier: TierHigh, KeySize: 384, Curve: "P-384", Family: "ECDSA"},
	ECDSAP521:      {Tier: TierHigh, KeySize: 521, Curve: "P-521", Family: "ECDSA"},
	ECDSASecp256k1: {Tier: TierStandard, KeySize: 256, Curve: "secp256k1", Family: "ECDSA"},
	RSA2048:        {Tier: TierLegacy, KeySize: 2048, Family: "RSA"},
	RSA3072:        {Tier: TierStandard, KeySize: 3072, Family: "RSA"},
	RSA4096:        {Tier: TierHigh, KeySize: 4096, Family: "RSA"},
	X25519:         {Tier: TierStandard, KeySize: 256, Curve: "X25519", Family: "ECDH"},
}

// Info returns the metadata of the algorithm. Unknown algorithms return a zero
// AlgorithmInfo and ok=false.
func (a Algorithm) Info() (AlgorithmInfo, bool) {
	info, ok := algorithmInfo[a]
	return info, ok
}

// Valid reports whether the algorithm belongs to the supported set.
func (a Algorithm) Valid() bool {
	_, ok := algorithmInfo[a]
	return ok
}

// Compatible reports whether keys of algorithm a can serve operations requested for
// algorithm b. The check is symmetric and total: it never fails, and unknown
// algorithms are compatible only with themselves.
func (a Algorithm) Compatible(b Algorithm) bool {
	if a == b {
		return true
	}

	ai, aok := a.Info()
	bi, bok := b.Info()

	if !aok || !bok {
		return false
	}

	// distinct algorithms interoperate only within the same family on the same curve
	return ai.Family == bi.Family && ai.Curve != "" && ai.Curve == bi.Curve
}

// AllAlgorithms returns the closed set of supported algorithms.
func AllAlgorithms() []Algorithm {
	all := make([]Algorithm, 0, len(algorithmInfo))

	for a := range algorithmInfo {
		all = append(all, a)
	}

	return all
}

// PublicKey is the public key material exported by a backend, together with the key's
// actual algorithm. Encoding of Bytes is algorithm-dependent: raw 32 bytes for
// Ed25519/X25519, compressed SEC1 for secp256k1, PKIX DER for NIST ECDSA and RSA.
type PublicKey struct {
	KeyID     string
	Algorithm Algorithm
	Bytes     []byte
}

// Backend is the plugin contract implemented by every KMS provider. All operations
// translate provider faults into the fixed error taxonomy of pkg/kms; no backend may
// let an unchecked fault cross this boundary.
//
// Operations that reach a remote provider accept a context for cancellation. A
// cancelled call must leave no partial state behind.
type Backend interface {
	// Capabilities declares the algorithms this backend supports. It is consulted at
	// wiring time; a backend missing a required algorithm is rejected before first use.
	Capabilities() []Algorithm

	// Generate creates a new key of the given algorithm and returns its backend-assigned ID.
	Generate(ctx context.Context, alg Algorithm) (string, error)

	// Sign signs data with the key referenced by keyID.
	Sign(ctx context.Context, keyID string, data []byte) ([]byte, error)

	// PublicKey exports the public key material and metadata of the key referenced by keyID.
	PublicKey(ctx context.Context, keyID string) (*PublicKey, error)

	// Rotate replaces the key referenced by keyID with a fresh key of the same
	// algorithm and returns the new key ID. The old ID is no longer usable.
	Rotate(ctx context.Context, keyID string) (string, error)

	// Delete destroys the key referenced by keyID. Further operations on the ID fail
	// with a NotFound error.
	Delete(ctx context.Context, keyID string) error
}
