/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signer

import (
	"context"

	"github.com/trustfabric/trustkit-go/pkg/kms"
)

// KMSSigner adapts a managed key to the signature suite signer contract. Private
// key material never leaves the key management service; the suite hands the
// digest here and receives the raw signature back.
type KMSSigner struct {
	ctx        context.Context
	keyManager kms.KeyManager
	handle     *kms.KeyHandle
}

// NewKMSSigner returns a suite signer backed by the given managed key. The
// context is retained for the lifetime of the signer and bounds every Sign call
// made through it.
func NewKMSSigner(ctx context.Context, keyManager kms.KeyManager, handle *kms.KeyHandle) *KMSSigner {
	return &KMSSigner{ctx: ctx, keyManager: keyManager, handle: handle}
}

// Sign signs data via the key management service.
func (s *KMSSigner) Sign(data []byte) ([]byte, error) {
	return s.keyManager.Sign(s.ctx, s.handle, data)
}

// Alg returns the JWS algorithm identifier of the underlying key.
func (s *KMSSigner) Alg() string {
	switch s.handle.Algorithm {
	case kms.ED25519:
		return "EdDSA"
	case kms.ECDSAP256:
		return "ES256"
	case kms.ECDSAP384:
		return "ES384"
	case kms.ECDSAP521:
		return "ES512"
	case kms.ECDSASecp256k1:
		return "ES256K"
	case kms.RSA2048, kms.RSA3072, kms.RSA4096:
		return "RS256"
	default:
		return ""
	}
}
