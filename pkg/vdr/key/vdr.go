/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package key implements the did:key method: identifiers are self-certifying
// fingerprints of a public key, created through the KMS and resolved entirely
// offline by reconstructing the document from the fingerprint.
package key

import (
	"github.com/trustfabric/trustkit-go/pkg/kms"
)

// DIDMethod is the method name served by this plugin.
const DIDMethod = "key"

// Verification method types used in reconstructed documents.
const (
	ed25519VerificationKey2018        = "Ed25519VerificationKey2018"
	ecdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	jsonWebKey2020                    = "JsonWebKey2020"
	x25519KeyAgreementKey2019         = "X25519KeyAgreementKey2019"
)

// VDR implements the did:key method.
type VDR struct {
	keyManager kms.KeyManager
}

// New returns a did:key plugin creating keys through the given key manager.
func New(keyManager kms.KeyManager) *VDR {
	return &VDR{keyManager: keyManager}
}

// Accept reports whether this plugin serves the method.
func (v *VDR) Accept(method string) bool {
	return method == DIDMethod
}

// Close frees resources. The did:key method holds none.
func (v *VDR) Close() error {
	return nil
}
