/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cryptoutil holds low-level key conversion helpers shared by the DID methods.
package cryptoutil

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/teserakt-io/golang-ed25519/extra25519"
)

// Curve25519KeySize number of bytes in a Curve25519 public or private key.
const Curve25519KeySize = 32

// PublicEd25519toCurve25519 takes an Ed25519 public key and provides the
// corresponding Curve25519 public key, used to derive a key-agreement verification
// method from a signing key.
func PublicEd25519toCurve25519(pub []byte) ([]byte, error) {
	if len(pub) == 0 {
		return nil, errors.New("key is nil")
	}

	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%d-byte key size is invalid", len(pub))
	}

	pkOut := new([Curve25519KeySize]byte)
	pkIn := new([Curve25519KeySize]byte)
	copy(pkIn[:], pub)

	if !extra25519.PublicKeyToCurve25519(pkOut, pkIn) {
		return nil, errors.New("error converting public key")
	}

	return pkOut[:], nil
}
