/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package suite contains the base signature suite structure shared by the
// concrete suites.
package suite

import (
	"errors"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

// SignatureSuite defines the general signature suite structure.
type SignatureSuite struct {
	Signer   signer
	Verifier sigVerifier
}

type signer interface {
	// Sign will sign the data and return the signature
	Sign(data []byte) ([]byte, error)
	// Alg returns the JWS algorithm identifier of this signer
	Alg() string
}

type sigVerifier interface {
	// Verify will verify a signature.
	Verify(pubKey *verifier.PublicKey, msg, signature []byte) error
}

// Opt is the SignatureSuite option.
type Opt func(opts *SignatureSuite)

// WithSigner defines a signer for the Signature Suite.
func WithSigner(s signer) Opt {
	return func(opts *SignatureSuite) {
		opts.Signer = s
	}
}

// WithVerifier defines a verifier for the Signature Suite.
func WithVerifier(v sigVerifier) Opt {
	return func(opts *SignatureSuite) {
		opts.Verifier = v
	}
}

// InitSuiteOptions initializes the signature suite with options.
func InitSuiteOptions(suite *SignatureSuite, opts ...Opt) *SignatureSuite {
	for _, opt := range opts {
		opt(suite)
	}

	return suite
}

// Verify will verify a signature.
func (s *SignatureSuite) Verify(pubKey *verifier.PublicKey, doc, signature []byte) error {
	if s.Verifier == nil {
		return ErrVerifierNotDefined
	}

	return s.Verifier.Verify(pubKey, doc, signature)
}

// Sign will sign the input data.
func (s *SignatureSuite) Sign(data []byte) ([]byte, error) {
	if s.Signer == nil {
		return nil, ErrSignerNotDefined
	}

	return s.Signer.Sign(data)
}

// Alg returns the JWS algorithm identifier of the configured signer.
func (s *SignatureSuite) Alg() string {
	if s.Signer == nil {
		return ""
	}

	return s.Signer.Alg()
}

// ErrSignerNotDefined is returned when Sign() is called but the signer option is not defined.
var ErrSignerNotDefined = errors.New("signer is not defined")

// ErrVerifierNotDefined is returned when Verify() is called but the verifier option is not defined.
var ErrVerifierNotDefined = errors.New("verifier is not defined")
