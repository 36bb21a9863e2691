/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifier implements document proof verification: it resolves the proof's
// verification method to public key material, recomputes the canonical digest and
// checks the signature with the suite registered for the proof type.
package verifier

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
)

// SignatureSuite encapsulates signature suite methods required for signature verification.
type SignatureSuite interface {
	// GetCanonicalDocument will return normalized/canonical version of the document
	GetCanonicalDocument(doc map[string]interface{}, opts ...jsonld.ProcessorOpts) ([]byte, error)

	// GetDigest returns document digest
	GetDigest(doc []byte) []byte

	// Verify will verify signature against public key
	Verify(pubKey *PublicKey, doc []byte, signature []byte) error

	// Accept registers this signature suite with the given signature type
	Accept(signatureType string) bool
}

// PublicKey contains a result of public key resolution.
type PublicKey struct {
	Type  string
	Value []byte
	JWK   *jose.JSONWebKey
}

// keyResolver encapsulates key resolution.
type keyResolver interface {
	// Resolve will return public key bytes and the type of public key
	Resolve(id string) (*PublicKey, error)
}

// DocumentVerifier implements JSON LD document proof verification.
type DocumentVerifier struct {
	signatureSuites []SignatureSuite
	pkResolver      keyResolver
}

// New returns a new instance of document verifier.
func New(resolver keyResolver, suites ...SignatureSuite) (*DocumentVerifier, error) {
	if len(suites) == 0 {
		return nil, errors.New("at least one suite must be provided")
	}

	return &DocumentVerifier{
		signatureSuites: suites,
		pkResolver:      resolver,
	}, nil
}

// VerifyObject verifies proofs of a parsed JSON-LD object.
func (dv *DocumentVerifier) VerifyObject(jsonLdObject map[string]interface{},
	opts ...jsonld.ProcessorOpts) error {
	proofs, err := proof.GetProofs(jsonLdObject)
	if err != nil {
		return err
	}

	for _, p := range proofs {
		publicKeyID, err := p.PublicKeyID()
		if err != nil {
			return err
		}

		publicKey, err := dv.pkResolver.Resolve(publicKeyID)
		if err != nil {
			return err
		}

		suite, err := dv.getSignatureSuite(p.Type)
		if err != nil {
			return err
		}

		docDigest, err := proof.CreateVerifyData(suite, jsonLdObject, opts...)
		if err != nil {
			return err
		}

		if len(p.DigestValue) > 0 && !bytes.Equal(docDigest, p.DigestValue) {
			return errors.New("recomputed digest does not match the digest recorded in the proof")
		}

		verifyHash, err := proof.CreateVerifyHash(suite, jsonLdObject, p.JSONLdObject(), opts...)
		if err != nil {
			return err
		}

		signature, err := p.SignatureValue()
		if err != nil {
			return err
		}

		if err := suite.Verify(publicKey, verifyHash, signature); err != nil {
			return err
		}
	}

	return nil
}

func (dv *DocumentVerifier) getSignatureSuite(signatureType string) (SignatureSuite, error) {
	for _, s := range dv.signatureSuites {
		if s.Accept(signatureType) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("signature type %s not supported", signatureType)
}

func rawFromJWK(pubKey *PublicKey) ([]byte, error) {
	switch key := pubKey.JWK.Key.(type) {
	case ed25519.PublicKey:
		return key, nil
	case *ecdsa.PublicKey:
		return x509.MarshalPKIXPublicKey(key)
	case *rsa.PublicKey:
		return x509.MarshalPKIXPublicKey(key)
	default:
		return nil, fmt.Errorf("unsupported JWK key type %T", pubKey.JWK.Key)
	}
}
