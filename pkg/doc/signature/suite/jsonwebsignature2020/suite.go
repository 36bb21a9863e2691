/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonwebsignature2020 implements the JsonWebSignature2020 signature suite.
// It is algorithm-agnostic on the verification side: the key material resolved from
// the DID document selects the concrete verifier.
package jsonwebsignature2020

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"errors"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

// Suite implements the JsonWebSignature2020 signature suite.
type Suite struct {
	suite.SignatureSuite
	jsonldProcessor *jsonld.Processor
}

const (
	// SignatureType is the JsonWebSignature2020 signature type.
	SignatureType = "JsonWebSignature2020"
	rdfDataSetAlg = "URDNA2015"
)

// New an instance of the JsonWebSignature2020 signature suite.
func New(opts ...suite.Opt) *Suite {
	s := &Suite{jsonldProcessor: jsonld.NewProcessor(rdfDataSetAlg)}

	suite.InitSuiteOptions(&s.SignatureSuite, opts...)

	return s
}

// publicKeyVerifier dispatches to a concrete verifier based on the resolved key type.
type publicKeyVerifier struct {
	ed25519   *verifier.Ed25519SignatureVerifier
	p256      *verifier.ECDSASignatureVerifier
	p384      *verifier.ECDSASignatureVerifier
	p521      *verifier.ECDSASignatureVerifier
	secp256k1 *verifier.ECDSASecp256k1SignatureVerifier
	rsa       *verifier.RSARS256SignatureVerifier
}

// NewPublicKeyVerifier creates a verifier covering all supported key types.
func NewPublicKeyVerifier() verifier.SignatureVerifier {
	return &publicKeyVerifier{
		ed25519:   verifier.NewEd25519SignatureVerifier(),
		p256:      verifier.NewECDSAES256SignatureVerifier(),
		p384:      verifier.NewECDSAES384SignatureVerifier(),
		p521:      verifier.NewECDSAES521SignatureVerifier(),
		secp256k1: verifier.NewECDSASecp256k1SignatureVerifier(),
		rsa:       verifier.NewRSARS256SignatureVerifier(),
	}
}

// Verify dispatches on the verification method type recorded in the DID document.
// JsonWebKey2020 methods dispatch on the embedded JWK instead.
func (v *publicKeyVerifier) Verify(pubKey *verifier.PublicKey, msg, signature []byte) error {
	switch pubKey.Type {
	case "Ed25519VerificationKey2018", "Ed25519VerificationKey2020":
		return v.ed25519.Verify(pubKey, msg, signature)
	case "EcdsaSecp256k1VerificationKey2019":
		return v.secp256k1.Verify(pubKey, msg, signature)
	case "P256Key2021", "EcdsaSecp256r1VerificationKey2019":
		return v.p256.Verify(pubKey, msg, signature)
	case "P384Key2021":
		return v.p384.Verify(pubKey, msg, signature)
	case "P521Key2021":
		return v.p521.Verify(pubKey, msg, signature)
	case "RsaVerificationKey2018":
		return v.rsa.Verify(pubKey, msg, signature)
	case "JsonWebKey2020":
		return v.verifyJWK(pubKey, msg, signature)
	default:
		return errors.New("unsupported verification method type " + pubKey.Type)
	}
}

func (v *publicKeyVerifier) verifyJWK(pubKey *verifier.PublicKey, msg, signature []byte) error {
	if pubKey.JWK == nil {
		return errors.New("JsonWebKey2020 method carries no JWK")
	}

	switch key := pubKey.JWK.Key.(type) {
	case ed25519.PublicKey:
		return v.ed25519.Verify(pubKey, msg, signature)
	case *ecdsa.PublicKey:
		switch key.Curve.Params().Name {
		case "P-256":
			return v.p256.Verify(pubKey, msg, signature)
		case "P-384":
			return v.p384.Verify(pubKey, msg, signature)
		case "P-521":
			return v.p521.Verify(pubKey, msg, signature)
		default:
			return errors.New("unsupported JWK curve " + key.Curve.Params().Name)
		}
	case *rsa.PublicKey:
		return v.rsa.Verify(pubKey, msg, signature)
	default:
		return errors.New("unsupported JWK key type")
	}
}

// GetCanonicalDocument will return the normalized/canonical version of the document.
func (s *Suite) GetCanonicalDocument(doc map[string]interface{},
	opts ...jsonld.ProcessorOpts) ([]byte, error) {
	return s.jsonldProcessor.GetCanonicalDocument(doc, opts...)
}

// GetDigest returns document digest.
func (s *Suite) GetDigest(doc []byte) []byte {
	digest := sha256.Sum256(doc)
	return digest[:]
}

// Accept will accept only the JsonWebSignature2020 signature type.
func (s *Suite) Accept(t string) bool {
	return t == SignatureType
}

// CanonicalizationAlgorithm returns the name of the RDF dataset algorithm in use.
func (s *Suite) CanonicalizationAlgorithm() string {
	return rdfDataSetAlg
}
