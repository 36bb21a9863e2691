/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ecdsasecp256k1signature2019 implements the EcdsaSecp256k1Signature2019
// signature suite. It uses the RDF Dataset Normalization Algorithm to transform the
// input document into its canonical form, SHA-256 as the message digest algorithm,
// and secp256k1 ECDSA as the signature algorithm.
package ecdsasecp256k1signature2019

import (
	"crypto/sha256"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

// Suite implements the EcdsaSecp256k1Signature2019 signature suite.
type Suite struct {
	suite.SignatureSuite
	jsonldProcessor *jsonld.Processor
}

const (
	// SignatureType is the signature type for secp256k1 keys.
	SignatureType = "EcdsaSecp256k1Signature2019"
	rdfDataSetAlg = "URDNA2015"
)

// New an instance of the EcdsaSecp256k1Signature2019 signature suite.
func New(opts ...suite.Opt) *Suite {
	s := &Suite{jsonldProcessor: jsonld.NewProcessor(rdfDataSetAlg)}

	suite.InitSuiteOptions(&s.SignatureSuite, opts...)

	return s
}

// NewPublicKeyVerifier creates a signature verifier that verifies a secp256k1
// signature taking a compressed SEC1 public key as input.
func NewPublicKeyVerifier() *verifier.ECDSASecp256k1SignatureVerifier {
	return verifier.NewECDSASecp256k1SignatureVerifier()
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

// Accept will accept only the EcdsaSecp256k1Signature2019 signature type.
func (s *Suite) Accept(t string) bool {
	return t == SignatureType
}

// CanonicalizationAlgorithm returns the name of the RDF dataset algorithm in use.
func (s *Suite) CanonicalizationAlgorithm() string {
	return rdfDataSetAlg
}
