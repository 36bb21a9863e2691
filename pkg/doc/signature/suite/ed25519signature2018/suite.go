/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ed25519signature2018 implements the Ed25519Signature2018 signature suite.
// It uses the RDF Dataset Normalization Algorithm to transform the input document
// into its canonical form, SHA-256 as the message digest algorithm, and Ed25519 as
// the signature algorithm.
package ed25519signature2018

import (
	"crypto/sha256"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

// Suite implements the ed25519 signature suite.
type Suite struct {
	suite.SignatureSuite
	jsonldProcessor *jsonld.Processor
}

const (
	// SignatureType is the signature type for ed25519 keys.
	SignatureType = "Ed25519Signature2018"
	rdfDataSetAlg = "URDNA2015"
)

// New an instance of ed25519 signature suite.
func New(opts ...suite.Opt) *Suite {
	s := &Suite{jsonldProcessor: jsonld.NewProcessor(rdfDataSetAlg)}

	suite.InitSuiteOptions(&s.SignatureSuite, opts...)

	return s
}

// NewPublicKeyVerifier creates a signature verifier that verifies an Ed25519
// signature taking Ed25519 public key bytes as input.
func NewPublicKeyVerifier() *verifier.Ed25519SignatureVerifier {
	return verifier.NewEd25519SignatureVerifier()
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

// Accept will accept only ed25519 signature type.
func (s *Suite) Accept(t string) bool {
	return t == SignatureType
}

// CanonicalizationAlgorithm returns the name of the RDF dataset algorithm in use.
func (s *Suite) CanonicalizationAlgorithm() string {
	return rdfDataSetAlg
}
