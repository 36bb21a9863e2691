/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signer implements signing of JSON-LD documents with proofs whose
// signatures are produced through the key management service.
package signer

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
)

const defaultProofPurpose = proof.PurposeAssertionMethod

const digestAlgorithm = "SHA-256"

// SignatureSuite encapsulates signature suite methods required for signing documents.
type SignatureSuite interface {
	// GetCanonicalDocument will return normalized/canonical version of the document
	GetCanonicalDocument(doc map[string]interface{}, opts ...jsonld.ProcessorOpts) ([]byte, error)

	// GetDigest returns document digest
	GetDigest(doc []byte) []byte

	// Accept registers this signature suite with the given signature type
	Accept(signatureType string) bool

	// CanonicalizationAlgorithm returns the RDF dataset algorithm this suite uses
	CanonicalizationAlgorithm() string

	// Sign will sign the digest and return the signature
	Sign(digest []byte) ([]byte, error)

	// Alg will return the JWS algorithm identifier
	Alg() string
}

// DocumentSigner implements signing of JSON-LD documents.
type DocumentSigner struct {
	signatureSuites []SignatureSuite
}

// Context holds signing options.
type Context struct {
	SignatureType           string                        // required
	SignatureRepresentation proof.SignatureRepresentation // optional
	Created                 *time.Time                    // optional
	VerificationMethod      string                        // required
	Domain                  string                        // optional
	Nonce                   []byte                        // optional
	Challenge               string                        // optional
	Purpose                 string                        // optional
}

// New returns a new instance of document signer.
func New(signatureSuites ...SignatureSuite) *DocumentSigner {
	return &DocumentSigner{signatureSuites: signatureSuites}
}

// Sign will sign a JSON-LD document and return the signed document. The input
// document bytes are left untouched; a failure at any pipeline step produces no
// output document at all.
func (signer *DocumentSigner) Sign(context *Context, jsonLdDoc []byte,
	opts ...jsonld.ProcessorOpts) ([]byte, error) {
	var jsonLdObject map[string]interface{}

	err := json.Unmarshal(jsonLdDoc, &jsonLdObject)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal json ld document: %w", err)
	}

	signedObject, err := signer.SignObject(context, jsonLdObject, opts...)
	if err != nil {
		return nil, err
	}

	return json.Marshal(signedObject)
}

// SignObject signs a parsed JSON-LD object, returning a new object with the
// proof attached. The input object is never mutated.
func (signer *DocumentSigner) SignObject(context *Context, jsonLdObject map[string]interface{},
	opts ...jsonld.ProcessorOpts) (map[string]interface{}, error) {
	if err := isValidContext(context); err != nil {
		return nil, err
	}

	suite, err := signer.getSignatureSuite(context.SignatureType)
	if err != nil {
		return nil, err
	}

	created := context.Created
	if created == nil {
		now := time.Now()
		created = &now
	}

	p := &proof.Proof{
		Type:                    context.SignatureType,
		SignatureRepresentation: context.SignatureRepresentation,
		Created:                 created,
		Domain:                  context.Domain,
		Nonce:                   context.Nonce,
		VerificationMethod:      context.VerificationMethod,
		Challenge:               context.Challenge,
		ProofPurpose:            context.Purpose,
		Canonicalization:        suite.CanonicalizationAlgorithm(),
		DigestAlgorithm:         digestAlgorithm,
	}

	if p.ProofPurpose == "" {
		p.ProofPurpose = defaultProofPurpose
	}

	if context.SignatureRepresentation == proof.SignatureJWS {
		p.JWS = proof.CreateDetachedJWTHeader(suite.Alg()) + ".."
	}

	digest, err := proof.CreateVerifyData(suite, jsonLdObject, opts...)
	if err != nil {
		return nil, err
	}

	p.DigestValue = digest

	// the signature covers the proof options as well as the document, so the
	// challenge, domain, created and purpose recorded in the proof cannot be
	// swapped after signing
	verifyHash, err := proof.CreateVerifyHash(suite, jsonLdObject, p.JSONLdObject(), opts...)
	if err != nil {
		return nil, err
	}

	s, err := suite.Sign(verifyHash)
	if err != nil {
		return nil, err
	}

	applySignatureValue(context, p, s)

	return proof.AddProof(jsonLdObject, p), nil
}

func applySignatureValue(context *Context, p *proof.Proof, s []byte) {
	switch context.SignatureRepresentation {
	case proof.SignatureProofValue:
		p.ProofValue = s
	case proof.SignatureJWS:
		p.JWS += base64.RawURLEncoding.EncodeToString(s)
	}
}

// getSignatureSuite returns signature suite based on signature type.
func (signer *DocumentSigner) getSignatureSuite(signatureType string) (SignatureSuite, error) {
	for _, s := range signer.signatureSuites {
		if s.Accept(signatureType) {
			return s, nil
		}
	}

	return nil, fmt.Errorf("signature type %s not supported", signatureType)
}

// isValidContext checks required parameters (for signing).
func isValidContext(context *Context) error {
	if context.SignatureType == "" {
		return errors.New("signature type is missing")
	}

	if context.VerificationMethod == "" {
		return errors.New("verification method is missing")
	}

	return nil
}
