/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package proof contains the credential proof model shared by the signing and
// verification sides of the proof protocol.
package proof

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

const (
	jsonldType               = "type"
	jsonldCreated            = "created"
	jsonldProofPurpose       = "proofPurpose"
	jsonldProofValue         = "proofValue"
	jsonldJWS                = "jws"
	jsonldVerificationMethod = "verificationMethod"
	jsonldChallenge          = "challenge"
	jsonldDomain             = "domain"
	jsonldNonce              = "nonce"
	jsonldCanonicalization   = "canonicalizationAlgorithm"
	jsonldDigestAlgorithm    = "digestAlgorithm"
	jsonldDigestValue        = "digestValue"
)

// SignatureRepresentation defines a representation of the proof's signature value.
type SignatureRepresentation int

const (
	// SignatureProofValue uses "proofValue" field in a proof.
	SignatureProofValue SignatureRepresentation = iota
	// SignatureJWS uses "jws" field in a proof.
	SignatureJWS
)

// Purposes.
const (
	// PurposeAssertionMethod is the proof purpose of issued credentials.
	PurposeAssertionMethod = "assertionMethod"
	// PurposeAuthentication is the proof purpose of holder presentation proofs.
	PurposeAuthentication = "authentication"
)

// Proof is a cryptographic proof over the canonical form of a document. It is
// created once at issuance and never mutated afterwards.
type Proof struct {
	Type                    string
	Created                 *time.Time
	VerificationMethod      string
	ProofPurpose            string
	Canonicalization        string
	DigestAlgorithm         string
	DigestValue             []byte
	ProofValue              []byte
	JWS                     string
	Challenge               string
	Domain                  string
	Nonce                   []byte
	SignatureRepresentation SignatureRepresentation
}

// NewProof creates a proof from a generic JSON object.
func NewProof(emap map[string]interface{}) (*Proof, error) {
	p := &Proof{
		Type:               stringEntry(emap[jsonldType]),
		VerificationMethod: stringEntry(emap[jsonldVerificationMethod]),
		ProofPurpose:       stringEntry(emap[jsonldProofPurpose]),
		Canonicalization:   stringEntry(emap[jsonldCanonicalization]),
		DigestAlgorithm:    stringEntry(emap[jsonldDigestAlgorithm]),
		Challenge:          stringEntry(emap[jsonldChallenge]),
		Domain:             stringEntry(emap[jsonldDomain]),
	}

	if p.Type == "" {
		return nil, errors.New("proof type is missing")
	}

	if created := stringEntry(emap[jsonldCreated]); created != "" {
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("parse proof created: %w", err)
		}

		p.Created = &t
	}

	if digest := stringEntry(emap[jsonldDigestValue]); digest != "" {
		value, err := base64.RawURLEncoding.DecodeString(digest)
		if err != nil {
			return nil, fmt.Errorf("decode digest value: %w", err)
		}

		p.DigestValue = value
	}

	if nonce := stringEntry(emap[jsonldNonce]); nonce != "" {
		value, err := base64.RawURLEncoding.DecodeString(nonce)
		if err != nil {
			return nil, fmt.Errorf("decode nonce: %w", err)
		}

		p.Nonce = value
	}

	switch {
	case stringEntry(emap[jsonldProofValue]) != "":
		value, err := base64.RawURLEncoding.DecodeString(stringEntry(emap[jsonldProofValue]))
		if err != nil {
			return nil, fmt.Errorf("decode proof value: %w", err)
		}

		p.ProofValue = value
		p.SignatureRepresentation = SignatureProofValue
	case stringEntry(emap[jsonldJWS]) != "":
		p.JWS = stringEntry(emap[jsonldJWS])
		p.SignatureRepresentation = SignatureJWS
	default:
		return nil, errors.New("proof value or jws is missing")
	}

	return p, nil
}

// JSONLdObject returns the JSON object representation of the proof.
func (p *Proof) JSONLdObject() map[string]interface{} {
	emap := map[string]interface{}{
		jsonldType: p.Type,
	}

	if p.Created != nil {
		emap[jsonldCreated] = p.Created.UTC().Format(time.RFC3339)
	}

	setIfNotEmpty(emap, jsonldVerificationMethod, p.VerificationMethod)
	setIfNotEmpty(emap, jsonldProofPurpose, p.ProofPurpose)
	setIfNotEmpty(emap, jsonldCanonicalization, p.Canonicalization)
	setIfNotEmpty(emap, jsonldDigestAlgorithm, p.DigestAlgorithm)
	setIfNotEmpty(emap, jsonldChallenge, p.Challenge)
	setIfNotEmpty(emap, jsonldDomain, p.Domain)

	if len(p.DigestValue) > 0 {
		emap[jsonldDigestValue] = base64.RawURLEncoding.EncodeToString(p.DigestValue)
	}

	if len(p.Nonce) > 0 {
		emap[jsonldNonce] = base64.RawURLEncoding.EncodeToString(p.Nonce)
	}

	if len(p.ProofValue) > 0 {
		emap[jsonldProofValue] = base64.RawURLEncoding.EncodeToString(p.ProofValue)
	}

	if p.JWS != "" {
		emap[jsonldJWS] = p.JWS
	}

	return emap
}

// PublicKeyID returns the verification method reference of the proof.
func (p *Proof) PublicKeyID() (string, error) {
	if p.VerificationMethod == "" {
		return "", errors.New("no verification method in proof")
	}

	return p.VerificationMethod, nil
}

// SignatureValue returns the raw signature, decoding the JWS representation if needed.
func (p *Proof) SignatureValue() ([]byte, error) {
	switch p.SignatureRepresentation {
	case SignatureProofValue:
		if len(p.ProofValue) == 0 {
			return nil, errors.New("proof value is empty")
		}

		return p.ProofValue, nil
	case SignatureJWS:
		return GetJWTSignature(p.JWS)
	}

	return nil, fmt.Errorf("unsupported signature representation: %v", p.SignatureRepresentation)
}

func stringEntry(entry interface{}) string {
	if entry == nil {
		return ""
	}

	if s, ok := entry.(string); ok {
		return s
	}

	return ""
}

func setIfNotEmpty(emap map[string]interface{}, key, value string) {
	if value != "" {
		emap[key] = value
	}
}
