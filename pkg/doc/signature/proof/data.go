/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
)

const (
	jsonldProof   = "proof"
	jsonldContext = "@context"
)

// signatureSuite encapsulates signature suite methods required for normalizing a document.
type signatureSuite interface {
	// GetCanonicalDocument will return normalized/canonical version of the document
	GetCanonicalDocument(doc map[string]interface{}, opts ...jsonld.ProcessorOpts) ([]byte, error)

	// GetDigest returns document digest
	GetDigest(doc []byte) []byte
}

// CreateVerifyData returns the digest over the canonical form of the document with
// its proof excluded. The issuance pipeline signs exactly these bytes; verification
// recomputes them and compares against the digest recorded in the proof before the
// signature itself is checked.
func CreateVerifyData(suite signatureSuite, jsonldDoc map[string]interface{},
	opts ...jsonld.ProcessorOpts) ([]byte, error) {
	canonicalDoc, err := suite.GetCanonicalDocument(GetCopyWithoutProof(jsonldDoc), opts...)
	if err != nil {
		return nil, err
	}

	return suite.GetDigest(canonicalDoc), nil
}

// CreateVerifyHash returns the bytes a proof signs: the digest of the canonical
// proof options concatenated with the digest of the canonical document. Signing
// the options digest binds challenge, domain, created and proofPurpose to the
// signature, so none of them can be edited after signing.
// https://w3c-dvcg.github.io/ld-signatures/#create-verify-hash-algorithm
func CreateVerifyHash(suite signatureSuite, jsonldDoc, proofOptions map[string]interface{},
	opts ...jsonld.ProcessorOpts) ([]byte, error) {
	docDigest, err := CreateVerifyData(suite, jsonldDoc, opts...)
	if err != nil {
		return nil, err
	}

	canonicalOptions, err := prepareCanonicalProofOptions(suite, jsonldDoc, proofOptions, opts...)
	if err != nil {
		return nil, err
	}

	return append(suite.GetDigest(canonicalOptions), docDigest...), nil
}

// prepareCanonicalProofOptions canonicalizes the proof options with the
// signature material (proofValue, jws, digestValue) and the type excluded. The
// options borrow the document's context when they carry none of their own.
func prepareCanonicalProofOptions(suite signatureSuite, jsonldDoc,
	proofOptions map[string]interface{}, opts ...jsonld.ProcessorOpts) ([]byte, error) {
	optionsCopy := make(map[string]interface{}, len(proofOptions)+1)

	for key, value := range proofOptions {
		switch key {
		case jsonldType, jsonldProofValue, jsonldJWS, jsonldDigestValue:
			continue
		}

		optionsCopy[key] = value
	}

	if _, ok := optionsCopy[jsonldContext]; !ok {
		if docContext, ok := jsonldDoc[jsonldContext]; ok {
			optionsCopy[jsonldContext] = docContext
		}
	}

	return suite.GetCanonicalDocument(optionsCopy, opts...)
}

// GetCopyWithoutProof returns a shallow copy of the JSON object with the proof
// section removed. The input is never mutated.
func GetCopyWithoutProof(jsonLdObject map[string]interface{}) map[string]interface{} {
	if jsonLdObject == nil {
		return nil
	}

	dest := make(map[string]interface{}, len(jsonLdObject))

	for k, v := range jsonLdObject {
		if k != jsonldProof {
			dest[k] = v
		}
	}

	return dest
}

// GetProofs gets the proof section of a JSON object as parsed proofs.
func GetProofs(jsonLdObject map[string]interface{}) ([]*Proof, error) {
	entry, ok := jsonLdObject[jsonldProof]
	if !ok {
		return nil, ErrProofNotFound
	}

	var typedEntries []interface{}

	switch e := entry.(type) {
	case []interface{}:
		typedEntries = e
	case map[string]interface{}:
		typedEntries = []interface{}{e}
	default:
		return nil, ErrProofNotFound
	}

	var result []*Proof

	for _, typedEntry := range typedEntries {
		emap, ok := typedEntry.(map[string]interface{})
		if !ok {
			return nil, ErrProofNotFound
		}

		proof, err := NewProof(emap)
		if err != nil {
			return nil, err
		}

		result = append(result, proof)
	}

	return result, nil
}

// AddProof attaches a proof to the JSON object, returning a new object. The input is
// never mutated, so a failed pipeline step can never leave a partially proofed
// document behind.
func AddProof(jsonLdObject map[string]interface{}, proof *Proof) map[string]interface{} {
	dest := make(map[string]interface{}, len(jsonLdObject)+1)

	for k, v := range jsonLdObject {
		dest[k] = v
	}

	dest[jsonldProof] = proof.JSONLdObject()

	return dest
}
