/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
)

// jsonSuite canonicalizes by stable JSON marshalling; the real suites use RDF
// canonicalization but the contract under test is the same.
type jsonSuite struct {
	canonicalErr error
	seen         map[string]interface{}
}

func (s *jsonSuite) GetCanonicalDocument(doc map[string]interface{},
	_ ...jsonld.ProcessorOpts) ([]byte, error) {
	s.seen = doc

	if s.canonicalErr != nil {
		return nil, s.canonicalErr
	}

	return json.Marshal(doc)
}

func (s *jsonSuite) GetDigest(doc []byte) []byte {
	digest := sha256.Sum256(doc)

	return digest[:]
}

func TestCreateVerifyData(t *testing.T) {
	doc := map[string]interface{}{
		"id":   "http://example.edu/credentials/1872",
		"name": "Alice",
		"proof": map[string]interface{}{
			"type": "Ed25519Signature2018",
		},
	}

	t.Run("digest excludes the proof", func(t *testing.T) {
		suite := &jsonSuite{}

		verifyData, err := CreateVerifyData(suite, doc)
		require.NoError(t, err)
		require.Len(t, verifyData, sha256.Size)
		require.NotContains(t, suite.seen, "proof")

		canonical, err := json.Marshal(suite.seen)
		require.NoError(t, err)

		expected := sha256.Sum256(canonical)
		require.Equal(t, expected[:], verifyData)
	})

	t.Run("canonicalization failure", func(t *testing.T) {
		suite := &jsonSuite{canonicalErr: errors.New("canonicalization failed")}

		_, err := CreateVerifyData(suite, doc)
		require.EqualError(t, err, "canonicalization failed")
	})
}

func TestCreateVerifyHash(t *testing.T) {
	doc := map[string]interface{}{
		"@context": []interface{}{"https://www.w3.org/2018/credentials/v1"},
		"id":       "http://example.edu/credentials/1872",
		"name":     "Alice",
	}

	options := func() map[string]interface{} {
		return map[string]interface{}{
			"type":               "Ed25519Signature2018",
			"verificationMethod": "did:example:123#key-1",
			"proofPurpose":       "authentication",
			"challenge":          "c82f3325",
			"domain":             "verifier.example.com",
		}
	}

	t.Run("options digest prepends the document digest", func(t *testing.T) {
		suite := &jsonSuite{}

		verifyHash, err := CreateVerifyHash(suite, doc, options())
		require.NoError(t, err)
		require.Len(t, verifyHash, 2*sha256.Size)

		docDigest, err := CreateVerifyData(suite, doc)
		require.NoError(t, err)
		require.Equal(t, docDigest, verifyHash[sha256.Size:])
	})

	t.Run("challenge and domain are bound", func(t *testing.T) {
		suite := &jsonSuite{}

		verifyHash, err := CreateVerifyHash(suite, doc, options())
		require.NoError(t, err)

		edited := options()
		edited["challenge"] = "attacker-challenge"

		editedHash, err := CreateVerifyHash(suite, doc, edited)
		require.NoError(t, err)
		require.NotEqual(t, verifyHash, editedHash)

		edited = options()
		edited["domain"] = "attacker.example.com"

		editedHash, err = CreateVerifyHash(suite, doc, edited)
		require.NoError(t, err)
		require.NotEqual(t, verifyHash, editedHash)
	})

	t.Run("signature material is excluded", func(t *testing.T) {
		suite := &jsonSuite{}

		verifyHash, err := CreateVerifyHash(suite, doc, options())
		require.NoError(t, err)

		withSignature := options()
		withSignature["proofValue"] = "c2lnbmF0dXJl"
		withSignature["jws"] = "header..signature"
		withSignature["digestValue"] = "ZGlnZXN0"

		sameHash, err := CreateVerifyHash(suite, doc, withSignature)
		require.NoError(t, err)
		require.Equal(t, verifyHash, sameHash)
	})

	t.Run("options borrow the document context", func(t *testing.T) {
		suite := &jsonSuite{}

		_, err := CreateVerifyHash(suite, doc, options())
		require.NoError(t, err)

		// seen holds the last canonicalized object, the proof options
		require.Equal(t, doc["@context"], suite.seen["@context"])
		require.NotContains(t, suite.seen, "type")
	})
}

func TestGetCopyWithoutProof(t *testing.T) {
	doc := map[string]interface{}{
		"id":    "http://example.edu/credentials/1872",
		"proof": map[string]interface{}{"type": "Ed25519Signature2018"},
	}

	copied := GetCopyWithoutProof(doc)
	require.NotContains(t, copied, "proof")
	require.Equal(t, doc["id"], copied["id"])

	// the original keeps its proof
	require.Contains(t, doc, "proof")

	require.Nil(t, GetCopyWithoutProof(nil))
}

func TestAddProof(t *testing.T) {
	doc := map[string]interface{}{
		"id": "http://example.edu/credentials/1872",
	}

	p := &Proof{
		Type:       "Ed25519Signature2018",
		ProofValue: []byte("signature"),
	}

	proofed := AddProof(doc, p)
	require.Contains(t, proofed, "proof")
	require.NotContains(t, doc, "proof")

	proofs, err := GetProofs(proofed)
	require.NoError(t, err)
	require.Len(t, proofs, 1)
	require.Equal(t, "Ed25519Signature2018", proofs[0].Type)
	require.Equal(t, []byte("signature"), proofs[0].ProofValue)
}

func TestGetProofs(t *testing.T) {
	proofEntry := map[string]interface{}{
		"type":       "Ed25519Signature2018",
		"proofValue": base64.RawURLEncoding.EncodeToString([]byte("signature")),
	}

	t.Run("single proof object", func(t *testing.T) {
		proofs, err := GetProofs(map[string]interface{}{"proof": proofEntry})
		require.NoError(t, err)
		require.Len(t, proofs, 1)
	})

	t.Run("proof array", func(t *testing.T) {
		proofs, err := GetProofs(map[string]interface{}{
			"proof": []interface{}{proofEntry, proofEntry},
		})
		require.NoError(t, err)
		require.Len(t, proofs, 2)
	})

	t.Run("no proof section", func(t *testing.T) {
		_, err := GetProofs(map[string]interface{}{"id": "did:example:123"})
		require.ErrorIs(t, err, ErrProofNotFound)
	})

	t.Run("proof of the wrong shape", func(t *testing.T) {
		_, err := GetProofs(map[string]interface{}{"proof": "not an object"})
		require.ErrorIs(t, err, ErrProofNotFound)
	})

	t.Run("invalid proof entry", func(t *testing.T) {
		_, err := GetProofs(map[string]interface{}{
			"proof": map[string]interface{}{"type": ""},
		})
		require.EqualError(t, err, "proof type is missing")
	})
}
