/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ed25519signature2018

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/doc/ldcontext"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

type ed25519Signer struct {
	privKey ed25519.PrivateKey
}

func (s *ed25519Signer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.privKey, data), nil
}

func (s *ed25519Signer) Alg() string {
	return "EdDSA"
}

func TestSuite(t *testing.T) {
	s := New()

	t.Run("accept", func(t *testing.T) {
		require.True(t, s.Accept(SignatureType))
		require.False(t, s.Accept("JsonWebSignature2020"))
	})

	t.Run("canonicalization algorithm", func(t *testing.T) {
		require.Equal(t, "URDNA2015", s.CanonicalizationAlgorithm())
	})

	t.Run("digest", func(t *testing.T) {
		expected := sha256.Sum256([]byte("doc"))
		require.Equal(t, expected[:], s.GetDigest([]byte("doc")))
	})

	t.Run("canonical document", func(t *testing.T) {
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(`{
			"@context": ["https://www.w3.org/2018/credentials/v1"],
			"id": "http://example.edu/credentials/1872",
			"type": ["VerifiableCredential"]
		}`), &doc))

		canonical, err := s.GetCanonicalDocument(doc,
			jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
		require.NoError(t, err)
		require.NotEmpty(t, canonical)
	})
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s := New(suite.WithSigner(&ed25519Signer{privKey: priv}),
		suite.WithVerifier(NewPublicKeyVerifier()))

	digest := s.GetDigest([]byte("canonical doc"))

	signature, err := s.Sign(digest)
	require.NoError(t, err)

	pubKey := &verifier.PublicKey{Type: "Ed25519VerificationKey2018", Value: pub}
	require.NoError(t, s.Verify(pubKey, digest, signature))

	err = s.Verify(pubKey, s.GetDigest([]byte("other doc")), signature)
	require.EqualError(t, err, "ed25519: invalid signature")
}
