/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ecdsasecp256k1signature2019

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

type secp256k1Signer struct {
	privKey *btcec.PrivateKey
}

func (s *secp256k1Signer) Sign(data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)

	return btcecdsa.Sign(s.privKey, digest[:]).Serialize(), nil
}

func (s *secp256k1Signer) Alg() string {
	return "ES256K"
}

func TestSuite(t *testing.T) {
	s := New()

	t.Run("accept", func(t *testing.T) {
		require.True(t, s.Accept(SignatureType))
		require.False(t, s.Accept("Ed25519Signature2018"))
	})

	t.Run("canonicalization algorithm", func(t *testing.T) {
		require.Equal(t, "URDNA2015", s.CanonicalizationAlgorithm())
	})

	t.Run("digest", func(t *testing.T) {
		expected := sha256.Sum256([]byte("doc"))
		require.Equal(t, expected[:], s.GetDigest([]byte("doc")))
	})
}

func TestSignAndVerify(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	s := New(suite.WithSigner(&secp256k1Signer{privKey: privKey}),
		suite.WithVerifier(NewPublicKeyVerifier()))

	digest := s.GetDigest([]byte("canonical doc"))

	signature, err := s.Sign(digest)
	require.NoError(t, err)

	pubKey := &verifier.PublicKey{
		Type:  "EcdsaSecp256k1VerificationKey2019",
		Value: privKey.PubKey().SerializeCompressed(),
	}

	require.NoError(t, s.Verify(pubKey, digest, signature))

	err = s.Verify(pubKey, s.GetDigest([]byte("other doc")), signature)
	require.EqualError(t, err, "secp256k1: invalid signature")
}
