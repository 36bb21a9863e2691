/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	docproof "github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
	"github.com/trustfabric/trustkit-go/pkg/kms"
)

func TestProject(t *testing.T) {
	env := newTestEnv(t)
	vc := issueTestCredential(t, env, kms.ED25519)

	projected := vc.Project("degree")

	t.Run("only requested claims plus the subject id remain", func(t *testing.T) {
		require.Equal(t, map[string]interface{}{
			"id":     vc.Subject["id"],
			"degree": vc.Subject["degree"],
		}, projected.Subject)
	})

	t.Run("the issuer proof is dropped", func(t *testing.T) {
		require.Nil(t, projected.Proof)
	})

	t.Run("the original is untouched", func(t *testing.T) {
		require.NotNil(t, vc.Proof)
		require.Contains(t, vc.Subject, "name")
	})

	t.Run("the caller's claims slice is not written into", func(t *testing.T) {
		claims := make([]string, 1, 2)
		claims[0] = "degree"
		spare := claims[:2]
		spare[1] = "name"

		vc.Project(claims...)

		require.Equal(t, []string{"degree", "name"}, spare)
	})
}

func TestSignPresentation(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		vc := issueTestCredential(t, env, kms.ED25519)
		holderDID, holderHandle := env.newIdentity(t, kms.ED25519)

		vp := NewPresentation(holderDID, vc.Project("degree"))

		signed, err := NewHolder(env.keyManager, env.registry).SignPresentation(
			context.Background(), vp, holderHandle, "challenge-123", "verifier.example.com")
		require.NoError(t, err)

		require.NotNil(t, signed.Proof)
		require.Equal(t, docproof.PurposeAuthentication, signed.Proof.ProofPurpose)
		require.Equal(t, "challenge-123", signed.Proof.Challenge)
		require.Equal(t, "verifier.example.com", signed.Proof.Domain)
		require.Equal(t, holderDID, signed.Holder)
		require.Len(t, signed.Credentials, 1)

		// the unsigned presentation is untouched
		require.Nil(t, vp.Proof)
	})

	t.Run("challenge is required", func(t *testing.T) {
		env := newTestEnv(t)
		holderDID, holderHandle := env.newIdentity(t, kms.ED25519)

		_, err := NewHolder(env.keyManager, env.registry).SignPresentation(
			context.Background(), NewPresentation(holderDID), holderHandle, "", "")
		require.ErrorContains(t, err, "challenge is required")
	})

	t.Run("holder is required", func(t *testing.T) {
		env := newTestEnv(t)
		_, holderHandle := env.newIdentity(t, kms.ED25519)

		_, err := NewHolder(env.keyManager, env.registry).SignPresentation(
			context.Background(), NewPresentation(""), holderHandle, "challenge-123", "")
		require.ErrorContains(t, err, "holder is not set")
	})
}

func TestVerifyPresentation(t *testing.T) {
	signPresentation := func(t *testing.T, env *testEnv) *Presentation {
		t.Helper()

		vc := issueTestCredential(t, env, kms.ED25519)
		holderDID, holderHandle := env.newIdentity(t, kms.ED25519)

		signed, err := NewHolder(env.keyManager, env.registry).SignPresentation(
			context.Background(), NewPresentation(holderDID, vc.Project("degree")),
			holderHandle, "challenge-123", "verifier.example.com")
		require.NoError(t, err)

		return signed
	}

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"challenge-123", "verifier.example.com")
		require.NoError(t, err)
	})

	t.Run("challenge mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"replayed-challenge", "verifier.example.com")
		require.ErrorContains(t, err, "challenge mismatch")
	})

	t.Run("domain mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"challenge-123", "other.example.com")
		require.ErrorContains(t, err, "domain mismatch")
	})

	t.Run("edited challenge and domain do not verify", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		// a replaying holder rewrites the proof metadata to match another
		// verifier session; the signature covers the original values
		signed.Proof.Challenge = "attacker-challenge"
		signed.Proof.Domain = "attacker.example.com"

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"attacker-challenge", "attacker.example.com")
		require.Error(t, err)
		require.ErrorContains(t, err, "verify presentation")
	})

	t.Run("edited proof purpose does not verify", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		signed.Proof.ProofPurpose = docproof.PurposeAssertionMethod

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"challenge-123", "verifier.example.com")
		require.Error(t, err)
	})

	t.Run("missing holder proof", func(t *testing.T) {
		env := newTestEnv(t)

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(),
			NewPresentation("did:example:holder"), "challenge-123", "")
		require.ErrorContains(t, err, "no holder proof")
	})

	t.Run("tampered presentation", func(t *testing.T) {
		env := newTestEnv(t)
		signed := signPresentation(t, env)

		signed.Credentials[0].Subject["degree"] = "Doctor of Philosophy"

		err := NewVerifier(env.registry).VerifyPresentation(context.Background(), signed,
			"challenge-123", "verifier.example.com")
		require.ErrorContains(t, err, "digest mismatch")
	})
}

func TestPresentationMarshalRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	vc := issueTestCredential(t, env, kms.ED25519)
	holderDID, holderHandle := env.newIdentity(t, kms.ED25519)

	signed, err := NewHolder(env.keyManager, env.registry).SignPresentation(
		context.Background(), NewPresentation(holderDID, vc), holderHandle, "challenge-123", "")
	require.NoError(t, err)

	vpBytes, err := signed.MarshalJSON()
	require.NoError(t, err)

	again, err := ParsePresentation(vpBytes)
	require.NoError(t, err)

	require.Equal(t, signed.Holder, again.Holder)
	require.Equal(t, signed.Types, again.Types)
	require.Len(t, again.Credentials, 1)
	require.Equal(t, vc.ID, again.Credentials[0].ID)
	require.NotNil(t, again.Proof)
	require.Equal(t, signed.Proof.Challenge, again.Proof.Challenge)
}

func TestParsePresentationErrors(t *testing.T) {
	t.Run("wrong type", func(t *testing.T) {
		_, err := ParsePresentation([]byte(`{
			"@context": "https://www.w3.org/2018/credentials/v1",
			"type": "SomethingElse"
		}`))
		require.ErrorContains(t, err, "must include VerifiablePresentation")
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParsePresentation([]byte("not json"))
		require.Error(t, err)
	})
}
