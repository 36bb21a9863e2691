/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustregistry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/storage/mem"
)

func TestFindPaths(t *testing.T) {
	t.Run("single hop", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:anchor", 1.0))
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:anchor", "did:example:issuer", 0.8))

		paths, err := r.FindPaths(context.Background(), "did:example:issuer", 3)
		require.NoError(t, err)
		require.Len(t, paths, 1)
		require.Equal(t, []string{"did:example:anchor", "did:example:issuer"}, paths[0].DIDs)
		require.InDelta(t, 0.8, paths[0].Score, 1e-9)
		require.Equal(t, 1, paths[0].Length())
	})

	t.Run("target is itself an anchor", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:issuer", 0.9))
		require.NoError(t, err)

		paths, err := r.FindPaths(context.Background(), "did:example:issuer", 3)
		require.NoError(t, err)
		require.Len(t, paths, 1)
		require.Equal(t, 0, paths[0].Length())
		require.InDelta(t, 0.9, paths[0].Score, 1e-9)
	})

	t.Run("hop bound prunes longer paths", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:anchor", 1.0))
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:anchor", "did:example:mid", 0.9))
		require.NoError(t, r.AddAttestation("did:example:mid", "did:example:issuer", 0.9))

		paths, err := r.FindPaths(context.Background(), "did:example:issuer", 1)
		require.NoError(t, err)
		require.Empty(t, paths)

		paths, err = r.FindPaths(context.Background(), "did:example:issuer", 2)
		require.NoError(t, err)
		require.Len(t, paths, 1)
		require.InDelta(t, 0.81, paths[0].Score, 1e-9)
	})

	t.Run("inactive anchors do not start paths", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(&Anchor{SubjectDID: "did:example:anchor", TrustScore: 1.0, Status: StatusSuspended})
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:anchor", "did:example:issuer", 0.9))

		paths, err := r.FindPaths(context.Background(), "did:example:issuer", 3)
		require.NoError(t, err)
		require.Empty(t, paths)
	})

	t.Run("cycles are not followed", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:a", 1.0))
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:a", "did:example:b", 0.9))
		require.NoError(t, r.AddAttestation("did:example:b", "did:example:a", 0.9))
		require.NoError(t, r.AddAttestation("did:example:b", "did:example:target", 0.9))

		paths, err := r.FindPaths(context.Background(), "did:example:target", 10)
		require.NoError(t, err)
		require.Len(t, paths, 1)
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		r := newRegistry(t)

		// two anchors reach the target: a strong two-hop path and a weaker
		// one-hop path
		_, err := r.AddAnchor(activeAnchor("did:example:a", 1.0))
		require.NoError(t, err)
		_, err = r.AddAnchor(activeAnchor("did:example:b", 1.0))
		require.NoError(t, err)

		require.NoError(t, r.AddAttestation("did:example:a", "did:example:mid", 0.95))
		require.NoError(t, r.AddAttestation("did:example:mid", "did:example:target", 0.95))
		require.NoError(t, r.AddAttestation("did:example:b", "did:example:target", 0.7))

		first, err := r.FindPaths(context.Background(), "did:example:target", 3)
		require.NoError(t, err)
		require.Len(t, first, 2)

		// higher score wins even though the path is longer
		require.Equal(t, []string{"did:example:a", "did:example:mid", "did:example:target"}, first[0].DIDs)
		require.Equal(t, []string{"did:example:b", "did:example:target"}, first[1].DIDs)

		second, err := r.FindPaths(context.Background(), "did:example:target", 3)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("equal scores tie-break on length then DID sequence", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:a", 1.0))
		require.NoError(t, err)
		_, err = r.AddAnchor(activeAnchor("did:example:b", 1.0))
		require.NoError(t, err)

		require.NoError(t, r.AddAttestation("did:example:a", "did:example:target", 0.8))
		require.NoError(t, r.AddAttestation("did:example:b", "did:example:target", 0.8))

		paths, err := r.FindPaths(context.Background(), "did:example:target", 3)
		require.NoError(t, err)
		require.Len(t, paths, 2)
		require.Equal(t, "did:example:a", paths[0].DIDs[0])
		require.Equal(t, "did:example:b", paths[1].DIDs[0])
	})

	t.Run("cancelled context aborts the walk", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:a", 1.0))
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:a", "did:example:b", 0.9))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = r.FindPaths(ctx, "did:example:b", 3)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("direct trust", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:issuer", 1.0))
		require.NoError(t, err)

		evaluation, err := r.Evaluate(context.Background(), "did:example:issuer", nil)
		require.NoError(t, err)
		require.True(t, evaluation.Allowed)
		require.True(t, evaluation.Direct)
	})

	t.Run("direct trust respects credential types", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(&Anchor{
			SubjectDID:      "did:example:issuer",
			TrustScore:      1.0,
			Status:          StatusActive,
			CredentialTypes: []string{"DegreeCredential"},
		})
		require.NoError(t, err)

		evaluation, err := r.Evaluate(context.Background(), "did:example:issuer",
			[]string{"DegreeCredential"})
		require.NoError(t, err)
		require.True(t, evaluation.Allowed)

		evaluation, err = r.Evaluate(context.Background(), "did:example:issuer",
			[]string{"DriverLicense"})
		require.NoError(t, err)
		require.False(t, evaluation.Allowed)
	})

	t.Run("storage failure is an error, not a denial", func(t *testing.T) {
		storeErr := errors.New("connection reset")

		r, err := New(&brokenReadProvider{inner: mem.NewProvider(), getErr: storeErr})
		require.NoError(t, err)

		evaluation, err := r.Evaluate(context.Background(), "did:example:issuer", nil)
		require.ErrorIs(t, err, storeErr)
		require.Nil(t, evaluation)
	})

	t.Run("indirect trust disabled by default", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:anchor", 1.0))
		require.NoError(t, err)
		require.NoError(t, r.AddAttestation("did:example:anchor", "did:example:issuer", 1.0))

		evaluation, err := r.Evaluate(context.Background(), "did:example:issuer", nil)
		require.NoError(t, err)
		require.False(t, evaluation.Allowed)
		require.Contains(t, evaluation.Reason, "indirect trust is disabled")
	})

	t.Run("indirect trust against the minimum score", func(t *testing.T) {
		// anchor trusts the issuer at 0.8
		setup := func(t *testing.T, minScore float64) *Registry {
			t.Helper()

			r := newRegistry(t, WithPolicy(&Policy{
				MinScore:      minScore,
				AllowIndirect: true,
				MaxPathLength: 3,
			}))

			_, err := r.AddAnchor(activeAnchor("did:example:anchor", 1.0))
			require.NoError(t, err)
			require.NoError(t, r.AddAttestation("did:example:anchor", "did:example:issuer", 0.8))

			return r
		}

		t.Run("allowed above the minimum", func(t *testing.T) {
			evaluation, err := setup(t, 0.75).Evaluate(context.Background(), "did:example:issuer", nil)
			require.NoError(t, err)
			require.True(t, evaluation.Allowed)
			require.False(t, evaluation.Direct)
			require.NotNil(t, evaluation.BestPath)
			require.InDelta(t, 0.8, evaluation.BestPath.Score, 1e-9)
		})

		t.Run("denied below the minimum", func(t *testing.T) {
			evaluation, err := setup(t, 0.85).Evaluate(context.Background(), "did:example:issuer", nil)
			require.NoError(t, err)
			require.False(t, evaluation.Allowed)
			require.Contains(t, evaluation.Reason, "below minimum")
			require.NotNil(t, evaluation.BestPath)
		})
	})

	t.Run("no path is a negative outcome, not an error", func(t *testing.T) {
		r := newRegistry(t, WithPolicy(&Policy{MinScore: 0.5, AllowIndirect: true, MaxPathLength: 3}))

		evaluation, err := r.Evaluate(context.Background(), "did:example:stranger", nil)
		require.NoError(t, err)
		require.False(t, evaluation.Allowed)
		require.Equal(t, "no trust path to issuer", evaluation.Reason)
		require.Nil(t, evaluation.BestPath)
	})

	t.Run("policy constraints gate direct trust", func(t *testing.T) {
		r := newRegistry(t, WithPolicy(&Policy{
			MinScore:          1.0,
			MaxPathLength:     1,
			RequireExpiration: true,
		}))

		_, err := r.AddAnchor(activeAnchor("did:example:issuer", 1.0))
		require.NoError(t, err)

		evaluation, err := r.Evaluate(context.Background(), "did:example:issuer", nil)
		require.NoError(t, err)
		require.False(t, evaluation.Allowed)

		_, err = r.UpdateAnchor(&Anchor{
			SubjectDID:  "did:example:issuer",
			TrustScore:  1.0,
			Status:      StatusActive,
			Constraints: Constraints{RequireExpiration: true},
		})
		require.NoError(t, err)

		evaluation, err = r.Evaluate(context.Background(), "did:example:issuer", nil)
		require.NoError(t, err)
		require.True(t, evaluation.Allowed)
	})
}

func TestTrusted(t *testing.T) {
	r := newRegistry(t)

	_, err := r.AddAnchor(activeAnchor("did:example:issuer", 1.0))
	require.NoError(t, err)

	require.NoError(t, r.Trusted("did:example:issuer", []string{"VerifiableCredential"}))

	err = r.Trusted("did:example:stranger", nil)
	require.ErrorContains(t, err, "not trusted")
}
