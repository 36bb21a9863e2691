/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustregistry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/storage/mem"
	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

// brokenReadStore fails every Get with a non-not-found error, standing in for
// a backing database that is reachable but unhealthy.
type brokenReadStore struct {
	spistorage.Store
	getErr error
}

func (s *brokenReadStore) Get(string) ([]byte, error) { return nil, s.getErr }

type brokenReadProvider struct {
	inner  spistorage.Provider
	getErr error
}

func (p *brokenReadProvider) OpenStore(name string) (spistorage.Store, error) {
	store, err := p.inner.OpenStore(name)
	if err != nil {
		return nil, err
	}

	return &brokenReadStore{Store: store, getErr: p.getErr}, nil
}

func (p *brokenReadProvider) Close() error { return p.inner.Close() }

func newRegistry(t *testing.T, opts ...Opt) *Registry {
	t.Helper()

	r, err := New(mem.NewProvider(), opts...)
	require.NoError(t, err)

	return r
}

func activeAnchor(subjectDID string, score float64) *Anchor {
	return &Anchor{SubjectDID: subjectDID, TrustScore: score, Status: StatusActive}
}

func TestAddAnchor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := newRegistry(t)

		anchor, err := r.AddAnchor(activeAnchor("did:example:a", 0.9))
		require.NoError(t, err)
		require.NotEmpty(t, anchor.ID)
		require.Equal(t, StatusActive, anchor.Status)
		require.False(t, anchor.CreatedAt.IsZero())
		require.Equal(t, anchor.CreatedAt, anchor.UpdatedAt)
	})

	t.Run("status defaults to pending", func(t *testing.T) {
		r := newRegistry(t)

		anchor, err := r.AddAnchor(&Anchor{SubjectDID: "did:example:a", TrustScore: 1.0})
		require.NoError(t, err)
		require.Equal(t, StatusPending, anchor.Status)
	})

	t.Run("duplicate registration is a no-op returning the existing anchor", func(t *testing.T) {
		r := newRegistry(t)

		first, err := r.AddAnchor(activeAnchor("did:example:a", 0.9))
		require.NoError(t, err)

		second, err := r.AddAnchor(activeAnchor("did:example:a", 0.1))
		require.NoError(t, err)

		require.Equal(t, first.ID, second.ID)
		require.Equal(t, 0.9, second.TrustScore)
	})

	t.Run("storage failure is not treated as anchor absent", func(t *testing.T) {
		storeErr := errors.New("connection reset")

		r, err := New(&brokenReadProvider{inner: mem.NewProvider(), getErr: storeErr})
		require.NoError(t, err)

		_, err = r.AddAnchor(activeAnchor("did:example:a", 0.9))
		require.ErrorIs(t, err, storeErr)
		require.NotErrorIs(t, err, ErrAnchorNotFound)
	})

	t.Run("score out of range", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(activeAnchor("did:example:a", 1.5))
		require.ErrorContains(t, err, "out of range")

		_, err = r.AddAnchor(activeAnchor("did:example:a", -0.1))
		require.ErrorContains(t, err, "out of range")
	})

	t.Run("unknown status", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(&Anchor{SubjectDID: "did:example:a", TrustScore: 1, Status: "frozen"})
		require.ErrorContains(t, err, "unknown anchor status")
	})

	t.Run("empty subject", func(t *testing.T) {
		r := newRegistry(t)

		_, err := r.AddAnchor(&Anchor{TrustScore: 1})
		require.Error(t, err)
	})
}

func TestGetAnchor(t *testing.T) {
	r := newRegistry(t)

	_, err := r.AddAnchor(activeAnchor("did:example:a", 0.9))
	require.NoError(t, err)

	anchor, err := r.GetAnchor("did:example:a")
	require.NoError(t, err)
	require.Equal(t, "did:example:a", anchor.SubjectDID)

	_, err = r.GetAnchor("did:example:unknown")
	require.ErrorIs(t, err, ErrAnchorNotFound)
}

func TestUpdateAnchor(t *testing.T) {
	r := newRegistry(t)

	created, err := r.AddAnchor(activeAnchor("did:example:a", 0.9))
	require.NoError(t, err)

	updated, err := r.UpdateAnchor(&Anchor{
		SubjectDID: "did:example:a",
		TrustScore: 0.5,
		Status:     StatusSuspended,
	})
	require.NoError(t, err)

	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, 0.5, updated.TrustScore)
	require.Equal(t, StatusSuspended, updated.Status)

	t.Run("unknown anchor", func(t *testing.T) {
		_, err := r.UpdateAnchor(activeAnchor("did:example:unknown", 0.5))
		require.ErrorIs(t, err, ErrAnchorNotFound)
	})
}

func TestRemoveAnchor(t *testing.T) {
	r := newRegistry(t)

	_, err := r.AddAnchor(activeAnchor("did:example:a", 0.9))
	require.NoError(t, err)

	require.NoError(t, r.RemoveAnchor("did:example:a"))

	_, err = r.GetAnchor("did:example:a")
	require.ErrorIs(t, err, ErrAnchorNotFound)

	require.ErrorIs(t, r.RemoveAnchor("did:example:a"), ErrAnchorNotFound)
}

func TestAnchors(t *testing.T) {
	r := newRegistry(t)

	for _, did := range []string{"did:example:a", "did:example:b", "did:example:c"} {
		_, err := r.AddAnchor(activeAnchor(did, 1.0))
		require.NoError(t, err)
	}

	anchors, err := r.Anchors()
	require.NoError(t, err)
	require.Len(t, anchors, 3)
}

func TestAddAttestation(t *testing.T) {
	t.Run("success and overwrite", func(t *testing.T) {
		r := newRegistry(t)

		require.NoError(t, r.AddAttestation("did:example:a", "did:example:b", 0.8))
		require.NoError(t, r.AddAttestation("did:example:a", "did:example:b", 0.6))

		attestations, err := r.Attestations()
		require.NoError(t, err)
		require.Len(t, attestations, 1)
		require.Equal(t, 0.6, attestations[0].Score)
	})

	t.Run("empty endpoints", func(t *testing.T) {
		r := newRegistry(t)

		require.Error(t, r.AddAttestation("", "did:example:b", 0.8))
		require.Error(t, r.AddAttestation("did:example:a", "", 0.8))
	})

	t.Run("score out of range", func(t *testing.T) {
		r := newRegistry(t)

		require.ErrorContains(t, r.AddAttestation("did:example:a", "did:example:b", 1.2), "out of range")
	})

	t.Run("separator in a DID", func(t *testing.T) {
		r := newRegistry(t)

		require.Error(t, r.AddAttestation("did:example:a|b", "did:example:c", 0.8))
	})
}

func TestAnchorPermitsTypes(t *testing.T) {
	t.Run("empty list permits any type", func(t *testing.T) {
		anchor := &Anchor{}
		require.True(t, anchor.PermitsTypes([]string{"VerifiableCredential", "DegreeCredential"}))
	})

	t.Run("all requested types must be listed", func(t *testing.T) {
		anchor := &Anchor{CredentialTypes: []string{"VerifiableCredential", "DegreeCredential"}}

		require.True(t, anchor.PermitsTypes([]string{"DegreeCredential"}))
		require.False(t, anchor.PermitsTypes([]string{"DegreeCredential", "DriverLicense"}))
	})
}
