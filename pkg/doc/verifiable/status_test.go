/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/storage/mem"
	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

func TestStatusRegistry(t *testing.T) {
	newRegistry := func(t *testing.T) *StatusRegistry {
		t.Helper()

		r, err := NewStatusRegistry(mem.NewProvider())
		require.NoError(t, err)

		return r
	}

	t.Run("never revoked credential", func(t *testing.T) {
		r := newRegistry(t)

		revoked, err := r.IsRevoked("http://example.edu/credentials/1")
		require.NoError(t, err)
		require.False(t, revoked)

		_, err = r.Status("http://example.edu/credentials/1")
		require.Error(t, err)
		require.ErrorIs(t, err, spistorage.ErrDataNotFound)
	})

	t.Run("revoke and look up", func(t *testing.T) {
		r := newRegistry(t)

		require.NoError(t, r.Revoke("http://example.edu/credentials/1", true, "key compromise"))

		revoked, err := r.IsRevoked("http://example.edu/credentials/1")
		require.NoError(t, err)
		require.True(t, revoked)

		entry, err := r.Status("http://example.edu/credentials/1")
		require.NoError(t, err)
		require.True(t, entry.Permanent)
		require.Equal(t, "key compromise", entry.Reason)
		require.False(t, entry.RevokedAt.IsZero())
	})

	t.Run("revocation is never rewritten", func(t *testing.T) {
		r := newRegistry(t)

		require.NoError(t, r.Revoke("http://example.edu/credentials/2", false, "suspended"))
		require.NoError(t, r.Revoke("http://example.edu/credentials/2", true, "escalated"))

		entry, err := r.Status("http://example.edu/credentials/2")
		require.NoError(t, err)
		require.False(t, entry.Permanent)
		require.Equal(t, "suspended", entry.Reason)
	})

	t.Run("empty credential id", func(t *testing.T) {
		r := newRegistry(t)

		require.Error(t, r.Revoke("", true, "reason"))
	})
}
