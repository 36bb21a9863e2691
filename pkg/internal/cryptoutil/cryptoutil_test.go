/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptoutil

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublicEd25519toCurve25519(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		converted, err := PublicEd25519toCurve25519(pub)
		require.NoError(t, err)
		require.Len(t, converted, Curve25519KeySize)
		require.NotEqual(t, []byte(pub), converted)
	})

	t.Run("deterministic", func(t *testing.T) {
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		first, err := PublicEd25519toCurve25519(pub)
		require.NoError(t, err)

		second, err := PublicEd25519toCurve25519(pub)
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("nil key", func(t *testing.T) {
		_, err := PublicEd25519toCurve25519(nil)
		require.EqualError(t, err, "key is nil")
	})

	t.Run("wrong size", func(t *testing.T) {
		_, err := PublicEd25519toCurve25519(make([]byte, 31))
		require.EqualError(t, err, "31-byte key size is invalid")
	})

	t.Run("not a curve point", func(t *testing.T) {
		_, err := PublicEd25519toCurve25519([]byte("12345678901234567890123456789012"))
		require.EqualError(t, err, "error converting public key")
	})
}
