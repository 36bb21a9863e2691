/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package suite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

type fakeSigner struct {
	signature []byte
	err       error
}

func (s *fakeSigner) Sign(_ []byte) ([]byte, error) {
	return s.signature, s.err
}

func (s *fakeSigner) Alg() string {
	return "EdDSA"
}

type fakeVerifier struct {
	err error
}

func (v *fakeVerifier) Verify(_ *verifier.PublicKey, _, _ []byte) error {
	return v.err
}

func TestSignatureSuiteSign(t *testing.T) {
	t.Run("delegates to the signer", func(t *testing.T) {
		s := InitSuiteOptions(&SignatureSuite{}, WithSigner(&fakeSigner{signature: []byte("signature")}))

		signature, err := s.Sign([]byte("data"))
		require.NoError(t, err)
		require.Equal(t, []byte("signature"), signature)
		require.Equal(t, "EdDSA", s.Alg())
	})

	t.Run("signer failure", func(t *testing.T) {
		s := InitSuiteOptions(&SignatureSuite{}, WithSigner(&fakeSigner{err: errors.New("sign failed")}))

		_, err := s.Sign([]byte("data"))
		require.EqualError(t, err, "sign failed")
	})

	t.Run("no signer configured", func(t *testing.T) {
		s := &SignatureSuite{}

		_, err := s.Sign([]byte("data"))
		require.ErrorIs(t, err, ErrSignerNotDefined)
		require.Empty(t, s.Alg())
	})
}

func TestSignatureSuiteVerify(t *testing.T) {
	t.Run("delegates to the verifier", func(t *testing.T) {
		s := InitSuiteOptions(&SignatureSuite{}, WithVerifier(&fakeVerifier{}))

		require.NoError(t, s.Verify(&verifier.PublicKey{}, []byte("doc"), []byte("signature")))
	})

	t.Run("verifier failure", func(t *testing.T) {
		s := InitSuiteOptions(&SignatureSuite{}, WithVerifier(&fakeVerifier{err: errors.New("bad signature")}))

		require.EqualError(t, s.Verify(&verifier.PublicKey{}, []byte("doc"), []byte("signature")), "bad signature")
	})

	t.Run("no verifier configured", func(t *testing.T) {
		s := &SignatureSuite{}

		require.ErrorIs(t, s.Verify(&verifier.PublicKey{}, []byte("doc"), []byte("signature")),
			ErrVerifierNotDefined)
	})
}
