/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trustfabric/trustkit-go/pkg/kms"
	"github.com/trustfabric/trustkit-go/pkg/kms/localkms"
	"github.com/trustfabric/trustkit-go/pkg/storage/mem"
	"github.com/trustfabric/trustkit-go/pkg/vdr"
	"github.com/trustfabric/trustkit-go/pkg/vdr/fingerprint"
	"github.com/trustfabric/trustkit-go/pkg/vdr/key"
	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

type kmsProvider struct {
	storage spistorage.Provider
}

func (p *kmsProvider) StorageProvider() spistorage.Provider {
	return p.storage
}

// testEnv wires a software KMS, the did:key method and a status registry the way
// an application would.
type testEnv struct {
	keyManager *kms.Manager
	registry   *vdr.Registry
	status     *StatusRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	storageProvider := mem.NewProvider()

	backend, err := localkms.New(&kmsProvider{storage: storageProvider})
	require.NoError(t, err)

	keyManager, err := kms.NewManager(backend, nil)
	require.NoError(t, err)

	registry := vdr.New()
	require.NoError(t, registry.Register(key.DIDMethod, key.New(keyManager)))

	status, err := NewStatusRegistry(storageProvider)
	require.NoError(t, err)

	return &testEnv{keyManager: keyManager, registry: registry, status: status}
}

// newIdentity mints a did:key identity whose signing key stays under the test's
// control, so credentials can be issued in its name.
func (e *testEnv) newIdentity(t *testing.T, alg kms.Algorithm) (string, *kms.KeyHandle) {
	t.Helper()

	handle, err := e.keyManager.Generate(context.Background(), alg)
	require.NoError(t, err)

	pub, err := e.keyManager.PublicKey(context.Background(), handle)
	require.NoError(t, err)

	var code uint64

	switch alg {
	case kms.ED25519:
		code = fingerprint.Ed25519PubKeyMultiCodec
	case kms.ECDSASecp256k1:
		code = fingerprint.Secp256k1PubKeyMultiCodec
	default:
		t.Fatalf("newIdentity does not support %s", alg)
	}

	didKey, _ := fingerprint.CreateDIDKey(code, pub.Bytes)

	return didKey, handle
}

func universityDegreeDraft(issuerDID string) *Credential {
	issued := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	return &Credential{
		Context: []string{"https://www.w3.org/2018/credentials/v1"},
		ID:      "http://example.edu/credentials/1872",
		Types:   []string{"VerifiableCredential", "UniversityDegreeCredential"},
		Issuer:  issuerDID,
		Subject: map[string]interface{}{
			"id":     "did:example:ebfeb1f712ebc6f1c276e12ec21",
			"name":   "Jayden Doe",
			"degree": "Bachelor of Science and Arts",
		},
		Issued: &issued,
	}
}
