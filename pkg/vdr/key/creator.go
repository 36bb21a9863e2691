/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package key

import (
	"context"
	"fmt"
	"time"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	"github.com/trustfabric/trustkit-go/pkg/internal/cryptoutil"
	"github.com/trustfabric/trustkit-go/pkg/kms"
	"github.com/trustfabric/trustkit-go/pkg/vdr/fingerprint"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

// Create mints a new did:key identifier. A fresh key of the requested algorithm
// is generated through the KMS and the document is derived from its fingerprint,
// bound to the requested verification purposes.
func (v *VDR) Create(ctx context.Context, options *spivdr.CreationOptions,
	_ ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	if options == nil {
		options = spivdr.NewCreationOptions()
	}

	handle, err := v.keyManager.Generate(ctx, options.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("did:key create: generate key: %w", err)
	}

	pub, err := v.keyManager.PublicKey(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("did:key create: fetch public key: %w", err)
	}

	code, keyBytes, err := fingerprintBytes(options.Algorithm, pub.Bytes)
	if err != nil {
		return nil, fmt.Errorf("did:key create: %w", err)
	}

	didKey, keyID := fingerprint.CreateDIDKey(code, keyBytes)

	vm, err := verificationMethod(keyID, didKey, code, keyBytes)
	if err != nil {
		return nil, fmt.Errorf("did:key create: %w", err)
	}

	doc, err := buildDoc(didKey, vm, code, keyBytes, options)
	if err != nil {
		return nil, fmt.Errorf("did:key create: %w", err)
	}

	return diddoc.NewResolved(doc), nil
}

func buildDoc(didKey string, vm *diddoc.VerificationMethod, code uint64, keyBytes []byte,
	options *spivdr.CreationOptions) (*diddoc.Doc, error) {
	now := time.Now().UTC()

	doc := &diddoc.Doc{
		Context:            []string{diddoc.ContextV1},
		ID:                 didKey,
		VerificationMethod: []diddoc.VerificationMethod{*vm},
		Created:            &now,
		Updated:            &now,
	}

	if options.Has(spivdr.Authentication) {
		doc.Authentication = append(doc.Authentication,
			*diddoc.NewReferencedVerification(vm, diddoc.Authentication))
	}

	if options.Has(spivdr.AssertionMethod) {
		doc.AssertionMethod = append(doc.AssertionMethod,
			*diddoc.NewReferencedVerification(vm, diddoc.AssertionMethod))
	}

	if options.Has(spivdr.CapabilityInvocation) {
		doc.CapabilityInvocation = append(doc.CapabilityInvocation,
			*diddoc.NewReferencedVerification(vm, diddoc.CapabilityInvocation))
	}

	if options.Has(spivdr.CapabilityDelegation) {
		doc.CapabilityDelegation = append(doc.CapabilityDelegation,
			*diddoc.NewReferencedVerification(vm, diddoc.CapabilityDelegation))
	}

	if options.Has(spivdr.KeyAgreement) {
		kaVM, err := keyAgreementMethod(didKey, code, keyBytes, vm)
		if err != nil {
			return nil, err
		}

		doc.KeyAgreement = append(doc.KeyAgreement,
			*diddoc.NewEmbeddedVerification(kaVM, diddoc.KeyAgreement))
	}

	for _, svc := range options.Services {
		doc.Service = append(doc.Service, diddoc.Service{
			ID:              didKey + "#" + svc.ID,
			Type:            svc.Type,
			ServiceEndpoint: svc.Endpoint,
		})
	}

	return doc, nil
}

// keyAgreementMethod derives the key agreement verification method. Ed25519 keys
// get a dedicated X25519 method converted from the signing key; other key types
// reuse the signing method.
func keyAgreementMethod(didKey string, code uint64, keyBytes []byte,
	vm *diddoc.VerificationMethod) (*diddoc.VerificationMethod, error) {
	if code != fingerprint.Ed25519PubKeyMultiCodec {
		return vm, nil
	}

	curveKey, err := cryptoutil.PublicEd25519toCurve25519(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("convert ed25519 key to curve25519: %w", err)
	}

	kaFingerprint := fingerprint.KeyFingerprint(fingerprint.X25519PubKeyMultiCodec, curveKey)

	return diddoc.NewVerificationMethodFromBytes(didKey+"#"+kaFingerprint,
		x25519KeyAgreementKey2019, didKey, curveKey), nil
}

// fingerprintBytes converts the KMS public key encoding to the raw form the
// did:key fingerprint expects, and selects the multicodec code.
func fingerprintBytes(alg kms.Algorithm, kmsBytes []byte) (uint64, []byte, error) {
	switch alg {
	case kms.ED25519:
		return fingerprint.Ed25519PubKeyMultiCodec, kmsBytes, nil
	case kms.X25519:
		return fingerprint.X25519PubKeyMultiCodec, kmsBytes, nil
	case kms.ECDSASecp256k1:
		return fingerprint.Secp256k1PubKeyMultiCodec, kmsBytes, nil
	case kms.ECDSAP256:
		return compressedECBytes(fingerprint.P256PubKeyMultiCodec, kmsBytes)
	case kms.ECDSAP384:
		return compressedECBytes(fingerprint.P384PubKeyMultiCodec, kmsBytes)
	case kms.ECDSAP521:
		return compressedECBytes(fingerprint.P521PubKeyMultiCodec, kmsBytes)
	case kms.RSA2048, kms.RSA3072, kms.RSA4096:
		return pkcs1Bytes(kmsBytes)
	default:
		return 0, nil, fmt.Errorf("algorithm %s not supported by did:key", alg)
	}
}
