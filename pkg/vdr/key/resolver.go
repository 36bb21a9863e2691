/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package key

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"

	"github.com/go-jose/go-jose/v3"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	"github.com/trustfabric/trustkit-go/pkg/vdr/fingerprint"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

// Read resolves a did:key identifier offline by reconstructing the document from
// the key fingerprint. An unparseable fingerprint means the identifier cannot
// exist, which is a not-found outcome, not a fault.
func (v *VDR) Read(_ context.Context, didID string,
	_ ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	parsed, err := diddoc.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("did:key read: %w", err)
	}

	if parsed.Method != DIDMethod {
		return diddoc.NewMethodNotSupported(parsed.Method), nil
	}

	code, keyBytes, err := fingerprint.PubKeyFromFingerprint(parsed.MethodSpecificID)
	if err != nil {
		return diddoc.NewNotFound(fmt.Sprintf("invalid fingerprint: %v", err)), nil
	}

	keyID := didID + "#" + parsed.MethodSpecificID

	vm, err := verificationMethod(keyID, didID, code, keyBytes)
	if err != nil {
		return diddoc.NewNotFound(fmt.Sprintf("unsupported key: %v", err)), nil
	}

	options := spivdr.NewCreationOptions(spivdr.WithPurposes(
		spivdr.Authentication, spivdr.AssertionMethod,
		spivdr.CapabilityInvocation, spivdr.CapabilityDelegation,
		spivdr.KeyAgreement))

	doc, err := buildDoc(didID, vm, code, keyBytes, options)
	if err != nil {
		return nil, fmt.Errorf("did:key read: %w", err)
	}

	// reconstruction is deterministic, creation timestamps do not apply
	doc.Created = nil
	doc.Updated = nil

	return diddoc.NewResolved(doc), nil
}

// verificationMethod builds the verification method for a fingerprinted key.
func verificationMethod(keyID, controller string, code uint64,
	keyBytes []byte) (*diddoc.VerificationMethod, error) {
	switch code {
	case fingerprint.Ed25519PubKeyMultiCodec:
		return diddoc.NewVerificationMethodFromBytes(keyID, ed25519VerificationKey2018,
			controller, keyBytes), nil
	case fingerprint.X25519PubKeyMultiCodec:
		return diddoc.NewVerificationMethodFromBytes(keyID, x25519KeyAgreementKey2019,
			controller, keyBytes), nil
	case fingerprint.Secp256k1PubKeyMultiCodec:
		return diddoc.NewVerificationMethodFromBytes(keyID, ecdsaSecp256k1VerificationKey2019,
			controller, keyBytes), nil
	case fingerprint.P256PubKeyMultiCodec:
		return ecJWKMethod(keyID, controller, elliptic.P256(), keyBytes)
	case fingerprint.P384PubKeyMultiCodec:
		return ecJWKMethod(keyID, controller, elliptic.P384(), keyBytes)
	case fingerprint.P521PubKeyMultiCodec:
		return ecJWKMethod(keyID, controller, elliptic.P521(), keyBytes)
	case fingerprint.RSAPubKeyMultiCodec:
		return rsaJWKMethod(keyID, controller, keyBytes)
	default:
		return nil, fmt.Errorf("multicodec code %#x not supported", code)
	}
}

func ecJWKMethod(keyID, controller string, curve elliptic.Curve,
	compressed []byte) (*diddoc.VerificationMethod, error) {
	x, y := elliptic.UnmarshalCompressed(curve, compressed)
	if x == nil {
		return nil, fmt.Errorf("invalid compressed point for curve %s", curve.Params().Name)
	}

	jwk := &jose.JSONWebKey{
		Key:   &ecdsa.PublicKey{Curve: curve, X: x, Y: new(big.Int).Set(y)},
		KeyID: keyID,
	}

	return diddoc.NewVerificationMethodFromJWK(keyID, jsonWebKey2020, controller, jwk), nil
}

func rsaJWKMethod(keyID, controller string, pkcs1 []byte) (*diddoc.VerificationMethod, error) {
	rsaKey, err := x509.ParsePKCS1PublicKey(pkcs1)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}

	jwk := &jose.JSONWebKey{Key: rsaKey, KeyID: keyID}

	return diddoc.NewVerificationMethodFromJWK(keyID, jsonWebKey2020, controller, jwk), nil
}

// compressedECBytes re-encodes a PKIX EC public key into its compressed point form.
func compressedECBytes(code uint64, pkixBytes []byte) (uint64, []byte, error) {
	parsed, err := x509.ParsePKIXPublicKey(pkixBytes)
	if err != nil {
		return 0, nil, fmt.Errorf("parse EC public key: %w", err)
	}

	ecKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return 0, nil, fmt.Errorf("not an EC public key")
	}

	return code, elliptic.MarshalCompressed(ecKey.Curve, ecKey.X, ecKey.Y), nil
}

// pkcs1Bytes re-encodes a PKIX RSA public key into PKCS#1 DER form.
func pkcs1Bytes(pkixBytes []byte) (uint64, []byte, error) {
	parsed, err := x509.ParsePKIXPublicKey(pkixBytes)
	if err != nil {
		return 0, nil, fmt.Errorf("parse RSA public key: %w", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return 0, nil, fmt.Errorf("not an RSA public key")
	}

	return fingerprint.RSAPubKeyMultiCodec, x509.MarshalPKCS1PublicKey(rsaKey), nil
}
