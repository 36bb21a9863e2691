/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fingerprint implements the multicodec key fingerprints used by the
// did:key method.
package fingerprint

import (
	"encoding/binary"
	"fmt"

	"github.com/multiformats/go-multibase"
)

// Multicodec codes for the supported public key types.
// source: https://github.com/multiformats/multicodec/blob/master/table.csv.
const (
	// Ed25519PubKeyMultiCodec ed25519 public key.
	Ed25519PubKeyMultiCodec = uint64(0xed)
	// X25519PubKeyMultiCodec curve25519 public key.
	X25519PubKeyMultiCodec = uint64(0xec)
	// Secp256k1PubKeyMultiCodec secp256k1 compressed public key.
	Secp256k1PubKeyMultiCodec = uint64(0xe7)
	// P256PubKeyMultiCodec NIST P-256 public key.
	P256PubKeyMultiCodec = uint64(0x1200)
	// P384PubKeyMultiCodec NIST P-384 public key.
	P384PubKeyMultiCodec = uint64(0x1201)
	// P521PubKeyMultiCodec NIST P-521 public key.
	P521PubKeyMultiCodec = uint64(0x1202)
	// RSAPubKeyMultiCodec RSA public key in PKCS#1 DER form.
	RSAPubKeyMultiCodec = uint64(0x1205)
)

// CreateDIDKey creates a did:key ID from a multicodec code and raw public key
// bytes, per the did:key format spec at
// https://w3c-ccg.github.io/did-method-key/#format.
// It returns the DID and the key ID within its document.
func CreateDIDKey(code uint64, pubKey []byte) (string, string) {
	methodID := KeyFingerprint(code, pubKey)
	didKey := fmt.Sprintf("did:key:%s", methodID)
	keyID := fmt.Sprintf("%s#%s", didKey, methodID)

	return didKey, keyID
}

// KeyFingerprint generates a multibase-encoded multicodec fingerprint for the
// given raw public key bytes. It serves as the method-specific ID of a did:key.
func KeyFingerprint(code uint64, pubKeyValue []byte) string {
	multicodecValue := multicodec(code)
	buf := make([]byte, 0, len(multicodecValue)+len(pubKeyValue))
	buf = append(buf, multicodecValue...)
	buf = append(buf, pubKeyValue...)

	// multibase encoding of a compile-time-valid base never fails
	fp, err := multibase.Encode(multibase.Base58BTC, buf)
	if err != nil {
		panic(err)
	}

	return fp
}

func multicodec(code uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, code)

	return buf[:n]
}

// PubKeyFromFingerprint extracts the multicodec code and the raw public key
// from a did:key fingerprint.
func PubKeyFromFingerprint(fingerprint string) (uint64, []byte, error) {
	_, decoded, err := multibase.Decode(fingerprint)
	if err != nil {
		return 0, nil, fmt.Errorf("decode fingerprint: %w", err)
	}

	code, n := binary.Uvarint(decoded)
	if n <= 0 || n >= len(decoded) {
		return 0, nil, fmt.Errorf("decode fingerprint: invalid multicodec prefix")
	}

	return code, decoded[n:], nil
}
