/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SignatureVerifier verifies a signature of a message against a public key.
type SignatureVerifier interface {
	// Verify verifies the signature. A nil return means the signature is valid.
	Verify(pubKey *PublicKey, msg, signature []byte) error
}

// Ed25519SignatureVerifier verifies Ed25519 signatures over raw 32-byte public keys.
type Ed25519SignatureVerifier struct{}

// NewEd25519SignatureVerifier creates a new Ed25519SignatureVerifier.
func NewEd25519SignatureVerifier() *Ed25519SignatureVerifier {
	return &Ed25519SignatureVerifier{}
}

// Verify verifies the signature.
func (sv *Ed25519SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	value := keyBytes(pubKey)

	if len(value) != ed25519.PublicKeySize {
		return errors.New("ed25519: invalid key")
	}

	if !ed25519.Verify(ed25519.PublicKey(value), msg, signature) {
		return errors.New("ed25519: invalid signature")
	}

	return nil
}

// ECDSASignatureVerifier verifies ASN.1 DER ECDSA signatures over PKIX-encoded NIST
// curve public keys.
type ECDSASignatureVerifier struct {
	hash crypto.Hash
}

// NewECDSAES256SignatureVerifier creates an ECDSA verifier for P-256 keys.
func NewECDSAES256SignatureVerifier() *ECDSASignatureVerifier {
	return &ECDSASignatureVerifier{hash: crypto.SHA256}
}

// NewECDSAES384SignatureVerifier creates an ECDSA verifier for P-384 keys.
func NewECDSAES384SignatureVerifier() *ECDSASignatureVerifier {
	return &ECDSASignatureVerifier{hash: crypto.SHA384}
}

// NewECDSAES521SignatureVerifier creates an ECDSA verifier for P-521 keys.
func NewECDSAES521SignatureVerifier() *ECDSASignatureVerifier {
	return &ECDSASignatureVerifier{hash: crypto.SHA512}
}

// Verify verifies the signature.
func (sv *ECDSASignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	parsed, err := x509.ParsePKIXPublicKey(keyBytes(pubKey))
	if err != nil {
		return fmt.Errorf("ecdsa: parse public key: %w", err)
	}

	ecKey, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return errors.New("ecdsa: not an EC public key")
	}

	digest := hashOf(sv.hash, msg)

	if !ecdsa.VerifyASN1(ecKey, digest, signature) {
		return errors.New("ecdsa: invalid signature")
	}

	return nil
}

// ECDSASecp256k1SignatureVerifier verifies DER secp256k1 signatures over compressed
// SEC1 public keys.
type ECDSASecp256k1SignatureVerifier struct{}

// NewECDSASecp256k1SignatureVerifier creates a new secp256k1 verifier.
func NewECDSASecp256k1SignatureVerifier() *ECDSASecp256k1SignatureVerifier {
	return &ECDSASecp256k1SignatureVerifier{}
}

// Verify verifies the signature.
func (sv *ECDSASecp256k1SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	key, err := btcec.ParsePubKey(keyBytes(pubKey))
	if err != nil {
		return fmt.Errorf("secp256k1: parse public key: %w", err)
	}

	sig, err := btcecdsa.ParseDERSignature(signature)
	if err != nil {
		return fmt.Errorf("secp256k1: parse signature: %w", err)
	}

	digest := sha256.Sum256(msg)

	if !sig.Verify(digest[:], key) {
		return errors.New("secp256k1: invalid signature")
	}

	return nil
}

// RSARS256SignatureVerifier verifies PKCS#1 v1.5 SHA-256 RSA signatures over
// PKIX-encoded public keys.
type RSARS256SignatureVerifier struct{}

// NewRSARS256SignatureVerifier creates a new RSARS256SignatureVerifier.
func NewRSARS256SignatureVerifier() *RSARS256SignatureVerifier {
	return &RSARS256SignatureVerifier{}
}

// Verify verifies the signature.
func (sv *RSARS256SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	parsed, err := x509.ParsePKIXPublicKey(keyBytes(pubKey))
	if err != nil {
		return fmt.Errorf("rsa: parse public key: %w", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return errors.New("rsa: not an RSA public key")
	}

	digest := sha256.Sum256(msg)

	if err := rsa.VerifyPKCS1v15(rsaKey, crypto.SHA256, digest[:], signature); err != nil {
		return errors.New("rsa: invalid signature")
	}

	return nil
}

func keyBytes(pubKey *PublicKey) []byte {
	if pubKey == nil {
		return nil
	}

	if len(pubKey.Value) > 0 {
		return pubKey.Value
	}

	if pubKey.JWK != nil {
		if raw, err := rawFromJWK(pubKey); err == nil {
			return raw
		}
	}

	return nil
}

func hashOf(h crypto.Hash, msg []byte) []byte {
	switch h {
	case crypto.SHA384:
		d := sha512.Sum384(msg)
		return d[:]
	case crypto.SHA512:
		d := sha512.Sum512(msg)
		return d[:]
	default:
		d := sha256.Sum256(msg)
		return d[:]
	}
}
