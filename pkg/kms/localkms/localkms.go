/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package localkms is the software KMS backend of the framework. Private key
// material is wrapped by an AEAD primitive before it is persisted to the configured
// storage provider, and never leaves this package unwrapped.
package localkms

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/json"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/google/tink/go/aead"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/tink"
	"github.com/google/uuid"

	"github.com/trustfabric/trustkit-go/pkg/kms"
	spikms "github.com/trustfabric/trustkit-go/spi/kms"
	spistorage "github.com/trustfabric/trustkit-go/spi/storage"
)

// Namespace is the store name used for persisted key envelopes.
const Namespace = "localkms"

// Provider contains the dependencies for building a LocalKMS.
type Provider interface {
	StorageProvider() spistorage.Provider
}

// LocalKMS implements the spi/kms.Backend contract with software keys.
type LocalKMS struct {
	store spistorage.Store
	lock  tink.AEAD
}

// keyEnvelope is the persisted form of a key: its algorithm plus the AEAD-wrapped
// private key bytes.
type keyEnvelope struct {
	Algorithm spikms.Algorithm `json:"algorithm"`
	Wrapped   []byte           `json:"wrapped"`
}

// New creates a LocalKMS backed by the provider's storage. A fresh AEAD keyset is
// created to wrap key material at rest; pass WithAEAD to reuse an existing one.
func New(p Provider, opts ...Option) (*LocalKMS, error) {
	options := &localOpts{}

	for _, opt := range opts {
		opt(options)
	}

	store, err := p.StorageProvider().OpenStore(Namespace)
	if err != nil {
		return nil, kms.WrapError(kms.CodeTransient, err, "open localkms store")
	}

	lock := options.lock
	if lock == nil {
		kh, err := keyset.NewHandle(aead.AES256GCMKeyTemplate())
		if err != nil {
			return nil, kms.WrapError(kms.CodeUnsupported, err, "create AEAD keyset")
		}

		lock, err = aead.New(kh)
		if err != nil {
			return nil, kms.WrapError(kms.CodeUnsupported, err, "create AEAD primitive")
		}
	}

	return &LocalKMS{store: store, lock: lock}, nil
}

// Option is a LocalKMS instance option.
type Option func(*localOpts)

type localOpts struct {
	lock tink.AEAD
}

// WithAEAD sets the AEAD primitive used to wrap private keys at rest.
func WithAEAD(a tink.AEAD) Option {
	return func(o *localOpts) {
		o.lock = a
	}
}

// Capabilities declares the algorithms this backend supports.
func (l *LocalKMS) Capabilities() []spikms.Algorithm {
	return []spikms.Algorithm{
		kms.ED25519, kms.ECDSAP256, kms.ECDSAP384, kms.ECDSAP521,
		kms.ECDSASecp256k1, kms.RSA2048, kms.RSA3072, kms.RSA4096,
	}
}

// Generate creates a new key of the given algorithm and returns its ID.
func (l *LocalKMS) Generate(_ context.Context, alg spikms.Algorithm) (string, error) {
	priv, err := generateKey(alg)
	if err != nil {
		return "", err
	}

	keyID := uuid.NewString()

	if err := l.persist(keyID, alg, priv); err != nil {
		return "", err
	}

	return keyID, nil
}

// Sign signs data with the key referenced by keyID. Data is digested with the
// algorithm's hash before signing, except for Ed25519 which signs the raw input.
func (l *LocalKMS) Sign(_ context.Context, keyID string, data []byte) ([]byte, error) {
	alg, priv, err := l.load(keyID)
	if err != nil {
		return nil, err
	}

	return signWith(alg, priv, data)
}

// PublicKey exports the public key material and metadata of the key.
func (l *LocalKMS) PublicKey(_ context.Context, keyID string) (*spikms.PublicKey, error) {
	alg, priv, err := l.load(keyID)
	if err != nil {
		return nil, err
	}

	pubBytes, err := marshalPublicKey(alg, priv)
	if err != nil {
		return nil, err
	}

	return &spikms.PublicKey{KeyID: keyID, Algorithm: alg, Bytes: pubBytes}, nil
}

// Rotate replaces the key with a fresh one of the same algorithm and removes the old
// one. The returned ID references the new key.
func (l *LocalKMS) Rotate(ctx context.Context, keyID string) (string, error) {
	alg, _, err := l.load(keyID)
	if err != nil {
		return "", err
	}

	newID, err := l.Generate(ctx, alg)
	if err != nil {
		return "", err
	}

	if err := l.store.Delete(keyID); err != nil {
		return "", kms.WrapError(kms.CodeTransient, err, "remove rotated key %s", keyID)
	}

	return newID, nil
}

// Delete destroys the key. Operations on a deleted ID fail with NotFound.
func (l *LocalKMS) Delete(_ context.Context, keyID string) error {
	if _, _, err := l.load(keyID); err != nil {
		return err
	}

	if err := l.store.Delete(keyID); err != nil {
		return kms.WrapError(kms.CodeTransient, err, "delete key %s", keyID)
	}

	return nil
}

func (l *LocalKMS) persist(keyID string, alg spikms.Algorithm, priv crypto.PrivateKey) error {
	raw, err := marshalPrivateKey(alg, priv)
	if err != nil {
		return err
	}

	wrapped, err := l.lock.Encrypt(raw, []byte(keyID))
	if err != nil {
		return kms.WrapError(kms.CodeUnauthorized, err, "wrap private key")
	}

	envelope, err := json.Marshal(keyEnvelope{Algorithm: alg, Wrapped: wrapped})
	if err != nil {
		return kms.WrapError(kms.CodeInvalidInput, err, "marshal key envelope")
	}

	if err := l.store.Put(keyID, envelope); err != nil {
		return kms.WrapError(kms.CodeTransient, err, "persist key %s", keyID)
	}

	return nil
}

func (l *LocalKMS) load(keyID string) (spikms.Algorithm, crypto.PrivateKey, error) {
	data, err := l.store.Get(keyID)
	if err != nil {
		if errors.Is(err, spistorage.ErrDataNotFound) {
			return "", nil, &kms.Error{Code: kms.CodeNotFound, Message: "key not found", Field: keyID}
		}

		return "", nil, kms.WrapError(kms.CodeTransient, err, "read key %s", keyID)
	}

	var envelope keyEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", nil, kms.WrapError(kms.CodeInvalidInput, err, "unmarshal key envelope")
	}

	raw, err := l.lock.Decrypt(envelope.Wrapped, []byte(keyID))
	if err != nil {
		return "", nil, kms.WrapError(kms.CodeUnauthorized, err, "unwrap private key")
	}

	priv, err := unmarshalPrivateKey(envelope.Algorithm, raw)
	if err != nil {
		return "", nil, err
	}

	return envelope.Algorithm, priv, nil
}

func generateKey(alg spikms.Algorithm) (crypto.PrivateKey, error) {
	switch alg {
	case kms.ED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, wrapGenErr(err)
	case kms.ECDSAP256:
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		return priv, wrapGenErr(err)
	case kms.ECDSAP384:
		priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		return priv, wrapGenErr(err)
	case kms.ECDSAP521:
		priv, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
		return priv, wrapGenErr(err)
	case kms.ECDSASecp256k1:
		priv, err := btcec.NewPrivateKey()
		return priv, wrapGenErr(err)
	case kms.RSA2048, kms.RSA3072, kms.RSA4096:
		info, _ := alg.Info()

		priv, err := rsa.GenerateKey(rand.Reader, info.KeySize)
		return priv, wrapGenErr(err)
	default:
		return nil, &kms.Error{Code: kms.CodeUnsupported, Message: "algorithm not supported by localkms", Field: string(alg)}
	}
}

func wrapGenErr(err error) error {
	if err != nil {
		return kms.WrapError(kms.CodeTransient, err, "generate key")
	}

	return nil
}

func signWith(alg spikms.Algorithm, priv crypto.PrivateKey, data []byte) ([]byte, error) {
	switch key := priv.(type) {
	case ed25519.PrivateKey:
		return ed25519.Sign(key, data), nil
	case *ecdsa.PrivateKey:
		digest := digestFor(alg, data)

		sig, err := ecdsa.SignASN1(rand.Reader, key, digest)
		if err != nil {
			return nil, kms.WrapError(kms.CodeTransient, err, "ecdsa sign")
		}

		return sig, nil
	case *btcec.PrivateKey:
		digest := sha256.Sum256(data)

		return btcecdsa.Sign(key, digest[:]).Serialize(), nil
	case *rsa.PrivateKey:
		digest := sha256.Sum256(data)

		sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
		if err != nil {
			return nil, kms.WrapError(kms.CodeTransient, err, "rsa sign")
		}

		return sig, nil
	default:
		return nil, kms.NewError(kms.CodeUnsupported, "unsupported private key type %T", priv)
	}
}

func digestFor(alg spikms.Algorithm, data []byte) []byte {
	switch alg {
	case kms.ECDSAP384:
		d := sha512.Sum384(data)
		return d[:]
	case kms.ECDSAP521:
		d := sha512.Sum512(data)
		return d[:]
	default:
		d := sha256.Sum256(data)
		return d[:]
	}
}

func marshalPrivateKey(alg spikms.Algorithm, priv crypto.PrivateKey) ([]byte, error) {
	switch key := priv.(type) {
	case ed25519.PrivateKey:
		return key, nil
	case *ecdsa.PrivateKey:
		raw, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return nil, kms.WrapError(kms.CodeInvalidInput, err, "marshal ec key")
		}

		return raw, nil
	case *btcec.PrivateKey:
		return key.Serialize(), nil
	case *rsa.PrivateKey:
		return x509.MarshalPKCS1PrivateKey(key), nil
	default:
		return nil, kms.NewError(kms.CodeUnsupported, "unsupported private key type %T", priv)
	}
}

func unmarshalPrivateKey(alg spikms.Algorithm, raw []byte) (crypto.PrivateKey, error) {
	switch alg {
	case kms.ED25519:
		if len(raw) != ed25519.PrivateKeySize {
			return nil, kms.NewError(kms.CodeInvalidInput, "invalid ed25519 key length %d", len(raw))
		}

		return ed25519.PrivateKey(raw), nil
	case kms.ECDSAP256, kms.ECDSAP384, kms.ECDSAP521:
		key, err := x509.ParseECPrivateKey(raw)
		if err != nil {
			return nil, kms.WrapError(kms.CodeInvalidInput, err, "parse ec key")
		}

		return key, nil
	case kms.ECDSASecp256k1:
		key, _ := btcec.PrivKeyFromBytes(raw)

		return key, nil
	case kms.RSA2048, kms.RSA3072, kms.RSA4096:
		key, err := x509.ParsePKCS1PrivateKey(raw)
		if err != nil {
			return nil, kms.WrapError(kms.CodeInvalidInput, err, "parse rsa key")
		}

		return key, nil
	default:
		return nil, &kms.Error{Code: kms.CodeUnsupported, Message: "algorithm not supported by localkms", Field: string(alg)}
	}
}

func marshalPublicKey(alg spikms.Algorithm, priv crypto.PrivateKey) ([]byte, error) {
	switch key := priv.(type) {
	case ed25519.PrivateKey:
		pub, ok := key.Public().(ed25519.PublicKey)
		if !ok {
			return nil, kms.NewError(kms.CodeInvalidInput, "invalid ed25519 public key")
		}

		return pub, nil
	case *ecdsa.PrivateKey:
		raw, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			return nil, kms.WrapError(kms.CodeInvalidInput, err, "marshal ec public key")
		}

		return raw, nil
	case *btcec.PrivateKey:
		return key.PubKey().SerializeCompressed(), nil
	case *rsa.PrivateKey:
		raw, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			return nil, kms.WrapError(kms.CodeInvalidInput, err, "marshal rsa public key")
		}

		return raw, nil
	default:
		return nil, kms.NewError(kms.CodeUnsupported, "unsupported private key type %T", priv)
	}
}

var _ spikms.Backend = (*LocalKMS)(nil)
