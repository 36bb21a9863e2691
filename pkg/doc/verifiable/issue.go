/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"context"
	"encoding/json"
	"fmt"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	"github.com/trustfabric/trustkit-go/pkg/doc/ldcontext"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	docproof "github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/signer"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/ecdsasecp256k1signature2019"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/ed25519signature2018"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/jsonwebsignature2020"
	"github.com/trustfabric/trustkit-go/pkg/kms"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

// didResolver resolves an issuer DID to its document. *vdr.Registry satisfies it.
type didResolver interface {
	Resolve(ctx context.Context, didID string, opts ...spivdr.DIDMethodOption) (*diddoc.Resolution, error)
}

// Issuer runs the credential issuance pipeline: assemble, canonicalize, digest,
// resolve the issuer, sign through the KMS, attach the proof. Any failing step
// aborts the pipeline; no partially signed credential is ever returned.
type Issuer struct {
	keyManager kms.KeyManager
	resolver   didResolver
	status     *StatusRegistry
}

// IssuerOpt configures an Issuer.
type IssuerOpt func(*Issuer)

// WithStatusRegistry attaches a revocation registry. Issued credentials then
// carry a credentialStatus entry and Update can revoke the superseded credential.
func WithStatusRegistry(status *StatusRegistry) IssuerOpt {
	return func(i *Issuer) {
		i.status = status
	}
}

// NewIssuer returns a credential issuer signing through the given key manager.
func NewIssuer(keyManager kms.KeyManager, resolver didResolver, opts ...IssuerOpt) *Issuer {
	issuer := &Issuer{keyManager: keyManager, resolver: resolver}

	for _, opt := range opts {
		opt(issuer)
	}

	return issuer
}

// Issue signs the draft credential with the given managed key and returns the
// signed credential. The draft itself is never mutated.
func (i *Issuer) Issue(ctx context.Context, draft *Credential, handle *kms.KeyHandle) (*Credential, error) {
	if err := draft.validateDraft(); err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	resolution, err := i.resolver.Resolve(ctx, draft.Issuer)
	if err != nil {
		return nil, fmt.Errorf("issue credential: resolve issuer: %w", err)
	}

	if !resolution.Resolved() {
		return nil, fmt.Errorf("issue credential: issuer %s not resolvable: %s (%s)",
			draft.Issuer, resolution.Status, resolution.Reason)
	}

	assertionMethods := resolution.DIDDocument.VerificationMethods(diddoc.AssertionMethod)
	if len(assertionMethods) == 0 {
		return nil, fmt.Errorf("issue credential: issuer %s has no assertion method", draft.Issuer)
	}

	signatureSuite, signatureType, representation := suiteFor(handle,
		signer.NewKMSSigner(ctx, i.keyManager, handle))

	draftMap, err := i.draftMap(draft)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	signedMap, err := signer.New(signatureSuite).SignObject(&signer.Context{
		SignatureType:           signatureType,
		SignatureRepresentation: representation,
		VerificationMethod:      assertionMethods[0].ID,
		Purpose:                 docproof.PurposeAssertionMethod,
	}, draftMap, jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	signedBytes, err := json.Marshal(signedMap)
	if err != nil {
		return nil, fmt.Errorf("issue credential: %w", err)
	}

	return ParseCredential(signedBytes)
}

// Update issues a replacement credential carrying a back reference to the
// original. When revokeOriginal is set and a status registry is configured, the
// original is permanently revoked first; a credential is never updated in place.
func (i *Issuer) Update(ctx context.Context, original, draft *Credential, handle *kms.KeyHandle,
	revokeOriginal bool) (*Credential, error) {
	if original.ID == "" {
		return nil, fmt.Errorf("update credential: original has no id")
	}

	if revokeOriginal {
		if i.status == nil {
			return nil, fmt.Errorf("update credential: no status registry configured")
		}

		if err := i.status.Revoke(original.ID, true, "superseded"); err != nil {
			return nil, fmt.Errorf("update credential: revoke original: %w", err)
		}
	}

	updated := *draft
	updated.PreviousCredential = original.ID

	return i.Issue(ctx, &updated, handle)
}

func (i *Issuer) draftMap(draft *Credential) (map[string]interface{}, error) {
	withStatus := *draft

	if i.status != nil && draft.ID != "" && draft.Status == nil {
		withStatus.Status = &TypedID{ID: draft.ID, Type: StatusListType}
	}

	return withStatus.ToMap()
}

// suiteFor selects the signature suite matching the key algorithm. Ed25519 and
// secp256k1 keys use their dedicated suites; every other algorithm signs through
// the algorithm-agnostic JsonWebSignature2020 suite with a detached JWS.
func suiteFor(handle *kms.KeyHandle, kmsSigner *signer.KMSSigner) (signer.SignatureSuite,
	string, docproof.SignatureRepresentation) {
	switch handle.Algorithm {
	case kms.ED25519:
		return ed25519signature2018.New(suite.WithSigner(kmsSigner)),
			ed25519signature2018.SignatureType, docproof.SignatureProofValue
	case kms.ECDSASecp256k1:
		return ecdsasecp256k1signature2019.New(suite.WithSigner(kmsSigner)),
			ecdsasecp256k1signature2019.SignatureType, docproof.SignatureJWS
	default:
		return jsonwebsignature2020.New(suite.WithSigner(kmsSigner)),
			jsonwebsignature2020.SignatureType, docproof.SignatureJWS
	}
}
