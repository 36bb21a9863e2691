/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	"github.com/trustfabric/trustkit-go/pkg/doc/ldcontext"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	docproof "github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/signer"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
	"github.com/trustfabric/trustkit-go/pkg/kms"
)

// VerifiablePresentationType is the base type every presentation carries.
const VerifiablePresentationType = "VerifiablePresentation"

// Presentation is the presentation wire format: a projection of one or more
// credentials plus a holder proof bound to a verifier-supplied challenge.
type Presentation struct {
	Context     []string
	ID          string
	Types       []string
	Holder      string
	Credentials []*Credential
	Proof       *docproof.Proof
}

type rawPresentation struct {
	Context     interface{}       `json:"@context,omitempty"`
	ID          string            `json:"id,omitempty"`
	Type        interface{}       `json:"type,omitempty"`
	Holder      string            `json:"holder,omitempty"`
	Credentials []json.RawMessage `json:"verifiableCredential,omitempty"`
	Proof       json.RawMessage   `json:"proof,omitempty"`
}

// NewPresentation assembles an unsigned presentation for the holder.
func NewPresentation(holder string, credentials ...*Credential) *Presentation {
	return &Presentation{
		Context:     []string{ldcontext.CredentialsContextURI},
		Types:       []string{VerifiablePresentationType},
		Holder:      holder,
		Credentials: credentials,
	}
}

// Project returns a copy of the credential disclosing only the named subject
// claims. The subject id is always kept. The proof is dropped: a projection is
// no longer the document the issuer signed.
func (vc *Credential) Project(claims ...string) *Credential {
	projected := *vc
	projected.Proof = nil

	// never append into the caller's backing array
	keys := make([]string, 0, len(claims)+1)
	keys = append(append(keys, claims...), "id")
	projected.Subject = lo.PickByKeys(vc.Subject, keys)

	return &projected
}

// ParsePresentation parses a presentation from its JSON form.
func ParsePresentation(vpBytes []byte) (*Presentation, error) {
	raw := &rawPresentation{}
	if err := json.Unmarshal(vpBytes, raw); err != nil {
		return nil, fmt.Errorf("unmarshal presentation: %w", err)
	}

	types, err := decodeType(raw.Type)
	if err != nil {
		return nil, fmt.Errorf("fill presentation types from raw: %w", err)
	}

	if !lo.Contains(types, VerifiablePresentationType) {
		return nil, fmt.Errorf("presentation type must include %s", VerifiablePresentationType)
	}

	pContext, err := decodeContext(raw.Context)
	if err != nil {
		return nil, fmt.Errorf("fill presentation context from raw: %w", err)
	}

	vp := &Presentation{
		Context: pContext,
		ID:      raw.ID,
		Types:   types,
		Holder:  raw.Holder,
	}

	for _, credBytes := range raw.Credentials {
		vc, err := ParseCredential(credBytes)
		if err != nil {
			return nil, fmt.Errorf("parse presented credential: %w", err)
		}

		vp.Credentials = append(vp.Credentials, vc)
	}

	if len(raw.Proof) > 0 {
		vp.Proof, err = decodeProof(raw.Proof)
		if err != nil {
			return nil, err
		}
	}

	return vp, nil
}

// MarshalJSON converts the presentation to JSON bytes.
func (vp *Presentation) MarshalJSON() ([]byte, error) {
	raw := &rawPresentation{
		Context: contextToRaw(vp.Context),
		ID:      vp.ID,
		Type:    typesToRaw(vp.Types),
		Holder:  vp.Holder,
	}

	for _, vc := range vp.Credentials {
		vcBytes, err := json.Marshal(vc)
		if err != nil {
			return nil, err
		}

		raw.Credentials = append(raw.Credentials, vcBytes)
	}

	if vp.Proof != nil {
		proofBytes, err := json.Marshal(vp.Proof.JSONLdObject())
		if err != nil {
			return nil, err
		}

		raw.Proof = proofBytes
	}

	return json.Marshal(raw)
}

// ToMap returns the presentation as a generic JSON object.
func (vp *Presentation) ToMap() (map[string]interface{}, error) {
	vpBytes, err := json.Marshal(vp)
	if err != nil {
		return nil, err
	}

	var vpMap map[string]interface{}

	if err := json.Unmarshal(vpBytes, &vpMap); err != nil {
		return nil, err
	}

	return vpMap, nil
}

// Holder signs presentations over verifier-supplied challenges.
type Holder struct {
	keyManager kms.KeyManager
	resolver   didResolver
}

// NewHolder returns a presentation holder signing through the given key manager.
func NewHolder(keyManager kms.KeyManager, resolver didResolver) *Holder {
	return &Holder{keyManager: keyManager, resolver: resolver}
}

// SignPresentation attaches a holder proof bound to the verifier's challenge and
// optional domain. The unsigned presentation is never mutated.
func (h *Holder) SignPresentation(ctx context.Context, vp *Presentation, handle *kms.KeyHandle,
	challenge, domain string) (*Presentation, error) {
	if vp.Holder == "" {
		return nil, errors.New("sign presentation: holder is not set")
	}

	if challenge == "" {
		return nil, errors.New("sign presentation: challenge is required")
	}

	resolution, err := h.resolver.Resolve(ctx, vp.Holder)
	if err != nil {
		return nil, fmt.Errorf("sign presentation: resolve holder: %w", err)
	}

	if !resolution.Resolved() {
		return nil, fmt.Errorf("sign presentation: holder %s not resolvable: %s (%s)",
			vp.Holder, resolution.Status, resolution.Reason)
	}

	authMethods := resolution.DIDDocument.VerificationMethods(diddoc.Authentication)
	if len(authMethods) == 0 {
		return nil, fmt.Errorf("sign presentation: holder %s has no authentication method", vp.Holder)
	}

	signatureSuite, signatureType, representation := suiteFor(handle,
		signer.NewKMSSigner(ctx, h.keyManager, handle))

	vpMap, err := vp.ToMap()
	if err != nil {
		return nil, fmt.Errorf("sign presentation: %w", err)
	}

	signedMap, err := signer.New(signatureSuite).SignObject(&signer.Context{
		SignatureType:           signatureType,
		SignatureRepresentation: representation,
		VerificationMethod:      authMethods[0].ID,
		Purpose:                 docproof.PurposeAuthentication,
		Challenge:               challenge,
		Domain:                  domain,
	}, vpMap, jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return nil, fmt.Errorf("sign presentation: %w", err)
	}

	signedBytes, err := json.Marshal(signedMap)
	if err != nil {
		return nil, fmt.Errorf("sign presentation: %w", err)
	}

	return ParsePresentation(signedBytes)
}

// VerifyPresentation checks the holder proof: the holder resolves, the digest
// matches the canonical form, the signature verifies against the holder's
// authentication key and the proof is bound to the expected challenge and
// domain. Embedded credentials are verified separately through Verify.
func (v *Verifier) VerifyPresentation(ctx context.Context, vp *Presentation,
	challenge, domain string) error {
	if vp.Proof == nil {
		return errors.New("verify presentation: no holder proof")
	}

	p := vp.Proof

	if p.Challenge != challenge {
		return errors.New("verify presentation: challenge mismatch")
	}

	if p.Domain != domain {
		return errors.New("verify presentation: domain mismatch")
	}

	if p.ProofPurpose != docproof.PurposeAuthentication {
		return fmt.Errorf("verify presentation: proof purpose %q, want %q",
			p.ProofPurpose, docproof.PurposeAuthentication)
	}

	resolution, err := v.resolver.Resolve(ctx, vp.Holder)
	if err != nil {
		return fmt.Errorf("verify presentation: resolve holder: %w", err)
	}

	if !resolution.Resolved() {
		return fmt.Errorf("verify presentation: holder %s not resolvable: %s",
			vp.Holder, resolution.Status)
	}

	signatureSuite, err := suiteByProofType(p.Type)
	if err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	vpMap, err := vp.ToMap()
	if err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	digest, err := docproof.CreateVerifyData(signatureSuite, vpMap,
		jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	if len(p.DigestValue) > 0 && !bytes.Equal(digest, p.DigestValue) {
		return errors.New("verify presentation: digest mismatch")
	}

	// the signature covers the proof options, so an edited challenge or domain
	// fails here even though the strings above were made to match
	verifyHash, err := docproof.CreateVerifyHash(signatureSuite, vpMap, p.JSONLdObject(),
		jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	vm, ok := resolution.DIDDocument.VerificationMethodByID(p.VerificationMethod)
	if !ok {
		return fmt.Errorf("verify presentation: verification method %s not found", p.VerificationMethod)
	}

	signature, err := p.SignatureValue()
	if err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	pubKey := &verifier.PublicKey{Type: vm.Type, Value: vm.Value, JWK: vm.JSONWebKey()}

	if err := signatureSuite.Verify(pubKey, verifyHash, signature); err != nil {
		return fmt.Errorf("verify presentation: %w", err)
	}

	return nil
}
