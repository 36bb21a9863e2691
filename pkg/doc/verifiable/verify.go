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
	"time"

	"github.com/samber/lo"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	"github.com/trustfabric/trustkit-go/pkg/doc/ldcontext"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/jsonld"
	docproof "github.com/trustfabric/trustkit-go/pkg/doc/signature/proof"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/ecdsasecp256k1signature2019"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/ed25519signature2018"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/suite/jsonwebsignature2020"
	"github.com/trustfabric/trustkit-go/pkg/doc/signature/verifier"
)

// Check identifies one verification check.
type Check string

// Verification checks, run in this order. Each check is independent: a failed
// check never short-circuits the ones after it, so the result always reports
// every check.
const (
	// CheckStructure validates the credential document shape.
	CheckStructure = Check("structure")
	// CheckIssuerResolved requires the issuer DID to resolve to a document.
	CheckIssuerResolved = Check("issuerResolved")
	// CheckDigest recomputes the canonical digest and compares it to the signed one.
	CheckDigest = Check("digest")
	// CheckSignature verifies the proof signature against the issuer's key.
	CheckSignature = Check("signature")
	// CheckExpired requires the credential not to be past its expiration.
	CheckExpired = Check("expired")
	// CheckRevoked requires the credential not to appear in the revocation registry.
	CheckRevoked = Check("revoked")
	// CheckTrusted requires the issuer to satisfy the configured trust policy.
	CheckTrusted = Check("trusted")
)

// Reason tags for policy check failures.
const (
	// ReasonExpired marks a credential past its expiration date.
	ReasonExpired = "Expired"
	// ReasonRevoked marks a credential listed in the revocation registry.
	ReasonRevoked = "Revoked"
)

// CheckResult is the outcome of a single verification check.
type CheckResult struct {
	Check  Check
	Passed bool
	// Reason explains a failed check. For the expiry and revocation checks it
	// carries the stable tags ReasonExpired and ReasonRevoked.
	Reason string
}

// VerificationResult carries the overall outcome plus every individual check,
// so a caller can tell an expired credential from an untrusted issuer from a
// bad signature.
type VerificationResult struct {
	Verified bool
	Checks   []CheckResult
}

// FailedChecks returns the checks that did not pass.
func (r *VerificationResult) FailedChecks() []CheckResult {
	return lo.Filter(r.Checks, func(c CheckResult, _ int) bool {
		return !c.Passed
	})
}

// ResultOf returns the result of a named check.
func (r *VerificationResult) ResultOf(check Check) (CheckResult, bool) {
	return lo.Find(r.Checks, func(c CheckResult) bool {
		return c.Check == check
	})
}

// TrustEvaluator decides whether an issuer satisfies the verifying domain's
// trust policy for the given credential types.
type TrustEvaluator interface {
	Trusted(issuerDID string, credentialTypes []string) error
}

// Verifier runs the credential verification pipeline.
type Verifier struct {
	resolver    didResolver
	status      *StatusRegistry
	trust       TrustEvaluator
	checkExpiry bool
	now         func() time.Time
}

// VerifierOpt configures a Verifier.
type VerifierOpt func(*Verifier)

// WithRevocationRegistry wires a revocation source into verification. Without
// one the revocation check passes vacuously.
func WithRevocationRegistry(status *StatusRegistry) VerifierOpt {
	return func(v *Verifier) {
		v.status = status
	}
}

// WithTrustEvaluator wires a trust policy into verification. Without one the
// trust check passes vacuously.
func WithTrustEvaluator(trust TrustEvaluator) VerifierOpt {
	return func(v *Verifier) {
		v.trust = trust
	}
}

// WithoutExpiryCheck disables the expiration check.
func WithoutExpiryCheck() VerifierOpt {
	return func(v *Verifier) {
		v.checkExpiry = false
	}
}

// NewVerifier returns a credential verifier resolving issuers through the given
// resolver.
func NewVerifier(resolver didResolver, opts ...VerifierOpt) *Verifier {
	v := &Verifier{resolver: resolver, checkExpiry: true, now: time.Now}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify runs every check against the credential and reports all of them. The
// credential is never mutated. An error is returned only when the credential
// cannot be serialized at all; every domain-level failure is a failed check.
func (v *Verifier) Verify(ctx context.Context, vc *Credential) (*VerificationResult, error) {
	vcBytes, err := json.Marshal(vc)
	if err != nil {
		return nil, fmt.Errorf("verify credential: %w", err)
	}

	result := &VerificationResult{}

	result.add(CheckStructure, v.checkStructure(vcBytes))

	resolution := v.resolveIssuer(ctx, vc, result)

	v.checkProof(vc, resolution, result)

	result.add(CheckExpired, v.checkExpired(vc))
	result.add(CheckRevoked, v.checkRevoked(vc))
	result.add(CheckTrusted, v.checkTrusted(vc))

	result.Verified = lo.EveryBy(result.Checks, func(c CheckResult) bool {
		return c.Passed
	})

	return result, nil
}

func (r *VerificationResult) add(check Check, err error) {
	if err != nil {
		r.Checks = append(r.Checks, CheckResult{Check: check, Reason: err.Error()})
		return
	}

	r.Checks = append(r.Checks, CheckResult{Check: check, Passed: true})
}

func (v *Verifier) checkStructure(vcBytes []byte) error {
	return validateCredentialJSON(vcBytes)
}

func (v *Verifier) resolveIssuer(ctx context.Context, vc *Credential,
	result *VerificationResult) *diddoc.Resolution {
	if vc.Issuer == "" {
		result.add(CheckIssuerResolved, errors.New("credential has no issuer"))
		return nil
	}

	resolution, err := v.resolver.Resolve(ctx, vc.Issuer)
	if err != nil {
		result.add(CheckIssuerResolved, fmt.Errorf("resolve issuer %s: %w", vc.Issuer, err))
		return nil
	}

	if !resolution.Resolved() {
		result.add(CheckIssuerResolved, fmt.Errorf("issuer %s: %s (%s)",
			vc.Issuer, resolution.Status, resolution.Reason))
		return nil
	}

	result.add(CheckIssuerResolved, nil)

	return resolution
}

// checkProof runs the digest and signature checks. The two are reported
// separately: a digest mismatch means the document changed after signing, a
// signature failure means the signature does not match the issuer's key.
func (v *Verifier) checkProof(vc *Credential, resolution *diddoc.Resolution,
	result *VerificationResult) {
	if vc.Proof == nil {
		result.add(CheckDigest, errors.New("credential has no proof"))
		result.add(CheckSignature, errors.New("credential has no proof"))

		return
	}

	p := vc.Proof

	signatureSuite, err := suiteByProofType(p.Type)
	if err != nil {
		result.add(CheckDigest, err)
		result.add(CheckSignature, err)

		return
	}

	digest, verifyHash, err := v.recomputeVerifyData(vc, p, signatureSuite)

	switch {
	case err != nil:
		result.add(CheckDigest, err)
	case len(p.DigestValue) == 0:
		result.add(CheckDigest, errors.New("proof carries no digest"))
	case !bytes.Equal(digest, p.DigestValue):
		result.add(CheckDigest, errors.New("recomputed digest does not match signed digest"))
	default:
		result.add(CheckDigest, nil)
	}

	result.add(CheckSignature, v.checkSignature(p, verifyHash, resolution, signatureSuite))
}

// recomputeVerifyData returns the canonical document digest recorded in the
// proof and the verify hash the signature covers, which additionally binds the
// proof options.
func (v *Verifier) recomputeVerifyData(vc *Credential, p *docproof.Proof,
	signatureSuite verifySuite) ([]byte, []byte, error) {
	vcMap, err := vc.ToMap()
	if err != nil {
		return nil, nil, fmt.Errorf("canonicalize credential: %w", err)
	}

	digest, err := docproof.CreateVerifyData(signatureSuite, vcMap,
		jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return nil, nil, fmt.Errorf("canonicalize credential: %w", err)
	}

	verifyHash, err := docproof.CreateVerifyHash(signatureSuite, vcMap, p.JSONLdObject(),
		jsonld.WithDocumentLoader(ldcontext.DocumentLoader()))
	if err != nil {
		return nil, nil, fmt.Errorf("canonicalize proof options: %w", err)
	}

	return digest, verifyHash, nil
}

func (v *Verifier) checkSignature(p *docproof.Proof, verifyHash []byte,
	resolution *diddoc.Resolution, signatureSuite verifySuite) error {
	if resolution == nil {
		return errors.New("issuer not resolved, cannot obtain verification key")
	}

	if len(verifyHash) == 0 {
		return errors.New("canonical digest unavailable")
	}

	vm, ok := resolution.DIDDocument.VerificationMethodByID(p.VerificationMethod)
	if !ok {
		return fmt.Errorf("verification method %s not found in issuer document", p.VerificationMethod)
	}

	signature, err := p.SignatureValue()
	if err != nil {
		return fmt.Errorf("extract signature: %w", err)
	}

	pubKey := &verifier.PublicKey{Type: vm.Type, Value: vm.Value, JWK: vm.JSONWebKey()}

	if err := signatureSuite.Verify(pubKey, verifyHash, signature); err != nil {
		return fmt.Errorf("signature verification: %w", err)
	}

	return nil
}

func (v *Verifier) checkExpired(vc *Credential) error {
	if !v.checkExpiry || vc.Expired == nil {
		return nil
	}

	if v.now().After(*vc.Expired) {
		return errors.New(ReasonExpired)
	}

	return nil
}

func (v *Verifier) checkRevoked(vc *Credential) error {
	if v.status == nil || vc.ID == "" {
		return nil
	}

	revoked, err := v.status.IsRevoked(vc.ID)
	if err != nil {
		return fmt.Errorf("revocation lookup: %w", err)
	}

	if revoked {
		return errors.New(ReasonRevoked)
	}

	return nil
}

func (v *Verifier) checkTrusted(vc *Credential) error {
	if v.trust == nil {
		return nil
	}

	return v.trust.Trusted(vc.Issuer, vc.Types)
}

// verifySuite is the slice of a signature suite needed to re-check a proof:
// canonicalization, digest and signature verification.
type verifySuite interface {
	GetCanonicalDocument(doc map[string]interface{}, opts ...jsonld.ProcessorOpts) ([]byte, error)
	GetDigest(doc []byte) []byte
	Verify(pubKey *verifier.PublicKey, doc, signature []byte) error
}

// suiteByProofType returns a suite wired with the public key verifier matching
// the proof type.
func suiteByProofType(proofType string) (verifySuite, error) {
	switch proofType {
	case ed25519signature2018.SignatureType:
		return ed25519signature2018.New(
			suite.WithVerifier(ed25519signature2018.NewPublicKeyVerifier())), nil
	case ecdsasecp256k1signature2019.SignatureType:
		return ecdsasecp256k1signature2019.New(
			suite.WithVerifier(ecdsasecp256k1signature2019.NewPublicKeyVerifier())), nil
	case jsonwebsignature2020.SignatureType:
		return jsonwebsignature2020.New(
			suite.WithVerifier(jsonwebsignature2020.NewPublicKeyVerifier())), nil
	default:
		return nil, fmt.Errorf("unsupported proof type %q", proofType)
	}
}
