/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did contains the DID identifier and DID document models, including JSON
// serialization. Documents are immutable once produced by a resolver; callers never
// mutate a returned document.
package did

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcutil/base58"
	jose "github.com/go-jose/go-jose/v3"
)

// ContextV1 is the DID document context.
const ContextV1 = "https://www.w3.org/ns/did/v1"

// VerificationRelationship defines a relationship between a DID document and a
// verification method.
type VerificationRelationship int

// Verification relationships.
const (
	// VerificationRelationshipGeneral is a special case: the verification method is
	// listed in the document without being bound to a relationship.
	VerificationRelationshipGeneral VerificationRelationship = iota
	Authentication
	AssertionMethod
	KeyAgreement
	CapabilityInvocation
	CapabilityDelegation
)

// VerificationMethod binds public key material to a DID document.
type VerificationMethod struct {
	ID         string
	Type       string
	Controller string
	Value      []byte
	jsonWebKey *jose.JSONWebKey
}

// NewVerificationMethodFromBytes creates a verification method from raw key bytes.
func NewVerificationMethodFromBytes(id, keyType, controller string, value []byte) *VerificationMethod {
	return &VerificationMethod{ID: id, Type: keyType, Controller: controller, Value: value}
}

// NewVerificationMethodFromJWK creates a verification method backed by a JSON Web Key.
func NewVerificationMethodFromJWK(id, keyType, controller string, key *jose.JSONWebKey) *VerificationMethod {
	return &VerificationMethod{ID: id, Type: keyType, Controller: controller, jsonWebKey: key}
}

// JSONWebKey returns the JWK backing this verification method, or nil.
func (vm *VerificationMethod) JSONWebKey() *jose.JSONWebKey {
	return vm.jsonWebKey
}

// Verification authentication verification.
type Verification struct {
	VerificationMethod VerificationMethod
	Relationship       VerificationRelationship
	Embedded           bool
}

// NewEmbeddedVerification creates a verification that embeds its method.
func NewEmbeddedVerification(vm *VerificationMethod, r VerificationRelationship) *Verification {
	return &Verification{VerificationMethod: *vm, Relationship: r, Embedded: true}
}

// NewReferencedVerification creates a verification that references a method declared
// in the document's verificationMethod section.
func NewReferencedVerification(vm *VerificationMethod, r VerificationRelationship) *Verification {
	return &Verification{VerificationMethod: *vm, Relationship: r}
}

// Service DID doc service.
type Service struct {
	ID              string                 `json:"id,omitempty"`
	Type            string                 `json:"type,omitempty"`
	ServiceEndpoint string                 `json:"serviceEndpoint,omitempty"`
	Properties      map[string]interface{} `json:"-"`
}

// Doc DID Document definition.
type Doc struct {
	Context              []string
	ID                   string
	VerificationMethod   []VerificationMethod
	Authentication       []Verification
	AssertionMethod      []Verification
	KeyAgreement         []Verification
	CapabilityInvocation []Verification
	CapabilityDelegation []Verification
	Service              []Service
	Created              *time.Time
	Updated              *time.Time
}

// VerificationMethods returns the methods bound to the given relationship,
// resolving references into the verificationMethod section.
func (doc *Doc) VerificationMethods(relationship VerificationRelationship) []VerificationMethod {
	var verifications []Verification

	switch relationship {
	case Authentication:
		verifications = doc.Authentication
	case AssertionMethod:
		verifications = doc.AssertionMethod
	case KeyAgreement:
		verifications = doc.KeyAgreement
	case CapabilityInvocation:
		verifications = doc.CapabilityInvocation
	case CapabilityDelegation:
		verifications = doc.CapabilityDelegation
	case VerificationRelationshipGeneral:
		return doc.VerificationMethod
	}

	methods := make([]VerificationMethod, 0, len(verifications))
	for i := range verifications {
		methods = append(methods, verifications[i].VerificationMethod)
	}

	return methods
}

// VerificationMethodByID looks up a verification method by its ID across the whole
// document, including relationship sections.
func (doc *Doc) VerificationMethodByID(id string) (*VerificationMethod, bool) {
	for i := range doc.VerificationMethod {
		if doc.VerificationMethod[i].ID == id {
			return &doc.VerificationMethod[i], true
		}
	}

	for _, verifications := range [][]Verification{
		doc.Authentication, doc.AssertionMethod, doc.KeyAgreement,
		doc.CapabilityInvocation, doc.CapabilityDelegation,
	} {
		for i := range verifications {
			if verifications[i].VerificationMethod.ID == id {
				return &verifications[i].VerificationMethod, true
			}
		}
	}

	return nil, false
}

type rawVerificationMethod struct {
	ID                 string          `json:"id,omitempty"`
	Type               string          `json:"type,omitempty"`
	Controller         string          `json:"controller,omitempty"`
	PublicKeyBase58    string          `json:"publicKeyBase58,omitempty"`
	PublicKeyBase64    string          `json:"publicKeyBase64,omitempty"`
	PublicKeyJwk       json.RawMessage `json:"publicKeyJwk,omitempty"`
}

type rawDoc struct {
	Context              interface{}             `json:"@context,omitempty"`
	ID                   string                  `json:"id,omitempty"`
	VerificationMethod   []rawVerificationMethod `json:"verificationMethod,omitempty"`
	Authentication       []interface{}           `json:"authentication,omitempty"`
	AssertionMethod      []interface{}           `json:"assertionMethod,omitempty"`
	KeyAgreement         []interface{}           `json:"keyAgreement,omitempty"`
	CapabilityInvocation []interface{}           `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []interface{}           `json:"capabilityDelegation,omitempty"`
	Service              []Service               `json:"service,omitempty"`
	Created              *time.Time              `json:"created,omitempty"`
	Updated              *time.Time              `json:"updated,omitempty"`
}

// ParseDocument creates an instance of a DID document by reading a JSON document from bytes.
func ParseDocument(data []byte) (*Doc, error) {
	raw := &rawDoc{}

	if err := json.Unmarshal(data, raw); err != nil {
		return nil, fmt.Errorf("unmarshal did doc bytes failed: %w", err)
	}

	if raw.ID == "" {
		return nil, errors.New("document must have an id")
	}

	if _, err := Parse(raw.ID); err != nil {
		return nil, fmt.Errorf("document id is not a valid did: %w", err)
	}

	doc := &Doc{
		Context: parseContext(raw.Context),
		ID:      raw.ID,
		Service: raw.Service,
		Created: raw.Created,
		Updated: raw.Updated,
	}

	for i := range raw.VerificationMethod {
		vm, err := parseVerificationMethod(&raw.VerificationMethod[i])
		if err != nil {
			return nil, err
		}

		doc.VerificationMethod = append(doc.VerificationMethod, *vm)
	}

	var err error

	if doc.Authentication, err = parseVerifications(doc, raw.Authentication, Authentication); err != nil {
		return nil, err
	}

	if doc.AssertionMethod, err = parseVerifications(doc, raw.AssertionMethod, AssertionMethod); err != nil {
		return nil, err
	}

	if doc.KeyAgreement, err = parseVerifications(doc, raw.KeyAgreement, KeyAgreement); err != nil {
		return nil, err
	}

	if doc.CapabilityInvocation, err = parseVerifications(doc, raw.CapabilityInvocation, CapabilityInvocation); err != nil {
		return nil, err
	}

	if doc.CapabilityDelegation, err = parseVerifications(doc, raw.CapabilityDelegation, CapabilityDelegation); err != nil {
		return nil, err
	}

	return doc, nil
}

// JSONBytes converts the document to marshalled bytes.
func (doc *Doc) JSONBytes() ([]byte, error) {
	context := interface{}(doc.Context)
	if len(doc.Context) == 1 {
		context = doc.Context[0]
	}

	raw := &rawDoc{
		Context: context,
		ID:      doc.ID,
		Service: doc.Service,
		Created: doc.Created,
		Updated: doc.Updated,
	}

	for i := range doc.VerificationMethod {
		rawVM, err := rawFromVerificationMethod(&doc.VerificationMethod[i])
		if err != nil {
			return nil, err
		}

		raw.VerificationMethod = append(raw.VerificationMethod, *rawVM)
	}

	var err error

	if raw.Authentication, err = rawVerifications(doc.Authentication); err != nil {
		return nil, err
	}

	if raw.AssertionMethod, err = rawVerifications(doc.AssertionMethod); err != nil {
		return nil, err
	}

	if raw.KeyAgreement, err = rawVerifications(doc.KeyAgreement); err != nil {
		return nil, err
	}

	if raw.CapabilityInvocation, err = rawVerifications(doc.CapabilityInvocation); err != nil {
		return nil, err
	}

	if raw.CapabilityDelegation, err = rawVerifications(doc.CapabilityDelegation); err != nil {
		return nil, err
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal did doc failed: %w", err)
	}

	return data, nil
}

func parseContext(context interface{}) []string {
	switch ctx := context.(type) {
	case string:
		return []string{ctx}
	case []interface{}:
		var out []string

		for _, c := range ctx {
			if s, ok := c.(string); ok {
				out = append(out, s)
			}
		}

		return out
	default:
		return []string{ContextV1}
	}
}

func parseVerificationMethod(raw *rawVerificationMethod) (*VerificationMethod, error) {
	vm := &VerificationMethod{ID: raw.ID, Type: raw.Type, Controller: raw.Controller}

	switch {
	case raw.PublicKeyBase58 != "":
		vm.Value = base58.Decode(raw.PublicKeyBase58)
	case raw.PublicKeyBase64 != "":
		value, err := base64.StdEncoding.DecodeString(raw.PublicKeyBase64)
		if err != nil {
			return nil, fmt.Errorf("decode publicKeyBase64 of %s: %w", raw.ID, err)
		}

		vm.Value = value
	case len(raw.PublicKeyJwk) > 0:
		key := &jose.JSONWebKey{}
		if err := key.UnmarshalJSON(raw.PublicKeyJwk); err != nil {
			return nil, fmt.Errorf("decode publicKeyJwk of %s: %w", raw.ID, err)
		}

		vm.jsonWebKey = key
	default:
		return nil, fmt.Errorf("verification method %s has no public key material", raw.ID)
	}

	return vm, nil
}

func rawFromVerificationMethod(vm *VerificationMethod) (*rawVerificationMethod, error) {
	raw := &rawVerificationMethod{ID: vm.ID, Type: vm.Type, Controller: vm.Controller}

	if vm.jsonWebKey != nil {
		jwkBytes, err := vm.jsonWebKey.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal publicKeyJwk of %s: %w", vm.ID, err)
		}

		raw.PublicKeyJwk = jwkBytes

		return raw, nil
	}

	raw.PublicKeyBase58 = base58.Encode(vm.Value)

	return raw, nil
}

func parseVerifications(doc *Doc, entries []interface{},
	relationship VerificationRelationship) ([]Verification, error) {
	var verifications []Verification

	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			vm, ok := doc.VerificationMethodByID(e)
			if !ok {
				return nil, fmt.Errorf("verification reference %s not found in document", e)
			}

			verifications = append(verifications, *NewReferencedVerification(vm, relationship))
		case map[string]interface{}:
			rawBytes, err := json.Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("remarshal embedded verification: %w", err)
			}

			var rawVM rawVerificationMethod
			if err := json.Unmarshal(rawBytes, &rawVM); err != nil {
				return nil, fmt.Errorf("unmarshal embedded verification: %w", err)
			}

			vm, err := parseVerificationMethod(&rawVM)
			if err != nil {
				return nil, err
			}

			verifications = append(verifications, *NewEmbeddedVerification(vm, relationship))
		default:
			return nil, fmt.Errorf("unsupported verification entry type %T", entry)
		}
	}

	return verifications, nil
}

func rawVerifications(verifications []Verification) ([]interface{}, error) {
	var out []interface{}

	for i := range verifications {
		v := &verifications[i]

		if !v.Embedded {
			out = append(out, v.VerificationMethod.ID)
			continue
		}

		rawVM, err := rawFromVerificationMethod(&v.VerificationMethod)
		if err != nil {
			return nil, err
		}

		entry := map[string]interface{}{}

		entryBytes, err := json.Marshal(rawVM)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(entryBytes, &entry); err != nil {
			return nil, err
		}

		out = append(out, entry)
	}

	return out, nil
}
