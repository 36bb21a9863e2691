/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldcontext ships the JSON-LD contexts used by the proof protocol as
// embedded documents, so canonicalization stays deterministic and offline: the
// document loader never reaches the network, and unknown context URLs fail loudly
// instead of being fetched.
package ldcontext

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/piprate/json-gold/ld"
)

// Context URLs resolvable by the embedded loader.
const (
	// CredentialsContextURI is the verifiable credentials context.
	CredentialsContextURI = "https://www.w3.org/2018/credentials/v1"
	// DIDContextURI is the DID document context.
	DIDContextURI = "https://www.w3.org/ns/did/v1"
)

// vocabURI maps issuer-defined claim terms so that arbitrary subject claims are
// never silently dropped from the canonical form.
const credentialsContext = `{
  "@context": {
    "@version": 1.1,
    "id": "@id",
    "type": "@type",
    "@vocab": "https://www.w3.org/ns/credentials/issuer-dependent#",
    "cred": "https://www.w3.org/2018/credentials#",
    "sec": "https://w3id.org/security#",
    "xsd": "http://www.w3.org/2001/XMLSchema#",
    "VerifiableCredential": "cred:VerifiableCredential",
    "VerifiablePresentation": "cred:VerifiablePresentation",
    "credentialSubject": {"@id": "cred:credentialSubject", "@type": "@id"},
    "issuer": {"@id": "cred:issuer", "@type": "@id"},
    "issuanceDate": {"@id": "cred:issuanceDate", "@type": "xsd:dateTime"},
    "expirationDate": {"@id": "cred:expirationDate", "@type": "xsd:dateTime"},
    "credentialStatus": {"@id": "cred:credentialStatus", "@type": "@id"},
    "credentialSchema": {"@id": "cred:credentialSchema", "@type": "@id"},
    "previousCredential": {"@id": "cred:previousCredential", "@type": "@id"},
    "verifiableCredential": {"@id": "cred:verifiableCredential", "@type": "@id", "@container": "@graph"},
    "holder": {"@id": "cred:holder", "@type": "@id"},
    "proof": {"@id": "sec:proof", "@type": "@id", "@container": "@graph"}
  }
}`

const didContext = `{
  "@context": {
    "@version": 1.1,
    "id": "@id",
    "type": "@type",
    "@vocab": "https://www.w3.org/ns/did#",
    "sec": "https://w3id.org/security#",
    "verificationMethod": {"@id": "sec:verificationMethod", "@type": "@id"},
    "authentication": {"@id": "sec:authenticationMethod", "@type": "@id", "@container": "@set"},
    "assertionMethod": {"@id": "sec:assertionMethod", "@type": "@id", "@container": "@set"},
    "keyAgreement": {"@id": "sec:keyAgreementMethod", "@type": "@id", "@container": "@set"},
    "capabilityInvocation": {"@id": "sec:capabilityInvocationMethod", "@type": "@id", "@container": "@set"},
    "capabilityDelegation": {"@id": "sec:capabilityDelegationMethod", "@type": "@id", "@container": "@set"},
    "service": {"@id": "https://www.w3.org/ns/did#service", "@type": "@id", "@container": "@set"},
    "serviceEndpoint": {"@id": "https://www.w3.org/ns/did#serviceEndpoint", "@type": "@id"},
    "controller": {"@id": "sec:controller", "@type": "@id"},
    "publicKeyBase58": "sec:publicKeyBase58",
    "publicKeyJwk": {"@id": "sec:publicKeyJwk", "@type": "@json"}
  }
}`

//nolint:gochecknoglobals
var (
	loaderInstance *embeddedLoader
	loaderOnce     sync.Once
)

// DocumentLoader returns the process-wide embedded document loader.
func DocumentLoader() ld.DocumentLoader {
	loaderOnce.Do(func() {
		loaderInstance = newEmbeddedLoader(map[string]string{
			CredentialsContextURI: credentialsContext,
			DIDContextURI:         didContext,
		})
	})

	return loaderInstance
}

type embeddedLoader struct {
	docs map[string]*ld.RemoteDocument
}

func newEmbeddedLoader(contexts map[string]string) *embeddedLoader {
	loader := &embeddedLoader{docs: make(map[string]*ld.RemoteDocument, len(contexts))}

	for url, content := range contexts {
		var doc interface{}

		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			// embedded contexts are compile-time constants; failing to parse one is
			// a programmer error
			panic(fmt.Sprintf("embedded context %s is invalid: %v", url, err))
		}

		loader.docs[url] = &ld.RemoteDocument{DocumentURL: url, Document: doc}
	}

	return loader
}

// LoadDocument resolves only embedded contexts; any other URL is an error.
func (l *embeddedLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	doc, ok := l.docs[u]
	if !ok {
		return nil, fmt.Errorf("context %s is not embedded, remote loading is disabled", u)
	}

	return doc, nil
}
