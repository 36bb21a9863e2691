/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr defines the option types shared between the DID method registry and the
// method plugins, including the declarative CreationOptions used when a method creates
// a new identifier.
package vdr

import "github.com/trustfabric/trustkit-go/spi/kms"

// DIDMethodOpts did method opts.
type DIDMethodOpts struct {
	Values map[string]interface{}
}

// DIDMethodOption is a did method option.
type DIDMethodOption func(opts *DIDMethodOpts)

// WithOption add option for did method.
func WithOption(name string, value interface{}) DIDMethodOption {
	return func(didMethodOpts *DIDMethodOpts) {
		didMethodOpts.Values[name] = value
	}
}

// Purpose is a verification relationship a created verification method is bound to.
type Purpose string

// Verification method purposes.
const (
	Authentication       = Purpose("authentication")
	AssertionMethod      = Purpose("assertionMethod")
	KeyAgreement         = Purpose("keyAgreement")
	CapabilityInvocation = Purpose("capabilityInvocation")
	CapabilityDelegation = Purpose("capabilityDelegation")
)

// ServiceEndpoint describes a service attached to a created DID document.
type ServiceEndpoint struct {
	ID       string
	Type     string
	Endpoint string
}

// CreationOptions enumerates what a caller wants from a DID method's create
// operation: the target key algorithm, the verification-method purposes the new key
// is bound to, and optional service endpoints. Use NewCreationOptions to build one.
type CreationOptions struct {
	Algorithm kms.Algorithm
	Purposes  map[Purpose]bool
	Services  []ServiceEndpoint
}

// CreationOption configures CreationOptions.
type CreationOption func(*CreationOptions)

// NewCreationOptions builds CreationOptions with the given options applied. The
// default requests an Ed25519 key bound to authentication and assertion.
func NewCreationOptions(opts ...CreationOption) *CreationOptions {
	options := &CreationOptions{
		Algorithm: kms.ED25519,
		Purposes: map[Purpose]bool{
			Authentication:  true,
			AssertionMethod: true,
		},
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// Has reports whether the given purpose was requested.
func (o *CreationOptions) Has(p Purpose) bool {
	return o.Purposes[p]
}

// WithAlgorithm sets the target key algorithm.
func WithAlgorithm(alg kms.Algorithm) CreationOption {
	return func(o *CreationOptions) {
		o.Algorithm = alg
	}
}

// WithPurposes replaces the requested purposes set.
func WithPurposes(purposes ...Purpose) CreationOption {
	return func(o *CreationOptions) {
		o.Purposes = make(map[Purpose]bool, len(purposes))

		for _, p := range purposes {
			o.Purposes[p] = true
		}
	}
}

// WithPurpose toggles a single purpose on.
func WithPurpose(p Purpose) CreationOption {
	return func(o *CreationOptions) {
		o.Purposes[p] = true
	}
}

// WithService appends a service endpoint to the created document.
func WithService(svc ServiceEndpoint) CreationOption {
	return func(o *CreationOptions) {
		o.Services = append(o.Services, svc)
	}
}
