/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

// ResolutionStatus is the exhaustive set of terminal outcomes of a resolution
// request. Absence of a document is itself a representable outcome; a Resolution is
// never nil and never wraps an optional document behind an error.
type ResolutionStatus string

// Resolution outcomes.
const (
	// ResolutionSuccess means DIDDocument is populated.
	ResolutionSuccess = ResolutionStatus("success")
	// ResolutionNotFound means the method could not locate the identifier.
	ResolutionNotFound = ResolutionStatus("notFound")
	// ResolutionMethodNotSupported means no plugin is registered for the method.
	ResolutionMethodNotSupported = ResolutionStatus("methodNotSupported")
	// ResolutionDeactivated means the identifier exists but has been deactivated.
	ResolutionDeactivated = ResolutionStatus("deactivated")
	// ResolutionTransient means a network-class fault; the caller may retry.
	// The resolver itself never retries: resolution is idempotent and side-effect-free,
	// retries belong to the caller.
	ResolutionTransient = ResolutionStatus("transientError")
)

// Resolution is the outcome of resolving a DID.
type Resolution struct {
	Status      ResolutionStatus
	DIDDocument *Doc
	// Reason carries a human-readable explanation for non-success outcomes.
	Reason string
}

// Resolved reports whether the resolution carries a document.
func (r *Resolution) Resolved() bool {
	return r.Status == ResolutionSuccess
}

// NewResolved builds a success outcome.
func NewResolved(doc *Doc) *Resolution {
	return &Resolution{Status: ResolutionSuccess, DIDDocument: doc}
}

// NewNotFound builds a not-found outcome.
func NewNotFound(reason string) *Resolution {
	return &Resolution{Status: ResolutionNotFound, Reason: reason}
}

// NewMethodNotSupported builds a method-not-supported outcome.
func NewMethodNotSupported(method string) *Resolution {
	return &Resolution{Status: ResolutionMethodNotSupported, Reason: "did method not registered: " + method}
}

// NewDeactivated builds a deactivated outcome.
func NewDeactivated(reason string) *Resolution {
	return &Resolution{Status: ResolutionDeactivated, Reason: reason}
}

// NewTransient builds a transient-error outcome.
func NewTransient(reason string) *Resolution {
	return &Resolution{Status: ResolutionTransient, Reason: reason}
}
