/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"errors"
	"fmt"
)

// Code is the fixed error taxonomy every backend translates provider faults into.
type Code string

// Error codes.
const (
	// CodeNotFound means the referenced key is absent (including deleted keys).
	CodeNotFound = Code("NotFound")
	// CodeUnauthorized means the backend rejected the caller's credentials or permissions.
	CodeUnauthorized = Code("Unauthorized")
	// CodeInvalidInput means a malformed identifier, out-of-range parameter or oversized payload.
	CodeInvalidInput = Code("InvalidInput")
	// CodeAlgorithmIncompatible means the requested algorithm does not match the key's.
	CodeAlgorithmIncompatible = Code("AlgorithmIncompatible")
	// CodeUnsupported means the operation or algorithm is not implemented by this backend.
	CodeUnsupported = Code("Unsupported")
	// CodeTransient means a network/timeout/rate-limit fault, safe for the caller to retry.
	CodeTransient = Code("Transient")
	// CodeConflict means a duplicate registration where uniqueness is required.
	CodeConflict = Code("Conflict")
)

// Error is a structured KMS error carrying the taxonomy code, a human-readable
// message and, where applicable, the offending field.
type Error struct {
	Code    Code
	Message string
	Field   string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying provider fault, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds an Error with the given code and message.
func NewError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error wrapping a provider fault.
func WrapError(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the taxonomy code from err, or an empty Code when err does not
// carry one.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ""
}

// IsNotFound reports whether err carries CodeNotFound.
func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }

// IsTransient reports whether err carries CodeTransient and is therefore safe for the
// caller to retry. The KMS itself never retries.
func IsTransient(err error) bool { return CodeOf(err) == CodeTransient }

// IsUnsupported reports whether err carries CodeUnsupported.
func IsUnsupported(err error) bool { return CodeOf(err) == CodeUnsupported }
