/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package web implements the did:web method: documents are published at
// well-known HTTPS locations derived from the identifier.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

// DIDMethod is the method name served by this plugin.
const DIDMethod = "web"

const defaultTimeout = 15 * time.Second

// VDR implements the did:web method.
type VDR struct {
	httpClient *http.Client
	useHTTP    bool
}

// Opt configures the did:web plugin.
type Opt func(*VDR)

// WithHTTPClient overrides the HTTP client used to fetch documents.
func WithHTTPClient(client *http.Client) Opt {
	return func(v *VDR) {
		v.httpClient = client
	}
}

// WithHTTP switches document fetching to plain HTTP. Test use only.
func WithHTTP() Opt {
	return func(v *VDR) {
		v.useHTTP = true
	}
}

// New creates a new did:web plugin.
func New(opts ...Opt) *VDR {
	v := &VDR{httpClient: &http.Client{Timeout: defaultTimeout}}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Accept reports whether this plugin serves the method.
func (v *VDR) Accept(method string) bool {
	return method == DIDMethod
}

// Create is not supported: did:web documents come into existence by being
// published at their well-known location, not by a registry operation.
func (v *VDR) Create(_ context.Context, _ *spivdr.CreationOptions,
	_ ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	return nil, errors.New("did:web does not support create")
}

// Close frees resources held by the plugin.
func (v *VDR) Close() error {
	v.httpClient.CloseIdleConnections()
	return nil
}
