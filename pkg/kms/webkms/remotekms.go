/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package webkms implements the KMS backend contract against a remote key server
// over HTTP. Provider faults are translated into the fixed KMS error taxonomy at
// this boundary. Only idempotent reads are retried; Sign is issued exactly once,
// since retrying a signing request without caller awareness could produce duplicate
// signatures over different nonces.
package webkms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/trustfabric/trustkit-go/pkg/common/log"
	"github.com/trustfabric/trustkit-go/pkg/kms"
	spikms "github.com/trustfabric/trustkit-go/spi/kms"
	spilog "github.com/trustfabric/trustkit-go/spi/log"
)

// ContentType is the remote KMS http content-type.
const ContentType = "application/json"

const defaultReadRetries = 3

var logger = log.New("trustkit-framework/kms/webkms")

// HTTPClient interface for the http client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type errMessage struct {
	Error string `json:"errMessage"`
}

type createKeyReq struct {
	Algorithm string `json:"algorithm"`
}

type createKeyResp struct {
	KeyID string `json:"key_id"`
}

type signReq struct {
	Data []byte `json:"data"`
}

type signResp struct {
	Signature []byte `json:"signature"`
}

type exportKeyResp struct {
	Algorithm string `json:"algorithm"`
	PublicKey []byte `json:"public_key"`
}

type capabilitiesResp struct {
	Algorithms []string `json:"algorithms"`
}

// RemoteKMS implements the spi/kms.Backend contract against a remote key server.
type RemoteKMS struct {
	keystoreURL  string
	client       HTTPClient
	capabilities []spikms.Algorithm
	readRetries  uint64
}

// Opt is a RemoteKMS instance option.
type Opt func(*remoteOpts)

type remoteOpts struct {
	client      HTTPClient
	readRetries uint64
}

// WithHTTPClient sets a custom http client.
func WithHTTPClient(client HTTPClient) Opt {
	return func(o *remoteOpts) {
		o.client = client
	}
}

// WithReadRetries overrides the retry budget for idempotent reads.
func WithReadRetries(n uint64) Opt {
	return func(o *remoteOpts) {
		o.readRetries = n
	}
}

// New creates a RemoteKMS and negotiates the server's capabilities. A server that
// cannot report its supported algorithm set is rejected here, at wiring time, rather
// than failing at first use.
func New(ctx context.Context, keystoreURL string, opts ...Opt) (*RemoteKMS, error) {
	options := &remoteOpts{
		client:      &http.Client{Timeout: 30 * time.Second},
		readRetries: defaultReadRetries,
	}

	for _, opt := range opts {
		opt(options)
	}

	r := &RemoteKMS{
		keystoreURL: keystoreURL,
		client:      options.client,
		readRetries: options.readRetries,
	}

	var resp capabilitiesResp
	if err := r.getJSON(ctx, keystoreURL+"/capabilities", &resp); err != nil {
		return nil, kms.WrapError(kms.CodeUnsupported, err,
			"remote KMS did not report capabilities, rejecting at wiring time")
	}

	for _, a := range resp.Algorithms {
		r.capabilities = append(r.capabilities, spikms.Algorithm(a))
	}

	return r, nil
}

// Capabilities declares the algorithm set negotiated at construction.
func (r *RemoteKMS) Capabilities() []spikms.Algorithm {
	return r.capabilities
}

// Generate creates a new key of the given algorithm on the key server.
func (r *RemoteKMS) Generate(ctx context.Context, alg spikms.Algorithm) (string, error) {
	var resp createKeyResp

	err := r.postJSON(ctx, r.keystoreURL+"/keys", createKeyReq{Algorithm: string(alg)}, &resp)
	if err != nil {
		return "", err
	}

	return resp.KeyID, nil
}

// Sign signs data with the remote key. The request is never retried here.
func (r *RemoteKMS) Sign(ctx context.Context, keyID string, data []byte) ([]byte, error) {
	var resp signResp

	err := r.postJSON(ctx, r.buildKIDURL(keyID)+"/sign", signReq{Data: data}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Signature, nil
}

// PublicKey exports the public key material of the remote key. This read is
// idempotent, so transient faults are retried with backoff.
func (r *RemoteKMS) PublicKey(ctx context.Context, keyID string) (*spikms.PublicKey, error) {
	var resp exportKeyResp

	op := func() error {
		err := r.getJSON(ctx, r.buildKIDURL(keyID), &resp)
		if err != nil && !kms.IsTransient(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	err := backoff.Retry(op,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.readRetries), ctx))
	if err != nil {
		return nil, err
	}

	return &spikms.PublicKey{
		KeyID:     keyID,
		Algorithm: spikms.Algorithm(resp.Algorithm),
		Bytes:     resp.PublicKey,
	}, nil
}

// Rotate replaces the remote key and returns the new key ID.
func (r *RemoteKMS) Rotate(ctx context.Context, keyID string) (string, error) {
	var resp createKeyResp

	err := r.postJSON(ctx, r.buildKIDURL(keyID)+"/rotate", struct{}{}, &resp)
	if err != nil {
		return "", err
	}

	return resp.KeyID, nil
}

// Delete destroys the remote key.
func (r *RemoteKMS) Delete(ctx context.Context, keyID string) error {
	return r.doJSON(ctx, http.MethodDelete, r.buildKIDURL(keyID), nil, nil)
}

func (r *RemoteKMS) buildKIDURL(keyID string) string {
	return r.keystoreURL + "/keys/" + keyID
}

func (r *RemoteKMS) postJSON(ctx context.Context, url string, req, resp interface{}) error {
	return r.doJSON(ctx, http.MethodPost, url, req, resp)
}

func (r *RemoteKMS) getJSON(ctx context.Context, url string, resp interface{}) error {
	return r.doJSON(ctx, http.MethodGet, url, nil, resp)
}

func (r *RemoteKMS) doJSON(ctx context.Context, method, url string, req, resp interface{}) error {
	var body io.Reader

	if req != nil {
		payload, err := json.Marshal(req)
		if err != nil {
			return kms.WrapError(kms.CodeInvalidInput, err, "marshal request")
		}

		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return kms.WrapError(kms.CodeInvalidInput, err, "build request")
	}

	httpReq.Header.Set("Content-Type", ContentType)

	httpResp, err := r.client.Do(httpReq)
	if err != nil {
		return kms.WrapError(kms.CodeTransient, err, "%s %s", method, url)
	}

	defer closeResponseBody(httpResp.Body, logger, method+" "+url)

	if err := checkError(httpResp); err != nil {
		return err
	}

	if resp == nil {
		return nil
	}

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return kms.WrapError(kms.CodeTransient, err, "read response body")
	}

	if err := json.Unmarshal(respBody, resp); err != nil {
		return kms.WrapError(kms.CodeInvalidInput, err, "unmarshal response")
	}

	return nil
}

// checkError translates the remote server's http status into the error taxonomy.
func checkError(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	msg := readErrMessage(resp)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return kms.NewError(kms.CodeNotFound, "remote KMS: %s", msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return kms.NewError(kms.CodeUnauthorized, "remote KMS: %s", msg)
	case http.StatusBadRequest:
		return kms.NewError(kms.CodeInvalidInput, "remote KMS: %s", msg)
	case http.StatusConflict:
		return kms.NewError(kms.CodeConflict, "remote KMS: %s", msg)
	case http.StatusNotImplemented:
		return kms.NewError(kms.CodeUnsupported, "remote KMS: %s", msg)
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return kms.NewError(kms.CodeTransient, "remote KMS: %s", msg)
	default:
		return kms.NewError(kms.CodeTransient, "remote KMS status %d: %s", resp.StatusCode, msg)
	}
}

func readErrMessage(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Status
	}

	var m errMessage
	if err := json.Unmarshal(body, &m); err != nil || m.Error == "" {
		return resp.Status
	}

	return m.Error
}

func closeResponseBody(respBody io.Closer, logger spilog.Logger, action string) {
	if err := respBody.Close(); err != nil {
		logger.Errorf("failed to close response body for '%s': %v", action, err)
	}
}

var _ spikms.Backend = (*RemoteKMS)(nil)
