/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anchor specifies the external blockchain anchoring boundary: the
// write/read contract an anchoring client must satisfy and a polling helper for
// receipt confirmation. Receipts are opaque evidence; nothing here parses them
// for business meaning.
package anchor

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/trustfabric/trustkit-go/pkg/anchor/caip2"
)

// Receipt is the evidence returned by an anchoring client.
type Receipt struct {
	// ChainID identifies the chain in CAIP-2 namespace:reference form.
	ChainID string `json:"chainId"`
	// TxID is the transaction identifier on that chain.
	TxID string `json:"txId"`
	// ConfirmedAt is nil until the write is confirmed.
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// Confirmed reports whether the anchoring write has been confirmed.
func (r *Receipt) Confirmed() bool {
	return r.ConfirmedAt != nil
}

// Validate checks the receipt shape.
func (r *Receipt) Validate() error {
	if _, err := caip2.Parse(r.ChainID); err != nil {
		return errors.Wrap(err, "anchor receipt")
	}

	if r.TxID == "" {
		return errors.New("anchor receipt: transaction id is empty")
	}

	return nil
}

// Writer is the contract an external anchoring client must satisfy.
type Writer interface {
	// WritePayload anchors a digest and returns a receipt, possibly unconfirmed.
	WritePayload(ctx context.Context, digest []byte, metadata map[string]string) (*Receipt, error)

	// ReadReceipt returns the current state of a previously written anchor.
	ReadReceipt(ctx context.Context, txID string) (*Receipt, error)
}

// ErrNotConfirmed is returned by a single poll when the receipt exists but is
// not yet confirmed.
var ErrNotConfirmed = errors.New("anchor receipt not confirmed yet")

type waitOptions struct {
	initialInterval time.Duration
	maxPolls        uint64
}

// WaitOpt configures WaitForConfirmation.
type WaitOpt func(*waitOptions)

// WithInitialInterval sets the first polling interval.
func WithInitialInterval(d time.Duration) WaitOpt {
	return func(o *waitOptions) {
		o.initialInterval = d
	}
}

// WithMaxPolls bounds the number of polls.
func WithMaxPolls(n uint64) WaitOpt {
	return func(o *waitOptions) {
		o.maxPolls = n
	}
}

// WaitForConfirmation polls the anchoring client with exponential backoff until
// the receipt is confirmed, the poll budget is exhausted or the context is
// cancelled. Retrying lives here, on the caller side of the boundary; the
// anchoring contract itself never retries.
func WaitForConfirmation(ctx context.Context, writer Writer, txID string,
	opts ...WaitOpt) (*Receipt, error) {
	options := &waitOptions{
		initialInterval: backoff.DefaultInitialInterval,
		maxPolls:        10,
	}

	for _, opt := range opts {
		opt(options)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = options.initialInterval

	policy := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, options.maxPolls), ctx)

	var receipt *Receipt

	poll := func() error {
		current, err := writer.ReadReceipt(ctx, txID)
		if err != nil {
			return err
		}

		if err := current.Validate(); err != nil {
			// a malformed receipt will not become well-formed by polling again
			return backoff.Permanent(err)
		}

		if !current.Confirmed() {
			return ErrNotConfirmed
		}

		receipt = current

		return nil
	}

	if err := backoff.Retry(poll, policy); err != nil {
		return nil, errors.Wrapf(err, "wait for anchor confirmation of %s", txID)
	}

	return receipt, nil
}
