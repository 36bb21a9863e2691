/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/trustfabric/trustkit-go/pkg/common/log"
	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
	spivdr "github.com/trustfabric/trustkit-go/spi/vdr"
)

var logger = log.New("trustkit-framework/vdr/web")

// Read fetches the document from the identifier's well-known location. Network
// faults and server errors are transient outcomes; a missing document is not
// found; a document carrying a deactivation marker is deactivated.
func (v *VDR) Read(ctx context.Context, didID string,
	_ ...spivdr.DIDMethodOption) (*diddoc.Resolution, error) {
	parsed, err := diddoc.Parse(didID)
	if err != nil {
		return nil, fmt.Errorf("did:web read: %w", err)
	}

	if parsed.Method != DIDMethod {
		return diddoc.NewMethodNotSupported(parsed.Method), nil
	}

	address, err := parseDIDWeb(parsed, v.useHTTP)
	if err != nil {
		return diddoc.NewNotFound(fmt.Sprintf("invalid did:web identifier: %v", err)), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("did:web read: build request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return diddoc.NewTransient(fmt.Sprintf("fetch %s: %v", address, err)), nil
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warnf("failed to close response body: %v", closeErr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return diddoc.NewNotFound(fmt.Sprintf("no document published at %s", address)), nil
	case resp.StatusCode == http.StatusGone:
		return diddoc.NewDeactivated(fmt.Sprintf("document at %s is gone", address)), nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return diddoc.NewTransient(fmt.Sprintf("fetch %s: status %d", address, resp.StatusCode)), nil
	case resp.StatusCode != http.StatusOK:
		return diddoc.NewNotFound(fmt.Sprintf("fetch %s: status %d", address, resp.StatusCode)), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return diddoc.NewTransient(fmt.Sprintf("read %s: %v", address, err)), nil
	}

	if deactivated(body) {
		return diddoc.NewDeactivated(fmt.Sprintf("document at %s is deactivated", address)), nil
	}

	doc, err := diddoc.ParseDocument(body)
	if err != nil {
		return diddoc.NewNotFound(fmt.Sprintf("parse document at %s: %v", address, err)), nil
	}

	if doc.ID != didID {
		return diddoc.NewNotFound(fmt.Sprintf("document at %s declares id %s, want %s",
			address, doc.ID, didID)), nil
	}

	return diddoc.NewResolved(doc), nil
}

// deactivated detects the resolution metadata deactivation marker.
func deactivated(body []byte) bool {
	var marker struct {
		Deactivated bool `json:"deactivated"`
	}

	if err := json.Unmarshal(body, &marker); err != nil {
		return false
	}

	return marker.Deactivated
}
