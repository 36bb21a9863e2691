/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package web

import (
	"fmt"
	"net/url"
	"strings"

	diddoc "github.com/trustfabric/trustkit-go/pkg/doc/did"
)

const (
	wellKnownPath = "/.well-known/did.json"
	documentPath  = "/did.json"
)

// parseDIDWeb maps a did:web identifier to the URL of its document. A bare
// domain resolves to the well-known path; identifiers with path segments
// resolve to <domain>/<segments>/did.json.
func parseDIDWeb(did *diddoc.DID, useHTTP bool) (string, error) {
	pathComponents := strings.Split(did.MethodSpecificID, ":")

	domain, err := url.QueryUnescape(pathComponents[0])
	if err != nil {
		return "", fmt.Errorf("unescape did:web domain: %w", err)
	}

	pathComponents[0] = domain

	protocol := "https://"
	if useHTTP {
		protocol = "http://"
	}

	if len(pathComponents) == 1 {
		return protocol + pathComponents[0] + wellKnownPath, nil
	}

	return protocol + strings.Join(pathComponents, "/") + documentPath, nil
}
