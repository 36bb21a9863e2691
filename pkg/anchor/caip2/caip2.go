/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package caip2 parses CAIP-2 chain identifiers of the form
// namespace:reference, e.g. "eip155:1".
package caip2

import (
	"fmt"
	"regexp"
)

// https://chainagnostic.org/CAIPs/caip-2
var chainIDRegex = regexp.MustCompile(`^([-a-z0-9]{3,8}):([-_a-zA-Z0-9]{1,32})$`)

// ChainID identifies a chain in CAIP-2 form.
type ChainID struct {
	Namespace string
	Reference string
}

// Parse parses a CAIP-2 chain identifier.
func Parse(chainID string) (*ChainID, error) {
	match := chainIDRegex.FindStringSubmatch(chainID)
	if match == nil {
		return nil, fmt.Errorf("invalid CAIP-2 chain id: %s", chainID)
	}

	return &ChainID{Namespace: match[1], Reference: match[2]}, nil
}

// String returns the namespace:reference form.
func (c *ChainID) String() string {
	return c.Namespace + ":" + c.Reference
}
