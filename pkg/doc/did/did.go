/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"fmt"
	"regexp"
	"strings"
)

// regex for the generic DID syntax: https://w3c.github.io/did-core/#generic-did-syntax
//
//nolint:gochecknoglobals
var didRegex = regexp.MustCompile(`^did:[a-z0-9]+:(:+|[:a-zA-Z0-9-_.%]+)*[a-zA-Z0-9-_.%]+$`)

// DID is parsed according to the generic syntax: https://w3c.github.io/did-core/#generic-did-syntax
// A DID value is immutable once parsed; String() always reproduces the canonical form.
type DID struct {
	Scheme           string // Scheme is always "did"
	Method           string // Method is the specific DID method
	MethodSpecificID string // MethodSpecificID is the unique ID computed or assigned by the DID method
}

// String returns a string representation of this DID.
func (d *DID) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Scheme, d.Method, d.MethodSpecificID)
}

// Parse parses the string according to the generic DID syntax.
func Parse(did string) (*DID, error) {
	const didParts = 3

	if !didRegex.MatchString(did) {
		return nil, fmt.Errorf("invalid did: %s. Make sure it conforms to the DID syntax: "+
			"https://w3c.github.io/did-core/#did-syntax", did)
	}

	parts := strings.SplitN(did, ":", didParts)

	return &DID{
		Scheme:           "did",
		Method:           parts[1],
		MethodSpecificID: parts[2],
	}, nil
}

// MustParse parses the string and panics on malformed input. Reserved for
// compile-time-constant identifiers in tests and examples.
func MustParse(did string) *DID {
	d, err := Parse(did)
	if err != nil {
		panic(err)
	}

	return d
}
