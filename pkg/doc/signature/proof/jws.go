/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package proof

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

const (
	jwtPartsNumber   = 3
	jwtHeaderPart    = 0
	jwtSignaturePart = 2
)

// ErrProofNotFound is returned when a document carries no proof section.
var ErrProofNotFound = errors.New("proof not found")

// CreateDetachedJWTHeader creates a detached JWT header for the given JWS algorithm.
func CreateDetachedJWTHeader(alg string) string {
	jwtHeaderMap := map[string]interface{}{
		"alg":  alg,
		"b64":  false,
		"crit": []string{"b64"},
	}

	jwtHeaderBytes, err := json.Marshal(jwtHeaderMap)
	if err != nil {
		// map of constants above, marshal cannot fail
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(jwtHeaderBytes)
}

// CreateDetachedJWS assembles a detached JWS string from a header and a raw signature.
func CreateDetachedJWS(header string, signature []byte) string {
	return header + ".." + base64.RawURLEncoding.EncodeToString(signature)
}

// GetJWTSignature returns the signature part of a JWT/JWS string.
func GetJWTSignature(jwt string) ([]byte, error) {
	jwtParts := strings.Split(jwt, ".")
	if len(jwtParts) != jwtPartsNumber || jwtParts[jwtSignaturePart] == "" {
		return nil, errors.New("invalid JWT")
	}

	return base64.RawURLEncoding.DecodeString(jwtParts[jwtSignaturePart])
}
