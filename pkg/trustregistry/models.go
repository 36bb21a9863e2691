/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package trustregistry manages a domain's trust anchors and evaluates whether
// an issuer is trusted, directly or through bounded attestation paths.
package trustregistry

import "time"

// Status is a trust anchor lifecycle status.
type Status string

// Anchor statuses. Only active anchors participate in trust decisions.
const (
	StatusActive    = Status("active")
	StatusInactive  = Status("inactive")
	StatusPending   = Status("pending")
	StatusSuspended = Status("suspended")
)

// Constraints are the operational requirements an anchor imposes on the
// credentials it vouches for.
type Constraints struct {
	RequireAnchoring      bool `json:"requireAnchoring"`
	RequireExpiration     bool `json:"requireExpiration"`
	RequireRevocationList bool `json:"requireRevocationList"`
}

// Anchor is a registered trust anchor. Anchors are created by operator
// registration and mutated only by explicit configuration updates; verification
// traffic never adjusts a trust score.
type Anchor struct {
	ID              string      `json:"id"`
	SubjectDID      string      `json:"subjectDid"`
	CredentialTypes []string    `json:"credentialTypes,omitempty"`
	TrustScore      float64     `json:"trustScore"`
	Status          Status      `json:"status"`
	Constraints     Constraints `json:"constraints"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Active reports whether the anchor participates in trust decisions.
func (a *Anchor) Active() bool {
	return a.Status == StatusActive
}

// PermitsTypes reports whether the anchor vouches for all the given credential
// types. An anchor with no type list vouches for any type.
func (a *Anchor) PermitsTypes(types []string) bool {
	if len(a.CredentialTypes) == 0 {
		return true
	}

	permitted := make(map[string]bool, len(a.CredentialTypes))
	for _, t := range a.CredentialTypes {
		permitted[t] = true
	}

	for _, t := range types {
		if !permitted[t] {
			return false
		}
	}

	return true
}

// Attestation is a directed "issuer trusts issuer" edge with a trust score.
type Attestation struct {
	FromDID string    `json:"fromDid"`
	ToDID   string    `json:"toDid"`
	Score   float64   `json:"score"`
	AddedAt time.Time `json:"addedAt"`
}

// Policy holds a domain's trust evaluation settings.
type Policy struct {
	// MinScore is the minimum aggregate path score for indirect trust.
	MinScore float64
	// AllowIndirect permits trust through attestation paths.
	AllowIndirect bool
	// MaxPathLength bounds path discovery by hop count.
	MaxPathLength int
	// RequireAnchoring, RequireExpiration and RequireRevocationList demand the
	// corresponding constraint on the trusted anchor.
	RequireAnchoring      bool
	RequireExpiration     bool
	RequireRevocationList bool
}

// DefaultPolicy allows direct trust only.
func DefaultPolicy() *Policy {
	return &Policy{MinScore: 1.0, MaxPathLength: 1}
}

// Path is a discovered trust path: the anchor-id sequence from a direct anchor
// to the target issuer and the product of scores along it.
type Path struct {
	// DIDs is the DID sequence, starting at a direct anchor and ending at the
	// target issuer.
	DIDs []string
	// Score is the anchor's trust score multiplied by every edge score on the path.
	Score float64
}

// Length is the hop count of the path.
func (p *Path) Length() int {
	return len(p.DIDs) - 1
}

// Evaluation is the outcome of a trust decision. A missing path is a valid
// negative outcome, not an error.
type Evaluation struct {
	Allowed bool
	// Direct is set when the issuer itself is an active anchor.
	Direct bool
	// BestPath is the winning path for indirect trust, nil when none was found.
	BestPath *Path
	// Reason explains a negative outcome.
	Reason string
}
