/*
Copyright TrustFabric Contributors. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package trustregistry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// FindPaths discovers attestation paths from the domain's active anchors to the
// target issuer, bounded by maxLen hops. The traversal only reads the graph; it
// can be cancelled mid-walk through the context without leaving any state
// behind. Results are deterministically ordered: higher aggregate score first,
// then shorter path, then lexicographically smallest DID sequence.
func (r *Registry) FindPaths(ctx context.Context, targetDID string, maxLen int) ([]*Path, error) {
	return r.findPaths(ctx, targetDID, maxLen, (*Anchor).Active)
}

func (r *Registry) findPaths(ctx context.Context, targetDID string, maxLen int,
	eligible func(*Anchor) bool) ([]*Path, error) {
	anchors, err := r.Anchors()
	if err != nil {
		return nil, err
	}

	attestations, err := r.Attestations()
	if err != nil {
		return nil, err
	}

	starts := lo.Filter(anchors, func(a *Anchor, _ int) bool {
		return eligible(a)
	})

	sort.Slice(starts, func(i, j int) bool {
		return starts[i].SubjectDID < starts[j].SubjectDID
	})

	adjacency := make(map[string][]*Attestation, len(attestations))
	for _, att := range attestations {
		adjacency[att.FromDID] = append(adjacency[att.FromDID], att)
	}

	for _, edges := range adjacency {
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].ToDID < edges[j].ToDID
		})
	}

	var found []*Path

	for _, anchor := range starts {
		paths, err := walk(ctx, anchor, targetDID, maxLen, adjacency)
		if err != nil {
			return nil, err
		}

		found = append(found, paths...)
	}

	sortPaths(found)

	return found, nil
}

type hop struct {
	dids  []string
	score float64
}

// walk runs a bounded breadth-first search from one anchor. Per-path visited
// sets keep the walk cycle-free; the aggregate score is the product of the
// anchor's trust score and every edge score, so one weak link suppresses the
// whole path.
func walk(ctx context.Context, anchor *Anchor, targetDID string, maxLen int,
	adjacency map[string][]*Attestation) ([]*Path, error) {
	var found []*Path

	frontier := []hop{{dids: []string{anchor.SubjectDID}, score: anchor.TrustScore}}

	if anchor.SubjectDID == targetDID {
		found = append(found, &Path{DIDs: frontier[0].dids, Score: frontier[0].score})
		return found, nil
	}

	for hops := 0; hops < maxLen && len(frontier) > 0; hops++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("trust path search cancelled: %w", err)
		}

		var next []hop

		for _, current := range frontier {
			tail := current.dids[len(current.dids)-1]

			for _, edge := range adjacency[tail] {
				if visited(current.dids, edge.ToDID) {
					continue
				}

				extended := hop{
					dids:  append(append([]string{}, current.dids...), edge.ToDID),
					score: current.score * edge.Score,
				}

				if edge.ToDID == targetDID {
					found = append(found, &Path{DIDs: extended.dids, Score: extended.score})
					continue
				}

				next = append(next, extended)
			}
		}

		frontier = next
	}

	return found, nil
}

func visited(dids []string, did string) bool {
	return lo.Contains(dids, did)
}

// sortPaths orders paths by score descending, then hop count ascending, then
// lexicographically smallest DID sequence, making discovery results stable.
func sortPaths(paths []*Path) {
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Score != paths[j].Score {
			return paths[i].Score > paths[j].Score
		}

		if len(paths[i].DIDs) != len(paths[j].DIDs) {
			return len(paths[i].DIDs) < len(paths[j].DIDs)
		}

		for k := range paths[i].DIDs {
			if paths[i].DIDs[k] != paths[j].DIDs[k] {
				return paths[i].DIDs[k] < paths[j].DIDs[k]
			}
		}

		return false
	})
}

// Evaluate runs the domain's trust policy against an issuer. A negative outcome
// is a valid result carrying a reason, never an error; errors mean the registry
// itself failed.
func (r *Registry) Evaluate(ctx context.Context, issuerDID string,
	credentialTypes []string) (*Evaluation, error) {
	policy := r.policy

	anchor, err := r.GetAnchor(issuerDID)

	switch {
	case err == nil:
		if anchor.Active() && anchor.PermitsTypes(credentialTypes) && constraintsSatisfied(anchor, policy) {
			return &Evaluation{Allowed: true, Direct: true}, nil
		}
	case !errors.Is(err, ErrAnchorNotFound):
		return nil, err
	}

	if !policy.AllowIndirect {
		return &Evaluation{Reason: "issuer is not a direct trust anchor and indirect trust is disabled"}, nil
	}

	paths, err := r.findPaths(ctx, issuerDID, policy.MaxPathLength, func(a *Anchor) bool {
		return a.Active() && a.PermitsTypes(credentialTypes) && constraintsSatisfied(a, policy)
	})
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return &Evaluation{Reason: "no trust path to issuer"}, nil
	}

	best := paths[0]

	if best.Score < policy.MinScore {
		return &Evaluation{
			BestPath: best,
			Reason: fmt.Sprintf("best path score %.4f below minimum %.4f",
				best.Score, policy.MinScore),
		}, nil
	}

	return &Evaluation{Allowed: true, BestPath: best}, nil
}

// Trusted adapts Evaluate to the credential verifier's trust check.
func (r *Registry) Trusted(issuerDID string, credentialTypes []string) error {
	evaluation, err := r.Evaluate(context.Background(), issuerDID, credentialTypes)
	if err != nil {
		return fmt.Errorf("trust evaluation: %w", err)
	}

	if !evaluation.Allowed {
		return fmt.Errorf("issuer %s is not trusted: %s", issuerDID, evaluation.Reason)
	}

	return nil
}

// constraintsSatisfied checks that the anchor carries every constraint the
// policy demands.
func constraintsSatisfied(anchor *Anchor, policy *Policy) bool {
	if policy.RequireAnchoring && !anchor.Constraints.RequireAnchoring {
		return false
	}

	if policy.RequireExpiration && !anchor.Constraints.RequireExpiration {
		return false
	}

	if policy.RequireRevocationList && !anchor.Constraints.RequireRevocationList {
		return false
	}

	return true
}
