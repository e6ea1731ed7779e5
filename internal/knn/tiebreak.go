package knn

import (
	"math"
	"slices"

	"github.com/abhisek/strandwise/internal/strand"
)

// ExactMatchWeight is recorded for a label that won a tie through a
// neighbor at distance zero.
const ExactMatchWeight = math.MaxFloat64

// BreakTie settles a vote tie between the given labels. Each tied label is
// weighted by the sum of 1/d over its neighbors. A tied label with a
// neighbor at distance zero wins outright; if several do, the one whose
// exact match ranks first wins. Equal weights fall back to label
// precedence (STEM, ABM, HUMSS).
func BreakTie(tied []strand.Label, neighbors []NeighborRecord) (strand.Label, TieWeights) {
	if len(tied) == 0 {
		return "", nil
	}
	order := slices.Clone(tied)
	slices.SortFunc(order, func(a, b strand.Label) int {
		return a.Precedence() - b.Precedence()
	})

	weights := make(TieWeights, len(order))
	for _, l := range order {
		weights[l] = 0
	}

	var exact strand.Label
	for _, n := range neighbors {
		if _, ok := weights[n.Label]; !ok {
			continue
		}
		if n.Distance == 0 {
			if exact == "" {
				exact = n.Label
			}
			continue
		}
		weights[n.Label] += 1 / n.Distance
	}
	if exact != "" {
		weights[exact] = ExactMatchWeight
		return exact, weights
	}

	best := order[0]
	for _, l := range order[1:] {
		if weights[l] > weights[best] {
			best = l
		}
	}
	return best, weights
}
