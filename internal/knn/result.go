package knn

import "github.com/abhisek/strandwise/internal/strand"

// NeighborRecord is one of the K nearest samples to a query.
type NeighborRecord struct {
	Rank     int          `json:"rank"`  // 1-based position among the neighbors
	Index    int          `json:"index"` // 0-based position in the dataset
	Label    strand.Label `json:"label"`
	Distance float64      `json:"distance"`
}

// VoteCounts holds the neighbor votes per label. Every label is present.
type VoteCounts map[strand.Label]int

// Total returns the number of votes cast.
func (v VoteCounts) Total() int {
	n := 0
	for _, c := range v {
		n += c
	}
	return n
}

// TieWeights holds the summed inverse-distance weight of each label that
// shared the top vote count.
type TieWeights map[strand.Label]float64

// PredictionResult is the outcome of classifying one query.
type PredictionResult struct {
	VoteCounts     VoteCounts       `json:"vote_counts"`
	Tie            bool             `json:"tie"`
	TieWeights     TieWeights       `json:"tie_weights,omitempty"`
	Recommendation strand.Label     `json:"recommendation"`
	Neighbors      []NeighborRecord `json:"neighbors"`
	K              int              `json:"k"`
}

// Assemble packages a prediction. A non-nil weights map marks the result
// as tied. Inputs are copied so the result does not alias caller state.
func Assemble(neighbors []NeighborRecord, votes VoteCounts, weights TieWeights, recommendation strand.Label, k int) PredictionResult {
	res := PredictionResult{
		VoteCounts:     make(VoteCounts, len(votes)),
		Tie:            weights != nil,
		Recommendation: recommendation,
		Neighbors:      make([]NeighborRecord, len(neighbors)),
		K:              k,
	}
	for l, c := range votes {
		res.VoteCounts[l] = c
	}
	copy(res.Neighbors, neighbors)
	if weights != nil {
		res.TieWeights = make(TieWeights, len(weights))
		for l, w := range weights {
			res.TieWeights[l] = w
		}
	}
	return res
}
