// Package knn classifies questionnaire scores by majority vote among the
// K nearest labeled samples.
package knn

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/abhisek/strandwise/internal/strand"
)

// Model is a dataset paired with a neighbor count. It is read-only and
// safe for concurrent use.
type Model struct {
	data *strand.Dataset
	k    int
}

// NewModel returns a Model, or *InvalidModelError if the dataset is empty
// or k is outside 1..N.
func NewModel(data *strand.Dataset, k int) (*Model, error) {
	n := 0
	if data != nil {
		n = data.Len()
	}
	if n == 0 || k < 1 || k > n {
		return nil, &InvalidModelError{K: k, N: n}
	}
	return &Model{data: data, k: k}, nil
}

// K returns the neighbor count.
func (m *Model) K() int { return m.k }

// Dataset returns the training samples.
func (m *Model) Dataset() *strand.Dataset { return m.data }

type distancePair struct {
	index    int
	distance float64
}

// Neighbors returns the K samples nearest to query, closest first. Equal
// distances keep dataset order.
func (m *Model) Neighbors(query strand.Scores) []NeighborRecord {
	return m.neighbors(query.Vector())
}

func (m *Model) neighbors(q []float64) []NeighborRecord {
	pairs := make([]distancePair, m.data.Len())
	for i := range pairs {
		pairs[i] = distancePair{index: i, distance: floats.Distance(q, m.data.Vector(i), 2)}
	}
	slices.SortStableFunc(pairs, func(a, b distancePair) int {
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]NeighborRecord, m.k)
	for i := range out {
		p := pairs[i]
		out[i] = NeighborRecord{
			Rank:     i + 1,
			Index:    p.index,
			Label:    m.data.At(p.index).Label(),
			Distance: p.distance,
		}
	}
	return out
}

// Predict classifies query.
func (m *Model) Predict(query strand.Scores) PredictionResult {
	return m.predict(query.Vector())
}

// PredictSample classifies the scores of s, ignoring its label.
func (m *Model) PredictSample(s strand.Sample) strand.Label {
	return m.predict(s.Scores().Vector()).Recommendation
}

func (m *Model) predict(q []float64) PredictionResult {
	neighbors := m.neighbors(q)
	votes := Tally(neighbors)

	tied := topLabels(votes)
	if len(tied) == 1 {
		return Assemble(neighbors, votes, nil, tied[0], m.k)
	}
	rec, weights := BreakTie(tied, neighbors)
	return Assemble(neighbors, votes, weights, rec, m.k)
}

// Tally counts neighbor votes per label.
func Tally(neighbors []NeighborRecord) VoteCounts {
	votes := make(VoteCounts, 3)
	for _, l := range strand.AllLabels() {
		votes[l] = 0
	}
	for _, n := range neighbors {
		votes[n.Label]++
	}
	return votes
}

// topLabels returns the labels holding the maximum vote, in precedence order.
func topLabels(votes VoteCounts) []strand.Label {
	best := -1
	var out []strand.Label
	for _, l := range strand.AllLabels() {
		switch c := votes[l]; {
		case c > best:
			best = c
			out = []strand.Label{l}
		case c == best:
			out = append(out, l)
		}
	}
	return out
}
