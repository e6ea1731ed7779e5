package knn

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/strandwise/internal/strand"
)

type point struct {
	stem, abm, humss int
	label            strand.Label
}

func newTestDataset(t *testing.T, points ...point) *strand.Dataset {
	t.Helper()
	samples := make([]strand.Sample, len(points))
	for i, p := range points {
		s, err := strand.NewSample(strand.Scores{STEM: p.stem, ABM: p.abm, HUMSS: p.humss}, p.label)
		require.NoError(t, err)
		samples[i] = s
	}
	return strand.NewDataset(samples)
}

func clusteredDataset(t *testing.T) *strand.Dataset {
	t.Helper()
	var pts []point
	for i := 0; i < 5; i++ {
		pts = append(pts, point{10, 0, 0, strand.STEM})
	}
	for i := 0; i < 5; i++ {
		pts = append(pts, point{0, 10, 0, strand.ABM})
	}
	for i := 0; i < 5; i++ {
		pts = append(pts, point{0, 0, 10, strand.HUMSS})
	}
	return newTestDataset(t, pts...)
}

func TestPredictClearMajority(t *testing.T) {
	m, err := NewModel(clusteredDataset(t), 5)
	require.NoError(t, err)

	res := m.Predict(strand.Scores{STEM: 9, ABM: 1})

	assert.Equal(t, strand.STEM, res.Recommendation)
	assert.False(t, res.Tie)
	assert.Nil(t, res.TieWeights)
	assert.Equal(t, VoteCounts{strand.STEM: 5, strand.ABM: 0, strand.HUMSS: 0}, res.VoteCounts)
	assert.Equal(t, 5, res.K)
	require.Len(t, res.Neighbors, 5)
	for i, n := range res.Neighbors {
		assert.Equal(t, i+1, n.Rank)
		assert.Equal(t, strand.STEM, n.Label)
		assert.Equal(t, i, n.Index, "equal distances keep dataset order")
	}
}

func TestPredictTieWeightedByInverseDistance(t *testing.T) {
	ds := newTestDataset(t,
		point{1, 0, 0, strand.STEM},
		point{0, 1, 0, strand.ABM},
		point{2, 0, 0, strand.STEM},
		point{0, 4, 0, strand.ABM},
		point{0, 0, 9, strand.HUMSS},
	)
	m, err := NewModel(ds, 4)
	require.NoError(t, err)

	res := m.Predict(strand.Scores{})

	assert.True(t, res.Tie)
	assert.Equal(t, strand.STEM, res.Recommendation)
	require.Len(t, res.TieWeights, 2)
	assert.InDelta(t, 1.5, res.TieWeights[strand.STEM], 1e-6)
	assert.InDelta(t, 1.25, res.TieWeights[strand.ABM], 1e-6)
	assert.Equal(t, 2, res.VoteCounts[strand.STEM])
	assert.Equal(t, 2, res.VoteCounts[strand.ABM])
}

func TestPredictExactMatchWinsTie(t *testing.T) {
	ds := newTestDataset(t,
		point{3, 4, 3, strand.STEM},
		point{3, 3, 3, strand.ABM},
		point{20, 20, 20, strand.HUMSS},
	)
	m, err := NewModel(ds, 2)
	require.NoError(t, err)

	res := m.Predict(strand.Scores{STEM: 3, ABM: 3, HUMSS: 3})

	assert.True(t, res.Tie)
	assert.Equal(t, strand.ABM, res.Recommendation)
	assert.Equal(t, ExactMatchWeight, res.TieWeights[strand.ABM])
	assert.InDelta(t, 1.0, res.TieWeights[strand.STEM], 1e-9)
	assert.Equal(t, 0.0, res.Neighbors[0].Distance)
}

func TestPredictSecondLevelTieUsesPrecedence(t *testing.T) {
	ds := newTestDataset(t,
		point{0, 0, 1, strand.HUMSS},
		point{0, 1, 0, strand.ABM},
		point{9, 9, 9, strand.STEM},
	)
	m, err := NewModel(ds, 2)
	require.NoError(t, err)

	res := m.Predict(strand.Scores{})

	assert.True(t, res.Tie)
	assert.Equal(t, strand.ABM, res.Recommendation)
	assert.Equal(t, res.TieWeights[strand.ABM], res.TieWeights[strand.HUMSS])
}

func TestNeighborsEqualDistancePrefersEarlierSample(t *testing.T) {
	ds := newTestDataset(t,
		point{0, 0, 1, strand.HUMSS},
		point{1, 0, 0, strand.STEM},
	)
	m, err := NewModel(ds, 1)
	require.NoError(t, err)

	res := m.Predict(strand.Scores{})
	assert.Equal(t, strand.HUMSS, res.Recommendation)
	assert.Equal(t, 0, res.Neighbors[0].Index)
}

func TestNewModelInvalid(t *testing.T) {
	ds := clusteredDataset(t)
	tests := []struct {
		name string
		data *strand.Dataset
		k    int
	}{
		{"k exceeds n", ds, 16},
		{"k zero", ds, 0},
		{"empty dataset", strand.NewDataset(nil), 1},
		{"nil dataset", nil, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(tt.data, tt.k)
			var invalid *InvalidModelError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.k, invalid.K)
			assert.NotEmpty(t, invalid.Error())
		})
	}
}

func TestVoteTotalEqualsK(t *testing.T) {
	ds := clusteredDataset(t)
	queries := []strand.Scores{
		{}, {STEM: 5, ABM: 5, HUMSS: 5}, {HUMSS: 30}, {STEM: 1, ABM: 9}, {STEM: 10},
	}
	for k := 1; k <= ds.Len(); k++ {
		m, err := NewModel(ds, k)
		require.NoError(t, err)
		for _, q := range queries {
			res := m.Predict(q)
			assert.Equal(t, k, res.VoteCounts.Total(), "k=%d query=%v", k, q)
			assert.Len(t, res.Neighbors, k)
			if res.Tie {
				top := 0
				for _, c := range res.VoteCounts {
					top = max(top, c)
				}
				n := 0
				for _, c := range res.VoteCounts {
					if c == top {
						n++
					}
				}
				assert.Len(t, res.TieWeights, n)
				assert.Contains(t, res.TieWeights, res.Recommendation)
			}
		}
	}
}

func TestPredictDeterministicAcrossGoroutines(t *testing.T) {
	m, err := NewModel(clusteredDataset(t), 7)
	require.NoError(t, err)
	q := strand.Scores{STEM: 5, ABM: 5, HUMSS: 1}
	want := m.Predict(q)

	var wg sync.WaitGroup
	results := make([]PredictionResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Predict(q)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestAssembleCopiesInputs(t *testing.T) {
	neighbors := []NeighborRecord{{Rank: 1, Index: 0, Label: strand.STEM, Distance: 1}}
	votes := VoteCounts{strand.STEM: 1, strand.ABM: 0, strand.HUMSS: 0}

	res := Assemble(neighbors, votes, nil, strand.STEM, 1)
	assert.False(t, res.Tie)
	assert.Nil(t, res.TieWeights)

	neighbors[0].Label = strand.ABM
	votes[strand.STEM] = 9
	assert.Equal(t, strand.STEM, res.Neighbors[0].Label)
	assert.Equal(t, 1, res.VoteCounts[strand.STEM])

	weights := TieWeights{strand.STEM: 0.5, strand.ABM: 0.5}
	tied := Assemble(neighbors, votes, weights, strand.STEM, 1)
	assert.True(t, tied.Tie)
	weights[strand.STEM] = 2
	assert.Equal(t, 0.5, tied.TieWeights[strand.STEM])
}
