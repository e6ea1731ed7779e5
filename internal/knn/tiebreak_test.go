package knn

import (
	"testing"

	"github.com/abhisek/strandwise/internal/strand"
)

func TestBreakTie(t *testing.T) {
	tests := []struct {
		name      string
		tied      []strand.Label
		neighbors []NeighborRecord
		want      strand.Label
		weights   TieWeights
	}{
		{
			name: "closer label wins",
			tied: []strand.Label{strand.ABM, strand.HUMSS},
			neighbors: []NeighborRecord{
				{Rank: 1, Label: strand.HUMSS, Distance: 1},
				{Rank: 2, Label: strand.ABM, Distance: 2},
				{Rank: 3, Label: strand.STEM, Distance: 2.5},
				{Rank: 4, Label: strand.ABM, Distance: 4},
				{Rank: 5, Label: strand.HUMSS, Distance: 5},
			},
			want:    strand.HUMSS,
			weights: TieWeights{strand.HUMSS: 1.2, strand.ABM: 0.75},
		},
		{
			name: "untied labels are ignored",
			tied: []strand.Label{strand.STEM, strand.ABM},
			neighbors: []NeighborRecord{
				{Rank: 1, Label: strand.HUMSS, Distance: 0},
				{Rank: 2, Label: strand.ABM, Distance: 2},
				{Rank: 3, Label: strand.STEM, Distance: 4},
			},
			want:    strand.ABM,
			weights: TieWeights{strand.ABM: 0.5, strand.STEM: 0.25},
		},
		{
			name: "three-way equal weights",
			tied: []strand.Label{strand.HUMSS, strand.ABM, strand.STEM},
			neighbors: []NeighborRecord{
				{Rank: 1, Label: strand.HUMSS, Distance: 2},
				{Rank: 2, Label: strand.ABM, Distance: 2},
				{Rank: 3, Label: strand.STEM, Distance: 2},
			},
			want:    strand.STEM,
			weights: TieWeights{strand.HUMSS: 0.5, strand.ABM: 0.5, strand.STEM: 0.5},
		},
		{
			name: "first exact match wins",
			tied: []strand.Label{strand.STEM, strand.HUMSS},
			neighbors: []NeighborRecord{
				{Rank: 1, Label: strand.HUMSS, Distance: 0},
				{Rank: 2, Label: strand.STEM, Distance: 0},
			},
			want:    strand.HUMSS,
			weights: TieWeights{strand.HUMSS: ExactMatchWeight, strand.STEM: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, weights := BreakTie(tt.tied, tt.neighbors)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(weights) != len(tt.weights) {
				t.Fatalf("weights = %v, want %v", weights, tt.weights)
			}
			for l, w := range tt.weights {
				if diff := weights[l] - w; diff > 1e-9 || diff < -1e-9 {
					t.Errorf("weight[%s] = %v, want %v", l, weights[l], w)
				}
			}
		})
	}
}

func TestBreakTieEmpty(t *testing.T) {
	got, weights := BreakTie(nil, nil)
	if got != "" || weights != nil {
		t.Errorf("got (%q, %v), want empty", got, weights)
	}
}
