package tuning

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/abhisek/strandwise/internal/strand"
)

// FoldSplit partitions dataset indices into disjoint held-out folds whose
// label proportions follow the whole dataset. It is read-only once built.
type FoldSplit struct {
	seed  int64
	n     int
	folds [][]int // held-out indices per fold, ascending
}

// StratifiedFolds deals each label's shuffled indices round-robin across
// the folds. The dealing position carries over from one label to the next
// so fold sizes stay within one of each other. Every label present must
// have at least folds members, and at least two labels must be present.
func StratifiedFolds(data *strand.Dataset, folds int, seed int64) (*FoldSplit, error) {
	if folds < 2 {
		return nil, fmt.Errorf("fold count %d: need at least 2", folds)
	}
	byLabel := data.IndicesByLabel()
	present := data.Labels()
	if len(present) < 2 {
		return nil, &InsufficientDataError{
			Folds:  folds,
			Reason: fmt.Sprintf("need at least two labels, dataset has %d", len(present)),
		}
	}
	for _, l := range present {
		if n := len(byLabel[l]); n < folds {
			return nil, &InsufficientDataError{Label: l, Count: n, Folds: folds}
		}
	}

	rng := rand.New(rand.NewSource(seed))
	split := &FoldSplit{seed: seed, n: data.Len(), folds: make([][]int, folds)}
	offset := 0
	for _, l := range present {
		idx := slices.Clone(byLabel[l])
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for j, i := range idx {
			f := (offset + j) % folds
			split.folds[f] = append(split.folds[f], i)
		}
		offset = (offset + len(idx)) % folds
	}
	for _, f := range split.folds {
		slices.Sort(f)
	}
	return split, nil
}

// Len returns the number of folds.
func (s *FoldSplit) Len() int { return len(s.folds) }

// Seed returns the shuffling seed the split was built with.
func (s *FoldSplit) Seed() int64 { return s.seed }

// Test returns the held-out indices of fold f in ascending order.
func (s *FoldSplit) Test(f int) []int { return slices.Clone(s.folds[f]) }

// Train returns every index outside fold f in ascending order, so training
// subsets keep dataset order.
func (s *FoldSplit) Train(f int) []int {
	held := make([]bool, s.n)
	for _, i := range s.folds[f] {
		held[i] = true
	}
	out := make([]int, 0, s.n-len(s.folds[f]))
	for i := 0; i < s.n; i++ {
		if !held[i] {
			out = append(out, i)
		}
	}
	return out
}

// MinTrainSize returns the size of the smallest training set across folds.
func (s *FoldSplit) MinTrainSize() int {
	smallest := s.n
	for _, f := range s.folds {
		smallest = min(smallest, s.n-len(f))
	}
	return smallest
}
