// Package tuning picks the neighbor count K by stratified cross-validation
// and reports diagnostics for the chosen K.
package tuning

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/strand"
)

// Config controls the K search.
type Config struct {
	// KMin and KMax bound the candidate neighbor counts, inclusive.
	KMin int
	KMax int

	// Folds is the number of stratified cross-validation folds.
	Folds int

	// Seed drives fold shuffling. Equal seeds give equal splits.
	Seed int64

	// DefaultK is used when the dataset is too small to cross-validate.
	DefaultK int

	// Workers caps concurrent candidate evaluations. 0 means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the standard search: K in 5..10, 5 folds, seed 42.
func DefaultConfig() Config {
	return Config{
		KMin:     5,
		KMax:     10,
		Folds:    5,
		Seed:     42,
		DefaultK: 5,
	}
}

// CandidateScore is the cross-validated accuracy of one K.
type CandidateScore struct {
	K              int
	FoldAccuracies []float64
	Mean           float64
	Std            float64 // population standard deviation over folds
	Skipped        bool    // K exceeds a training fold
}

// Selection is the outcome of a K search.
type Selection struct {
	ChosenK      int
	MeanAccuracy float64
	Fallback     bool   // K is the configured default, not a search result
	Reason       string // why the fallback was used
	Candidates   []CandidateScore
	Folds        *FoldSplit
}

// Selector runs the K search.
type Selector struct {
	cfg Config

	// foldDone, when set, is called after each scored fold.
	foldDone func(k, fold int)
}

// NewSelector creates a Selector. Invalid ranges are rejected by Select.
func NewSelector(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// Config returns the selector configuration.
func (s *Selector) Config() Config { return s.cfg }

// Fallback returns the selection used when cross-validation cannot run.
func (s *Selector) Fallback(reason string) *Selection {
	return &Selection{ChosenK: s.cfg.DefaultK, MeanAccuracy: 1.0, Fallback: true, Reason: reason}
}

// Select cross-validates every candidate K on one shared stratified split
// and returns the K with the highest mean fold accuracy, preferring the
// smaller K on equal means. Datasets with fewer than two samples get the
// fallback selection without any cross-validation.
//
// Candidates are evaluated concurrently. A cancelled context aborts the
// whole search and no selection is returned.
func (s *Selector) Select(ctx context.Context, data *strand.Dataset) (*Selection, error) {
	if s.cfg.KMin < 1 || s.cfg.KMax < s.cfg.KMin {
		return nil, fmt.Errorf("invalid K range %d..%d", s.cfg.KMin, s.cfg.KMax)
	}
	if data.Len() < 2 {
		return s.Fallback(fmt.Sprintf("%d samples are too few to cross-validate", data.Len())), nil
	}

	split, err := StratifiedFolds(data, s.cfg.Folds, s.cfg.Seed)
	if err != nil {
		return nil, err
	}

	candidates := make([]CandidateScore, s.cfg.KMax-s.cfg.KMin+1)
	g, gctx := errgroup.WithContext(ctx)
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for i := range candidates {
		k := s.cfg.KMin + i
		g.Go(func() error {
			cs, err := s.scoreCandidate(gctx, data, split, k)
			if err != nil {
				return err
			}
			candidates[i] = cs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := bestCandidate(candidates)
	if best < 0 {
		return nil, &InsufficientDataError{
			Folds: s.cfg.Folds,
			Reason: fmt.Sprintf("smallest training fold has %d samples, below every candidate K in %d..%d",
				split.MinTrainSize(), s.cfg.KMin, s.cfg.KMax),
		}
	}

	return &Selection{
		ChosenK:      candidates[best].K,
		MeanAccuracy: candidates[best].Mean,
		Candidates:   candidates,
		Folds:        split,
	}, nil
}

// SelectOrFallback is Select, except that a dataset too small or too
// unbalanced to stratify gets the fallback selection instead of an
// InsufficientDataError. Other errors, including cancellation, pass through.
func (s *Selector) SelectOrFallback(ctx context.Context, data *strand.Dataset) (*Selection, error) {
	sel, err := s.Select(ctx, data)
	var insufficient *InsufficientDataError
	if errors.As(err, &insufficient) {
		return s.Fallback(insufficient.Error()), nil
	}
	return sel, err
}

// bestCandidate returns the index of the unskipped candidate with the
// highest mean, the earliest one on equal means, or -1.
func bestCandidate(candidates []CandidateScore) int {
	best := -1
	for i, cs := range candidates {
		if cs.Skipped {
			continue
		}
		if best < 0 || cs.Mean > candidates[best].Mean {
			best = i
		}
	}
	return best
}

// foldStats returns the mean and population standard deviation of the
// fold accuracies. They are summed in sorted order so that equal sets of
// accuracies give bit-identical means whatever fold produced them.
func foldStats(accuracies []float64) (mean, std float64) {
	sorted := slices.Clone(accuracies)
	slices.Sort(sorted)
	return stat.PopMeanStdDev(sorted, nil)
}

func (s *Selector) scoreCandidate(ctx context.Context, data *strand.Dataset, split *FoldSplit, k int) (CandidateScore, error) {
	cs := CandidateScore{K: k}
	if k > split.MinTrainSize() {
		cs.Skipped = true
		return cs, nil
	}

	cs.FoldAccuracies = make([]float64, split.Len())
	for f := range cs.FoldAccuracies {
		if err := ctx.Err(); err != nil {
			return cs, err
		}
		truth, pred, err := predictFold(data, split, f, k)
		if err != nil {
			return cs, err
		}
		correct := 0
		for i := range truth {
			if truth[i] == pred[i] {
				correct++
			}
		}
		cs.FoldAccuracies[f] = float64(correct) / float64(len(truth))
		if s.foldDone != nil {
			s.foldDone(k, f)
		}
	}
	cs.Mean, cs.Std = foldStats(cs.FoldAccuracies)
	return cs, nil
}

// predictFold trains on every sample outside fold f and predicts each
// held-out sample, returning true and predicted labels in fold order.
func predictFold(data *strand.Dataset, split *FoldSplit, f, k int) (truth, pred []strand.Label, err error) {
	model, err := knn.NewModel(data.Subset(split.Train(f)), k)
	if err != nil {
		return nil, nil, fmt.Errorf("fold %d: %w", f+1, err)
	}
	test := split.Test(f)
	truth = make([]strand.Label, len(test))
	pred = make([]strand.Label, len(test))
	for j, i := range test {
		s := data.At(i)
		truth[j] = s.Label()
		pred[j] = model.PredictSample(s)
	}
	return truth, pred, nil
}
