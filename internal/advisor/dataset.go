package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/strandwise/internal/logging"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/store"
	"github.com/abhisek/strandwise/internal/strand"
	"github.com/abhisek/strandwise/internal/tuning"
)

// ImportRequest describes a labelled dataset to store and tune.
type ImportRequest struct {
	Name        string              `validate:"required,max=100"`
	Description string              `validate:"max=500"`
	QuestionSet string              // empty means rows carry STEM, ABM and HUMSS totals
	Rows        []questionnaire.Row `validate:"min=1"`
	Activate    bool
	Diagnostics bool // evaluate the chosen K after selection
}

// ImportResult is what an import produced.
type ImportResult struct {
	Dataset   *store.Dataset
	Selection *tuning.Selection
	Report    *tuning.Report // nil unless diagnostics ran
	Ignored   []string       // columns that matched no question
}

func (s *Service) resolveSet(ctx context.Context, name string) (*questionnaire.Set, int, error) {
	if name == "" {
		return questionnaire.ScoreColumns(), 0, nil
	}
	qs, err := s.repos.QuestionSets.GetByName(ctx, name)
	if err != nil {
		return nil, 0, fmt.Errorf("question set %q: %w", name, err)
	}
	return &qs.Set, qs.ID, nil
}

// Import scores the rows, selects K, optionally evaluates it and stores
// the dataset with its selection. Nothing is stored when any step fails.
// Diagnostics are skipped when the fallback K was used.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	set, setID, err := s.resolveSet(ctx, req.QuestionSet)
	if err != nil {
		return nil, err
	}
	scored, err := questionnaire.Score(set, req.Rows)
	if err != nil {
		return nil, err
	}
	if len(scored.Ignored) > 0 {
		logging.Ctx(ctx).Debug().Strs("columns", scored.Ignored).Msg("ignoring unmatched columns")
	}

	data := strand.NewDataset(scored.Samples)
	sel, err := s.selectK(ctx, req.Name, data)
	if err != nil {
		return nil, err
	}

	// Diagnostics run before anything is stored so a failed import leaves
	// no dataset behind.
	var report *tuning.Report
	if req.Diagnostics && !sel.Fallback {
		report, err = tuning.Evaluate(ctx, data, sel.Folds, sel.ChosenK)
		if err != nil {
			return nil, fmt.Errorf("evaluate K=%d: %w", sel.ChosenK, err)
		}
	}

	ds := &store.Dataset{
		Name:          req.Name,
		Description:   req.Description,
		Status:        store.StatusInactive,
		QuestionSetID: setID,
		Selection:     s.storedSelection(sel),
	}
	if req.Activate {
		ds.Status = store.StatusActive
	}
	if err := s.repos.Datasets.Create(ctx, ds, scored.Samples); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().
		Int("dataset_id", ds.ID).
		Str("dataset", ds.Name).
		Int("samples", ds.Size).
		Str("status", string(ds.Status)).
		Msg("dataset imported")

	return &ImportResult{Dataset: ds, Selection: sel, Report: report, Ignored: scored.Ignored}, nil
}

// Retune reruns model selection on a stored dataset with the current
// configuration and stores the new selection.
func (s *Service) Retune(ctx context.Context, id int) (*store.Dataset, *tuning.Selection, error) {
	ds, err := s.repos.Datasets.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	samples, err := s.repos.Datasets.Samples(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sel, err := s.selectK(ctx, ds.Name, strand.NewDataset(samples))
	if err != nil {
		return nil, nil, err
	}
	ds.Selection = s.storedSelection(sel)
	if err := s.repos.Datasets.SaveSelection(ctx, id, ds.Selection); err != nil {
		return nil, nil, err
	}
	return ds, sel, nil
}

// Evaluate recomputes the cross-validation diagnostics of a dataset's
// selected K, using the seed and fold count stored with the selection so
// the folds match the ones K was chosen on.
func (s *Service) Evaluate(ctx context.Context, id int) (*store.Dataset, *tuning.Report, error) {
	ds, err := s.repos.Datasets.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch {
	case !ds.Selection.Tuned():
		return nil, nil, fmt.Errorf("evaluate %q: %w", ds.Name, ErrNotTuned)
	case ds.Selection.Fallback:
		return nil, nil, fmt.Errorf("evaluate %q: %w", ds.Name, ErrNoDiagnostics)
	}
	samples, err := s.repos.Datasets.Samples(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	data := strand.NewDataset(samples)
	split, err := tuning.StratifiedFolds(data, ds.Selection.Folds, ds.Selection.Seed)
	if err != nil {
		var insufficient *tuning.InsufficientDataError
		if errors.As(err, &insufficient) {
			return nil, nil, fmt.Errorf("evaluate %q: %w", ds.Name, ErrNoDiagnostics)
		}
		return nil, nil, err
	}
	report, err := tuning.Evaluate(ctx, data, split, ds.Selection.BestK)
	if err != nil {
		return nil, nil, fmt.Errorf("evaluate K=%d: %w", ds.Selection.BestK, err)
	}
	return ds, report, nil
}
