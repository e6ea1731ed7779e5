// Package advisor is the application layer: it imports datasets, keeps
// their selected K current and serves recommendations, persisting every
// step through the store.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/strandwise/internal/bundle"
	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/logging"
	"github.com/abhisek/strandwise/internal/metrics"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/store"
	"github.com/abhisek/strandwise/internal/strand"
	"github.com/abhisek/strandwise/internal/tuning"
	"github.com/abhisek/strandwise/internal/validation"
)

var (
	// ErrNotTuned is returned for datasets without a selected K.
	ErrNotTuned = errors.New("dataset has no selected K")

	// ErrNoDiagnostics is returned when evaluating a dataset whose K is the
	// fallback default, since it was never cross-validated.
	ErrNoDiagnostics = errors.New("dataset was too small to cross-validate")

	// ErrAmbiguousID is returned when a result ID prefix matches several results.
	ErrAmbiguousID = errors.New("result id prefix is ambiguous")
)

// Repos groups the store repositories the service needs.
type Repos struct {
	Datasets     store.DatasetRepo
	QuestionSets store.QuestionSetRepo
	Results      store.ResultRepo
}

// Service coordinates model selection, prediction and persistence.
type Service struct {
	repos    Repos
	selector *tuning.Selector
	metrics  *metrics.Metrics
}

// NewService creates a Service. A nil m records into a private registry.
func NewService(repos Repos, cfg tuning.Config, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		repos:    repos,
		selector: tuning.NewSelector(cfg),
		metrics:  m,
	}
}

// selectK runs model selection, falling back to the default K when the
// data cannot be stratified.
func (s *Service) selectK(ctx context.Context, name string, data *strand.Dataset) (*tuning.Selection, error) {
	log := logging.Ctx(ctx)
	start := time.Now()
	sel, err := s.selector.SelectOrFallback(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("select K for %q: %w", name, err)
	}
	took := time.Since(start)
	s.metrics.RecordSelection(sel.ChosenK, sel.MeanAccuracy, sel.Fallback, took)

	if sel.Fallback {
		log.Warn().
			Str("dataset", name).
			Int("samples", data.Len()).
			Int("k", sel.ChosenK).
			Str("reason", sel.Reason).
			Msg("cross-validation skipped, using default K")
		return sel, nil
	}
	log.Info().
		Str("dataset", name).
		Int("samples", data.Len()).
		Int("k", sel.ChosenK).
		Float64("accuracy", sel.MeanAccuracy).
		Dur("took", took).
		Msg("model selected")
	return sel, nil
}

func (s *Service) storedSelection(sel *tuning.Selection) store.Selection {
	cfg := s.selector.Config()
	out := store.Selection{
		BestK:    sel.ChosenK,
		Accuracy: sel.MeanAccuracy,
		Fallback: sel.Fallback,
		Seed:     cfg.Seed,
		Folds:    cfg.Folds,
	}
	if sel.Folds != nil {
		out.Seed = sel.Folds.Seed()
		out.Folds = sel.Folds.Len()
	}
	return out
}

// FindDataset resolves ref as a numeric ID or a dataset name.
func (s *Service) FindDataset(ctx context.Context, ref string) (*store.Dataset, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.repos.Datasets.Get(ctx, id)
	}
	return s.repos.Datasets.GetByName(ctx, ref)
}

// Datasets lists all datasets.
func (s *Service) Datasets(ctx context.Context) ([]store.Dataset, error) {
	return s.repos.Datasets.List(ctx)
}

// Records returns the samples of a dataset in stored order.
func (s *Service) Records(ctx context.Context, id int) ([]strand.Sample, error) {
	return s.repos.Datasets.Samples(ctx, id)
}

// Activate makes id the dataset used when a recommendation names none.
func (s *Service) Activate(ctx context.Context, id int) error {
	if err := s.repos.Datasets.SetStatus(ctx, id, store.StatusActive); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("dataset_id", id).Msg("dataset activated")
	return nil
}

// Deactivate clears the active flag of id.
func (s *Service) Deactivate(ctx context.Context, id int) error {
	if err := s.repos.Datasets.SetStatus(ctx, id, store.StatusInactive); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("dataset_id", id).Msg("dataset deactivated")
	return nil
}

// Rename changes a dataset's name and description.
func (s *Service) Rename(ctx context.Context, id int, name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("dataset name is required")
	}
	if err := s.repos.Datasets.Update(ctx, id, name, description); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("dataset_id", id).Str("name", name).Msg("dataset renamed")
	return nil
}

// Delete removes a dataset with its samples and results.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repos.Datasets.Delete(ctx, id); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("dataset_id", id).Msg("dataset deleted")
	return nil
}

// AddQuestionSet validates and stores a questionnaire.
func (s *Service) AddQuestionSet(ctx context.Context, set *questionnaire.Set) (*store.QuestionSet, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	qs, err := s.repos.QuestionSets.Create(ctx, set)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("question_set", qs.Name).Int("questions", len(qs.Questions)).Msg("question set added")
	return qs, nil
}

// QuestionSets lists stored questionnaires.
func (s *Service) QuestionSets(ctx context.Context) ([]store.QuestionSet, error) {
	return s.repos.QuestionSets.List(ctx)
}

// QuestionSet returns a questionnaire by name.
func (s *Service) QuestionSet(ctx context.Context, name string) (*store.QuestionSet, error) {
	return s.repos.QuestionSets.GetByName(ctx, name)
}

// Results lists stored recommendations, newest first.
func (s *Service) Results(ctx context.Context, opts store.QueryOpts) ([]store.Result, error) {
	return s.repos.Results.List(ctx, opts)
}

// Result returns a stored recommendation by its public ID or a unique
// prefix of it.
func (s *Service) Result(ctx context.Context, id string) (*store.Result, error) {
	res, err := s.repos.Results.Get(ctx, id)
	if err == nil || !errors.Is(err, store.ErrNotFound) || id == "" {
		return res, err
	}
	all, lerr := s.repos.Results.List(ctx, store.QueryOpts{})
	if lerr != nil {
		return nil, lerr
	}
	var match *store.Result
	for i := range all {
		if !strings.HasPrefix(all[i].PublicID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%q: %w", id, ErrAmbiguousID)
		}
		match = &all[i]
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

// Export packages a tuned dataset as a bundle.
func (s *Service) Export(ctx context.Context, id int) (*bundle.Bundle, error) {
	ds, err := s.repos.Datasets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ds.Selection.Tuned() {
		return nil, fmt.Errorf("export %q: %w", ds.Name, ErrNotTuned)
	}
	samples, err := s.repos.Datasets.Samples(ctx, id)
	if err != nil {
		return nil, err
	}
	b := bundle.New(ds.Name, ds.Description, samples)
	b.ChosenK = ds.Selection.BestK
	b.MeanAccuracy = ds.Selection.Accuracy
	b.Fallback = ds.Selection.Fallback
	b.Seed = ds.Selection.Seed
	b.Folds = ds.Selection.Folds
	return b, nil
}

// ImportBundle stores a bundle as a new dataset, keeping its selected K.
// A non-empty name overrides the bundle's.
func (s *Service) ImportBundle(ctx context.Context, b *bundle.Bundle, name string) (*store.Dataset, error) {
	samples, err := b.Samples()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = b.Name
	}
	if _, err := knn.NewModel(strand.NewDataset(samples), b.ChosenK); err != nil {
		return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
	}
	ds := &store.Dataset{
		Name:        name,
		Description: b.Description,
		Selection: store.Selection{
			BestK:    b.ChosenK,
			Accuracy: b.MeanAccuracy,
			Fallback: b.Fallback,
			Seed:     b.Seed,
			Folds:    b.Folds,
		},
	}
	if err := s.repos.Datasets.Create(ctx, ds, samples); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("dataset", ds.Name).Int("samples", ds.Size).Int("k", b.ChosenK).Msg("bundle imported")
	return ds, nil
}

// validate runs struct rules on a request.
func validate(req any) error {
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
