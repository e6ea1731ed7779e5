package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/logging"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/store"
	"github.com/abhisek/strandwise/internal/strand"
)

// ErrNoInput is returned when a recommendation request carries neither or
// both of scores and answers.
var ErrNoInput = errors.New("provide either scores or answers")

// RecommendRequest asks for the strand of one respondent.
type RecommendRequest struct {
	DatasetID   int // 0 means the active dataset
	Scores      *strand.Scores
	Answers     questionnaire.Row
	QuestionSet string // scores Answers; empty uses the dataset's own set
	Respondent  string `validate:"max=200"`
}

// Recommend classifies one respondent against a stored dataset and saves
// the result.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) (*store.Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if (req.Scores == nil) == (req.Answers == nil) {
		return nil, ErrNoInput
	}

	ds, err := s.dataset(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}
	if !ds.Selection.Tuned() {
		return nil, fmt.Errorf("recommend with %q: %w", ds.Name, ErrNotTuned)
	}

	scores, err := s.queryScores(ctx, ds, req)
	if err != nil {
		return nil, err
	}
	if err := scores.Validate(); err != nil {
		return nil, err
	}

	samples, err := s.repos.Datasets.Samples(ctx, ds.ID)
	if err != nil {
		return nil, err
	}
	model, err := knn.NewModel(strand.NewDataset(samples), ds.Selection.BestK)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %w", ds.Name, err)
	}
	pred := model.Predict(scores)

	res := &store.Result{
		DatasetID:        ds.ID,
		Respondent:       req.Respondent,
		Scores:           scores,
		PredictionResult: pred,
	}
	if err := s.repos.Results.Save(ctx, res); err != nil {
		return nil, err
	}
	s.metrics.RecordPrediction(pred.Recommendation, pred.Tie)

	logging.Ctx(ctx).Info().
		Str("result_id", res.PublicID).
		Str("dataset", ds.Name).
		Int("k", pred.K).
		Str("recommendation", string(pred.Recommendation)).
		Bool("tie", pred.Tie).
		Msg("recommendation made")
	return res, nil
}

func (s *Service) dataset(ctx context.Context, id int) (*store.Dataset, error) {
	if id > 0 {
		return s.repos.Datasets.Get(ctx, id)
	}
	ds, err := s.repos.Datasets.Active(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no active dataset: %w", err)
	}
	return ds, err
}

func (s *Service) queryScores(ctx context.Context, ds *store.Dataset, req RecommendRequest) (strand.Scores, error) {
	if req.Scores != nil {
		return *req.Scores, nil
	}
	var set *questionnaire.Set
	switch {
	case req.QuestionSet != "":
		qs, err := s.repos.QuestionSets.GetByName(ctx, req.QuestionSet)
		if err != nil {
			return strand.Scores{}, fmt.Errorf("question set %q: %w", req.QuestionSet, err)
		}
		set = &qs.Set
	case ds.QuestionSetID > 0:
		qs, err := s.repos.QuestionSets.Get(ctx, ds.QuestionSetID)
		if err != nil {
			return strand.Scores{}, fmt.Errorf("question set of %q: %w", ds.Name, err)
		}
		set = &qs.Set
	default:
		set = questionnaire.ScoreColumns()
	}
	return questionnaire.ScoreAnswers(set, req.Answers)
}
