package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/store"
	"github.com/abhisek/strandwise/internal/strand"
	"github.com/abhisek/strandwise/internal/tuning"
)

func TestSelectionTables(t *testing.T) {
	sel := &tuning.Selection{
		ChosenK:      6,
		MeanAccuracy: 0.8,
		Candidates: []tuning.CandidateScore{
			{K: 5, FoldAccuracies: []float64{0.7, 0.8}, Mean: 0.75, Std: 0.05},
			{K: 6, FoldAccuracies: []float64{0.8, 0.8}, Mean: 0.8},
			{K: 7, Skipped: true},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Selection(&buf, sel))
	out := buf.String()
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "± 5.0%")
	assert.Contains(t, out, "6 *")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "Fold 2")
	assert.Contains(t, out, "Chosen K=6 with mean accuracy 80.0%")
}

func TestSelectionFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Selection(&buf, &tuning.Selection{ChosenK: 5, MeanAccuracy: 1, Fallback: true}))
	assert.Contains(t, buf.String(), "default K=5")
}

func TestEvaluation(t *testing.T) {
	rep := &tuning.Report{
		K: 5,
		Matrix: tuning.ConfusionMatrix{
			Labels: []strand.Label{strand.ABM, strand.HUMSS, strand.STEM},
			Counts: [][]int{{4, 1, 0}, {0, 5, 0}, {1, 0, 9}},
		},
		Accuracy:       0.9,
		PrecisionMacro: 0.88,
		RecallMacro:    0.87,
		F1Macro:        0.875,
		PerLabel: []tuning.LabelMetrics{
			{Label: strand.ABM, Precision: 0.8, Recall: 0.8, F1: 0.8, Support: 5},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Evaluation(&buf, rep))
	out := buf.String()
	assert.Contains(t, out, "Evaluation at K=5")
	assert.Contains(t, out, "macro")
	assert.Contains(t, out, "0.8750")
	assert.Contains(t, out, "Accuracy 90.0%")
}

func TestPredictionTie(t *testing.T) {
	res := knn.PredictionResult{
		VoteCounts: knn.VoteCounts{strand.STEM: 2, strand.ABM: 2, strand.HUMSS: 0},
		Tie:        true,
		TieWeights: knn.TieWeights{strand.STEM: knn.ExactMatchWeight, strand.ABM: 1.25},
		Neighbors: []knn.NeighborRecord{
			{Rank: 1, Index: 3, Label: strand.STEM, Distance: 0},
		},
		Recommendation: strand.STEM,
		K:              4,
	}
	var buf bytes.Buffer
	require.NoError(t, Prediction(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "exact match")
	assert.Contains(t, out, "1.2500")
	assert.Contains(t, out, "Recommended strand: STEM")
	assert.Contains(t, out, strand.DisplayName(strand.STEM))
}

func TestRecords(t *testing.T) {
	now := time.Now()
	var buf bytes.Buffer

	require.NoError(t, Datasets(&buf, nil))
	assert.Contains(t, buf.String(), "No datasets")

	buf.Reset()
	require.NoError(t, Datasets(&buf, []store.Dataset{
		{ID: 1, Name: "pilot", Status: store.StatusActive, Size: 40, Selection: store.Selection{BestK: 7, Accuracy: 0.9}, UpdatedAt: now},
		{ID: 2, Name: "tiny", Status: store.StatusInactive, Size: 1, Selection: store.Selection{BestK: 5, Accuracy: 1, Fallback: true}, UpdatedAt: now},
	}))
	out := buf.String()
	assert.Contains(t, out, "pilot")
	assert.Contains(t, out, "5 (default)")

	buf.Reset()
	require.NoError(t, Results(&buf, []store.Result{{
		PublicID:  "0123456789abcdef",
		DatasetID: 1,
		Scores:    strand.Scores{STEM: 9, ABM: 2, HUMSS: 1},
		CreatedAt: now,
		PredictionResult: knn.PredictionResult{
			Recommendation: strand.STEM,
		},
	}}))
	out = buf.String()
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "9/2/1")

	buf.Reset()
	require.NoError(t, QuestionSets(&buf, []store.QuestionSet{{
		ID: 1,
		Set: questionnaire.Set{Name: "g10", Questions: []questionnaire.Question{
			{Text: "I like math", Strand: strand.STEM},
		}},
	}}))
	assert.Contains(t, buf.String(), "g10")
}
