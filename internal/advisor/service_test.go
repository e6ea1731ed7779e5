package advisor

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func newTestService(t *testing.T) (*Service, *metrics.Metrics) {
	t.Helper()
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m := metrics.New()
	svc := NewService(Repos{
		Datasets:     st.Datasets(),
		QuestionSets: st.QuestionSets(),
		Results:      st.Results(),
	}, tuning.DefaultConfig(), m)
	return svc, m
}

func scoreRow(stem, abm, humss int, label string) questionnaire.Row {
	return questionnaire.Row{
		"STEM":   strconv.Itoa(stem),
		"ABM":    strconv.Itoa(abm),
		"HUMSS":  strconv.Itoa(humss),
		"Strand": label,
	}
}

// separableRows returns seven tight samples per strand, far apart from the
// other strands, so every candidate K classifies perfectly.
func separableRows() []questionnaire.Row {
	var rows []questionnaire.Row
	for i := range 7 {
		rows = append(rows,
			scoreRow(30+i, 5, 5, "STEM"),
			scoreRow(5, 30+i, 5, "ABM"),
			scoreRow(5, 5, 30+i, "HUMSS"),
		)
	}
	return rows
}

func importSeparable(t *testing.T, svc *Service, name string, activate bool) *ImportResult {
	t.Helper()
	res, err := svc.Import(context.Background(), ImportRequest{
		Name:        name,
		Rows:        separableRows(),
		Activate:    activate,
		Diagnostics: true,
	})
	require.NoError(t, err)
	return res
}

func TestImportSelectsAndStores(t *testing.T) {
	svc, m := newTestService(t)
	res := importSeparable(t, svc, "batch-2025", true)

	assert.False(t, res.Selection.Fallback)
	assert.Equal(t, 5, res.Selection.ChosenK)
	assert.InDelta(t, 1.0, res.Selection.MeanAccuracy, 1e-9)

	ds := res.Dataset
	assert.NotZero(t, ds.ID)
	assert.Equal(t, 21, ds.Size)
	assert.Equal(t, store.StatusActive, ds.Status)
	assert.Equal(t, 5, ds.Selection.BestK)
	assert.Equal(t, int64(42), ds.Selection.Seed)
	assert.Equal(t, 5, ds.Selection.Folds)
	assert.Zero(t, ds.QuestionSetID)

	require.NotNil(t, res.Report)
	assert.Equal(t, 5, res.Report.K)
	assert.Equal(t, 21, res.Report.Matrix.Total())
	assert.InDelta(t, 1.0, res.Report.F1Macro, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("cv")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SelectedK))

	stored, err := svc.FindDataset(context.Background(), "batch-2025")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, stored.ID)
	assert.Equal(t, ds.Selection, stored.Selection)
}

func TestImportFallbackForSmallClasses(t *testing.T) {
	svc, m := newTestService(t)
	rows := []questionnaire.Row{
		scoreRow(30, 5, 5, "STEM"),
		scoreRow(31, 5, 5, "STEM"),
		scoreRow(32, 5, 5, "STEM"),
		scoreRow(33, 5, 5, "STEM"),
		scoreRow(5, 30, 5, "ABM"),
		scoreRow(5, 31, 5, "ABM"),
	}
	res, err := svc.Import(context.Background(), ImportRequest{Name: "tiny", Rows: rows, Diagnostics: true})
	require.NoError(t, err)

	assert.True(t, res.Selection.Fallback)
	assert.NotEmpty(t, res.Selection.Reason)
	assert.Equal(t, 5, res.Dataset.Selection.BestK)
	assert.Equal(t, 1.0, res.Dataset.Selection.Accuracy)
	assert.True(t, res.Dataset.Selection.Fallback)
	assert.Nil(t, res.Report)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("fallback")))

	_, _, err = svc.Evaluate(context.Background(), res.Dataset.ID)
	assert.ErrorIs(t, err, ErrNoDiagnostics)
}

// cancelOnMessage makes the global logger call cancel when msg is logged.
func cancelOnMessage(t *testing.T, msg string, cancel context.CancelFunc) {
	t.Helper()
	prev := logging.Logger()
	t.Cleanup(func() { logging.SetLogger(prev) })
	logging.SetLogger(zerolog.New(io.Discard).Hook(zerolog.HookFunc(
		func(e *zerolog.Event, level zerolog.Level, m string) {
			if m == msg {
				cancel()
			}
		})))
}

func TestImportFailureStoresNothing(t *testing.T) {
	svc, _ := newTestService(t)
	active := importSeparable(t, svc, "current", true).Dataset

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Cancel after K is chosen, while diagnostics are still to run.
	cancelOnMessage(t, "model selected", cancel)

	_, err := svc.Import(ctx, ImportRequest{
		Name:        "batch",
		Rows:        separableRows(),
		Activate:    true,
		Diagnostics: true,
	})
	require.ErrorIs(t, err, context.Canceled)

	list, err := svc.Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
	assert.Equal(t, store.StatusActive, list[0].Status)

	_, err = svc.Import(context.Background(), ImportRequest{Name: "batch", Rows: separableRows()})
	assert.NoError(t, err, "a failed import can be retried under the same name")
}

func TestImportCancelledStoresNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Import(ctx, ImportRequest{Name: "batch", Rows: separableRows(), Diagnostics: true})
	require.ErrorIs(t, err, context.Canceled)

	list, err := svc.Datasets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportRejectsBadRequests(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, ImportRequest{Rows: separableRows()})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	_, err = svc.Import(ctx, ImportRequest{Name: "empty"})
	require.ErrorAs(t, err, &verr)

	_, err = svc.Import(ctx, ImportRequest{Name: "x", QuestionSet: "missing", Rows: separableRows()})
	assert.ErrorIs(t, err, store.ErrNotFound)

	rows := separableRows()
	rows[3]["Strand"] = "TVL"
	_, err = svc.Import(ctx, ImportRequest{Name: "bad-label", Rows: rows})
	var lerr *strand.InvalidLabelError
	assert.ErrorAs(t, err, &lerr)

	importSeparable(t, svc, "dup", false)
	_, err = svc.Import(ctx, ImportRequest{Name: "dup", Rows: separableRows()})
	assert.ErrorIs(t, err, store.ErrDuplicateName)
}

func TestImportWithQuestionSet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddQuestionSet(ctx, &questionnaire.Set{
		Name: "interests",
		Questions: []questionnaire.Question{
			{Text: "I enjoy solving math problems", Strand: strand.STEM},
			{Text: "I like running a small business", Strand: strand.ABM},
			{Text: "I like reading about history", Strand: strand.HUMSS},
		},
	})
	require.NoError(t, err)

	var rows []questionnaire.Row
	for i := range 5 {
		v := strconv.Itoa(4 + i%2)
		rows = append(rows,
			questionnaire.Row{"I enjoy solving math problems": v, "I like running a small business": "1", "I like reading about history": "1", "Strand": "STEM", "Timestamp": "x"},
			questionnaire.Row{"I enjoy solving math problems": "1", "I like running a small business": v, "I like reading about history": "1", "Strand": "ABM", "Timestamp": "x"},
			questionnaire.Row{"I enjoy solving math problems": "1", "I like running a small business": "1", "I like reading about history": v, "Strand": "HUMSS", "Timestamp": "x"},
		)
	}
	res, err := svc.Import(ctx, ImportRequest{Name: "survey", QuestionSet: "interests", Rows: rows, Activate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Timestamp"}, res.Ignored)
	assert.NotZero(t, res.Dataset.QuestionSetID)

	// Answers are scored with the dataset's own question set.
	out, err := svc.Recommend(ctx, RecommendRequest{Answers: questionnaire.Row{
		"I enjoy solving math problems":   "1",
		"I like running a small business": "1",
		"I like reading about history":    "5",
	}})
	require.NoError(t, err)
	assert.Equal(t, strand.HUMSS, out.Recommendation)
	assert.Equal(t, strand.Scores{STEM: 1, ABM: 1, HUMSS: 5}, out.Scores)
}

func TestRecommend(t *testing.T) {
	svc, m := newTestService(t)
	ctx := context.Background()
	ds := importSeparable(t, svc, "batch", true).Dataset

	res, err := svc.Recommend(ctx, RecommendRequest{
		Scores:     &strand.Scores{STEM: 40, ABM: 6, HUMSS: 4},
		Respondent: "Juan",
	})
	require.NoError(t, err)
	assert.Equal(t, strand.STEM, res.Recommendation)
	assert.False(t, res.Tie)
	assert.Equal(t, 5, res.K)
	assert.Len(t, res.Neighbors, 5)
	assert.Equal(t, 5, res.VoteCounts[strand.STEM])
	assert.Equal(t, 0, res.VoteCounts[strand.ABM])
	assert.Equal(t, ds.ID, res.DatasetID)
	assert.NotEmpty(t, res.PublicID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("STEM")))

	got, err := svc.Result(ctx, res.PublicID[:8])
	require.NoError(t, err)
	assert.Equal(t, res.PublicID, got.PublicID)
	assert.Equal(t, "Juan", got.Respondent)
	assert.Equal(t, res.Neighbors, got.Neighbors)

	list, err := svc.Results(ctx, store.QueryOpts{DatasetID: ds.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecommendInputs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Recommend(ctx, RecommendRequest{Scores: &strand.Scores{STEM: 1}})
	assert.ErrorIs(t, err, store.ErrNotFound, "no active dataset")

	importSeparable(t, svc, "batch", false)
	_, err = svc.Recommend(ctx, RecommendRequest{Scores: &strand.Scores{STEM: 1}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Recommend(ctx, RecommendRequest{DatasetID: 1})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = svc.Recommend(ctx, RecommendRequest{
		DatasetID: 1,
		Scores:    &strand.Scores{STEM: 1},
		Answers:   questionnaire.Row{"STEM": "1"},
	})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = svc.Recommend(ctx, RecommendRequest{DatasetID: 1, Scores: &strand.Scores{STEM: -1}})
	var serr *strand.InvalidScoreError
	assert.ErrorAs(t, err, &serr)

	_, err = svc.Recommend(ctx, RecommendRequest{DatasetID: 1, Answers: questionnaire.Row{"STEM": "3"}})
	var merr *questionnaire.MissingQuestionsError
	assert.ErrorAs(t, err, &merr)
}

func TestRecommendFallbackLargerThanDataset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	res, err := svc.Import(ctx, ImportRequest{
		Name: "one",
		Rows: []questionnaire.Row{scoreRow(10, 2, 2, "STEM")},
	})
	require.NoError(t, err)
	require.True(t, res.Selection.Fallback)

	_, err = svc.Recommend(ctx, RecommendRequest{DatasetID: res.Dataset.ID, Scores: &strand.Scores{STEM: 1}})
	var merr *knn.InvalidModelError
	assert.ErrorAs(t, err, &merr)
}

func TestEvaluateMatchesImport(t *testing.T) {
	svc, _ := newTestService(t)
	imp := importSeparable(t, svc, "batch", false)

	ds, report, err := svc.Evaluate(context.Background(), imp.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, imp.Dataset.ID, ds.ID)
	assert.Equal(t, imp.Report.Matrix, report.Matrix)
	assert.Equal(t, imp.Report.Folds, report.Folds)
}

func TestRetune(t *testing.T) {
	svc, m := newTestService(t)
	imp := importSeparable(t, svc, "batch", false)

	ds, sel, err := svc.Retune(context.Background(), imp.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, imp.Selection.ChosenK, sel.ChosenK)
	assert.Equal(t, imp.Selection.Candidates, sel.Candidates)
	assert.Equal(t, 5, ds.Selection.BestK)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Selections.WithLabelValues("cv")))

	_, _, err = svc.Retune(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDatasetLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := importSeparable(t, svc, "a", true).Dataset
	b := importSeparable(t, svc, "b", false).Dataset

	require.NoError(t, svc.Activate(ctx, b.ID))
	got, err := svc.FindDataset(ctx, strconv.Itoa(a.ID))
	require.NoError(t, err)
	assert.Equal(t, store.StatusInactive, got.Status)

	require.NoError(t, svc.Deactivate(ctx, b.ID))
	_, err = svc.Recommend(ctx, RecommendRequest{Scores: &strand.Scores{STEM: 9}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Error(t, svc.Rename(ctx, a.ID, "  ", ""))
	assert.ErrorIs(t, svc.Rename(ctx, a.ID, "b", ""), store.ErrDuplicateName)
	require.NoError(t, svc.Rename(ctx, a.ID, "renamed", "first batch"))
	got, err = svc.FindDataset(ctx, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "first batch", got.Description)

	records, err := svc.Records(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, records, 21)

	require.NoError(t, svc.Delete(ctx, a.ID))
	list, err := svc.Datasets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)
}

func TestResultLookupMisses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	importSeparable(t, svc, "batch", true)

	for range 2 {
		_, err := svc.Recommend(ctx, RecommendRequest{Scores: &strand.Scores{ABM: 35}})
		require.NoError(t, err)
	}
	_, err := svc.Result(ctx, "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Result(ctx, "zzzz")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBundleRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	imp := importSeparable(t, svc, "batch", false)

	b, err := svc.Export(ctx, imp.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, b.ChosenK)
	assert.Len(t, b.Records, 21)

	var buf bytes.Buffer
	require.NoError(t, bundle.Encode(&buf, b))
	decoded, err := bundle.Decode(&buf)
	require.NoError(t, err)

	_, err = svc.ImportBundle(ctx, decoded, "")
	assert.ErrorIs(t, err, store.ErrDuplicateName)

	ds, err := svc.ImportBundle(ctx, decoded, "copy")
	require.NoError(t, err)
	assert.Equal(t, imp.Dataset.Selection, ds.Selection)
	assert.Equal(t, 21, ds.Size)

	orig, err := svc.Records(ctx, imp.Dataset.ID)
	require.NoError(t, err)
	copied, err := svc.Records(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, orig, copied)
}
