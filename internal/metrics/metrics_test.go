package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/strandwise/internal/strand"
)

func TestRecordPrediction(t *testing.T) {
	m := New()

	m.RecordPrediction(strand.STEM, false)
	m.RecordPrediction(strand.STEM, true)
	m.RecordPrediction(strand.HUMSS, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("STEM")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("HUMSS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionTies))
}

func TestRecordSelection(t *testing.T) {
	m := New()

	m.RecordSelection(7, 0.82, false, 250*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("cv")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.SelectedK))
	assert.Equal(t, 0.82, testutil.ToFloat64(m.SelectionAccuracy))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SelectionDuration))

	m.RecordSelection(5, 1.0, true, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Selections.WithLabelValues("fallback")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SelectedK))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordPrediction(strand.ABM, false)

	path := filepath.Join(t.TempDir(), "strandwise.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `strandwise_predictions_total{strand="ABM"} 1`)
}
