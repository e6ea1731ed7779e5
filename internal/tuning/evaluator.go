package tuning

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/abhisek/strandwise/internal/strand"
)

// ConfusionMatrix counts predictions: Counts[i][j] is the number of samples
// with true label Labels[i] predicted as Labels[j].
type ConfusionMatrix struct {
	Labels []strand.Label
	Counts [][]int
}

func newConfusionMatrix(labels []strand.Label) ConfusionMatrix {
	m := ConfusionMatrix{Labels: labels, Counts: make([][]int, len(labels))}
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(labels))
	}
	return m
}

func (m ConfusionMatrix) add(truth, pred strand.Label) {
	i := slices.Index(m.Labels, truth)
	j := slices.Index(m.Labels, pred)
	if i >= 0 && j >= 0 {
		m.Counts[i][j]++
	}
}

func (m ConfusionMatrix) merge(o ConfusionMatrix) {
	for i := range m.Counts {
		for j := range m.Counts[i] {
			m.Counts[i][j] += o.Counts[i][j]
		}
	}
}

// Total returns the number of counted predictions.
func (m ConfusionMatrix) Total() int {
	n := 0
	for _, row := range m.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Accuracy returns the share of predictions on the diagonal.
func (m ConfusionMatrix) Accuracy() float64 {
	total := m.Total()
	if total == 0 {
		return 0
	}
	correct := 0
	for i := range m.Counts {
		correct += m.Counts[i][i]
	}
	return float64(correct) / float64(total)
}

// LabelMetrics holds one-vs-rest metrics for a label.
type LabelMetrics struct {
	Label     strand.Label
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// FoldReport is the confusion matrix of a single held-out fold.
type FoldReport struct {
	Fold     int // 1-based
	Accuracy float64
	Matrix   ConfusionMatrix
}

// Report is the pooled cross-validation diagnostic for one K.
type Report struct {
	K              int
	Matrix         ConfusionMatrix
	Accuracy       float64
	PrecisionMacro float64
	RecallMacro    float64
	F1Macro        float64
	PerLabel       []LabelMetrics
	Folds          []FoldReport
}

// Evaluate repeats the cross-validation predictions for k on split and
// pools the held-out predictions of all folds into one confusion matrix
// over the dataset's labels in lexical order. Macro metrics are unweighted
// means over labels; a zero denominator yields 0.
func Evaluate(ctx context.Context, data *strand.Dataset, split *FoldSplit, k int) (*Report, error) {
	var labels []strand.Label
	counts := data.Counts()
	for _, l := range strand.SortedLabels() {
		if counts[l] > 0 {
			labels = append(labels, l)
		}
	}

	folds := make([]FoldReport, split.Len())
	g, gctx := errgroup.WithContext(ctx)
	for f := range folds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			truth, pred, err := predictFold(data, split, f, k)
			if err != nil {
				return err
			}
			m := newConfusionMatrix(labels)
			for i := range truth {
				m.add(truth[i], pred[i])
			}
			folds[f] = FoldReport{Fold: f + 1, Accuracy: m.Accuracy(), Matrix: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pooled := newConfusionMatrix(labels)
	for _, fr := range folds {
		pooled.merge(fr.Matrix)
	}

	r := &Report{
		K:        k,
		Matrix:   pooled,
		Accuracy: pooled.Accuracy(),
		PerLabel: perLabelMetrics(pooled),
		Folds:    folds,
	}
	if len(r.PerLabel) > 0 {
		p := make([]float64, len(r.PerLabel))
		rc := make([]float64, len(r.PerLabel))
		f1 := make([]float64, len(r.PerLabel))
		for i, lm := range r.PerLabel {
			p[i], rc[i], f1[i] = lm.Precision, lm.Recall, lm.F1
		}
		r.PrecisionMacro = stat.Mean(p, nil)
		r.RecallMacro = stat.Mean(rc, nil)
		r.F1Macro = stat.Mean(f1, nil)
	}
	return r, nil
}

func perLabelMetrics(m ConfusionMatrix) []LabelMetrics {
	out := make([]LabelMetrics, len(m.Labels))
	for i, l := range m.Labels {
		tp := m.Counts[i][i]
		predicted, actual := 0, 0
		for j := range m.Labels {
			predicted += m.Counts[j][i]
			actual += m.Counts[i][j]
		}
		lm := LabelMetrics{
			Label:     l,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, actual),
			Support:   actual,
		}
		if lm.Precision+lm.Recall > 0 {
			lm.F1 = 2 * lm.Precision * lm.Recall / (lm.Precision + lm.Recall)
		}
		out[i] = lm
	}
	return out
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
