// Package report renders selections, evaluations and recommendations as
// terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/strand"
	"github.com/abhisek/strandwise/internal/tuning"
)

// write prints blocks separated by blank lines, downsampling colors to
// what w supports.
func write(w io.Writer, blocks ...string) error {
	_, err := lipgloss.Fprintln(w, strings.Join(blocks, "\n\n"))
	return err
}

func pct(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 1, 64) + "%"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Selection prints the per-K summary and the per-fold accuracy grid.
func Selection(w io.Writer, sel *tuning.Selection) error {
	if sel.Fallback {
		return write(w,
			Title.Render("Model selection"),
			fmt.Sprintf("Dataset too small for cross-validation. Using default K=%d.", sel.ChosenK),
		)
	}

	var folds int
	for _, c := range sel.Candidates {
		if len(c.FoldAccuracies) > folds {
			folds = len(c.FoldAccuracies)
		}
	}
	gridHeaders := []string{"K"}
	for f := 1; f <= folds; f++ {
		gridHeaders = append(gridHeaders, fmt.Sprintf("Fold %d", f))
	}
	chosen := -1
	var summaryRows, gridRows [][]string
	for i, c := range sel.Candidates {
		k := strconv.Itoa(c.K)
		if c.Skipped {
			summaryRows = append(summaryRows, []string{k, "skipped", "-"})
			continue
		}
		if c.K == sel.ChosenK {
			chosen = i
			k += " *"
		}
		summaryRows = append(summaryRows, []string{k, pct(c.Mean), "± " + pct(c.Std)})
		row := []string{strconv.Itoa(c.K)}
		for _, a := range c.FoldAccuracies {
			row = append(row, pct(a))
		}
		gridRows = append(gridRows, row)
	}

	return write(w,
		Title.Render("Model selection"),
		newTable(chosen, "K", "Mean accuracy", "Std").Rows(summaryRows...).String(),
		Title.Render("Fold accuracy"),
		newTable(-1, gridHeaders...).Rows(gridRows...).String(),
		Highlight.Render(fmt.Sprintf("Chosen K=%d with mean accuracy %s", sel.ChosenK, pct(sel.MeanAccuracy))),
	)
}

// Evaluation prints the pooled confusion matrix and the macro metrics.
func Evaluation(w io.Writer, rep *tuning.Report) error {
	headers := []string{"Actual \\ Predicted"}
	for _, l := range rep.Matrix.Labels {
		headers = append(headers, string(l))
	}
	cm := newTable(-1, headers...)
	for i, l := range rep.Matrix.Labels {
		row := []string{strandStyle(l)}
		for _, n := range rep.Matrix.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		cm.Row(row...)
	}

	perLabel := newTable(-1, "Strand", "Precision", "Recall", "F1", "Support")
	for _, m := range rep.PerLabel {
		perLabel.Row(strandStyle(m.Label), num(m.Precision), num(m.Recall), num(m.F1), strconv.Itoa(m.Support))
	}
	perLabel.Row("macro", num(rep.PrecisionMacro), num(rep.RecallMacro), num(rep.F1Macro), strconv.Itoa(rep.Matrix.Total()))

	return write(w,
		Title.Render(fmt.Sprintf("Evaluation at K=%d", rep.K)),
		cm.String(),
		perLabel.String(),
		Highlight.Render("Accuracy "+pct(rep.Accuracy)),
	)
}

// Prediction prints the vote counts, tie weights and neighbors of res.
func Prediction(w io.Writer, res knn.PredictionResult) error {
	votes := newTable(-1, "Strand", "Votes")
	for _, l := range strand.AllLabels() {
		votes.Row(strandStyle(l), strconv.Itoa(res.VoteCounts[l]))
	}

	neighbors := newTable(-1, "Rank", "Sample", "Strand", "Distance")
	for _, n := range res.Neighbors {
		neighbors.Row(strconv.Itoa(n.Rank), strconv.Itoa(n.Index), strandStyle(n.Label), num(n.Distance))
	}

	blocks := []string{
		Title.Render(fmt.Sprintf("Neighbors (K=%d)", res.K)),
		neighbors.String(),
		votes.String(),
	}
	if res.Tie {
		weights := newTable(-1, "Tied strand", "Weight")
		for _, l := range strand.AllLabels() {
			wt, ok := res.TieWeights[l]
			if !ok {
				continue
			}
			weights.Row(strandStyle(l), weight(wt))
		}
		blocks = append(blocks, Hint.Render("Votes tied; settled by inverse-distance weight."), weights.String())
	}
	blocks = append(blocks, Highlight.Render(fmt.Sprintf("Recommended strand: %s (%s)",
		res.Recommendation, strand.DisplayName(res.Recommendation))))
	return write(w, blocks...)
}

func weight(w float64) string {
	if w == knn.ExactMatchWeight {
		return "exact match"
	}
	return num(w)
}
