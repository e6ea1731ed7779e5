package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/abhisek/strandwise/internal/store"
	"github.com/abhisek/strandwise/internal/strand"
)

const timeLayout = "2006-01-02 15:04"

// Datasets lists stored datasets, marking the active one.
func Datasets(w io.Writer, list []store.Dataset) error {
	if len(list) == 0 {
		return write(w, Hint.Render("No datasets yet. Import one with `strandwise import`."))
	}
	active := -1
	rows := make([][]string, 0, len(list))
	for i, ds := range list {
		if ds.Status == store.StatusActive {
			active = i
		}
		rows = append(rows, []string{
			strconv.Itoa(ds.ID), ds.Name, string(ds.Status), strconv.Itoa(ds.Size),
			kText(ds.Selection), accText(ds.Selection), ds.UpdatedAt.Local().Format(timeLayout),
		})
	}
	t := newTable(active, "ID", "Name", "Status", "Samples", "K", "Accuracy", "Updated").Rows(rows...)
	return write(w, t.String())
}

func kText(sel store.Selection) string {
	switch {
	case !sel.Tuned():
		return "-"
	case sel.Fallback:
		return strconv.Itoa(sel.BestK) + " (default)"
	default:
		return strconv.Itoa(sel.BestK)
	}
}

func accText(sel store.Selection) string {
	if !sel.Tuned() {
		return "-"
	}
	return pct(sel.Accuracy)
}

// Dataset prints one dataset's details and its strand distribution.
func Dataset(w io.Writer, ds *store.Dataset, samples []strand.Sample) error {
	counts := strand.NewDataset(samples).Counts()
	dist := newTable(-1, "Strand", "Samples")
	for _, l := range strand.AllLabels() {
		dist.Row(strandStyle(l), strconv.Itoa(counts[l]))
	}
	info := newTable(-1, "Field", "Value").Rows(
		[]string{"ID", strconv.Itoa(ds.ID)},
		[]string{"Name", ds.Name},
		[]string{"Description", ds.Description},
		[]string{"Status", string(ds.Status)},
		[]string{"K", kText(ds.Selection)},
		[]string{"CV accuracy", accText(ds.Selection)},
		[]string{"Seed / folds", fmt.Sprintf("%d / %d", ds.Selection.Seed, ds.Selection.Folds)},
		[]string{"Created", ds.CreatedAt.Local().Format(timeLayout)},
	)
	return write(w, Title.Render(ds.Name), info.String(), dist.String())
}

// Samples prints a dataset's samples in stored order.
func Samples(w io.Writer, samples []strand.Sample) error {
	t := newTable(-1, "#", "STEM", "ABM", "HUMSS", "Strand")
	for i, s := range samples {
		sc := s.Scores()
		t.Row(strconv.Itoa(i), strconv.Itoa(sc.STEM), strconv.Itoa(sc.ABM), strconv.Itoa(sc.HUMSS), strandStyle(s.Label()))
	}
	return write(w, t.String())
}

// Results lists stored recommendations.
func Results(w io.Writer, list []store.Result) error {
	if len(list) == 0 {
		return write(w, Hint.Render("No results yet."))
	}
	t := newTable(-1, "ID", "Dataset", "Respondent", "Scores", "Strand", "Tie", "When")
	for _, r := range list {
		tie := ""
		if r.Tie {
			tie = "yes"
		}
		t.Row(shortID(r.PublicID), strconv.Itoa(r.DatasetID), r.Respondent,
			fmt.Sprintf("%d/%d/%d", r.Scores.STEM, r.Scores.ABM, r.Scores.HUMSS),
			strandStyle(r.Recommendation), tie, r.CreatedAt.Local().Format(timeLayout))
	}
	return write(w, t.String())
}

// Result prints one stored recommendation in full.
func Result(w io.Writer, r *store.Result) error {
	header := fmt.Sprintf("Result %s  dataset %d  scores STEM=%d ABM=%d HUMSS=%d",
		r.PublicID, r.DatasetID, r.Scores.STEM, r.Scores.ABM, r.Scores.HUMSS)
	if r.Respondent != "" {
		header += "  respondent " + r.Respondent
	}
	if err := write(w, Hint.Render(header)); err != nil {
		return err
	}
	return Prediction(w, r.PredictionResult)
}

// QuestionSets lists stored questionnaires.
func QuestionSets(w io.Writer, list []store.QuestionSet) error {
	if len(list) == 0 {
		return write(w, Hint.Render("No question sets yet. Add one with `strandwise questions add`."))
	}
	t := newTable(-1, "ID", "Name", "STEM", "ABM", "HUMSS", "Description")
	for _, qs := range list {
		c := qs.CountByStrand()
		t.Row(strconv.Itoa(qs.ID), qs.Name,
			strconv.Itoa(c[strand.STEM]), strconv.Itoa(c[strand.ABM]), strconv.Itoa(c[strand.HUMSS]),
			qs.Description)
	}
	return write(w, t.String())
}

// QuestionSet prints every question of qs.
func QuestionSet(w io.Writer, qs *store.QuestionSet) error {
	t := newTable(-1, "#", "Question", "Strand")
	for i, q := range qs.Questions {
		t.Row(strconv.Itoa(i+1), q.Text, strandStyle(q.Strand))
	}
	return write(w, Title.Render(qs.Name), t.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
