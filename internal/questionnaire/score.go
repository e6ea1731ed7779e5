package questionnaire

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/strandwise/internal/strand"
)

// labelColumns are the normalized headers that carry a respondent's strand.
var labelColumns = []string{
	"strand",
	strand.Normalize("Is your Senior High School strand aligned with your current course/program?"),
}

// MissingQuestionsError lists set questions absent from the imported columns.
type MissingQuestionsError struct {
	Missing []string
}

func (e *MissingQuestionsError) Error() string {
	return fmt.Sprintf("%d question(s) missing from import: %s", len(e.Missing), strings.Join(e.Missing, "; "))
}

// InvalidAnswerError reports an answer that is not a non-negative integer.
type InvalidAnswerError struct {
	Row      int // 1-based
	Question string
	Value    string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("row %d: invalid score %q for question %q", e.Row, e.Value, e.Question)
}

// Scored is the result of scoring imported rows.
type Scored struct {
	Samples []strand.Sample
	Ignored []string // columns that matched no question
}

// columnMap matches columns to set questions by normalized text.
type columnMap struct {
	questions map[string]strand.Label // column header -> strand
	label     string                  // column header holding the strand
	ignored   []string
}

func mapColumns(set *Set, columns []string) (*columnMap, error) {
	byText := make(map[string]strand.Label, len(set.Questions))
	for _, q := range set.Questions {
		byText[strand.Normalize(q.Text)] = q.Strand
	}

	cm := &columnMap{questions: make(map[string]strand.Label)}
	found := make(map[string]bool)
	for _, col := range columns {
		norm := strand.Normalize(col)
		if slices.Contains(labelColumns, norm) {
			if cm.label == "" {
				cm.label = col
			}
			continue
		}
		l, ok := byText[norm]
		if !ok {
			cm.ignored = append(cm.ignored, col)
			continue
		}
		cm.questions[col] = l
		found[norm] = true
	}

	var missing []string
	for _, q := range set.Questions {
		if !found[strand.Normalize(q.Text)] {
			missing = append(missing, q.Text)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingQuestionsError{Missing: missing}
	}
	slices.Sort(cm.ignored)
	return cm, nil
}

func (cm *columnMap) score(row Row, n int) (strand.Scores, error) {
	var sc strand.Scores
	for col, l := range cm.questions {
		raw := strings.TrimSpace(row[col])
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return strand.Scores{}, &InvalidAnswerError{Row: n, Question: col, Value: raw}
		}
		sc = sc.Add(l, v)
	}
	return sc, nil
}

func columnsOf(rows []Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for c := range r {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}
	slices.Sort(cols)
	return cols
}

// Score converts labeled rows into samples. Every set question must appear
// as a column; unknown columns are ignored and reported. Blank answers
// count as zero.
func Score(set *Set, rows []Row) (*Scored, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to import")
	}
	cm, err := mapColumns(set, columnsOf(rows))
	if err != nil {
		return nil, err
	}
	if cm.label == "" {
		return nil, fmt.Errorf("no strand column found (expected a %q column)", "Strand")
	}

	out := &Scored{Samples: make([]strand.Sample, len(rows)), Ignored: cm.ignored}
	for i, row := range rows {
		label, err := strand.ParseLabel(row[cm.label])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		sc, err := cm.score(row, i+1)
		if err != nil {
			return nil, err
		}
		s, err := strand.NewSample(sc, label)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out.Samples[i] = s
	}
	return out, nil
}

// ScoreAnswers computes the scores of a single unlabeled respondent.
func ScoreAnswers(set *Set, answers Row) (strand.Scores, error) {
	cols := make([]string, 0, len(answers))
	for c := range answers {
		cols = append(cols, c)
	}
	cm, err := mapColumns(set, cols)
	if err != nil {
		return strand.Scores{}, err
	}
	return cm.score(answers, 1)
}
