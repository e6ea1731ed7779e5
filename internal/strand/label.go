package strand

import (
	"strings"

	"golang.org/x/text/cases"
)

// Label is a Senior High School academic strand.
type Label string

const (
	STEM  Label = "STEM"
	ABM   Label = "ABM"
	HUMSS Label = "HUMSS"
)

// AllLabels returns all labels in precedence order. The order is used for
// display and for settling ties that survive distance weighting.
func AllLabels() []Label {
	return []Label{STEM, ABM, HUMSS}
}

// SortedLabels returns all labels in lexical order.
func SortedLabels() []Label {
	return []Label{ABM, HUMSS, STEM}
}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	switch l {
	case STEM, ABM, HUMSS:
		return true
	}
	return false
}

// Precedence returns the position of l in AllLabels, or -1.
func (l Label) Precedence() int {
	for i, x := range AllLabels() {
		if x == l {
			return i
		}
	}
	return -1
}

func (l Label) String() string { return string(l) }

// DisplayName returns the full strand name.
func DisplayName(l Label) string {
	switch l {
	case STEM:
		return "Science, Technology, Engineering and Mathematics"
	case ABM:
		return "Accountancy and Business Management"
	case HUMSS:
		return "Humanities and Social Sciences"
	default:
		return string(l)
	}
}

// longForms maps normalized long strand names to labels. Matching is by
// substring so answers like "Yes - humanities and social sciences" resolve.
var longForms = []struct {
	name  string
	label Label
}{
	{"science, technology, engineering and mathematics", STEM},
	{"humanities and social sciences", HUMSS},
	{"accountancy and business management", ABM},
}

// ParseLabel converts a short code or long strand name to a Label.
func ParseLabel(s string) (Label, error) {
	norm := Normalize(s)
	for _, l := range AllLabels() {
		if norm == Normalize(string(l)) {
			return l, nil
		}
	}
	for _, lf := range longForms {
		if norm != "" && strings.Contains(norm, lf.name) {
			return lf.label, nil
		}
	}
	return "", &InvalidLabelError{Value: s}
}

// Normalize prepares free text for matching: it trims, spells out "&",
// collapses whitespace runs and case-folds.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), " ")
	// Casers carry state, so each call gets its own.
	return cases.Fold().String(s)
}

// UnmarshalText accepts anything ParseLabel does, so config and data files
// may use either short codes or full strand names.
func (l *Label) UnmarshalText(b []byte) error {
	v, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
