// Package questionnaire turns questionnaire answers into strand scores.
package questionnaire

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/strandwise/internal/strand"
	"github.com/abhisek/strandwise/internal/validation"
)

// Question is one questionnaire item. Its answer counts toward Strand.
type Question struct {
	Text   string       `toml:"text" json:"text" validate:"required"`
	Strand strand.Label `toml:"strand" json:"strand" validate:"strand"`
}

// Set is a named list of questions.
type Set struct {
	Name        string     `toml:"name" json:"name" validate:"required,max=100"`
	Description string     `toml:"description" json:"description,omitempty"`
	Questions   []Question `toml:"question" json:"questions" validate:"min=1,dive"`
}

// Validate checks field rules and rejects questions whose normalized texts
// collide.
func (s *Set) Validate() error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	seen := make(map[string]int, len(s.Questions))
	var dups []string
	for i, q := range s.Questions {
		key := strand.Normalize(q.Text)
		if j, ok := seen[key]; ok {
			dups = append(dups, fmt.Sprintf("question %d duplicates question %d (%q)", i+1, j+1, q.Text))
			continue
		}
		seen[key] = i
	}
	if len(dups) > 0 {
		return fmt.Errorf("question set %q: %s", s.Name, strings.Join(dups, "; "))
	}
	return nil
}

// ScoreColumns returns the set used for pre-scored imports, whose rows
// carry one total per strand in STEM, ABM and HUMSS columns.
func ScoreColumns() *Set {
	qs := make([]Question, 0, 3)
	for _, l := range strand.AllLabels() {
		qs = append(qs, Question{Text: string(l), Strand: l})
	}
	return &Set{Name: "scores", Description: "pre-scored strand totals", Questions: qs}
}

// CountByStrand returns how many questions feed each strand.
func (s *Set) CountByStrand() map[strand.Label]int {
	out := make(map[strand.Label]int, 3)
	for _, q := range s.Questions {
		out[q.Strand]++
	}
	return out
}

// LoadSetFile reads a TOML question set from path:
//
//	name = "grade-10-2025"
//	description = "Career interest survey"
//
//	[[question]]
//	text = "I enjoy solving math problems"
//	strand = "STEM"
func LoadSetFile(path string) (*Set, error) {
	var s Set
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("decode question set %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeSet reads a TOML question set from r.
func DecodeSet(r io.Reader) (*Set, error) {
	var s Set
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode question set: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
