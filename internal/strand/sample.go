package strand

// Scores is the feature vector of a respondent: the summed answers for
// each strand's questions.
type Scores struct {
	STEM  int `json:"stem" msgpack:"stem"`
	ABM   int `json:"abm" msgpack:"abm"`
	HUMSS int `json:"humss" msgpack:"humss"`
}

// NewScores validates and returns a Scores value.
func NewScores(stem, abm, humss int) (Scores, error) {
	s := Scores{STEM: stem, ABM: abm, HUMSS: humss}
	if err := s.Validate(); err != nil {
		return Scores{}, err
	}
	return s, nil
}

// Validate rejects negative components.
func (s Scores) Validate() error {
	for _, l := range AllLabels() {
		if v := s.Get(l); v < 0 {
			return &InvalidScoreError{Dimension: l, Value: v}
		}
	}
	return nil
}

// Get returns the score for label l.
func (s Scores) Get(l Label) int {
	switch l {
	case STEM:
		return s.STEM
	case ABM:
		return s.ABM
	case HUMSS:
		return s.HUMSS
	}
	return 0
}

// Add returns s with v added to the component for l.
func (s Scores) Add(l Label, v int) Scores {
	switch l {
	case STEM:
		s.STEM += v
	case ABM:
		s.ABM += v
	case HUMSS:
		s.HUMSS += v
	}
	return s
}

// Vector returns the scores as float64 coordinates in STEM, ABM, HUMSS order.
func (s Scores) Vector() []float64 {
	return []float64{float64(s.STEM), float64(s.ABM), float64(s.HUMSS)}
}

// Sample is a labeled feature vector.
type Sample struct {
	scores Scores
	label  Label
}

// NewSample validates scores and label and returns an immutable Sample.
func NewSample(scores Scores, label Label) (Sample, error) {
	if err := scores.Validate(); err != nil {
		return Sample{}, err
	}
	if !label.Valid() {
		return Sample{}, &InvalidLabelError{Value: string(label)}
	}
	return Sample{scores: scores, label: label}, nil
}

// Scores returns the sample's feature vector.
func (s Sample) Scores() Scores { return s.scores }

// Label returns the sample's strand.
func (s Sample) Label() Label { return s.label }
