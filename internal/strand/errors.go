package strand

import "fmt"

// InvalidLabelError indicates a value outside the known strand labels.
type InvalidLabelError struct {
	Value string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid strand label %q (want STEM, ABM or HUMSS)", e.Value)
}

// InvalidScoreError indicates a negative questionnaire score.
type InvalidScoreError struct {
	Dimension Label
	Value     int
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid %s score %d: scores must be non-negative", e.Dimension, e.Value)
}
