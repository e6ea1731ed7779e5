package tuning

import (
	"fmt"

	"github.com/abhisek/strandwise/internal/strand"
)

// InsufficientDataError indicates a dataset that cannot be split into
// stratified folds, or on which no candidate K can be trained.
type InsufficientDataError struct {
	Label  strand.Label // offending label, empty when the problem is not label-specific
	Count  int
	Folds  int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("insufficient data: label %s has %d samples, %d-fold stratification needs at least %d",
			e.Label, e.Count, e.Folds, e.Folds)
	}
	return "insufficient data: " + e.Reason
}
