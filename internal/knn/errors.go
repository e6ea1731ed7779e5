package knn

import "fmt"

// InvalidModelError indicates a model that cannot answer queries: an empty
// dataset, or a neighbor count outside 1..N.
type InvalidModelError struct {
	K int
	N int
}

func (e *InvalidModelError) Error() string {
	switch {
	case e.N == 0:
		return "invalid model: dataset is empty"
	case e.K < 1:
		return fmt.Sprintf("invalid model: k=%d must be at least 1", e.K)
	default:
		return fmt.Sprintf("invalid model: k=%d exceeds dataset size %d", e.K, e.N)
	}
}
