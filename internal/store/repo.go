package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/strand"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a name is already taken.
	ErrDuplicateName = errors.New("name already exists")
)

// DatasetStatus marks whether a dataset serves recommendations by default.
type DatasetStatus string

const (
	StatusActive   DatasetStatus = "Active"
	StatusInactive DatasetStatus = "Inactive"
)

// Valid reports whether s is a known status.
func (s DatasetStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Selection is the persisted outcome of model selection.
type Selection struct {
	BestK    int
	Accuracy float64
	Fallback bool
	Seed     int64
	Folds    int
}

// Tuned reports whether a K has been chosen.
func (s Selection) Tuned() bool { return s.BestK > 0 }

// Dataset is a stored collection of labelled samples.
type Dataset struct {
	ID            int
	Name          string
	Description   string
	Status        DatasetStatus
	QuestionSetID int // 0 when imported from raw scores
	Selection     Selection
	Size          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// QuestionSet is a stored questionnaire.
type QuestionSet struct {
	ID        int
	CreatedAt time.Time
	questionnaire.Set
}

// Result is a stored recommendation.
type Result struct {
	ID         int
	PublicID   string
	DatasetID  int
	Respondent string
	Scores     strand.Scores
	CreatedAt  time.Time
	knn.PredictionResult
}

// QueryOpts configures result queries with filtering and pagination.
type QueryOpts struct {
	Limit     int // max results (0 = unlimited)
	DatasetID int // 0 = all datasets
}

// DatasetRepo manages datasets and their samples.
type DatasetRepo interface {
	// Create stores ds together with its samples and fills in ds.ID.
	Create(ctx context.Context, ds *Dataset, samples []strand.Sample) error

	// Get returns the dataset with the given ID.
	Get(ctx context.Context, id int) (*Dataset, error)

	// GetByName returns the dataset with the given name.
	GetByName(ctx context.Context, name string) (*Dataset, error)

	// List returns all datasets ordered by ID.
	List(ctx context.Context) ([]Dataset, error)

	// Samples returns the dataset's samples in insertion order.
	Samples(ctx context.Context, id int) ([]strand.Sample, error)

	// SaveSelection records the outcome of model selection.
	SaveSelection(ctx context.Context, id int, sel Selection) error

	// SetStatus changes the status. Activating a dataset deactivates all others.
	SetStatus(ctx context.Context, id int, status DatasetStatus) error

	// Active returns the active dataset, or ErrNotFound.
	Active(ctx context.Context) (*Dataset, error)

	// Update changes the name and description.
	Update(ctx context.Context, id int, name, description string) error

	// Delete removes the dataset, its samples and its results.
	Delete(ctx context.Context, id int) error
}

// QuestionSetRepo manages questionnaires.
type QuestionSetRepo interface {
	Create(ctx context.Context, set *questionnaire.Set) (*QuestionSet, error)
	Get(ctx context.Context, id int) (*QuestionSet, error)
	GetByName(ctx context.Context, name string) (*QuestionSet, error)
	List(ctx context.Context) ([]QuestionSet, error)
	Delete(ctx context.Context, id int) error
}

// ResultRepo manages stored recommendations.
type ResultRepo interface {
	// Save stores r with its neighbors and tie weights, filling in ID,
	// PublicID and CreatedAt.
	Save(ctx context.Context, r *Result) error

	// Get returns the result with the given public ID.
	Get(ctx context.Context, publicID string) (*Result, error)

	// List returns results newest first.
	List(ctx context.Context, opts QueryOpts) ([]Result, error)
}
