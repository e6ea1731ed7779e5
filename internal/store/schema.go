package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// QuestionSetsColumns holds the columns for the "question_sets" table.
	QuestionSetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// QuestionSetsTable holds the schema information for the "question_sets" table.
	QuestionSetsTable = &schema.Table{
		Name:       "question_sets",
		Columns:    QuestionSetsColumns,
		PrimaryKey: []*schema.Column{QuestionSetsColumns[0]},
	}

	// QuestionsColumns holds the columns for the "questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "strand", Type: field.TypeString},
		{Name: "question_set_id", Type: field.TypeInt},
	}
	// QuestionsTable holds the schema information for the "questions" table.
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_question_sets_questions",
				Columns:    []*schema.Column{QuestionsColumns[4]},
				RefColumns: []*schema.Column{QuestionSetsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// DatasetsColumns holds the columns for the "datasets" table.
	DatasetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "description", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Default: string(StatusInactive)},
		{Name: "best_k", Type: field.TypeInt, Default: 0},
		{Name: "accuracy", Type: field.TypeFloat64, Default: 0},
		{Name: "fallback", Type: field.TypeBool, Default: false},
		{Name: "seed", Type: field.TypeInt64, Default: 0},
		{Name: "folds", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "question_set_id", Type: field.TypeInt, Nullable: true},
	}
	// DatasetsTable holds the schema information for the "datasets" table.
	DatasetsTable = &schema.Table{
		Name:       "datasets",
		Columns:    DatasetsColumns,
		PrimaryKey: []*schema.Column{DatasetsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "datasets_question_sets_datasets",
				Columns:    []*schema.Column{DatasetsColumns[11]},
				RefColumns: []*schema.Column{QuestionSetsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	// SamplesColumns holds the columns for the "samples" table.
	SamplesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "position", Type: field.TypeInt},
		{Name: "stem_score", Type: field.TypeInt},
		{Name: "abm_score", Type: field.TypeInt},
		{Name: "humss_score", Type: field.TypeInt},
		{Name: "strand", Type: field.TypeString},
		{Name: "dataset_id", Type: field.TypeInt},
	}
	// SamplesTable holds the schema information for the "samples" table.
	SamplesTable = &schema.Table{
		Name:       "samples",
		Columns:    SamplesColumns,
		PrimaryKey: []*schema.Column{SamplesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "samples_datasets_samples",
				Columns:    []*schema.Column{SamplesColumns[6]},
				RefColumns: []*schema.Column{DatasetsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "sample_dataset_id_position",
				Unique:  true,
				Columns: []*schema.Column{SamplesColumns[6], SamplesColumns[1]},
			},
		},
	}

	// ResultsColumns holds the columns for the "results" table.
	ResultsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "public_id", Type: field.TypeString, Unique: true},
		{Name: "respondent", Type: field.TypeString, Default: ""},
		{Name: "stem_score", Type: field.TypeInt},
		{Name: "abm_score", Type: field.TypeInt},
		{Name: "humss_score", Type: field.TypeInt},
		{Name: "stem_votes", Type: field.TypeInt},
		{Name: "abm_votes", Type: field.TypeInt},
		{Name: "humss_votes", Type: field.TypeInt},
		{Name: "recommendation", Type: field.TypeString},
		{Name: "tie", Type: field.TypeBool},
		{Name: "k", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "dataset_id", Type: field.TypeInt},
	}
	// ResultsTable holds the schema information for the "results" table.
	ResultsTable = &schema.Table{
		Name:       "results",
		Columns:    ResultsColumns,
		PrimaryKey: []*schema.Column{ResultsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "results_datasets_results",
				Columns:    []*schema.Column{ResultsColumns[13]},
				RefColumns: []*schema.Column{DatasetsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// NeighborsColumns holds the columns for the "neighbors" table.
	NeighborsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "rank", Type: field.TypeInt},
		{Name: "sample_index", Type: field.TypeInt},
		{Name: "strand", Type: field.TypeString},
		{Name: "distance", Type: field.TypeFloat64},
		{Name: "result_id", Type: field.TypeInt},
	}
	// NeighborsTable holds the schema information for the "neighbors" table.
	NeighborsTable = &schema.Table{
		Name:       "neighbors",
		Columns:    NeighborsColumns,
		PrimaryKey: []*schema.Column{NeighborsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "neighbors_results_neighbors",
				Columns:    []*schema.Column{NeighborsColumns[5]},
				RefColumns: []*schema.Column{ResultsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// TieWeightsColumns holds the columns for the "tie_weights" table.
	TieWeightsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "strand", Type: field.TypeString},
		{Name: "weight", Type: field.TypeFloat64},
		{Name: "result_id", Type: field.TypeInt},
	}
	// TieWeightsTable holds the schema information for the "tie_weights" table.
	TieWeightsTable = &schema.Table{
		Name:       "tie_weights",
		Columns:    TieWeightsColumns,
		PrimaryKey: []*schema.Column{TieWeightsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tie_weights_results_tie_weights",
				Columns:    []*schema.Column{TieWeightsColumns[3]},
				RefColumns: []*schema.Column{ResultsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// Tables holds all the tables in the schema, parents first.
	Tables = []*schema.Table{
		QuestionSetsTable,
		QuestionsTable,
		DatasetsTable,
		SamplesTable,
		ResultsTable,
		NeighborsTable,
		TieWeightsTable,
	}
)

func init() {
	QuestionsTable.ForeignKeys[0].RefTable = QuestionSetsTable
	DatasetsTable.ForeignKeys[0].RefTable = QuestionSetsTable
	SamplesTable.ForeignKeys[0].RefTable = DatasetsTable
	ResultsTable.ForeignKeys[0].RefTable = DatasetsTable
	NeighborsTable.ForeignKeys[0].RefTable = ResultsTable
	TieWeightsTable.ForeignKeys[0].RefTable = ResultsTable
}
