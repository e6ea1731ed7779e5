package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/strand"
)

type questionSetRepo struct {
	drv dialect.Driver
}

func (r *questionSetRepo) Create(ctx context.Context, set *questionnaire.Set) (*QuestionSet, error) {
	now := time.Now().UTC()
	qs := &QuestionSet{CreatedAt: now, Set: *set}
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		id, err := insert(ctx, tx, builder.Insert(QuestionSetsTable.Name).
			Columns("name", "description", "created_at").
			Values(set.Name, set.Description, now))
		if err != nil {
			return nameError(set.Name, err)
		}
		for i, q := range set.Questions {
			_, err := insert(ctx, tx, builder.Insert(QuestionsTable.Name).
				Columns("position", "text", "strand", "question_set_id").
				Values(i, q.Text, string(q.Strand), id))
			if err != nil {
				return fmt.Errorf("insert question %d: %w", i+1, err)
			}
		}
		qs.ID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create question set: %w", err)
	}
	return qs, nil
}

func (r *questionSetRepo) Get(ctx context.Context, id int) (*QuestionSet, error) {
	return r.one(ctx, entsql.EQ("id", id), fmt.Sprintf("question set %d", id))
}

func (r *questionSetRepo) GetByName(ctx context.Context, name string) (*QuestionSet, error) {
	return r.one(ctx, entsql.EQ("name", name), fmt.Sprintf("question set %q", name))
}

func (r *questionSetRepo) one(ctx context.Context, p *entsql.Predicate, what string) (*QuestionSet, error) {
	list, err := r.list(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return &list[0], nil
}

func (r *questionSetRepo) List(ctx context.Context) ([]QuestionSet, error) {
	return r.list(ctx, nil)
}

func (r *questionSetRepo) list(ctx context.Context, p *entsql.Predicate) ([]QuestionSet, error) {
	sel := builder.Select("id", "name", "description", "created_at").
		From(builder.Table(QuestionSetsTable.Name)).
		OrderBy("id")
	if p != nil {
		sel.Where(p)
	}
	var (
		out   []QuestionSet
		index = map[int]int{}
	)
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var qs QuestionSet
		if err := rows.Scan(&qs.ID, &qs.Name, &qs.Description, &qs.CreatedAt); err != nil {
			return err
		}
		index[qs.ID] = len(out)
		out = append(out, qs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query question sets: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, qs := range out {
		ids = append(ids, qs.ID)
	}
	qsel := builder.Select("question_set_id", "text", "strand").
		From(builder.Table(QuestionsTable.Name)).
		Where(entsql.In("question_set_id", ids...)).
		OrderBy("question_set_id", "position")
	err = query(ctx, r.drv, qsel, func(rows *entsql.Rows) error {
		var (
			setID int
			q     questionnaire.Question
			label string
		)
		if err := rows.Scan(&setID, &q.Text, &label); err != nil {
			return err
		}
		q.Strand = strand.Label(label)
		i := index[setID]
		out[i].Questions = append(out[i].Questions, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return out, nil
}

func (r *questionSetRepo) Delete(ctx context.Context, id int) error {
	n, err := exec(ctx, r.drv, builder.Delete(QuestionSetsTable.Name).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete question set %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("question set %d: %w", id, ErrNotFound)
	}
	return nil
}
