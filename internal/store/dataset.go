package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/strandwise/internal/strand"
)

type datasetRepo struct {
	drv dialect.Driver
}

var datasetColumns = []string{
	"id", "name", "description", "status", "best_k", "accuracy",
	"fallback", "seed", "folds", "created_at", "updated_at", "question_set_id",
}

func scanDataset(rows *entsql.Rows) (Dataset, error) {
	var (
		ds     Dataset
		status string
		qsID   sql.NullInt64
	)
	err := rows.Scan(
		&ds.ID, &ds.Name, &ds.Description, &status,
		&ds.Selection.BestK, &ds.Selection.Accuracy, &ds.Selection.Fallback,
		&ds.Selection.Seed, &ds.Selection.Folds,
		&ds.CreatedAt, &ds.UpdatedAt, &qsID,
	)
	if err != nil {
		return Dataset{}, fmt.Errorf("scan dataset: %w", err)
	}
	ds.Status = DatasetStatus(status)
	if qsID.Valid {
		ds.QuestionSetID = int(qsID.Int64)
	}
	return ds, nil
}

func (r *datasetRepo) Create(ctx context.Context, ds *Dataset, samples []strand.Sample) error {
	if ds.Status == "" {
		ds.Status = StatusInactive
	}
	now := time.Now().UTC()
	var qsID any
	if ds.QuestionSetID > 0 {
		qsID = ds.QuestionSetID
	}
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		if ds.Status == StatusActive {
			if err := deactivateAll(ctx, tx, now); err != nil {
				return err
			}
		}
		id, err := insert(ctx, tx, builder.Insert(DatasetsTable.Name).
			Columns("name", "description", "status", "best_k", "accuracy", "fallback", "seed", "folds", "created_at", "updated_at", "question_set_id").
			Values(ds.Name, ds.Description, string(ds.Status),
				ds.Selection.BestK, ds.Selection.Accuracy, ds.Selection.Fallback,
				ds.Selection.Seed, ds.Selection.Folds, now, now, qsID))
		if err != nil {
			return nameError(ds.Name, err)
		}
		for i, s := range samples {
			sc := s.Scores()
			_, err := insert(ctx, tx, builder.Insert(SamplesTable.Name).
				Columns("position", "stem_score", "abm_score", "humss_score", "strand", "dataset_id").
				Values(i, sc.STEM, sc.ABM, sc.HUMSS, string(s.Label()), id))
			if err != nil {
				return fmt.Errorf("insert sample %d: %w", i, err)
			}
		}
		ds.ID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	ds.Size = len(samples)
	ds.CreatedAt = now
	ds.UpdatedAt = now
	return nil
}

func (r *datasetRepo) Get(ctx context.Context, id int) (*Dataset, error) {
	return r.one(ctx, entsql.EQ("id", id), fmt.Sprintf("dataset %d", id))
}

func (r *datasetRepo) GetByName(ctx context.Context, name string) (*Dataset, error) {
	return r.one(ctx, entsql.EQ("name", name), fmt.Sprintf("dataset %q", name))
}

func (r *datasetRepo) Active(ctx context.Context) (*Dataset, error) {
	return r.one(ctx, entsql.EQ("status", string(StatusActive)), "active dataset")
}

func (r *datasetRepo) one(ctx context.Context, p *entsql.Predicate, what string) (*Dataset, error) {
	list, err := r.list(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return &list[0], nil
}

func (r *datasetRepo) List(ctx context.Context) ([]Dataset, error) {
	return r.list(ctx, nil)
}

func (r *datasetRepo) list(ctx context.Context, p *entsql.Predicate) ([]Dataset, error) {
	sel := builder.Select(datasetColumns...).From(builder.Table(DatasetsTable.Name)).OrderBy("id")
	if p != nil {
		sel.Where(p)
	}
	var out []Dataset
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		ds, err := scanDataset(rows)
		if err != nil {
			return err
		}
		out = append(out, ds)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query datasets: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	sizes := make(map[int]int, len(out))
	counts := builder.Select("dataset_id", entsql.Count("*")).
		From(builder.Table(SamplesTable.Name)).
		GroupBy("dataset_id")
	err = query(ctx, r.drv, counts, func(rows *entsql.Rows) error {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return err
		}
		sizes[id] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count samples: %w", err)
	}
	for i := range out {
		out[i].Size = sizes[out[i].ID]
	}
	return out, nil
}

func (r *datasetRepo) Samples(ctx context.Context, id int) ([]strand.Sample, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	sel := builder.Select("stem_score", "abm_score", "humss_score", "strand").
		From(builder.Table(SamplesTable.Name)).
		Where(entsql.EQ("dataset_id", id)).
		OrderBy("position")
	var out []strand.Sample
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var (
			sc    strand.Scores
			label string
		)
		if err := rows.Scan(&sc.STEM, &sc.ABM, &sc.HUMSS, &label); err != nil {
			return err
		}
		s, err := strand.NewSample(sc, strand.Label(label))
		if err != nil {
			return fmt.Errorf("sample %d: %w", len(out), err)
		}
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query samples of dataset %d: %w", id, err)
	}
	return out, nil
}

func (r *datasetRepo) SaveSelection(ctx context.Context, id int, sel Selection) error {
	n, err := exec(ctx, r.drv, builder.Update(DatasetsTable.Name).
		Set("best_k", sel.BestK).
		Set("accuracy", sel.Accuracy).
		Set("fallback", sel.Fallback).
		Set("seed", sel.Seed).
		Set("folds", sel.Folds).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("save selection of dataset %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("dataset %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *datasetRepo) SetStatus(ctx context.Context, id int, status DatasetStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid dataset status %q", status)
	}
	now := time.Now().UTC()
	return withTx(ctx, r.drv, func(tx dialect.Tx) error {
		if status == StatusActive {
			if err := deactivateAll(ctx, tx, now); err != nil {
				return err
			}
		}
		n, err := exec(ctx, tx, builder.Update(DatasetsTable.Name).
			Set("status", string(status)).
			Set("updated_at", now).
			Where(entsql.EQ("id", id)))
		if err != nil {
			return fmt.Errorf("set status of dataset %d: %w", id, err)
		}
		if n == 0 {
			return fmt.Errorf("dataset %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func deactivateAll(ctx context.Context, ex dialect.ExecQuerier, now time.Time) error {
	_, err := exec(ctx, ex, builder.Update(DatasetsTable.Name).
		Set("status", string(StatusInactive)).
		Set("updated_at", now).
		Where(entsql.EQ("status", string(StatusActive))))
	if err != nil {
		return fmt.Errorf("deactivate datasets: %w", err)
	}
	return nil
}

func (r *datasetRepo) Update(ctx context.Context, id int, name, description string) error {
	n, err := exec(ctx, r.drv, builder.Update(DatasetsTable.Name).
		Set("name", name).
		Set("description", description).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("update dataset %d: %w", id, nameError(name, err))
	}
	if n == 0 {
		return fmt.Errorf("dataset %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *datasetRepo) Delete(ctx context.Context, id int) error {
	n, err := exec(ctx, r.drv, builder.Delete(DatasetsTable.Name).Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete dataset %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("dataset %d: %w", id, ErrNotFound)
	}
	return nil
}
