package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/strand"
)

type resultRepo struct {
	drv dialect.Driver
}

var resultColumns = []string{
	"id", "public_id", "dataset_id", "respondent",
	"stem_score", "abm_score", "humss_score",
	"stem_votes", "abm_votes", "humss_votes",
	"recommendation", "tie", "k", "created_at",
}

func (r *resultRepo) Save(ctx context.Context, res *Result) error {
	now := time.Now().UTC()
	publicID := uuid.NewString()
	votes := res.VoteCounts
	err := withTx(ctx, r.drv, func(tx dialect.Tx) error {
		id, err := insert(ctx, tx, builder.Insert(ResultsTable.Name).
			Columns(resultColumns[1:]...).
			Values(publicID, res.DatasetID, res.Respondent,
				res.Scores.STEM, res.Scores.ABM, res.Scores.HUMSS,
				votes[strand.STEM], votes[strand.ABM], votes[strand.HUMSS],
				string(res.Recommendation), res.Tie, res.K, now))
		if err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		for _, n := range res.Neighbors {
			_, err := insert(ctx, tx, builder.Insert(NeighborsTable.Name).
				Columns("rank", "sample_index", "strand", "distance", "result_id").
				Values(n.Rank, n.Index, string(n.Label), n.Distance, id))
			if err != nil {
				return fmt.Errorf("insert neighbor %d: %w", n.Rank, err)
			}
		}
		for _, l := range strand.AllLabels() {
			w, ok := res.TieWeights[l]
			if !ok {
				continue
			}
			_, err := insert(ctx, tx, builder.Insert(TieWeightsTable.Name).
				Columns("strand", "weight", "result_id").
				Values(string(l), w, id))
			if err != nil {
				return fmt.Errorf("insert tie weight %s: %w", l, err)
			}
		}
		res.ID = id
		return nil
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	res.PublicID = publicID
	res.CreatedAt = now
	return nil
}

func (r *resultRepo) Get(ctx context.Context, publicID string) (*Result, error) {
	sel := builder.Select(resultColumns...).
		From(builder.Table(ResultsTable.Name)).
		Where(entsql.EQ("public_id", publicID))
	list, err := r.load(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("result %q: %w", publicID, ErrNotFound)
	}
	return &list[0], nil
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]Result, error) {
	sel := builder.Select(resultColumns...).
		From(builder.Table(ResultsTable.Name)).
		OrderBy(entsql.Desc("id"))
	if opts.DatasetID > 0 {
		sel.Where(entsql.EQ("dataset_id", opts.DatasetID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return r.load(ctx, sel)
}

func (r *resultRepo) load(ctx context.Context, sel *entsql.Selector) ([]Result, error) {
	var (
		out   []Result
		index = map[int]int{}
	)
	err := query(ctx, r.drv, sel, func(rows *entsql.Rows) error {
		var (
			res            Result
			stem, abm, hum int
			rec            string
		)
		err := rows.Scan(
			&res.ID, &res.PublicID, &res.DatasetID, &res.Respondent,
			&res.Scores.STEM, &res.Scores.ABM, &res.Scores.HUMSS,
			&stem, &abm, &hum,
			&rec, &res.Tie, &res.K, &res.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("scan result: %w", err)
		}
		res.Recommendation = strand.Label(rec)
		res.VoteCounts = knn.VoteCounts{strand.STEM: stem, strand.ABM: abm, strand.HUMSS: hum}
		if res.Tie {
			res.TieWeights = knn.TieWeights{}
		}
		index[res.ID] = len(out)
		out = append(out, res)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, res := range out {
		ids = append(ids, res.ID)
	}
	nsel := builder.Select("result_id", "rank", "sample_index", "strand", "distance").
		From(builder.Table(NeighborsTable.Name)).
		Where(entsql.In("result_id", ids...)).
		OrderBy("result_id", "rank")
	err = query(ctx, r.drv, nsel, func(rows *entsql.Rows) error {
		var (
			resID int
			n     knn.NeighborRecord
			label string
		)
		if err := rows.Scan(&resID, &n.Rank, &n.Index, &label, &n.Distance); err != nil {
			return err
		}
		n.Label = strand.Label(label)
		i := index[resID]
		out[i].Neighbors = append(out[i].Neighbors, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query neighbors: %w", err)
	}

	wsel := builder.Select("result_id", "strand", "weight").
		From(builder.Table(TieWeightsTable.Name)).
		Where(entsql.In("result_id", ids...))
	err = query(ctx, r.drv, wsel, func(rows *entsql.Rows) error {
		var (
			resID int
			label string
			w     float64
		)
		if err := rows.Scan(&resID, &label, &w); err != nil {
			return err
		}
		res := &out[index[resID]]
		if res.TieWeights == nil {
			res.TieWeights = knn.TieWeights{}
		}
		res.TieWeights[strand.Label(label)] = w
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query tie weights: %w", err)
	}
	return out, nil
}
