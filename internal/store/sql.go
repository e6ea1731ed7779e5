package store

import (
	"context"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"fortio.org/safecast"
)

var builder = entsql.Dialect(dialect.SQLite)

// insert runs ib and returns the new row ID.
func insert(ctx context.Context, ex dialect.ExecQuerier, ib *entsql.InsertBuilder) (int, error) {
	q, args := ib.Query()
	var res entsql.Result
	if err := ex.Exec(ctx, q, args, &res); err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return safecast.Conv[int](id)
}

// exec runs b and returns the number of affected rows.
func exec(ctx context.Context, ex dialect.ExecQuerier, b entsql.Querier) (int64, error) {
	q, args := b.Query()
	var res entsql.Result
	if err := ex.Exec(ctx, q, args, &res); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// query runs b and calls scan for every row. Rows are closed before query
// returns, which the single-connection pool relies on.
func query(ctx context.Context, ex dialect.ExecQuerier, b entsql.Querier, scan func(*entsql.Rows) error) error {
	q, args := b.Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// withTx runs fn inside a transaction, rolling back if fn fails.
func withTx(ctx context.Context, drv dialect.Driver, fn func(tx dialect.Tx) error) error {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// nameError maps unique violations on a name column to ErrDuplicateName.
func nameError(name string, err error) error {
	if sqlgraph.IsUniqueConstraintError(err) {
		return fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	return err
}
