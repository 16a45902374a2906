package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GetTx retrieves transaction from context
func GetTx(ctx context.Context) (*sql.Tx, error) {
	tx, ok := ctx.Value(ContextKeyTransaction).(*sql.Tx)
	if !ok {
		return nil, errors.New("transaction not found in context")
	}
	return tx, nil
}

// Executor returns the transaction bound to ctx, or the database.
func (d *Data) Executor(ctx context.Context) Executor {
	if tx, err := GetTx(ctx); err == nil {
		return tx
	}
	return d.db
}

// Exec runs a statement on the ctx transaction or the database.
func (d *Data) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := d.Executor(ctx).ExecContext(ctx, query, args...)
	d.collector.DBQuery(time.Since(start), err)
	return res, err
}

// Query runs a query on the ctx transaction or the database.
func (d *Data) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.Executor(ctx).QueryContext(ctx, query, args...)
	d.collector.DBQuery(time.Since(start), err)
	return rows, err
}

// QueryRow runs a single-row query on the ctx transaction or the database.
func (d *Data) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := d.Executor(ctx).QueryRowContext(ctx, query, args...)
	d.collector.DBQuery(time.Since(start), row.Err())
	return row
}

// WithTx runs fn inside a transaction carried by the context passed to fn.
// A transaction already bound to ctx is reused, so nested calls join the
// outer transaction.
func (d *Data) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, err := GetTx(ctx); err == nil {
		return fn(ctx)
	}

	start := time.Now()
	collector := d.collector

	if d.isClosed() {
		collector.DBTransaction(ErrClosed)
		return ErrClosed
	}
	if d.db == nil {
		err := errors.New("database connection is nil")
		collector.DBTransaction(err)
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		collector.DBQuery(time.Since(start), err)
		collector.DBTransaction(err)
		return err
	}

	err = fn(context.WithValue(ctx, ContextKeyTransaction, tx))
	duration := time.Since(start)

	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			collector.DBTransaction(rbErr)
			return fmt.Errorf("tx err: %w, rollback err: %v", err, rbErr)
		}
		collector.DBQuery(duration, err)
		collector.DBTransaction(err)
		return err
	}

	commitErr := tx.Commit()
	collector.DBQuery(duration, commitErr)
	collector.DBTransaction(commitErr)
	return commitErr
}
