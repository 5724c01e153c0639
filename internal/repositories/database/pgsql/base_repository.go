package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DBTX is the subset of pgx shared by the pool and an open transaction, so
// repositories run unchanged inside and outside a unit of work.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides transaction handling for the repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.Internal("failed to rollback transaction", err)
	}
	return nil
}

// WithinTx runs fn against repositories bound to a new transaction and
// commits when fn returns nil.
func (r *BaseRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.TxRepositories) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // no-op after commit

	if err := fn(ctx, repositoriesOn(tx)); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// mapWriteError translates unique violations to apperrors.ErrDuplicate and
// wraps everything else.
func mapWriteError(err error, msg string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicate, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
