package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos bundles transaction-scoped repositories for use inside a unit of work.
type Repos struct {
	Trips TripRepo
	Stops StopRepo
}

// UnitOfWork runs a function against a single database transaction.
// Every multi-step stop mutation (insert-with-shift, two-phase reorder,
// validate-then-write) goes through WithinTx so that either all of its
// writes land or none do, and so that sibling reads and index writes see
// the same snapshot.
type UnitOfWork interface {
	// WithinTx begins a transaction, calls fn with repos bound to it, and
	// commits if fn returns nil. Any error from fn (or a panic) rolls the
	// transaction back and leaves the database untouched.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// pgUnitOfWork is the pgx-backed UnitOfWork.
type pgUnitOfWork struct {
	db beginner
}

// NewUnitOfWork constructs a UnitOfWork on top of a pgx pool or connection.
func NewUnitOfWork(db beginner) UnitOfWork {
	return &pgUnitOfWork{db: db}
}

func (u *pgUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.UnitOfWork: begin: %w", err)
	}
	// Rollback after a successful commit is a no-op error we ignore.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(Repos{Trips: NewTripRepo(tx), Stops: NewStopRepo(tx)}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("repo.UnitOfWork: rollback: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.UnitOfWork: commit: %w", err)
	}
	return nil
}
