package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"eventseating/internal/domain"

	"github.com/lib/pq"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type seatingStore struct {
	DB *sql.DB
}

// NewSeatingStore returns a SeatingStore backed by Postgres.
func NewSeatingStore(db *sql.DB) domain.SeatingStore {
	return &seatingStore{
		DB: db,
	}
}

func (s *seatingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domain.SeatingTx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, q *seatingQueries) error {
		return fn(ctx, q)
	})
}

func (s *seatingStore) WithinReadTx(ctx context.Context, fn func(ctx context.Context, r domain.SeatingReader) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, func(ctx context.Context, q *seatingQueries) error {
		return fn(ctx, q)
	})
}

func (s *seatingStore) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, q *seatingQueries) error) error {
	tx, err := s.DB.BeginTx(ctx, opts)
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &seatingQueries{q: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit tx: %w", err))
	}
	committed = true
	return nil
}

// classify maps driver failures onto the domain taxonomy. Errors already carrying a
// domain sentinel are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrConsistencyFault),
		errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrInvalidInput):
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "08":
			return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
		case pqErr.Code == "23514":
			return fmt.Errorf("%w: %v", domain.ErrConsistencyFault, err)
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return err
}

// seatingQueries implements domain.SeatingTx on top of a queryer.
type seatingQueries struct {
	q queryer
}

func (s *seatingQueries) LockEventDate(ctx context.Context, eventDate string) error {
	if _, err := s.q.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, eventDate); err != nil {
		return fmt.Errorf("lock event date %s: %w", eventDate, err)
	}
	return nil
}
