package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
)

const (
	usersTableName        = `users`
	booksTableName        = `books`
	transactionsTableName = `transactions`
	eventsTableName       = `events`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store owns the transactional boundary. Every borrow/return executes its
// check-then-act sequence inside a single Atomic call.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewStore(db *sqlx.DB, log *zap.Logger) (*Store, error) {
	return &Store{
		db:  db,
		log: log.Named("store"),
	}, nil
}

// Atomic runs fn inside one database transaction. Lock acquisition failures,
// deadlocks and serialization failures come back as ErrConcurrencyConflict so
// callers can retry; any error rolls back with no partial effects.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return mapConflict(err)
	}
	if err := tx.Commit(); err != nil {
		return mapConflict(err)
	}
	return nil
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.LockNotAvailable, pgerrcode.DeadlockDetected, pgerrcode.SerializationFailure:
			return errs.ErrConcurrencyConflict
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
