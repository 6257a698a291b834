package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

// Ledger owns loan records and the at-most-one-active-loan rule. Writes run
// inside an Atomic unit; reads go straight to the pool.
type Ledger struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewLedger(db *sqlx.DB, log *zap.Logger) (*Ledger, error) {
	return &Ledger{
		db:  db,
		log: log.Named("ledger"),
	}, nil
}

const transactionColumns = `id, transaction_uid, user_id, book_id, type, status, borrowed_at, due_date, returned_at, notes, created_at, updated_at`

func (l *Ledger) HasActiveLoan(ctx context.Context, q sqlx.QueryerContext, userID, bookID int64) (bool, error) {
	query := fmt.Sprintf(`select exists(select 1 from %s where user_id = $1 and book_id = $2 and status = $3)`, transactionsTableName)

	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, query, userID, bookID, model.StatusActive); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateActiveLoan is check-and-insert in one statement: the partial unique
// index on (user_id, book_id) where status = 'ACTIVE' rejects the losing side
// of a same-pair race.
func (l *Ledger) CreateActiveLoan(ctx context.Context, tx *sqlx.Tx, userID, bookID int64, now, due time.Time) (model.Transaction, error) {
	query, args, err := qb.Insert(transactionsTableName).
		Columns("transaction_uid", "user_id", "book_id", "type", "status", "borrowed_at", "due_date", "created_at", "updated_at").
		Values(uuid.New(), userID, bookID, model.TypeBorrow, model.StatusActive, now, due, now, now).
		Suffix("returning " + transactionColumns).
		ToSql()
	if err != nil {
		return model.Transaction{}, err
	}

	var trx model.Transaction
	if err := tx.GetContext(ctx, &trx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Transaction{}, errs.ErrDuplicateActiveLoan
		}
		l.log.Error("CreateActiveLoan", zap.String("q", query), zap.Any("args", args))
		return model.Transaction{}, err
	}
	return trx, nil
}

func (l *Ledger) CompleteActiveLoan(ctx context.Context, tx *sqlx.Tx, userID, bookID int64, now time.Time) (model.Transaction, error) {
	q := fmt.Sprintf(`update %s
	set status = $1, returned_at = $2, updated_at = $2
	where user_id = $3 and book_id = $4 and status = $5
	returning `+transactionColumns, transactionsTableName)

	var trx model.Transaction
	if err := tx.GetContext(ctx, &trx, q, model.StatusCompleted, now, userID, bookID, model.StatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, errs.ErrNoActiveLoan
		}
		return model.Transaction{}, err
	}
	return trx, nil
}

func (l *Ledger) List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	q := qb.Select(transactionColumns).
		From(transactionsTableName).
		OrderBy("created_at desc, id desc")

	if f.UserID != 0 {
		q = q.Where(sq.Eq{"user_id": f.UserID})
	}
	if f.BookID != 0 {
		q = q.Where(sq.Eq{"book_id": f.BookID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Transaction
	if err := l.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (l *Ledger) ListOverdue(ctx context.Context, now time.Time) ([]model.Transaction, error) {
	query, args, err := qb.Select(transactionColumns).
		From(transactionsTableName).
		Where(sq.Eq{"status": model.StatusActive}).
		Where(sq.Lt{"due_date": now}).
		OrderBy("due_date").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.Transaction
	if err := l.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (l *Ledger) GetByUID(ctx context.Context, uid string) (model.Transaction, error) {
	query, args, err := qb.Select(transactionColumns).
		From(transactionsTableName).
		Where(sq.Eq{"transaction_uid": uid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Transaction{}, err
	}

	var trx model.Transaction
	if err := l.db.GetContext(ctx, &trx, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, errs.ErrNotFound
		}
		return model.Transaction{}, err
	}
	return trx, nil
}
