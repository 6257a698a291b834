package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

// Inventory owns the per-book copy counters. All three methods run inside an
// Atomic unit; nothing else mutates available_copies.
type Inventory struct {
	log *zap.Logger
}

func NewInventory(log *zap.Logger) *Inventory {
	return &Inventory{log: log.Named("inventory")}
}

// LockAvailability takes the row lock that serializes circulation on a single
// book. NOWAIT keeps the wait bounded: a lock held elsewhere surfaces as a
// retryable conflict instead of blocking the caller.
func (i *Inventory) LockAvailability(ctx context.Context, tx *sqlx.Tx, bookID int64) (model.Availability, error) {
	q := fmt.Sprintf(`select total_copies, available_copies from %s where id = $1 for update nowait`, booksTableName)

	var av model.Availability
	if err := tx.GetContext(ctx, &av, q, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Availability{}, errs.ErrBookNotFound
		}
		return model.Availability{}, err
	}
	return av, nil
}

// Decrement hands out one copy. The available_copies > 0 guard makes the
// update a no-op when the book is exhausted, which is reported as such.
func (i *Inventory) Decrement(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	q := fmt.Sprintf(`update %s set available_copies = available_copies - 1 where id = $1 and available_copies > 0`, booksTableName)

	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrInventoryExhausted
	}
	return nil
}

// Increment takes one copy back. The clamp at total_copies should never fire
// in correct operation; it guards against double-return bugs.
func (i *Inventory) Increment(ctx context.Context, tx *sqlx.Tx, bookID int64) error {
	q := fmt.Sprintf(`update %s set available_copies = least(available_copies + 1, total_copies) where id = $1`, booksTableName)

	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrBookNotFound
	}
	return nil
}
