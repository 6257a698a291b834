package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/kafka"
)

// Collaborators the engine orchestrates. Concrete implementations live in
// repository; tests substitute in-memory doubles.

type TxManager interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error
}

type InventoryStore interface {
	LockAvailability(ctx context.Context, tx *sqlx.Tx, bookID int64) (model.Availability, error)
	Decrement(ctx context.Context, tx *sqlx.Tx, bookID int64) error
	Increment(ctx context.Context, tx *sqlx.Tx, bookID int64) error
}

type CirculationLedger interface {
	HasActiveLoan(ctx context.Context, q sqlx.QueryerContext, userID, bookID int64) (bool, error)
	CreateActiveLoan(ctx context.Context, tx *sqlx.Tx, userID, bookID int64, now, due time.Time) (model.Transaction, error)
	CompleteActiveLoan(ctx context.Context, tx *sqlx.Tx, userID, bookID int64, now time.Time) (model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.Transaction, error)
	GetByUID(ctx context.Context, uid string) (model.Transaction, error)
}

type UserDirectory interface {
	Get(ctx context.Context, id int64) (model.User, error)
}

type BookCatalog interface {
	Get(ctx context.Context, id int64) (model.Book, error)
}

type Publisher interface {
	Enqueue(topic string, v any) error
}

// LoanPeriod is the fixed borrowing policy.
const LoanPeriod = 14 * 24 * time.Hour

// CirculationService coordinates borrow/return across the inventory and the
// ledger. It owns no state itself: every state change happens inside one
// Atomic unit, and events go out only after the unit commits.
type CirculationService struct {
	log       *zap.Logger
	tx        TxManager
	inventory InventoryStore
	ledger    CirculationLedger
	users     UserDirectory
	books     BookCatalog
	queue     Publisher
}

func NewCirculationService(
	tx TxManager,
	inventory InventoryStore,
	ledger CirculationLedger,
	users UserDirectory,
	books BookCatalog,
	queue Publisher,
	log *zap.Logger,
) *CirculationService {
	return &CirculationService{
		log:       log.Named("circulation"),
		tx:        tx,
		inventory: inventory,
		ledger:    ledger,
		users:     users,
		books:     books,
		queue:     queue,
	}
}

// Borrow checks the user, the book and the availability, then creates the
// active loan and hands out a copy in one atomic unit. Exactly one of two
// racing calls on the last copy wins; the loser sees ErrInventoryExhausted.
func (s *CirculationService) Borrow(ctx context.Context, userID, bookID int64) (model.Transaction, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return model.Transaction{}, err
	}
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return model.Transaction{}, err
	}

	var trx model.Transaction
	err = s.tx.Atomic(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		av, err := s.inventory.LockAvailability(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if av.Available == 0 {
			return errs.ErrInventoryExhausted
		}

		busy, err := s.ledger.HasActiveLoan(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if busy {
			return errs.ErrDuplicateActiveLoan
		}

		now := time.Now().UTC()
		if trx, err = s.ledger.CreateActiveLoan(ctx, tx, userID, bookID, now, now.Add(LoanPeriod)); err != nil {
			return err
		}
		return s.inventory.Decrement(ctx, tx, bookID)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.publish(kafka.BookBorrowedEvent{
		Type:          kafka.EventBookBorrowed,
		TransactionID: trx.ID,
		BookID:        bookID,
		UserID:        userID,
		BookTitle:     book.Title,
		Username:      user.Username,
		Timestamp:     trx.BorrowedAt,
	})
	return trx, nil
}

// Return completes the active loan and takes the copy back in one atomic
// unit. Overdue is computed against the due date at return time; the stored
// status goes straight from ACTIVE to COMPLETED.
func (s *CirculationService) Return(ctx context.Context, userID, bookID int64) (model.Transaction, error) {
	var (
		trx        model.Transaction
		wasOverdue bool
	)
	err := s.tx.Atomic(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := s.inventory.LockAvailability(ctx, tx, bookID); err != nil {
			return err
		}

		now := time.Now().UTC()
		var err error
		if trx, err = s.ledger.CompleteActiveLoan(ctx, tx, userID, bookID, now); err != nil {
			return err
		}
		wasOverdue = now.After(trx.DueDate)
		return s.inventory.Increment(ctx, tx, bookID)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	// Enrichment is best-effort: a failed lookup only drops the event.
	user, uErr := s.users.Get(ctx, userID)
	book, bErr := s.books.Get(ctx, bookID)
	if uErr != nil || bErr != nil {
		s.log.Warn("return event enrichment",
			zap.NamedError("user", uErr),
			zap.NamedError("book", bErr))
		return trx, nil
	}

	ts := time.Now().UTC()
	if trx.ReturnedAt != nil {
		ts = *trx.ReturnedAt
	}
	s.publish(kafka.BookReturnedEvent{
		Type:          kafka.EventBookReturned,
		TransactionID: trx.ID,
		BookID:        bookID,
		UserID:        userID,
		BookTitle:     book.Title,
		Username:      user.Username,
		WasOverdue:    wasOverdue,
		Timestamp:     ts,
	})
	return trx, nil
}

func (s *CirculationService) Transactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	return s.ledger.List(ctx, f)
}

func (s *CirculationService) OverdueTransactions(ctx context.Context) ([]model.Transaction, error) {
	return s.ledger.ListOverdue(ctx, time.Now().UTC())
}

func (s *CirculationService) Transaction(ctx context.Context, uid string) (model.Transaction, error) {
	return s.ledger.GetByUID(ctx, uid)
}

// publish is fire-and-forget: analytics freshness is not part of the
// consistency contract, so failures are logged and dropped.
func (s *CirculationService) publish(v any) {
	go func() {
		if err := s.queue.Enqueue(kafka.CirculationTopic, v); err != nil {
			s.log.Error("publish circulation event", zap.Error(err))
		}
	}()
}
