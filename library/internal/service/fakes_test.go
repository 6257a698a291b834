package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

// fakeStore is an in-memory stand-in for the repository layer. Atomic holds
// one lock for the whole closure, which is exactly the serialization the row
// lock gives concurrent transactions on the same book.
type fakeStore struct {
	mu sync.Mutex

	books  map[int64]model.Book
	users  map[int64]model.User
	avail  map[int64]*model.Availability
	active map[[2]int64]*model.Transaction
	all    []*model.Transaction
	seq    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:  make(map[int64]model.Book),
		users:  make(map[int64]model.User),
		avail:  make(map[int64]*model.Availability),
		active: make(map[[2]int64]*model.Transaction),
	}
}

func (f *fakeStore) addBook(b model.Book) {
	f.books[b.ID] = b
	f.avail[b.ID] = &model.Availability{Total: b.TotalCopies, Available: b.AvailableCopies}
}

func (f *fakeStore) addUser(u model.User) {
	f.users[u.ID] = u
}

func (f *fakeStore) addActiveLoan(userID, bookID int64, borrowed, due time.Time) *model.Transaction {
	f.seq++
	trx := &model.Transaction{
		ID:             f.seq,
		TransactionUID: fmt.Sprintf("uid-%d", f.seq),
		UserID:         userID,
		BookID:         bookID,
		Type:           model.TypeBorrow,
		Status:         model.StatusActive,
		BorrowedAt:     borrowed,
		DueDate:        due,
		CreatedAt:      borrowed,
		UpdatedAt:      borrowed,
	}
	f.active[[2]int64{userID, bookID}] = trx
	f.all = append(f.all, trx)
	return trx
}

func (f *fakeStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx, nil)
}

func (f *fakeStore) LockAvailability(_ context.Context, _ *sqlx.Tx, bookID int64) (model.Availability, error) {
	av, ok := f.avail[bookID]
	if !ok {
		return model.Availability{}, errs.ErrBookNotFound
	}
	return *av, nil
}

func (f *fakeStore) Decrement(_ context.Context, _ *sqlx.Tx, bookID int64) error {
	av, ok := f.avail[bookID]
	if !ok {
		return errs.ErrBookNotFound
	}
	if av.Available == 0 {
		return errs.ErrInventoryExhausted
	}
	av.Available--
	return nil
}

func (f *fakeStore) Increment(_ context.Context, _ *sqlx.Tx, bookID int64) error {
	av, ok := f.avail[bookID]
	if !ok {
		return errs.ErrBookNotFound
	}
	if av.Available < av.Total {
		av.Available++
	}
	return nil
}

func (f *fakeStore) HasActiveLoan(_ context.Context, _ sqlx.QueryerContext, userID, bookID int64) (bool, error) {
	_, ok := f.active[[2]int64{userID, bookID}]
	return ok, nil
}

func (f *fakeStore) CreateActiveLoan(_ context.Context, _ *sqlx.Tx, userID, bookID int64, now, due time.Time) (model.Transaction, error) {
	if _, ok := f.active[[2]int64{userID, bookID}]; ok {
		return model.Transaction{}, errs.ErrDuplicateActiveLoan
	}
	return *f.addActiveLoan(userID, bookID, now, due), nil
}

func (f *fakeStore) CompleteActiveLoan(_ context.Context, _ *sqlx.Tx, userID, bookID int64, now time.Time) (model.Transaction, error) {
	trx, ok := f.active[[2]int64{userID, bookID}]
	if !ok {
		return model.Transaction{}, errs.ErrNoActiveLoan
	}
	delete(f.active, [2]int64{userID, bookID})
	trx.Status = model.StatusCompleted
	returned := now
	trx.ReturnedAt = &returned
	trx.UpdatedAt = now
	return *trx, nil
}

func (f *fakeStore) List(_ context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Transaction
	for _, trx := range f.all {
		if filter.UserID != 0 && trx.UserID != filter.UserID {
			continue
		}
		if filter.BookID != 0 && trx.BookID != filter.BookID {
			continue
		}
		if filter.Status != "" && trx.Status != filter.Status {
			continue
		}
		out = append(out, *trx)
	}
	return out, nil
}

func (f *fakeStore) ListOverdue(_ context.Context, now time.Time) ([]model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Transaction
	for _, trx := range f.all {
		if trx.IsOverdue(now) {
			out = append(out, *trx)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByUID(_ context.Context, uid string) (model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, trx := range f.all {
		if trx.TransactionUID == uid {
			return *trx, nil
		}
	}
	return model.Transaction{}, errs.ErrNotFound
}

type fakeUsers struct{ store *fakeStore }

func (f fakeUsers) Get(_ context.Context, id int64) (model.User, error) {
	u, ok := f.store.users[id]
	if !ok {
		return model.User{}, errs.ErrUserNotFound
	}
	return u, nil
}

type fakeBooks struct{ store *fakeStore }

func (f fakeBooks) Get(_ context.Context, id int64) (model.Book, error) {
	b, ok := f.store.books[id]
	if !ok {
		return model.Book{}, errs.ErrBookNotFound
	}
	return b, nil
}

type fakeQueue struct {
	mu   sync.Mutex
	err  error
	msgs []any
}

func (q *fakeQueue) Enqueue(_ string, v any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, v)
	return nil
}

func (q *fakeQueue) published() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]any(nil), q.msgs...)
}
