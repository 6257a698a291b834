package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/model"
)

// Analytics is the read side: the events table fed from the circulation
// topic plus aggregates computed straight off the circulation tables.
type Analytics struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewAnalytics(db *sqlx.DB, log *zap.Logger) (*Analytics, error) {
	return &Analytics{
		db:  db,
		log: log.Named("analytics"),
	}, nil
}

func (a *Analytics) RecordEvent(ctx context.Context, ev model.Event) error {
	query, args, err := qb.Insert(eventsTableName).
		Columns("event_type", "transaction_id", "user_id", "book_id", "book_title", "username", "was_overdue", "occurred_at").
		Values(ev.Type, ev.TransactionID, ev.UserID, ev.BookID, ev.BookTitle, ev.Username, ev.WasOverdue, ev.OccurredAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, query, args...)
	return err
}

func (a *Analytics) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	q := fmt.Sprintf(`select id, event_type, transaction_id, user_id, book_id, book_title, username, was_overdue, occurred_at
	from %s order by occurred_at desc, id desc limit $1`, eventsTableName)

	var events []model.Event
	if err := a.db.SelectContext(ctx, &events, q, limit); err != nil {
		return nil, err
	}
	return events, nil
}

func (a *Analytics) BookStats(ctx context.Context) (model.BookStats, error) {
	q := fmt.Sprintf(`
	select count(*)                                            as total_books,
	       coalesce(sum(total_copies), 0)                      as total_copies,
	       coalesce(sum(available_copies), 0)                  as available_copies,
	       count(*) filter (where available_copies = 0)        as out_of_stock
	from %s`, booksTableName)

	var stats model.BookStats
	if err := a.db.GetContext(ctx, &stats, q); err != nil {
		return model.BookStats{}, err
	}
	stats.BorrowedCopies = stats.TotalCopies - stats.AvailableCopies
	return stats, nil
}

func (a *Analytics) BooksByCategory(ctx context.Context) (map[string]int64, error) {
	q := fmt.Sprintf(`select category, count(*) from %s group by category`, booksTableName)

	rows, err := a.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCategory := make(map[string]int64)
	for rows.Next() {
		var (
			category string
			count    int64
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		byCategory[category] = count
	}
	return byCategory, rows.Err()
}

func (a *Analytics) CirculationStats(ctx context.Context, now time.Time) (model.CirculationStats, error) {
	q := fmt.Sprintf(`
	select count(*)                                                                    as total,
	       count(*) filter (where status = 'ACTIVE')                                   as active,
	       count(*) filter (where status = 'COMPLETED')                                as completed,
	       count(*) filter (where status = 'ACTIVE' and due_date < $1)                 as overdue,
	       count(*) filter (where created_at >= date_trunc('month', $1::timestamptz))  as this_month,
	       coalesce(avg(extract(epoch from (returned_at - borrowed_at)) / 86400)
	                filter (where returned_at is not null), 0)                         as avg_borrow_days
	from %s`, transactionsTableName)

	var stats model.CirculationStats
	if err := a.db.GetContext(ctx, &stats, q, now); err != nil {
		return model.CirculationStats{}, err
	}
	return stats, nil
}

func (a *Analytics) PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error) {
	q := fmt.Sprintf(`
	select t.book_id, b.title, count(*) as borrow_count
	from %s t
	join %s b on b.id = t.book_id
	where t.type = 'BORROW'
	group by t.book_id, b.title
	order by borrow_count desc, t.book_id
	limit $1`, transactionsTableName, booksTableName)

	var books []model.PopularBook
	if err := a.db.SelectContext(ctx, &books, q, limit); err != nil {
		return nil, err
	}
	return books, nil
}

func (a *Analytics) CountUsers(ctx context.Context) (int64, error) {
	q := fmt.Sprintf(`select count(*) from %s`, usersTableName)

	var count int64
	if err := a.db.GetContext(ctx, &count, q); err != nil {
		return 0, err
	}
	return count, nil
}
