package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/errs"
	"github.com/bibliotek/circulation/library/internal/model"
)

// Books is the catalog store. Copy counters are mutated only through
// Inventory; Create seeds available_copies = total_copies.
type Books struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewBooks(db *sqlx.DB, log *zap.Logger) (*Books, error) {
	return &Books{
		db:  db,
		log: log.Named("books"),
	}, nil
}

const bookColumns = `id, isbn, title, author, category, total_copies, available_copies, created_at`

func (b *Books) Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	query, args, err := qb.Insert(booksTableName).
		Columns("isbn", "title", "author", "category", "total_copies", "available_copies").
		Values(req.ISBN, req.Title, req.Author, req.Category, req.TotalCopies, req.TotalCopies).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := b.db.GetContext(ctx, &book, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Book{}, errs.ErrDuplicateISBN
		}
		b.log.Error("Create", zap.String("q", query), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
}

func (b *Books) Get(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := b.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrBookNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (b *Books) List(ctx context.Context, f model.BookFilter) (model.ListBooks, error) {
	q := qb.Select(bookColumns).
		From(booksTableName).
		OrderBy("title, id")

	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Keyword != "" {
		pattern := "%" + f.Keyword + "%"
		q = q.Where(sq.Or{sq.ILike{"title": pattern}, sq.ILike{"author": pattern}})
	}
	if f.AvailableOnly {
		q = q.Where(sq.Gt{"available_copies": 0})
	}
	if f.Page != 0 && f.Size != 0 {
		q = q.Limit(uint64(f.Size)).Offset(uint64((f.Page - 1) * f.Size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListBooks{}, err
	}

	var books []model.Book
	if err := b.db.SelectContext(ctx, &books, query, args...); err != nil {
		return model.ListBooks{}, err
	}

	return model.ListBooks{
		Paging: model.Paging{
			Page:          f.Page,
			PageSize:      f.Size,
			TotalElements: len(books),
		},
		Items: books,
	}, nil
}

func (b *Books) Categories(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf(`select distinct category from %s order by category`, booksTableName)

	var categories []string
	if err := b.db.SelectContext(ctx, &categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}

func (b *Books) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.Delete(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		// transactions keep a FK on book_id, so a book with circulation
		// history cannot be removed
		if isForeignKeyViolation(err) {
			return errs.ErrBookInUse
		}
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
