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

type Users struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewUsers(db *sqlx.DB, log *zap.Logger) (*Users, error) {
	return &Users{
		db:  db,
		log: log.Named("users"),
	}, nil
}

const userColumns = `id, username, email, full_name, created_at`

func (u *Users) Create(ctx context.Context, req model.RegisterUserRequest) (model.User, error) {
	query, args, err := qb.Insert(usersTableName).
		Columns("username", "email", "full_name").
		Values(req.Username, req.Email, req.FullName).
		Suffix("returning " + userColumns).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := u.db.GetContext(ctx, &user, query, args...); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, errs.ErrDuplicateUser
		}
		u.log.Error("Create", zap.String("q", query), zap.Any("args", args))
		return model.User{}, err
	}
	return user, nil
}

func (u *Users) Get(ctx context.Context, id int64) (model.User, error) {
	query, args, err := qb.Select(userColumns).
		From(usersTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	var user model.User
	if err := u.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

func (u *Users) Exists(ctx context.Context, id int64) (bool, error) {
	q := fmt.Sprintf(`select exists(select 1 from %s where id = $1)`, usersTableName)

	var exists bool
	if err := u.db.GetContext(ctx, &exists, q, id); err != nil {
		return false, err
	}
	return exists, nil
}

func (u *Users) List(ctx context.Context) ([]model.User, error) {
	query, args, err := qb.Select(userColumns).
		From(usersTableName).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := u.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}
