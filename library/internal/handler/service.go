package handler

import (
	"context"

	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CirculationService interface {
	Borrow(ctx context.Context, userID, bookID int64) (model.Transaction, error)
	Return(ctx context.Context, userID, bookID int64) (model.Transaction, error)
	Transactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error)
	OverdueTransactions(ctx context.Context) ([]model.Transaction, error)
	Transaction(ctx context.Context, uid string) (model.Transaction, error)
}

type BookService interface {
	Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	List(ctx context.Context, f model.BookFilter) (model.ListBooks, error)
	Categories(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id int64) error
}

type UserService interface {
	Register(ctx context.Context, req model.RegisterUserRequest) (model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (model.DashboardReport, error)
	Activity(ctx context.Context, limit int) ([]model.Event, error)
}

var (
	_ CirculationService = (*service.CirculationService)(nil)
	_ BookService        = (*service.BookService)(nil)
	_ UserService        = (*service.UserService)(nil)
	_ AnalyticsService   = (*service.AnalyticsService)(nil)
)
