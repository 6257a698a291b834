package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/kafka"
)

type BooksRepository interface {
	Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	List(ctx context.Context, f model.BookFilter) (model.ListBooks, error)
	Categories(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id int64) error
}

type BookService struct {
	log   *zap.Logger
	repo  BooksRepository
	queue Publisher
}

func NewBookService(repo BooksRepository, queue Publisher, log *zap.Logger) *BookService {
	return &BookService{
		log:   log.Named("books"),
		repo:  repo,
		queue: queue,
	}
}

func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book, err := s.repo.Create(ctx, req)
	if err != nil {
		return model.Book{}, err
	}

	go func() {
		ev := kafka.BookAddedEvent{
			Type:        kafka.EventBookAdded,
			BookID:      book.ID,
			Title:       book.Title,
			Author:      book.Author,
			ISBN:        book.ISBN,
			Category:    book.Category,
			TotalCopies: book.TotalCopies,
			Timestamp:   time.Now().UTC(),
		}
		if err := s.queue.Enqueue(kafka.CirculationTopic, ev); err != nil {
			s.log.Error("publish book added", zap.Error(err))
		}
	}()
	return book, nil
}

func (s *BookService) Get(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *BookService) List(ctx context.Context, f model.BookFilter) (model.ListBooks, error) {
	return s.repo.List(ctx, f)
}

func (s *BookService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
