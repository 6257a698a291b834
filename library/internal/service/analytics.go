package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/kafka"
)

type AnalyticsRepository interface {
	RecordEvent(ctx context.Context, ev model.Event) error
	RecentEvents(ctx context.Context, limit int) ([]model.Event, error)
	BookStats(ctx context.Context) (model.BookStats, error)
	BooksByCategory(ctx context.Context) (map[string]int64, error)
	CirculationStats(ctx context.Context, now time.Time) (model.CirculationStats, error)
	PopularBooks(ctx context.Context, limit int) ([]model.PopularBook, error)
	CountUsers(ctx context.Context) (int64, error)
}

type AnalyticsService struct {
	log  *zap.Logger
	repo AnalyticsRepository
}

func NewAnalyticsService(repo AnalyticsRepository, log *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		log:  log.Named("analytics"),
		repo: repo,
	}
}

// Ingest lands a circulation event in the read-side events table.
func (s *AnalyticsService) Ingest(ctx context.Context, rec kafka.EventRecord) error {
	return s.repo.RecordEvent(ctx, model.Event{
		Type:          string(rec.Type),
		TransactionID: rec.TransactionID,
		UserID:        rec.UserID,
		BookID:        rec.BookID,
		BookTitle:     rec.BookTitle,
		Username:      rec.Username,
		WasOverdue:    rec.WasOverdue,
		OccurredAt:    rec.Timestamp,
	})
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (model.DashboardReport, error) {
	now := time.Now().UTC()

	books, err := s.repo.BookStats(ctx)
	if err != nil {
		return model.DashboardReport{}, err
	}
	circulation, err := s.repo.CirculationStats(ctx, now)
	if err != nil {
		return model.DashboardReport{}, err
	}
	byCategory, err := s.repo.BooksByCategory(ctx)
	if err != nil {
		return model.DashboardReport{}, err
	}
	popular, err := s.repo.PopularBooks(ctx, 10)
	if err != nil {
		return model.DashboardReport{}, err
	}
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return model.DashboardReport{}, err
	}

	return model.DashboardReport{
		Books:           books,
		Circulation:     circulation,
		BooksByCategory: byCategory,
		PopularBooks:    popular,
		TotalUsers:      users,
		GeneratedAt:     now,
	}, nil
}

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

func (s *AnalyticsService) Activity(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.repo.RecentEvents(ctx, limit)
}
