package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bibliotek/circulation/library/internal/model"
	"github.com/bibliotek/circulation/pkg/kafka"
)

type UsersRepository interface {
	Create(ctx context.Context, req model.RegisterUserRequest) (model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.User, error)
}

type UserService struct {
	log   *zap.Logger
	repo  UsersRepository
	queue Publisher
}

func NewUserService(repo UsersRepository, queue Publisher, log *zap.Logger) *UserService {
	return &UserService{
		log:   log.Named("users"),
		repo:  repo,
		queue: queue,
	}
}

func (s *UserService) Register(ctx context.Context, req model.RegisterUserRequest) (model.User, error) {
	user, err := s.repo.Create(ctx, req)
	if err != nil {
		return model.User{}, err
	}

	go func() {
		ev := kafka.UserRegisteredEvent{
			Type:      kafka.EventUserRegistered,
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			Timestamp: time.Now().UTC(),
		}
		if err := s.queue.Enqueue(kafka.CirculationTopic, ev); err != nil {
			s.log.Error("publish user registered", zap.Error(err))
		}
	}()
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}
