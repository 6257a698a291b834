package app

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bibliotek/circulation/library/config"
	"github.com/bibliotek/circulation/library/internal/handler"
	"github.com/bibliotek/circulation/library/internal/repository"
	"github.com/bibliotek/circulation/library/internal/server"
	"github.com/bibliotek/circulation/library/internal/service"
	"github.com/bibliotek/circulation/library/migrations"
	"github.com/bibliotek/circulation/pkg/breaker"
	"github.com/bibliotek/circulation/pkg/kafka"
	"github.com/bibliotek/circulation/pkg/logger"
	"github.com/bibliotek/circulation/pkg/postgres"
)

const (
	publishWindow    = 10
	publishCooldown  = 30 * time.Second
	publishThreshold = 0.5
	publishRecovery  = 3
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "library")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	defer db.Close()

	store, err := repository.NewStore(db, log)
	if err != nil {
		log.Fatal("store", zap.Error(err))
	}
	inventory := repository.NewInventory(log)
	ledger, err := repository.NewLedger(db, log)
	if err != nil {
		log.Fatal("ledger", zap.Error(err))
	}
	booksRepo, err := repository.NewBooks(db, log)
	if err != nil {
		log.Fatal("books repo", zap.Error(err))
	}
	usersRepo, err := repository.NewUsers(db, log)
	if err != nil {
		log.Fatal("users repo", zap.Error(err))
	}
	analyticsRepo, err := repository.NewAnalytics(db, log)
	if err != nil {
		log.Fatal("analytics repo", zap.Error(err))
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal("kafka.NewProducer", zap.Error(err))
	}
	defer producer.Close() //nolint:errcheck
	queue := kafka.NewEnqueuer(producer,
		breaker.New(publishWindow, publishCooldown, publishThreshold, publishRecovery))

	circulationSvc := service.NewCirculationService(store, inventory, ledger, usersRepo, booksRepo, queue, log)
	bookSvc := service.NewBookService(booksRepo, queue, log)
	userSvc := service.NewUserService(usersRepo, queue, log)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, log)

	consumer, err := kafka.NewConsumer(cfg.Kafka, kafka.AnalyticsConsumerGroup)
	if err != nil {
		log.Fatal("kafka.NewConsumer", zap.Error(err))
	}

	h := handler.New(circulationSvc, bookSvc, userSvc, analyticsSvc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server run")
		}
		return nil
	})
	g.Go(func() error {
		return kafka.Consume(ctx, consumer, handler.NewConsumer(analyticsSvc.Ingest, log), kafka.CirculationTopic)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Debug("Graceful shutdown")

		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Stop(closeCtx); err != nil {
			log.Error("srv.Stop", zap.Error(err))
		}
		return consumer.Close()
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}
