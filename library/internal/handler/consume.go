package handler

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/bibliotek/circulation/pkg/kafka"
)

type ingest func(ctx context.Context, rec kafka.EventRecord) error

type Consumer struct {
	ingestHandler ingest
	log           *zap.Logger
}

func NewConsumer(ingestHandler ingest, log *zap.Logger) *Consumer {
	return &Consumer{
		ingestHandler: ingestHandler,
		log:           log.Named("consumer"),
	}
}

// Setup runs at the start of every session; the group loop re-enters it
// after each rebalance, so it must stay re-runnable.
func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			var rec kafka.EventRecord
			if err := json.Unmarshal(message.Value, &rec); err != nil {
				consumer.log.Error("unmarshal event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}

			if err := consumer.ingestHandler(context.Background(), rec); err != nil {
				consumer.log.Error("ingest event", zap.Error(err))
				continue
			}

			consumer.log.Debug("Message claimed:",
				zap.String("value", string(message.Value)),
				zap.Time("timestamp", message.Timestamp),
				zap.String("topic", message.Topic))
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
