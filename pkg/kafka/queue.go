package kafka

import (
	"encoding/json"

	"github.com/IBM/sarama"

	"github.com/bibliotek/circulation/pkg/breaker"
)

type Enqueuer interface {
	Enqueue(topic string, v any) error
}

// NewEnqueuer wraps a sync producer behind the circuit breaker so a dead
// broker sheds publishes fast instead of stalling every caller.
func NewEnqueuer(producer sarama.SyncProducer, cb *breaker.Breaker) Enqueuer {
	return &enqueuerImpl{
		producer: producer,
		cb:       cb,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
	cb       *breaker.Breaker
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return q.cb.Do(func() error {
		msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
		_, _, err := q.producer.SendMessage(msg)
		return err
	})
}
