package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
	"github.com/cotne998/eCommerce-product-page/pkg/circuitbreaker"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, breaker *circuitbreaker.Breaker, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, breaker, logger)
}

func newKafkaPublisher(w messageWriter, breaker *circuitbreaker.Breaker, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuitbreaker.New("kafka-publisher", circuitbreaker.Options{Logger: logger})
	}
	return &KafkaPublisher{writer: w, breaker: breaker, logger: logger}
}

func (p *KafkaPublisher) PublishCheckout(ctx context.Context, r domain.Receipt) error {
	payload, err := json.Marshal(NewCheckoutCompletedEvent(r))
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(r.SessionID), // session id keeps one shopper's checkouts ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeCheckoutCompleted)},
		},
	}

	err = p.breaker.Do(func() error {
		return p.writer.WriteMessages(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("publish checkout %s: %w", r.ID, err)
	}
	p.logger.Debug("checkout event published", zap.String("checkout_id", r.ID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
