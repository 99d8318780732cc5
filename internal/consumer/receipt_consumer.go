// Package consumer projects checkout events from Kafka into a receipt store.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
	"github.com/cotne998/eCommerce-product-page/internal/publisher"
	"github.com/cotne998/eCommerce-product-page/internal/repository"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReceiptConsumer records a receipt for every checkout event it reads.
// Events are committed only after they are handled, and a receipt that
// already exists is skipped.
type ReceiptConsumer struct {
	repo       repository.ReceiptRepository
	reader     messageReader
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewReceiptConsumer(repo repository.ReceiptRepository, brokers []string, topic, groupID string, logger *zap.Logger) *ReceiptConsumer {
	if topic == "" {
		topic = publisher.DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newReceiptConsumer(repo, reader, logger)
}

func newReceiptConsumer(repo repository.ReceiptRepository, reader messageReader, logger *zap.Logger) *ReceiptConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptConsumer{repo: repo, reader: reader, logger: logger, retryDelay: time.Second}
}

// Run consumes until ctx is cancelled.
func (c *ReceiptConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		// the reader moves past msg, so a failed store write is retried here
		for {
			err := c.handle(ctx, msg)
			if err == nil {
				break
			}
			c.logger.Error("handle checkout event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

func (c *ReceiptConsumer) Close() error {
	return c.reader.Close()
}

var errPoisonMessage = errors.New("undecodable checkout event")

// handle returns nil for messages that should be committed, including ones
// that can never be processed. Only transient store failures are returned.
func (c *ReceiptConsumer) handle(ctx context.Context, msg kafka.Message) error {
	if t := eventType(msg); t != "" && t != publisher.EventTypeCheckoutCompleted {
		c.logger.Debug("skipping event", zap.String("event_type", t))
		return nil
	}

	receipt, err := decode(msg.Value)
	if err != nil {
		c.logger.Warn("dropping checkout event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}

	_, err = c.repo.GetReceipt(ctx, receipt.ID)
	if err == nil {
		c.logger.Debug("receipt already recorded, skipping", zap.String("checkout_id", receipt.ID))
		return nil
	}
	if !errors.Is(err, repository.ErrReceiptNotFound) {
		return err
	}

	err = c.repo.SaveReceipt(ctx, &receipt)
	switch {
	case errors.Is(err, repository.ErrDuplicateReceipt):
		c.logger.Debug("receipt already recorded, skipping", zap.String("checkout_id", receipt.ID))
		return nil
	case errors.Is(err, domain.ErrInvalidReceipt):
		c.logger.Warn("dropping checkout event", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	case err != nil:
		return err
	}
	c.logger.Info("receipt recorded",
		zap.String("checkout_id", receipt.ID),
		zap.String("session_id", receipt.SessionID))
	return nil
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func decode(value []byte) (domain.Receipt, error) {
	var event publisher.CheckoutCompletedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: %v", errPoisonMessage, err)
	}
	r, err := event.Receipt()
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: %v", errPoisonMessage, err)
	}
	return r, nil
}
