package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

const (
	DefaultTopic = "storefront-checkouts"

	EventTypeCheckoutCompleted = "CheckoutCompleted"
)

// Publisher announces completed checkouts to downstream consumers.
type Publisher interface {
	PublishCheckout(ctx context.Context, receipt domain.Receipt) error
	Close() error
}

type eventItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"unit_price"`
}

// CheckoutCompletedEvent is the message payload. Its shape follows the
// checkout outbox payload consumed by order services.
type CheckoutCompletedEvent struct {
	CheckoutID  string          `json:"checkout_id"`
	SessionID   string          `json:"session_id"`
	Items       []eventItem     `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
	CompletedAt time.Time       `json:"completed_at"`
}

func NewCheckoutCompletedEvent(r domain.Receipt) CheckoutCompletedEvent {
	return CheckoutCompletedEvent{
		CheckoutID: r.ID,
		SessionID:  r.SessionID,
		Items: []eventItem{{
			ProductName: r.Title,
			Quantity:    r.Quantity,
			Price:       r.UnitPrice,
		}},
		TotalAmount: r.Total,
		Currency:    r.Currency,
		CompletedAt: r.CreatedAt,
	}
}

// Receipt rebuilds the receipt the event was published for.
func (e CheckoutCompletedEvent) Receipt() (domain.Receipt, error) {
	if e.CheckoutID == "" {
		return domain.Receipt{}, errors.New("checkout event without checkout_id")
	}
	if len(e.Items) != 1 {
		return domain.Receipt{}, errors.New("checkout event must carry exactly one item")
	}
	item := e.Items[0]
	currency := e.Currency
	if currency == "" {
		currency = "USD"
	}
	r := domain.Receipt{
		ID:        e.CheckoutID,
		SessionID: e.SessionID,
		Title:     item.ProductName,
		UnitPrice: item.Price,
		Quantity:  item.Quantity,
		Total:     e.TotalAmount,
		Currency:  currency,
		CreatedAt: e.CompletedAt,
	}
	if err := r.Validate(); err != nil {
		return domain.Receipt{}, err
	}
	return r, nil
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishCheckout(_ context.Context, r domain.Receipt) error {
	p.logger.Info("checkout completed",
		zap.String("event_type", EventTypeCheckoutCompleted),
		zap.String("checkout_id", r.ID),
		zap.String("session_id", r.SessionID),
		zap.Int("quantity", r.Quantity),
		zap.String("total", r.Total.String()))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
