package repository

import (
	"context"
	"errors"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

var (
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrDuplicateReceipt means a receipt with the same id is already stored.
	ErrDuplicateReceipt = errors.New("receipt already exists")
)

// ReceiptRepository defines the storage of completed checkouts.
// Consumers define this interface, not the concrete backends.
// SaveReceipt fails with domain.ErrInvalidReceipt or ErrDuplicateReceipt
// when retrying cannot help.
type ReceiptRepository interface {
	SaveReceipt(ctx context.Context, receipt *domain.Receipt) error
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, sessionID string) ([]*domain.Receipt, error)
	Close() error
}
