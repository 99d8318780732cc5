package store

import (
	"context"
	"errors"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps storefront sessions between requests. Implementations
// hand out copies: mutating a returned session has no effect until Save.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}
