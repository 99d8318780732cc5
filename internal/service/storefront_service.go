package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
	"github.com/cotne998/eCommerce-product-page/internal/publisher"
	"github.com/cotne998/eCommerce-product-page/internal/repository"
	"github.com/cotne998/eCommerce-product-page/internal/store"
)

const (
	DefaultAckDuration    = 700 * time.Millisecond
	DefaultMenuCloseDelay = 200 * time.Millisecond

	lockStripes = 64
)

type Options struct {
	// AckDuration is how long the "item added" and "thank you" banners stay up.
	AckDuration time.Duration
	// MenuCloseDelay is the length of the menu exit transition.
	MenuCloseDelay time.Duration
	// ResetQuantityOnCheckout zeroes the stepper after a checkout.
	ResetQuantityOnCheckout bool

	Now    func() time.Time
	Logger *zap.Logger
}

// StorefrontService owns every session and applies the page operations to it.
// Receipts and events are optional; checkout works without them.
type StorefrontService struct {
	sessions store.SessionStore
	receipts repository.ReceiptRepository
	events   publisher.Publisher
	product  domain.Product
	opts     Options
	logger   *zap.Logger

	sfg   singleflight.Group // coalesces concurrent loads of one session
	locks [lockStripes]sync.Mutex
}

func NewStorefrontService(
	sessions store.SessionStore,
	receipts repository.ReceiptRepository,
	events publisher.Publisher,
	product domain.Product,
	opts Options,
) *StorefrontService {
	if opts.AckDuration <= 0 {
		opts.AckDuration = DefaultAckDuration
	}
	if opts.MenuCloseDelay <= 0 {
		opts.MenuCloseDelay = DefaultMenuCloseDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontService{
		sessions: sessions,
		receipts: receipts,
		events:   events,
		product:  product.Clone(),
		opts:     opts,
		logger:   logger,
	}
}

func (s *StorefrontService) Product() domain.Product {
	return s.product.Clone()
}

// AckDuration is exposed so clients can schedule a refresh when a banner expires.
func (s *StorefrontService) AckDuration() time.Duration {
	return s.opts.AckDuration
}

func (s *StorefrontService) MenuCloseDelay() time.Duration {
	return s.opts.MenuCloseDelay
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id could have come from NewSessionID.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Session returns the view of the session, creating the session if needed.
func (s *StorefrontService) Session(ctx context.Context, id string) (domain.View, error) {
	sess, created, err := s.load(ctx, id, true)
	if err != nil {
		return domain.View{}, err
	}
	if created {
		if sess, err = s.create(ctx, id); err != nil {
			return domain.View{}, err
		}
	}
	return sess.View(s.product, s.opts.Now()), nil
}

// create saves a new session unless another request saved one first.
func (s *StorefrontService) create(ctx context.Context, id string) (*domain.Session, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	existing, err := s.sessions.Get(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrSessionNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := domain.NewSession(id, s.opts.Now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Debug("session created", zap.String("session_id", id))
	return sess, nil
}

// Navigate remounts the product view, resetting its gallery, and records
// category when it names a navigation entry. Any other value is ignored.
func (s *StorefrontService) Navigate(ctx context.Context, id, category string) (domain.View, error) {
	return s.mutate(ctx, id, "navigate", func(sess *domain.Session, _ time.Time) error {
		if c, ok := domain.LookupCategory(category); ok {
			sess.Menu.ActiveCategory = c
		}
		sess.Remount()
		return nil
	})
}

func (s *StorefrontService) NextImage(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "next_image", func(sess *domain.Session, _ time.Time) error {
		sess.Gallery.Next(s.product.GallerySize())
		return nil
	})
}

func (s *StorefrontService) PrevImage(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "prev_image", func(sess *domain.Session, _ time.Time) error {
		sess.Gallery.Prev(s.product.GallerySize())
		return nil
	})
}

func (s *StorefrontService) SelectThumbnail(ctx context.Context, id string, index int) (domain.View, error) {
	return s.mutate(ctx, id, "select_thumbnail", func(sess *domain.Session, _ time.Time) error {
		return sess.Gallery.Select(index, s.product.GallerySize())
	})
}

func (s *StorefrontService) IncrementQuantity(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "increment_quantity", func(sess *domain.Session, _ time.Time) error {
		sess.IncrementQuantity()
		return nil
	})
}

func (s *StorefrontService) DecrementQuantity(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "decrement_quantity", func(sess *domain.Session, _ time.Time) error {
		sess.DecrementQuantity()
		return nil
	})
}

func (s *StorefrontService) AddToCart(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "add_to_cart", func(sess *domain.Session, now time.Time) error {
		if !sess.AddToCart(s.product, now, s.opts.AckDuration) {
			s.logger.Debug("add to cart with zero quantity cleared the cart", zap.String("session_id", id))
		}
		return nil
	})
}

func (s *StorefrontService) RemoveCartItem(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "remove_cart_item", func(sess *domain.Session, _ time.Time) error {
		sess.RemoveCartItem()
		return nil
	})
}

func (s *StorefrontService) ToggleCart(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "toggle_cart", func(sess *domain.Session, _ time.Time) error {
		sess.ToggleCart()
		return nil
	})
}

func (s *StorefrontService) DismissCart(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "dismiss_cart", func(sess *domain.Session, _ time.Time) error {
		sess.DismissCart()
		return nil
	})
}

func (s *StorefrontService) OpenMenu(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "open_menu", func(sess *domain.Session, _ time.Time) error {
		sess.Menu.Show()
		return nil
	})
}

func (s *StorefrontService) CloseMenu(ctx context.Context, id string) (domain.View, error) {
	return s.mutate(ctx, id, "close_menu", func(sess *domain.Session, now time.Time) error {
		sess.Menu.Close(now, s.opts.MenuCloseDelay)
		return nil
	})
}

func (s *StorefrontService) SelectCategory(ctx context.Context, id, category string) (domain.View, error) {
	return s.mutate(ctx, id, "select_category", func(sess *domain.Session, now time.Time) error {
		return sess.SelectCategory(category, now, s.opts.MenuCloseDelay)
	})
}

// Checkout empties the cart and shows the thank-you banner. Recording the
// receipt and publishing the event happen after the session is saved and
// never fail the checkout. A checkout at quantity zero bought nothing, so it
// records no receipt and publishes no event.
func (s *StorefrontService) Checkout(ctx context.Context, id string) (domain.View, error) {
	var receipt domain.Receipt
	view, err := s.mutate(ctx, id, "checkout", func(sess *domain.Session, now time.Time) error {
		r, err := sess.Checkout(now, s.opts.AckDuration, s.opts.ResetQuantityOnCheckout)
		if err != nil {
			return err
		}
		r.ID = uuid.NewString()
		receipt = r
		return nil
	})
	if err != nil {
		return view, err
	}

	s.logger.Info("checkout completed",
		zap.String("session_id", id),
		zap.String("checkout_id", receipt.ID),
		zap.Int("quantity", receipt.Quantity),
		zap.String("total", receipt.Total.String()))

	if err := receipt.Validate(); err != nil {
		s.logger.Info("checkout recorded nothing",
			zap.String("checkout_id", receipt.ID),
			zap.Error(err))
		return view, nil
	}

	if s.receipts != nil {
		if err := s.receipts.SaveReceipt(ctx, &receipt); err != nil {
			s.logger.Error("save receipt failed", zap.String("checkout_id", receipt.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		if err := s.events.PublishCheckout(ctx, receipt); err != nil {
			s.logger.Error("publish checkout failed", zap.String("checkout_id", receipt.ID), zap.Error(err))
		}
	}
	return view, nil
}

// Receipts lists the checkouts recorded for a session.
func (s *StorefrontService) Receipts(ctx context.Context, id string) ([]*domain.Receipt, error) {
	if s.receipts == nil {
		return nil, ErrReceiptsDisabled
	}
	receipts, err := s.receipts.ListReceipts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, nil
}

func (s *StorefrontService) mutate(ctx context.Context, id, op string, fn func(*domain.Session, time.Time) error) (domain.View, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	sess, _, err := s.load(ctx, id, false)
	if err != nil {
		return domain.View{}, err
	}

	now := s.opts.Now()
	if err := fn(sess, now); err != nil {
		s.logger.Debug("operation rejected", zap.String("op", op), zap.String("session_id", id), zap.Error(err))
		return sess.View(s.product, now), err
	}
	sess.Touch(now)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return domain.View{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Debug("session updated",
		zap.String("op", op),
		zap.String("session_id", id),
		zap.Int64("version", sess.Version))
	return sess.View(s.product, now), nil
}

// load fetches the session or builds a new one. Writers hold the stripe lock
// and read the store directly; readers share one in-flight fetch per session.
// The returned session is a private copy the caller may mutate.
func (s *StorefrontService) load(ctx context.Context, id string, shared bool) (*domain.Session, bool, error) {
	type result struct {
		session *domain.Session
		created bool
	}
	fetch := func() (interface{}, error) {
		sess, err := s.sessions.Get(ctx, id)
		if errors.Is(err, store.ErrSessionNotFound) {
			return result{session: domain.NewSession(id, s.opts.Now()), created: true}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		return result{session: sess}, nil
	}

	var (
		v   interface{}
		err error
	)
	if shared {
		v, err, _ = s.sfg.Do(id, fetch)
	} else {
		v, err = fetch()
	}
	if err != nil {
		return nil, false, err
	}
	r := v.(result)
	return r.session.Clone(), r.created, nil
}

func (s *StorefrontService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%lockStripes]
}
