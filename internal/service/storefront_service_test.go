package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cotne998/eCommerce-product-page/internal/catalog"
	"github.com/cotne998/eCommerce-product-page/internal/domain"
	"github.com/cotne998/eCommerce-product-page/internal/repository"
	"github.com/cotne998/eCommerce-product-page/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockReceipts struct {
	mu       sync.Mutex
	receipts []*domain.Receipt
	err      error
}

func (m *mockReceipts) SaveReceipt(_ context.Context, r *domain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.receipts = append(m.receipts, r)
	return nil
}

func (m *mockReceipts) GetReceipt(_ context.Context, id string) (*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrReceiptNotFound
}

func (m *mockReceipts) ListReceipts(_ context.Context, sessionID string) ([]*domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Receipt
	for _, r := range m.receipts {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockReceipts) Close() error { return nil }

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.Receipt
	err    error
}

func (m *mockPublisher) PublishCheckout(_ context.Context, r domain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, r)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type failingStore struct {
	store.SessionStore
	err error
}

func (f failingStore) Get(context.Context, string) (*domain.Session, error) {
	return nil, f.err
}

type testEnv struct {
	svc      *StorefrontService
	clock    *fakeClock
	sessions *store.MemoryStore
	receipts *mockReceipts
	events   *mockPublisher
}

func setupService(t *testing.T, opts Options) *testEnv {
	clock := newFakeClock()
	sessions := store.NewMemoryStore(time.Hour, time.Hour)
	t.Cleanup(func() { sessions.Close() })
	receipts := &mockReceipts{}
	events := &mockPublisher{}
	opts.Now = clock.Now
	return &testEnv{
		svc:      NewStorefrontService(sessions, receipts, events, catalog.Product(), opts),
		clock:    clock,
		sessions: sessions,
		receipts: receipts,
		events:   events,
	}
}

const sid = "6f1c1d9e-8d0e-4a43-9a3e-0c6f2b1a7d11"

func TestSession_CreatesAndPersists(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, sid, view.SessionID)
	assert.Equal(t, 0, view.Quantity)
	assert.Nil(t, view.Cart)
	assert.Equal(t, domain.MenuHidden, view.Menu)
	assert.Equal(t, "/images/image-product-1.jpg", view.SliderImage)
	assert.Equal(t, 1, env.sessions.Len())
}

func TestDecrement_AtZeroIsNoop(t *testing.T) {
	env := setupService(t, Options{})

	view, err := env.svc.DecrementQuantity(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Quantity)
}

func TestIncrementDecrement_RoundTrip(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := env.svc.IncrementQuantity(ctx, sid)
		require.NoError(t, err)
	}
	var view domain.View
	var err error
	for i := 0; i < 4; i++ {
		view, err = env.svc.DecrementQuantity(ctx, sid)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, view.Quantity)
}

func TestGallery_WrapsBothWays(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	view, err := env.svc.PrevImage(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 3, view.SliderIndex)

	view, err = env.svc.NextImage(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 0, view.SliderIndex)
}

func TestSelectThumbnail(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	view, err := env.svc.SelectThumbnail(ctx, sid, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, view.SelectedThumbnail)
	assert.Equal(t, 0, view.SliderIndex)
	assert.Equal(t, "/images/image-product-3.jpg", view.LargeImage)

	_, err = env.svc.SelectThumbnail(ctx, sid, 7)
	assert.ErrorIs(t, err, domain.ErrInvalidThumbnail)

	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 2, view.SelectedThumbnail, "rejected selection leaves state untouched")
}

func TestNavigate_RemountsGalleryAndRecordsCategory(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, err := env.svc.NextImage(ctx, sid)
	require.NoError(t, err)
	_, err = env.svc.SelectThumbnail(ctx, sid, 3)
	require.NoError(t, err)

	view, err := env.svc.Navigate(ctx, sid, "men")
	require.NoError(t, err)
	assert.Equal(t, 0, view.SliderIndex)
	assert.Equal(t, 0, view.SelectedThumbnail)
	assert.Equal(t, "Men", view.ActiveCategory)

	view, err = env.svc.Navigate(ctx, sid, "whatever")
	require.NoError(t, err)
	assert.Equal(t, "Men", view.ActiveCategory, "unknown categories are ignored")
}

func TestAddToCart_ZeroQuantityClears(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)
	_, _ = env.svc.DecrementQuantity(ctx, sid)

	view, err := env.svc.AddToCart(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.Cart)
	assert.False(t, view.ShowBadge)
}

func TestScenario_AddThenCheckout(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.IncrementQuantity(ctx, sid)
		require.NoError(t, err)
	}

	view, err := env.svc.AddToCart(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, view.Cart)
	assert.Equal(t, "$375", domain.FormatPrice(view.Cart.LineTotal))
	assert.True(t, view.ItemAdded)
	assert.Equal(t, 3, view.Badge)

	view, err = env.svc.ToggleCart(ctx, sid)
	require.NoError(t, err)
	assert.True(t, view.CartOpen)

	view, err = env.svc.Checkout(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.Cart)
	assert.False(t, view.CartOpen)
	assert.True(t, view.ThankYou)
	assert.Equal(t, 3, view.Quantity)

	env.clock.Advance(699 * time.Millisecond)
	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.True(t, view.ThankYou)

	env.clock.Advance(time.Millisecond)
	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.False(t, view.ThankYou)

	require.Len(t, env.receipts.receipts, 1)
	r := env.receipts.receipts[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, sid, r.SessionID)
	assert.True(t, r.Total.Equal(decimal.NewFromInt(375)))
	require.Len(t, env.events.events, 1)
	assert.Equal(t, r.ID, env.events.events[0].ID)
}

func TestCheckout_ResetQuantityOption(t *testing.T) {
	env := setupService(t, Options{ResetQuantityOnCheckout: true})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)

	view, err := env.svc.Checkout(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Quantity)
}

func TestCheckout_AfterDecrementToZero(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)
	_, _ = env.svc.DecrementQuantity(ctx, sid)

	view, err := env.svc.Checkout(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.Cart)
	assert.True(t, view.ThankYou)
	assert.Equal(t, 0, view.Quantity)

	assert.Empty(t, env.receipts.receipts)
	assert.Empty(t, env.events.events)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupService(t, Options{})

	_, err := env.svc.Checkout(context.Background(), sid)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, env.receipts.receipts)
	assert.Empty(t, env.events.events)
}

func TestCheckout_SideEffectFailuresDoNotFail(t *testing.T) {
	env := setupService(t, Options{})
	env.receipts.err = errors.New("db down")
	env.events.err = errors.New("broker down")
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)

	view, err := env.svc.Checkout(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.Cart)
	assert.True(t, view.ThankYou)
}

func TestCheckout_WithoutReceiptsOrEvents(t *testing.T) {
	clock := newFakeClock()
	sessions := store.NewMemoryStore(time.Hour, time.Hour)
	defer sessions.Close()
	svc := NewStorefrontService(sessions, nil, nil, catalog.Product(), Options{Now: clock.Now})
	ctx := context.Background()

	_, _ = svc.IncrementQuantity(ctx, sid)
	_, _ = svc.AddToCart(ctx, sid)
	_, err := svc.Checkout(ctx, sid)
	require.NoError(t, err)

	_, err = svc.Receipts(ctx, sid)
	assert.ErrorIs(t, err, ErrReceiptsDisabled)
}

func TestRemoveCartItem_KeepsQuantity(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)

	view, err := env.svc.RemoveCartItem(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, view.Cart)
	assert.Equal(t, 2, view.Quantity)
}

func TestDismissCart(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	view, err := env.svc.ToggleCart(ctx, sid)
	require.NoError(t, err)
	require.True(t, view.CartOpen)

	view, err = env.svc.DismissCart(ctx, sid)
	require.NoError(t, err)
	assert.False(t, view.CartOpen)
}

func TestItemAddedBanner_RetriggerIsNotHiddenByOlderDeadline(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)
	env.clock.Advance(600 * time.Millisecond)
	_, _ = env.svc.AddToCart(ctx, sid)

	env.clock.Advance(200 * time.Millisecond)
	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.True(t, view.ItemAdded)

	env.clock.Advance(500 * time.Millisecond)
	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.False(t, view.ItemAdded)
}

func TestMenu_TwoPhaseClose(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	view, err := env.svc.OpenMenu(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.MenuOpen, view.Menu)

	view, err = env.svc.SelectCategory(ctx, sid, "About")
	require.NoError(t, err)
	assert.Equal(t, domain.MenuClosing, view.Menu)
	assert.Equal(t, "About", view.ActiveCategory)

	env.clock.Advance(DefaultMenuCloseDelay)
	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.MenuHidden, view.Menu)

	_, err = env.svc.SelectCategory(ctx, sid, "Kids")
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestCloseMenu(t *testing.T) {
	env := setupService(t, Options{MenuCloseDelay: 50 * time.Millisecond})
	ctx := context.Background()

	_, _ = env.svc.OpenMenu(ctx, sid)
	view, err := env.svc.CloseMenu(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.MenuClosing, view.Menu)

	env.clock.Advance(50 * time.Millisecond)
	view, err = env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, domain.MenuHidden, view.Menu)
}

func TestReceipts_ListsSessionCheckouts(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	_, _ = env.svc.IncrementQuantity(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)
	_, _ = env.svc.Checkout(ctx, sid)
	_, _ = env.svc.AddToCart(ctx, sid)
	_, _ = env.svc.Checkout(ctx, sid)

	receipts, err := env.svc.Receipts(ctx, sid)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
}

func TestStoreFailure_IsWrapped(t *testing.T) {
	boom := errors.New("redis down")
	svc := NewStorefrontService(failingStore{err: boom}, nil, nil, catalog.Product(), Options{})

	_, err := svc.IncrementQuantity(context.Background(), sid)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "load session")
}

func TestConcurrentIncrements_AreSerialised(t *testing.T) {
	env := setupService(t, Options{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.IncrementQuantity(ctx, sid)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := env.svc.Session(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, 100, view.Quantity)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID(NewSessionID()))
	assert.False(t, ValidSessionID("not-a-uuid"))
}
