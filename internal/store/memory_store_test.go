package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cotne998/eCommerce-product-page/internal/domain"
)

func setupStore(t *testing.T) *MemoryStore {
	store := NewMemoryStore(time.Minute, time.Hour)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := setupStore(t)

	session, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Nil(t, session)
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	s := domain.NewSession("abc", time.Now())
	s.Quantity = 3
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	s := domain.NewSession("abc", time.Now())
	require.NoError(t, store.Save(ctx, s))
	s.Quantity = 10

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity, "saved value must not alias the caller's session")

	got.Quantity = 5
	again, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, again.Quantity)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("abc", time.Now())))
	require.NoError(t, store.Delete(ctx, "abc"))

	_, err := store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_EvictIdle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, domain.NewSession("old", now.Add(-2*time.Minute))))
	require.NoError(t, store.Save(ctx, domain.NewSession("fresh", now.Add(-10*time.Second))))

	assert.Equal(t, 1, store.evictIdle())
	assert.Equal(t, 1, store.Len())

	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_CleanupLoopRuns(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := NewMemoryStore(time.Millisecond, 5*time.Millisecond)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), domain.NewSession("abc", time.Now().Add(-time.Second))))

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := domain.NewSession("shared", time.Now())
			s.Quantity = i
			assert.NoError(t, store.Save(ctx, s))
			_, err := store.Get(ctx, "shared")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := NewMemoryStore(0, 0)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
