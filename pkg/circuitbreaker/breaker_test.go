package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestBreaker_PassesThrough(t *testing.T) {
	b := New("test", Options{MaxFailures: 2})

	assert.NoError(t, b.Do(func() error { return nil }))
	assert.ErrorIs(t, b.Do(func() error { return errBoom }), errBoom)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New("test", Options{MaxFailures: 2, OpenTimeout: time.Hour})

	_ = b.Do(func() error { return errBoom })
	_ = b.Do(func() error { return errBoom })

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := New("test", Options{MaxFailures: 1, OpenTimeout: 10 * time.Millisecond})

	_ = b.Do(func() error { return errBoom })
	assert.Equal(t, "open", b.State())

	assert.Eventually(t, func() bool {
		return b.Do(func() error { return nil }) == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "closed", b.State())
}
