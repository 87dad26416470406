package services

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutSessionConsumeOnce(t *testing.T) {
	store := NewCheckoutStore()
	userID := uuid.New()

	session := store.Create(userID, CheckoutSourceBuyNow, []CheckoutItem{
		{ProductID: uuid.New(), Quantity: 1},
	})
	require.NotEqual(t, uuid.Nil, session.ID)

	got, ok := store.Consume(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)

	_, ok = store.Consume(session.ID)
	assert.False(t, ok, "a session produces at most one order")

	_, ok = store.Get(session.ID)
	assert.False(t, ok)
}

func TestCheckoutSessionGetDoesNotConsume(t *testing.T) {
	store := NewCheckoutStore()
	session := store.Create(uuid.New(), CheckoutSourceBuyNow, []CheckoutItem{
		{ProductID: uuid.New(), Quantity: 2},
	})

	for i := 0; i < 3; i++ {
		got, ok := store.Get(session.ID)
		require.True(t, ok)
		assert.Len(t, got.Items, 1)
	}

	_, ok := store.Consume(session.ID)
	assert.True(t, ok)
}

func TestCheckoutSessionIsolatedFromCallerSlice(t *testing.T) {
	store := NewCheckoutStore()
	items := []CheckoutItem{{ProductID: uuid.New(), Quantity: 1}}

	session := store.Create(uuid.New(), CheckoutSourceBuyNow, items)

	// Mutating the caller's slice after creation must not leak into the
	// pending session; buy-now is isolated from later cart activity.
	items[0].Quantity = 99

	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestCheckoutSessionConcurrentConsume(t *testing.T) {
	store := NewCheckoutStore()
	session := store.Create(uuid.New(), CheckoutSourceBuyNow, []CheckoutItem{
		{ProductID: uuid.New(), Quantity: 1},
	})

	const racers = 8
	wins := make(chan bool, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := store.Consume(session.ID)
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	var succeeded int
	for ok := range wins {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
}
