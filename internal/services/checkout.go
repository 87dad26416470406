package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	CheckoutSourceCart   = "cart"
	CheckoutSourceBuyNow = "buy_now"
)

// CheckoutItem references a product (and optional variant) with a quantity.
// Prices are never stored here; they are resolved server-side when the order
// is created.
type CheckoutItem struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
}

// CheckoutSession is an ephemeral snapshot used to isolate a buy-now
// purchase from the shopping cart. It is never persisted.
type CheckoutSession struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Source    string         `json:"source"`
	Items     []CheckoutItem `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

// CheckoutStore holds pending checkout sessions in memory. Consume is
// read-once: a session can produce at most one order. Sessions that are
// never consumed simply become unreachable.
type CheckoutStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*CheckoutSession
	now      func() time.Time
}

// NewCheckoutStore constructs an empty CheckoutStore.
func NewCheckoutStore() *CheckoutStore {
	return &CheckoutStore{
		sessions: make(map[uuid.UUID]*CheckoutSession),
		now:      time.Now,
	}
}

// Create registers a new session and returns it. Items are copied so later
// cart mutations cannot leak into a pending buy-now session.
func (s *CheckoutStore) Create(userID uuid.UUID, source string, items []CheckoutItem) *CheckoutSession {
	session := &CheckoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		Source:    source,
		Items:     append([]CheckoutItem(nil), items...),
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get returns a session without consuming it, for checkout previews.
func (s *CheckoutStore) Get(id uuid.UUID) (*CheckoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	return session, ok
}

// Consume removes and returns a session. The second caller for the same id
// gets nothing, which is what guarantees one order per session.
func (s *CheckoutStore) Consume(id uuid.UUID) (*CheckoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return session, ok
}
