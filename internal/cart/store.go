// Package cart mirrors the user's server-side cart.
package cart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/events"
	"flyer-kart/internal/model"
)

// View is the presentation state of the cart.
type View string

const (
	ViewLoading View = "loading"
	ViewError   View = "error"
	ViewEmpty   View = "empty"
	ViewItems   View = "items"
)

// Store holds the last loaded cart. The server is the source of truth: every
// mutation is followed by a full reload, and a load whose response arrives
// after a newer load was started is discarded.
type Store struct {
	api    backend.CartAPI
	logger zerolog.Logger

	mu      sync.RWMutex
	items   []model.CartItem
	loading bool
	err     error
	token   uint64
}

// NewStore creates an empty cart store.
func NewStore(api backend.CartAPI, logger zerolog.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger.With().Str("store", "cart").Logger(),
		items:  []model.CartItem{},
	}
}

// Load replaces the cart with the server's copy.
func (s *Store) Load(ctx context.Context, userID string) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.token++
	token := s.token
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	items, err := s.api.GetCart(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		s.logger.Debug().Str("user_id", userID).Msg("discarding stale cart response")
		return nil
	}

	s.loading = false
	if err != nil {
		s.err = err
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to load cart")
		return err
	}

	s.items = items
	return nil
}

// AddToCart posts an order form then reloads.
func (s *Store) AddToCart(ctx context.Context, userID string, payload *backend.Multipart) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	if err := s.api.AddToCart(ctx, payload); err != nil {
		s.fail(err)
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to add to cart")
		return err
	}

	return s.Load(ctx, userID)
}

// RemoveFromCart deletes an item then reloads.
func (s *Store) RemoveFromCart(ctx context.Context, itemID model.ID, userID string) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	if err := s.api.RemoveFromCart(ctx, itemID); err != nil {
		s.fail(err)
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("item_id", itemID.String()).
			Msg("failed to remove cart item")
		return err
	}

	return s.Load(ctx, userID)
}

// ClearCart deletes every item then reloads.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	if err := s.api.ClearCart(ctx, userID); err != nil {
		s.fail(err)
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return err
	}

	return s.Load(ctx, userID)
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Purge drops all local state and invalidates in-flight loads.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.items = []model.CartItem{}
	s.loading = false
	s.err = nil
}

// PurgeOnSessionEnd purges the cart whenever a SessionEnded event arrives
// on hub. It blocks until ctx is done.
func (s *Store) PurgeOnSessionEnd(ctx context.Context, hub *events.Hub[events.SessionEvent]) {
	for ev := range hub.Subscribe(ctx) {
		if ev.Type == events.SessionEnded {
			s.Purge()
			s.logger.Debug().Str("user_id", ev.UserID).Msg("cart purged on session end")
		}
	}
}

// Items returns a copy of the loaded items.
func (s *Store) Items() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.CartItem{}, s.items...)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalPrice sums each item's total price.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.TotalPrice.Decimal)
	}
	return total
}

// FormattedTotalPrice renders TotalPrice as "$25.00".
func (s *Store) FormattedTotalPrice() string {
	return model.FormatUSD(s.TotalPrice())
}

func (s *Store) IsEmpty() bool {
	return s.Count() == 0
}

// ItemsByStatus groups items by status; items without one are "pending".
func (s *Store) ItemsByStatus() map[string][]model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string][]model.CartItem)
	for _, item := range s.items {
		status := item.StatusOrDefault()
		groups[status] = append(groups[status], item)
	}
	return groups
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// View picks what to render: loading wins over error, error over content.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.loading:
		return ViewLoading
	case s.err != nil:
		return ViewError
	case len(s.items) == 0:
		return ViewEmpty
	default:
		return ViewItems
	}
}
