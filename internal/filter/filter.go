// Package filter holds the catalog filter bar selection.
package filter

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"flyer-kart/internal/events"
)

// Selection is the current filter bar state. Empty fields match everything.
type Selection struct {
	Price    string `json:"price"`
	Category string `json:"category"`
}

// IsZero reports whether no filter is active.
func (s Selection) IsZero() bool {
	return s.Price == "" && s.Category == ""
}

// Store owns the filter selection and publishes every change.
type Store struct {
	mu        sync.RWMutex
	selection Selection
	hub       *events.Hub[Selection]
	logger    zerolog.Logger
}

// NewStore creates a filter store publishing on hub.
func NewStore(hub *events.Hub[Selection], logger zerolog.Logger) *Store {
	return &Store{
		hub:    hub,
		logger: logger.With().Str("store", "filter").Logger(),
	}
}

// SetPrice sets the price tier. An empty value clears it.
func (s *Store) SetPrice(price string) {
	s.update(func(sel *Selection) { sel.Price = strings.TrimSpace(price) })
}

// SetCategory sets the category. An empty value clears it.
func (s *Store) SetCategory(category string) {
	s.update(func(sel *Selection) { sel.Category = strings.TrimSpace(category) })
}

// Set replaces the whole selection.
func (s *Store) Set(sel Selection) {
	s.update(func(cur *Selection) {
		cur.Price = strings.TrimSpace(sel.Price)
		cur.Category = strings.TrimSpace(sel.Category)
	})
}

// Clear resets the selection.
func (s *Store) Clear() {
	s.update(func(sel *Selection) { *sel = Selection{} })
}

// Selection returns the current selection.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// update publishes under the lock so subscribers see changes in the order
// they were applied. Publish never blocks.
func (s *Store) update(fn func(*Selection)) {
	s.mu.Lock()
	before := s.selection
	fn(&s.selection)
	after := s.selection
	if before == after {
		s.mu.Unlock()
		return
	}
	delivered := s.hub.Publish(after)
	s.mu.Unlock()

	s.logger.Debug().
		Str("price", after.Price).
		Str("category", after.Category).
		Int("subscribers", delivered).
		Msg("filter changed")
}
