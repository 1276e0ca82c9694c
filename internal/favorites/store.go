// Package favorites keeps the user's favorite flyers with optimistic updates.
package favorites

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/events"
	"flyer-kart/internal/model"
)

// Store is the single owner of favorite state. Membership flips locally
// before the server confirms and reverts if the call fails. Only one
// change per flyer may be in flight.
type Store struct {
	api    backend.FavoritesAPI
	logger zerolog.Logger

	mu      sync.RWMutex
	ids     map[model.ID]struct{}
	records []model.Favorite
	pending map[model.ID]struct{}
	loading bool
	err     error
	epoch   uint64
}

// NewStore creates an empty favorites store.
func NewStore(api backend.FavoritesAPI, logger zerolog.Logger) *Store {
	return &Store{
		api:     api,
		logger:  logger.With().Str("store", "favorites").Logger(),
		ids:     make(map[model.ID]struct{}),
		pending: make(map[model.ID]struct{}),
	}
}

// ToggleFavorite adds or removes flyerID depending on current membership
// and returns the resulting membership. On failure that is the rolled-back
// state.
func (s *Store) ToggleFavorite(ctx context.Context, userID string, flyerID model.ID) (bool, error) {
	s.mu.RLock()
	_, favorited := s.ids[flyerID]
	s.mu.RUnlock()

	var err error
	if favorited {
		err = s.RemoveFromFavorites(ctx, userID, flyerID)
	} else {
		err = s.AddToFavorites(ctx, userID, flyerID)
	}
	if err != nil {
		return s.IsFavorited(flyerID), err
	}
	return !favorited, nil
}

// AddToFavorites marks flyerID as favorited.
func (s *Store) AddToFavorites(ctx context.Context, userID string, flyerID model.ID) error {
	return s.change(ctx, userID, flyerID, true)
}

// RemoveFromFavorites unmarks flyerID.
func (s *Store) RemoveFromFavorites(ctx context.Context, userID string, flyerID model.ID) error {
	return s.change(ctx, userID, flyerID, false)
}

func (s *Store) change(ctx context.Context, userID string, flyerID model.ID, add bool) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	s.mu.Lock()
	if _, busy := s.pending[flyerID]; busy {
		s.mu.Unlock()
		return model.ErrTogglePending
	}
	_, was := s.ids[flyerID]
	if was == add {
		s.mu.Unlock()
		return nil
	}
	s.pending[flyerID] = struct{}{}
	s.set(flyerID, add)
	s.err = nil
	epoch := s.epoch
	s.mu.Unlock()

	var err error
	if add {
		err = s.api.AddFavorite(ctx, userID, flyerID)
	} else {
		err = s.api.RemoveFavorite(ctx, userID, flyerID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// Purged while in flight; the result belongs to an ended session.
		return err
	}
	delete(s.pending, flyerID)

	if err != nil {
		s.set(flyerID, was)
		s.err = err
		s.logger.Error().Err(err).
			Str("user_id", userID).
			Str("flyer_id", flyerID.String()).
			Bool("add", add).
			Msg("favorite update failed, rolled back")
		return err
	}

	if !add {
		s.dropRecord(flyerID)
	}
	return nil
}

func (s *Store) set(id model.ID, on bool) {
	if on {
		s.ids[id] = struct{}{}
	} else {
		delete(s.ids, id)
	}
}

func (s *Store) dropRecord(id model.ID) {
	out := s.records[:0:0]
	for _, r := range s.records {
		if r.FlyerID != id {
			out = append(out, r)
		}
	}
	s.records = out
}

// FetchFavorites replaces the id set and records with the server's copy.
// Flyers with a change in flight keep their optimistic state.
func (s *Store) FetchFavorites(ctx context.Context, userID string) error {
	if userID == "" {
		return model.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.loading = true
	epoch := s.epoch
	s.mu.Unlock()

	records, err := s.api.ListFavorites(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// Purged while in flight; the response belongs to an ended session.
		return nil
	}
	s.loading = false

	if err != nil {
		s.err = err
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch favorites")
		return err
	}

	ids := make(map[model.ID]struct{}, len(records))
	for _, r := range records {
		ids[r.FlyerID] = struct{}{}
	}
	for id := range s.pending {
		if _, on := s.ids[id]; on {
			ids[id] = struct{}{}
		} else {
			delete(ids, id)
		}
	}

	s.ids = ids
	s.records = records
	s.err = nil
	return nil
}

// IsFavorited reports whether flyerID is in the set.
func (s *Store) IsFavorited(flyerID model.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[flyerID]
	return ok
}

// IsPending reports whether a change to flyerID is in flight.
func (s *Store) IsPending(flyerID model.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[flyerID]
	return ok
}

// IDs returns the favorited flyer ids.
func (s *Store) IDs() []model.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Records returns the detailed favorite records of the last fetch.
func (s *Store) Records() []model.Favorite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Favorite{}, s.records...)
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

// Purge drops all local state.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.ids = make(map[model.ID]struct{})
	s.pending = make(map[model.ID]struct{})
	s.records = nil
	s.err = nil
	s.loading = false
}

// PurgeOnSessionEnd purges whenever a SessionEnded event arrives on hub.
// It blocks until ctx is done.
func (s *Store) PurgeOnSessionEnd(ctx context.Context, hub *events.Hub[events.SessionEvent]) {
	for ev := range hub.Subscribe(ctx) {
		if ev.Type == events.SessionEnded {
			s.Purge()
			s.logger.Debug().Str("user_id", ev.UserID).Msg("favorites purged on session end")
		}
	}
}
