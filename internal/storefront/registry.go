// Package storefront keeps one bundle of client-state stores per visitor.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/cart"
	"flyer-kart/internal/catalog"
	"flyer-kart/internal/events"
	"flyer-kart/internal/favorites"
	"flyer-kart/internal/filter"
	"flyer-kart/internal/orderform"
	"flyer-kart/internal/session"
)

// ErrInvalidSessionID is returned by Resume for ids that are not UUIDs.
var ErrInvalidSessionID = errors.New("invalid session id")

// Deps are the shared collaborators every session is built from.
type Deps struct {
	Catalog    *catalog.Store
	CatalogAPI backend.CatalogAPI
	Cart       backend.CartAPI
	Favorites  backend.FavoritesAPI
	Checkout   backend.CheckoutAPI
	Users      backend.UserAPI // optional
	Samples    orderform.SampleSource
	Provider   session.IdentityProvider
	Persister  session.Persister

	// RefreshInterval and RefreshLead drive access token renewal. A zero
	// interval disables it.
	RefreshInterval time.Duration
	RefreshLead     time.Duration
}

// Session is one visitor's state: auth, cart, favorites, the order form,
// and the filtered catalog view.
type Session struct {
	ID        string
	Auth      *session.Manager
	Cart      *cart.Store
	Favorites *favorites.Store
	Form      *orderform.Store
	Filter    *filter.Store
	View      *catalog.View

	sessionHub *events.Hub[events.SessionEvent]
	filterHub  *events.Hub[filter.Selection]
	cancel     context.CancelFunc

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen returns when the session was last looked up.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry owns the live sessions.
type Registry struct {
	deps   Deps
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps, logger zerolog.Logger) *Registry {
	return &Registry{
		deps:     deps,
		logger:   logger.With().Str("component", "storefront").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new signed-out session.
func (r *Registry) Create() *Session {
	sess, _ := r.build(uuid.NewString())
	r.logger.Debug().Str("session_id", sess.ID).Msg("session created")
	return sess
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		sess.touch()
	}
	return sess, ok
}

// Resume returns the live session for id, or rebuilds it from the persisted
// auth snapshot. The second result reports whether a signed-in user was
// restored.
func (r *Registry) Resume(ctx context.Context, id string) (*Session, bool, error) {
	if sess, ok := r.Get(id); ok {
		return sess, sess.Auth.IsAuthenticated(), nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	sess, created := r.build(id)
	if !created {
		// Another request resumed the same id first.
		return sess, sess.Auth.IsAuthenticated(), nil
	}

	user, err := sess.Auth.Hydrate(ctx)
	if err != nil {
		r.Close(id)
		return nil, false, fmt.Errorf("failed to restore session: %w", err)
	}

	if user == nil {
		return sess, false, nil
	}

	r.logger.Info().Str("session_id", id).Str("user_id", user.ID).Msg("session restored")
	loadUserData(ctx, sess, user.ID, r.logger)
	return sess, true, nil
}

// build registers a session for id and starts its watchers. When id is
// already live the existing session is returned and created is false.
func (r *Registry) build(id string) (sess *Session, created bool) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := r.logger.With().Str("session_id", id).Logger()

	sessionHub := events.NewHub[events.SessionEvent]()
	filterHub := events.NewHub[filter.Selection]()

	sess = &Session{
		ID:         id,
		Auth:       session.NewManager(r.deps.Provider, r.deps.Users, r.deps.Persister, id, sessionHub, logger),
		Cart:       cart.NewStore(r.deps.Cart, logger),
		Favorites:  favorites.NewStore(r.deps.Favorites, logger),
		Form:       orderform.NewStore(r.deps.CatalogAPI, r.deps.Checkout, r.deps.Samples, logger),
		Filter:     filter.NewStore(filterHub, logger),
		View:       catalog.NewView(r.deps.Catalog, logger),
		sessionHub: sessionHub,
		filterHub:  filterHub,
		cancel:     cancel,
		lastSeen:   time.Now(),
	}

	r.mu.Lock()
	if live, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		cancel()
		sessionHub.Close()
		filterHub.Close()
		live.touch()
		return live, false
	}
	r.sessions[id] = sess
	r.mu.Unlock()

	go sess.Cart.PurgeOnSessionEnd(ctx, sessionHub)
	go sess.Favorites.PurgeOnSessionEnd(ctx, sessionHub)
	go syncOnSignIn(ctx, sess, sessionHub.Subscribe(ctx), logger)
	go sess.View.Watch(ctx, filterHub.Subscribe(ctx))

	if r.deps.RefreshInterval > 0 {
		go sess.Auth.Listen(ctx, sess.Auth.KeepFresh(ctx, r.deps.RefreshInterval, r.deps.RefreshLead))
	}

	return sess, true
}

// syncOnSignIn loads the user's cart and favorites when a session starts.
func syncOnSignIn(ctx context.Context, sess *Session, evs <-chan events.SessionEvent, logger zerolog.Logger) {
	for ev := range evs {
		if ev.Type != events.SessionStarted || ev.UserID == "" {
			continue
		}
		loadUserData(ctx, sess, ev.UserID, logger)
	}
}

func loadUserData(ctx context.Context, sess *Session, userID string, logger zerolog.Logger) {
	if err := sess.Cart.Load(ctx, userID); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load cart")
	}
	if err := sess.Favorites.FetchFavorites(ctx, userID); err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load favorites")
	}
}

// Close stops a session's watchers and forgets it. The persisted auth
// snapshot is kept so the visitor can be resumed later.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return
	}
	sess.cancel()
	sess.sessionHub.Close()
	sess.filterHub.Close()
}

// CloseAll closes every session.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Close(id)
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Refresh re-applies every session's filter after a catalog reload.
func (r *Registry) Refresh() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sess := range r.sessions {
		sess.View.Refresh()
	}
}

// Reap closes sessions not seen for idle and returns how many were closed.
func (r *Registry) Reap(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, sess := range r.sessions {
		if sess.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.Close(id)
	}
	if len(stale) > 0 {
		r.logger.Info().Int("closed", len(stale)).Int("live", r.Len()).Msg("reaped idle sessions")
	}
	return len(stale)
}

// RunReaper calls Reap every interval until ctx is done.
func (r *Registry) RunReaper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Reap(idle)
		}
	}
}
