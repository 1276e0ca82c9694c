// Package session bridges the identity provider to the storefront session.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/events"
	"flyer-kart/internal/model"
)

// RegisterStatus tells the caller what happened after sign-up.
type RegisterStatus string

const (
	AutoLoggedIn         RegisterStatus = "auto_logged_in"
	VerificationRequired RegisterStatus = "verification_required"
)

// RegisterResult is returned by Register.
type RegisterResult struct {
	Status RegisterStatus  `json:"status"`
	User   *model.AuthUser `json:"user,omitempty"`
}

// Manager owns one visitor's authentication state. Logout announces
// SessionEnded on the hub; stores holding per-user data subscribe to it.
type Manager struct {
	provider  IdentityProvider
	users     backend.UserAPI
	persister Persister
	key       string
	hub       *events.Hub[events.SessionEvent]
	logger    zerolog.Logger

	mu     sync.RWMutex
	user   *model.AuthUser
	tokens *Tokens
	err    error
}

// NewManager creates a signed-out manager persisting under key. users may be nil.
func NewManager(provider IdentityProvider, users backend.UserAPI, persister Persister, key string, hub *events.Hub[events.SessionEvent], logger zerolog.Logger) *Manager {
	return &Manager{
		provider:  provider,
		users:     users,
		persister: persister,
		key:       key,
		hub:       hub,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Login signs in with email and password.
func (m *Manager) Login(ctx context.Context, creds Credentials) (*model.AuthUser, error) {
	creds.Email = normalizeEmail(creds.Email)
	if err := checkInput(creds); err != nil {
		return nil, m.fail(err)
	}

	tokens, err := m.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", creds.Email).Msg("sign-in failed")
		return nil, m.fail(translate(err))
	}

	user, err := m.establish(ctx, tokens, events.SessionStarted)
	if err != nil {
		return nil, m.fail(translate(err))
	}

	m.logger.Info().Str("user_id", user.ID).Msg("user signed in")
	return user, nil
}

// Register creates an account, records it in the backend on a best-effort
// basis, and signs in when the provider needs no confirmation step.
func (m *Manager) Register(ctx context.Context, reg Registration) (*RegisterResult, error) {
	reg.Email = normalizeEmail(reg.Email)
	reg.FullName = strings.TrimSpace(reg.FullName)
	if err := checkInput(reg); err != nil {
		return nil, m.fail(err)
	}

	res, err := m.provider.SignUp(ctx, reg.FullName, reg.Email, reg.Password)
	if err != nil {
		m.logger.Warn().Err(err).Str("email", reg.Email).Msg("sign-up failed")
		return nil, m.fail(translate(err))
	}

	if m.users != nil {
		record := &model.AuthUser{
			ID:        res.UserSub,
			Name:      reg.FullName,
			Email:     reg.Email,
			Provider:  "cognito",
			Favorites: []string{},
			Orders:    []string{},
			CreatedAt: time.Now().UTC(),
		}
		if err := m.users.RegisterUser(ctx, record); err != nil {
			m.logger.Warn().Err(err).Str("user_id", res.UserSub).Msg("failed to register user in backend")
		}
	}

	if !res.Confirmed {
		m.logger.Info().Str("user_id", res.UserSub).Msg("user registered, verification required")
		return &RegisterResult{Status: VerificationRequired}, nil
	}

	user, err := m.Login(ctx, Credentials{Email: reg.Email, Password: reg.Password})
	if err != nil {
		return nil, err
	}
	return &RegisterResult{Status: AutoLoggedIn, User: user}, nil
}

// Logout signs out of the provider and clears local state. A provider
// failure is logged; local state is cleared regardless.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	tokens := m.tokens
	user := m.user
	m.mu.Unlock()

	if tokens != nil && tokens.AccessToken != "" {
		if err := m.provider.SignOut(ctx, tokens.AccessToken); err != nil {
			m.logger.Warn().Err(err).Msg("provider sign-out failed")
		}
	}

	userID := ""
	if user != nil {
		userID = user.ID
	}
	return m.end(ctx, userID)
}

// SendOTP starts a password reset for email.
func (m *Manager) SendOTP(ctx context.Context, req OTPRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := checkInput(req); err != nil {
		return m.fail(err)
	}

	if err := m.provider.ForgotPassword(ctx, req.Email); err != nil {
		m.logger.Warn().Err(err).Str("email", req.Email).Msg("failed to send reset code")
		return m.fail(translate(err))
	}
	return nil
}

// VerifyOTP completes a password reset.
func (m *Manager) VerifyOTP(ctx context.Context, req OTPVerification) error {
	req.Email = normalizeEmail(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if err := checkInput(req); err != nil {
		return m.fail(err)
	}

	if err := m.provider.ConfirmForgotPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		m.logger.Warn().Err(err).Str("email", req.Email).Msg("failed to confirm password reset")
		return m.fail(translate(err))
	}
	return nil
}

// Hydrate restores a persisted session and re-validates it with the
// provider. A session the provider rejects is dropped, not returned.
func (m *Manager) Hydrate(ctx context.Context) (*model.AuthUser, error) {
	snap, err := m.persister.Load(ctx, m.key)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to load persisted session")
		return nil, err
	}
	if snap == nil || snap.Token.AccessToken == "" {
		return nil, nil
	}

	tokens := snap.Token
	user, err := m.establish(ctx, &tokens, events.SessionRefreshed)
	if err != nil && tokens.RefreshToken != "" {
		var refreshed *Tokens
		refreshed, err = m.provider.Refresh(ctx, tokens.RefreshToken)
		if err == nil {
			user, err = m.establish(ctx, refreshed, events.SessionRefreshed)
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		m.logger.Info().Err(err).Msg("persisted session rejected by provider, dropping")
		if derr := m.persister.Delete(ctx, m.key); derr != nil {
			m.logger.Error().Err(derr).Msg("failed to delete rejected session")
		}
		return nil, nil
	}

	return user, nil
}

// Listen applies provider events until ctx is done or events is closed.
func (m *Manager) Listen(ctx context.Context, providerEvents <-chan ProviderEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-providerEvents:
			if !ok {
				return
			}
			m.apply(ctx, ev)
		}
	}
}

func (m *Manager) apply(ctx context.Context, ev ProviderEvent) {
	switch ev.Type {
	case ProviderSignedIn:
		if ev.Tokens == nil {
			return
		}
		if _, err := m.establish(ctx, ev.Tokens, events.SessionStarted); err != nil {
			m.logger.Error().Err(err).Msg("failed to apply sign-in event")
		}
	case ProviderTokenRefreshed:
		if ev.Tokens == nil {
			return
		}
		m.mu.Lock()
		if m.user == nil {
			m.mu.Unlock()
			return
		}
		m.tokens = ev.Tokens
		user := m.user
		m.mu.Unlock()

		m.persist(ctx, user, ev.Tokens)
		m.hub.Publish(events.SessionEvent{Type: events.SessionRefreshed, UserID: user.ID, At: time.Now()})
	case ProviderSignedOut:
		m.mu.RLock()
		userID := ""
		if m.user != nil {
			userID = m.user.ID
		}
		m.mu.RUnlock()
		if err := m.end(ctx, userID); err != nil {
			m.logger.Error().Err(err).Msg("failed to apply sign-out event")
		}
	}
}

// KeepFresh checks the access token every interval and refreshes it when it
// expires within lead. Refreshes are reported as events on the returned
// channel, which is closed when ctx is done. A failed refresh reports a
// sign-out.
func (m *Manager) KeepFresh(ctx context.Context, interval, lead time.Duration) <-chan ProviderEvent {
	out := make(chan ProviderEvent, 1)

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			m.mu.RLock()
			tokens := m.tokens
			m.mu.RUnlock()

			if tokens == nil || !tokens.Expired(lead) {
				continue
			}

			ev := ProviderEvent{Type: ProviderSignedOut}
			if tokens.RefreshToken != "" {
				refreshed, err := m.provider.Refresh(ctx, tokens.RefreshToken)
				if err == nil {
					ev = ProviderEvent{Type: ProviderTokenRefreshed, Tokens: refreshed}
				} else {
					m.logger.Warn().Err(err).Msg("token refresh failed")
				}
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// establish fetches the provider user for tokens, installs the session,
// persists it and announces it with evType.
func (m *Manager) establish(ctx context.Context, tokens *Tokens, evType events.SessionEventType) (*model.AuthUser, error) {
	pu, err := m.provider.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	user := normalize(pu)

	m.mu.Lock()
	m.user = user
	m.tokens = tokens
	m.err = nil
	m.mu.Unlock()

	m.persist(ctx, user, tokens)
	m.hub.Publish(events.SessionEvent{Type: evType, UserID: user.ID, At: time.Now()})

	return cloneUser(user), nil
}

// end clears local state and announces SessionEnded.
func (m *Manager) end(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.user = nil
	m.tokens = nil
	m.err = nil
	m.mu.Unlock()

	err := m.persister.Delete(ctx, m.key)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to clear persisted session")
	}

	m.hub.Publish(events.SessionEvent{Type: events.SessionEnded, UserID: userID, At: time.Now()})
	m.logger.Info().Str("user_id", userID).Msg("session ended")
	return err
}

func (m *Manager) persist(ctx context.Context, user *model.AuthUser, tokens *Tokens) {
	snap := &Snapshot{User: user, Token: *tokens, SavedAt: time.Now().UTC()}
	if err := m.persister.Save(ctx, m.key, snap); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist session")
	}
}

func (m *Manager) fail(err error) error {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
	return err
}

// User returns the signed-in user, or nil.
func (m *Manager) User() *model.AuthUser {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user)
}

// UserID returns the signed-in user's id, or "".
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.ID
}

// AccessToken returns the current provider access token, or "".
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tokens == nil {
		return ""
	}
	return m.tokens.AccessToken
}

func (m *Manager) IsAuthenticated() bool {
	return m.UserID() != ""
}

// Err returns the last auth error.
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}
