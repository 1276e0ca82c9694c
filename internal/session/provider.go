package session

import (
	"context"
	"time"
)

// Tokens are the provider credentials of a signed-in user.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	IDToken      string    `json:"idToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the access token expires within lead.
func (t *Tokens) Expired(lead time.Duration) bool {
	if t == nil || t.AccessToken == "" {
		return true
	}
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(lead).After(t.ExpiresAt)
}

// ProviderUser is the identity as the provider reports it.
type ProviderUser struct {
	Subject   string
	Username  string
	Email     string
	Name      string
	Phone     string
	Provider  string
	CreatedAt time.Time
}

// SignUpResult is the outcome of a provider sign-up.
type SignUpResult struct {
	UserSub   string
	Confirmed bool
}

// IdentityProvider is the external identity service.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Tokens, error)
	SignUp(ctx context.Context, name, email, password string) (*SignUpResult, error)
	SignOut(ctx context.Context, accessToken string) error
	CurrentUser(ctx context.Context, accessToken string) (*ProviderUser, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
}

// ProviderEventType classifies provider auth events.
type ProviderEventType string

const (
	ProviderSignedIn       ProviderEventType = "signed_in"
	ProviderSignedOut      ProviderEventType = "signed_out"
	ProviderTokenRefreshed ProviderEventType = "token_refreshed"
)

// ProviderEvent is a change reported by the identity provider.
type ProviderEvent struct {
	Type   ProviderEventType
	Tokens *Tokens
}
