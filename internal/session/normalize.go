package session

import (
	"strings"

	"flyer-kart/internal/model"
)

// normalize maps a provider identity onto AuthUser. A missing display name
// falls back to the email's local part.
func normalize(pu *ProviderUser) *model.AuthUser {
	name := strings.TrimSpace(pu.Name)
	if name == "" {
		name, _, _ = strings.Cut(pu.Email, "@")
	}
	if name == "" {
		name = pu.Username
	}

	provider := pu.Provider
	if provider == "" {
		provider = "cognito"
	}

	return &model.AuthUser{
		ID:        pu.Subject,
		Name:      name,
		Email:     strings.ToLower(pu.Email),
		Provider:  provider,
		Phone:     pu.Phone,
		Favorites: []string{},
		Orders:    []string{},
		CreatedAt: pu.CreatedAt,
	}
}

func cloneUser(u *model.AuthUser) *model.AuthUser {
	if u == nil {
		return nil
	}
	c := *u
	c.Favorites = append([]string{}, u.Favorites...)
	c.Orders = append([]string{}, u.Orders...)
	return &c
}
