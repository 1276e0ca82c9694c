package backend

import (
	"context"
	"fmt"
	"net/http"

	"flyer-kart/internal/model"
)

func (c *Client) RegisterUser(ctx context.Context, user *model.AuthUser) error {
	if err := c.sendJSON(ctx, http.MethodPost, "/api/users", user, nil); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}
