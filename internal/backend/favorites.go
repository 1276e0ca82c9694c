package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"flyer-kart/internal/model"
)

type favoriteRequest struct {
	UserID  string   `json:"userId"`
	FlyerID model.ID `json:"flyerId"`
}

func (c *Client) AddFavorite(ctx context.Context, userID string, flyerID model.ID) error {
	req := favoriteRequest{UserID: userID, FlyerID: flyerID}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/favorites/add", req, nil); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (c *Client) RemoveFavorite(ctx context.Context, userID string, flyerID model.ID) error {
	req := favoriteRequest{UserID: userID, FlyerID: flyerID}
	if err := c.sendJSON(ctx, http.MethodPost, "/api/favorites/remove", req, nil); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (c *Client) ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	var favorites []model.Favorite
	if err := c.getJSON(ctx, "/api/favorites/user/"+url.PathEscape(userID), &favorites); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}
