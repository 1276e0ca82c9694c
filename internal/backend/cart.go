package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"flyer-kart/internal/model"
)

func (c *Client) GetCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem
	if err := c.getJSON(ctx, "/api/cart/"+url.PathEscape(userID), &items); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if items == nil {
		items = []model.CartItem{}
	}
	return items, nil
}

func (c *Client) AddToCart(ctx context.Context, payload *Multipart) error {
	if err := c.sendMultipart(ctx, "/api/cart/add", payload, nil); err != nil {
		return fmt.Errorf("failed to add to cart: %w", err)
	}
	return nil
}

func (c *Client) RemoveFromCart(ctx context.Context, itemID model.ID) error {
	path := "/api/cart/remove/" + url.PathEscape(itemID.String())
	if err := c.do(ctx, http.MethodDelete, path, nil, "", nil); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (c *Client) ClearCart(ctx context.Context, userID string) error {
	path := "/api/cart/clear/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodDelete, path, nil, "", nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
