package backend

import (
	"context"
	"fmt"
	"net/url"

	"flyer-kart/internal/model"
)

func (c *Client) ListFlyers(ctx context.Context) ([]model.Flyer, error) {
	var flyers []model.Flyer
	if err := c.getJSON(ctx, "/api/flyers", &flyers); err != nil {
		return nil, fmt.Errorf("failed to list flyers: %w", err)
	}

	for i := range flyers {
		if flyers[i].PriceError != nil {
			c.logger.Warn().
				Str("flyer_id", flyers[i].ID.String()).
				Msg("flyer price could not be parsed")
		}
	}

	return flyers, nil
}

func (c *Client) GetFlyer(ctx context.Context, id model.ID) (*model.Flyer, error) {
	var flyer model.Flyer
	err := c.getJSON(ctx, "/api/flyers/"+url.PathEscape(id.String()), &flyer)
	if err != nil {
		if IsNotFound(err) {
			return nil, model.ErrFlyerNotFound
		}
		return nil, fmt.Errorf("failed to get flyer: %w", err)
	}

	if flyer.ID == "" {
		return nil, model.ErrFlyerNotFound
	}

	return &flyer, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.getJSON(ctx, "/api/categories", &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (c *Client) ListBanners(ctx context.Context) ([]model.Banner, error) {
	var banners []model.Banner
	if err := c.getJSON(ctx, "/api/banners", &banners); err != nil {
		// Banners are decorative; a missing endpoint is an empty list.
		if !IsNotFound(err) {
			return nil, fmt.Errorf("failed to list banners: %w", err)
		}
		return []model.Banner{}, nil
	}
	return banners, nil
}
