package backend

import (
	"context"

	"flyer-kart/internal/model"
)

// CatalogAPI defines read access to the flyer catalog.
type CatalogAPI interface {
	// ListFlyers retrieves the full catalog.
	ListFlyers(ctx context.Context) ([]model.Flyer, error)

	// GetFlyer retrieves a single flyer by its ID.
	// Returns model.ErrFlyerNotFound when the backend has no such flyer.
	GetFlyer(ctx context.Context, id model.ID) (*model.Flyer, error)

	// ListCategories retrieves catalog categories.
	ListCategories(ctx context.Context) ([]model.Category, error)

	// ListBanners retrieves promotional banners.
	ListBanners(ctx context.Context) ([]model.Banner, error)
}

// CartAPI defines operations on a user's server-side cart.
type CartAPI interface {
	// GetCart retrieves every line item in the user's cart.
	GetCart(ctx context.Context, userID string) ([]model.CartItem, error)

	// AddToCart posts a fully populated multipart order form.
	AddToCart(ctx context.Context, payload *Multipart) error

	// RemoveFromCart deletes a single line item.
	RemoveFromCart(ctx context.Context, itemID model.ID) error

	// ClearCart deletes every line item for the user.
	ClearCart(ctx context.Context, userID string) error
}

// FavoritesAPI defines operations on a user's favorites.
type FavoritesAPI interface {
	AddFavorite(ctx context.Context, userID string, flyerID model.ID) error
	RemoveFavorite(ctx context.Context, userID string, flyerID model.ID) error
	ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error)
}

// CheckoutAPI defines payment-session operations. The payment provider is
// driven entirely by the backend.
type CheckoutAPI interface {
	// CreateCheckoutSession submits an order form and returns a payment session.
	CreateCheckoutSession(ctx context.Context, payload *Multipart) (*model.CheckoutSession, error)

	// GetSessionURL resolves the hosted payment page for an existing session.
	GetSessionURL(ctx context.Context, sessionID string) (string, error)

	// TestOrder validates an order form without persisting it.
	TestOrder(ctx context.Context, payload *Multipart) (*model.TestOrderResult, error)
}

// UserAPI registers users in the application's own datastore.
type UserAPI interface {
	RegisterUser(ctx context.Context, user *model.AuthUser) error
}
