package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-kart/internal/cart"
	"flyer-kart/internal/model"
)

// CartHandler serves the signed-in user's cart.
type CartHandler struct {
	logger zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(logger zerolog.Logger) *CartHandler {
	return &CartHandler{logger: logger.With().Str("handler", "cart").Logger()}
}

type cartResponse struct {
	View           cart.View                   `json:"view"`
	Items          []model.CartItem            `json:"items"`
	ItemsByStatus  map[string][]model.CartItem `json:"itemsByStatus"`
	Count          int                         `json:"count"`
	TotalPrice     string                      `json:"totalPrice"`
	FormattedTotal string                      `json:"formattedTotalPrice"`
	Error          string                      `json:"error,omitempty"`
}

func newCartResponse(s *cart.Store) cartResponse {
	resp := cartResponse{
		View:           s.View(),
		Items:          s.Items(),
		ItemsByStatus:  s.ItemsByStatus(),
		Count:          s.Count(),
		TotalPrice:     s.TotalPrice().StringFixed(2),
		FormattedTotal: s.FormattedTotalPrice(),
	}
	if err := s.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// Get handles GET /api/cart. The cart is reloaded from the backend; a failed
// reload is reported in the body with the error view.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	if err := sess.Cart.Load(r.Context(), userID); err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("cart reload failed")
	}
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}

// Remove handles DELETE /api/cart/{itemID}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	itemID := model.ID(chi.URLParam(r, "itemID"))
	if err := sess.Cart.RemoveFromCart(r.Context(), itemID, userID); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	if err := sess.Cart.ClearCart(r.Context(), userID); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart))
}
