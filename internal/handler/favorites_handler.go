package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-kart/internal/model"
)

// FavoritesHandler serves the signed-in user's favorites.
type FavoritesHandler struct {
	logger zerolog.Logger
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(logger zerolog.Logger) *FavoritesHandler {
	return &FavoritesHandler{logger: logger.With().Str("handler", "favorites").Logger()}
}

type favoritesResponse struct {
	IDs       []model.ID       `json:"ids"`
	Favorites []model.Favorite `json:"favorites"`
}

// List handles GET /api/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	if err := sess.Favorites.FetchFavorites(r.Context(), userID); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{IDs: sess.Favorites.IDs(), Favorites: sess.Favorites.Records()})
}

// Toggle handles POST /api/favorites/{flyerID}/toggle.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	flyerID := model.ID(chi.URLParam(r, "flyerID"))
	favorited, err := sess.Favorites.ToggleFavorite(r.Context(), userID, flyerID)
	if err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flyerId": flyerID, "favorited": favorited})
}
