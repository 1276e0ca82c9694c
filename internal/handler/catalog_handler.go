package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-kart/internal/catalog"
	"flyer-kart/internal/filter"
	"flyer-kart/internal/model"
)

// CatalogHandler serves the shared catalog and each visitor's filtered view.
type CatalogHandler struct {
	store  *catalog.Store
	logger zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(store *catalog.Store, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		store:  store,
		logger: logger.With().Str("handler", "catalog").Logger(),
	}
}

type flyersResponse struct {
	Selection filter.Selection `json:"selection"`
	Flyers    []model.Flyer    `json:"flyers"`
	Loading   bool             `json:"loading"`
	Error     string           `json:"error,omitempty"`
}

// Flyers handles GET /api/catalog/flyers: the flyers matching the visitor's filter.
func (h *CatalogHandler) Flyers(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	resp := flyersResponse{
		Selection: sess.View.Selection(),
		Flyers:    sess.View.Visible(),
		Loading:   h.store.IsLoading(),
	}
	if err := h.store.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Flyer handles GET /api/catalog/flyers/{flyerID}.
func (h *CatalogHandler) Flyer(w http.ResponseWriter, r *http.Request) {
	id := model.ID(chi.URLParam(r, "flyerID"))

	flyer, ok := h.store.Flyer(id)
	if !ok {
		writeErr(w, model.ErrFlyerNotFound, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"flyer":   flyer,
		"similar": catalog.SimilarTo(&flyer, h.store.Flyers()),
	})
}

// Recent handles GET /api/catalog/recent?limit=n.
func (h *CatalogHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid limit parameter", h.logger)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.store.Recent(limit))
}

// Featured handles GET /api/catalog/featured.
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Featured())
}

// Categories handles GET /api/catalog/categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Categories())
}

// Banners handles GET /api/catalog/banners.
func (h *CatalogHandler) Banners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Banners())
}

// SetFilter handles PUT /api/filter. The view follows asynchronously; the
// response carries the matching flyers directly.
func (h *CatalogHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	var sel filter.Selection
	if !decodeJSON(w, r, &sel, h.logger) {
		return
	}

	sess.Filter.Set(sel)
	writeJSON(w, http.StatusOK, flyersResponse{Selection: sel, Flyers: h.store.Filter(sel)})
}

// ClearFilter handles DELETE /api/filter.
func (h *CatalogHandler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}

	sess.Filter.Clear()
	writeJSON(w, http.StatusOK, flyersResponse{Flyers: h.store.Flyers()})
}
