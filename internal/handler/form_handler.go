package handler

import (
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-kart/internal/model"
	"flyer-kart/internal/orderform"
	"flyer-kart/internal/storefront"
)

// maxUploadBytes bounds a single photo or logo upload.
const maxUploadBytes = 10 << 20

// Photo upload targets.
const (
	targetVenue   = "venue"
	targetDJ      = "dj"
	targetHost    = "host"
	targetSponsor = "sponsor"
)

// FormHandler drives the visitor's order form.
type FormHandler struct {
	logger zerolog.Logger
}

// NewFormHandler creates a new order form handler.
func NewFormHandler(logger zerolog.Logger) *FormHandler {
	return &FormHandler{logger: logger.With().Str("handler", "form").Logger()}
}

// mutate runs fn against the session's form and responds with the updated
// snapshot.
func (h *FormHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*orderform.Store) error) {
	sess, ok := currentSession(w, r, h.logger)
	if !ok {
		return
	}
	if err := fn(sess.Form); err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, sess.Form.Snapshot())
}

func indexParam(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrIndexOutOfRange, chi.URLParam(r, "index"))
	}
	return i, nil
}

// Load handles POST /api/form/{flyerID}: selects a flyer and resets the form.
func (h *FormHandler) Load(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error {
		return f.FetchFlyer(r.Context(), model.ID(chi.URLParam(r, "flyerID")), true)
	})
}

// Get handles GET /api/form.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(*orderform.Store) error { return nil })
}

// UpdateEvent handles PATCH /api/form/event with a map of field to value.
func (h *FormHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if !decodeJSON(w, r, &fields, h.logger) {
		return
	}

	h.mutate(w, r, func(f *orderform.Store) error {
		for _, field := range slices.Sorted(maps.Keys(fields)) {
			if err := f.UpdateEventDetails(field, fields[field]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetVenue handles PUT /api/form/venue. Setting text clears any venue logo.
func (h *FormHandler) SetVenue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.mutate(w, r, func(f *orderform.Store) error { return f.SetVenueText(req.Text) })
}

type nameRequest struct {
	Name string `json:"name"`
}

// AddDJ handles POST /api/form/djs.
func (h *FormHandler) AddDJ(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error { return f.AddDJ() })
}

// UpdateDJ handles PATCH /api/form/djs/{index}.
func (h *FormHandler) UpdateDJ(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.mutate(w, r, func(f *orderform.Store) error {
		i, err := indexParam(r)
		if err != nil {
			return err
		}
		return f.UpdateDJName(i, req.Name)
	})
}

// RemoveDJ handles DELETE /api/form/djs/{index}.
func (h *FormHandler) RemoveDJ(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error {
		i, err := indexParam(r)
		if err != nil {
			return err
		}
		return f.RemoveDJ(i)
	})
}

// AddHost handles POST /api/form/hosts.
func (h *FormHandler) AddHost(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error { return f.AddHost() })
}

// UpdateHost handles PATCH /api/form/hosts/{index}.
func (h *FormHandler) UpdateHost(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.mutate(w, r, func(f *orderform.Store) error {
		i, err := indexParam(r)
		if err != nil {
			return err
		}
		return f.UpdateHostName(i, req.Name)
	})
}

// RemoveHost handles DELETE /api/form/hosts/{index}.
func (h *FormHandler) RemoveHost(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error {
		i, err := indexParam(r)
		if err != nil {
			return err
		}
		return f.RemoveHost(i)
	})
}

// ToggleExtra handles PUT /api/form/extras/{key}.
func (h *FormHandler) ToggleExtra(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(f *orderform.Store) error {
		_, err := f.ToggleExtra(orderform.ExtraKey(chi.URLParam(r, "key")))
		return err
	})
}

// SetDelivery handles PUT /api/form/delivery.
func (h *FormHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Option string `json:"option"`
	}
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.mutate(w, r, func(f *orderform.Store) error { return f.UpdateDeliveryTime(req.Option) })
}

// SetNote handles PUT /api/form/note.
func (h *FormHandler) SetNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}
	h.mutate(w, r, func(f *orderform.Store) error { return f.UpdateCustomNote(req.Note) })
}

// UploadPhoto handles POST /api/form/photos: a multipart form with target
// (venue, dj, host or sponsor), index and file.
func (h *FormHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid multipart upload", h.logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "file is required", h.logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(data) > maxUploadBytes {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "file is too large", h.logger)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	upload := &model.Upload{Filename: header.Filename, ContentType: contentType, Data: data}

	h.mutate(w, r, func(f *orderform.Store) error {
		return setPhoto(f, r.FormValue("target"), r.FormValue("index"), upload)
	})
}

// RemovePhoto handles DELETE /api/form/photos?target=&index=.
func (h *FormHandler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.mutate(w, r, func(f *orderform.Store) error {
		return setPhoto(f, q.Get("target"), q.Get("index"), nil)
	})
}

// setPhoto routes an upload, or a removal when upload is nil, to its slot.
func setPhoto(f *orderform.Store, target, index string, upload *model.Upload) error {
	i := 0
	if target != targetVenue {
		n, err := strconv.Atoi(index)
		if err != nil {
			return fmt.Errorf("%w: %q", model.ErrIndexOutOfRange, index)
		}
		i = n
	}

	switch target {
	case targetVenue:
		if upload == nil {
			return f.SetVenueText("")
		}
		return f.SetVenueLogo(upload)
	case targetDJ:
		return f.UpdateDJPhoto(i, upload)
	case targetHost:
		return f.UpdateHostPhoto(i, upload)
	case targetSponsor:
		return f.UpdateSponsor(i, upload)
	default:
		return fmt.Errorf("%w: photo target %q", model.ErrUnknownField, target)
	}
}

// submit runs a form submission that needs a signed-in user.
func (h *FormHandler) submit(w http.ResponseWriter, r *http.Request, fn func(*storefront.Session, string) (any, error)) {
	sess, userID, ok := signedIn(w, r, h.logger)
	if !ok {
		return
	}

	result, err := fn(sess, userID)
	if err != nil {
		writeErr(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AddToCart handles POST /api/form/cart. The response carries the reloaded cart.
func (h *FormHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(sess *storefront.Session, userID string) (any, error) {
		if err := sess.Form.AddToCart(r.Context(), sess.Cart, userID); err != nil {
			return nil, err
		}
		return newCartResponse(sess.Cart), nil
	})
}

// Checkout handles POST /api/form/checkout.
func (h *FormHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(sess *storefront.Session, userID string) (any, error) {
		return sess.Form.Checkout(r.Context(), userID)
	})
}

// TestOrder handles POST /api/form/test-order.
func (h *FormHandler) TestOrder(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(sess *storefront.Session, userID string) (any, error) {
		return sess.Form.TestOrder(r.Context(), userID)
	})
}
