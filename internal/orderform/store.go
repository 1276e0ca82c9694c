// Package orderform holds the in-progress flyer order and its derived pricing.
package orderform

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/catalog"
	"flyer-kart/internal/model"
	"flyer-kart/internal/variant"
)

// SampleSource provides the local sample catalog used when the remote
// catalog is unreachable.
type SampleSource interface {
	Flyers(ctx context.Context) ([]model.Flyer, error)
}

// Store owns a single order form. It is safe for concurrent use; network
// calls are made without holding the lock.
type Store struct {
	catalog  backend.CatalogAPI
	checkout backend.CheckoutAPI
	samples  SampleSource
	logger   zerolog.Logger

	mu         sync.RWMutex
	flyer      *model.Flyer
	layout     variant.Layout
	state      State
	similar    []model.Flyer
	loading    bool
	err        error
	gen        uint64
	submitting bool
}

// NewStore creates an empty order form. samples may be nil.
func NewStore(catalogAPI backend.CatalogAPI, checkout backend.CheckoutAPI, samples SampleSource, logger zerolog.Logger) *Store {
	return &Store{
		catalog:  catalogAPI,
		checkout: checkout,
		samples:  samples,
		logger:   logger.With().Str("store", "orderform").Logger(),
		state:    newState(),
	}
}

// FetchFlyer loads a flyer and resets the form to its defaults. A flyer
// whose price is missing, malformed or not positive is rejected with
// model.ErrInvalidPrice and the form is left empty.
func (s *Store) FetchFlyer(ctx context.Context, id model.ID, refreshSimilar bool) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	flyer, err := s.catalog.GetFlyer(ctx, id)
	if err == nil && !flyer.Orderable() {
		s.logger.Error().
			AnErr("price_error", flyer.PriceError).
			Str("flyer_id", id.String()).
			Str("price", flyer.Price.String()).
			Msg("flyer has no orderable price")
		err = fmt.Errorf("flyer %s: %w", id, model.ErrInvalidPrice)
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug().Str("flyer_id", id.String()).Msg("discarding stale flyer response")
		return nil
	}

	s.loading = false
	if err != nil {
		s.flyer = nil
		s.state = newState()
		s.layout = variant.Layout{}
		s.similar = nil
		s.err = err
		s.mu.Unlock()

		if !errors.Is(err, model.ErrInvalidPrice) {
			s.logger.Error().Err(err).Str("flyer_id", id.String()).Msg("failed to fetch flyer")
		}
		return err
	}

	v := variant.Select(variant.AttributesOf(flyer))
	s.flyer = flyer
	s.layout = variant.LayoutFor(v, flyer.HasPhotos)
	s.state = newState()
	s.state.Event.FlyerID = flyer.ID
	s.state.Event.CategoryID = flyer.CategoryID
	s.similar = nil
	s.mu.Unlock()

	s.logger.Info().
		Str("flyer_id", id.String()).
		Str("variant", string(v)).
		Str("price", flyer.Price.String()).
		Msg("flyer loaded")

	if refreshSimilar {
		if err := s.FetchSimilarFlyers(ctx); err != nil {
			s.logger.Warn().Err(err).Str("flyer_id", id.String()).Msg("similar flyers unavailable")
		}
	}

	return nil
}

// FetchSimilarFlyers loads flyers sharing a category with the current flyer.
// When the catalog is unreachable the local sample set is used instead.
func (s *Store) FetchSimilarFlyers(ctx context.Context) error {
	s.mu.RLock()
	if s.flyer == nil {
		s.mu.RUnlock()
		return model.ErrFormNotLoaded
	}
	product := *s.flyer
	gen := s.gen
	s.mu.RUnlock()

	flyers, err := s.catalog.ListFlyers(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog unavailable, using sample flyers")
		if s.samples == nil {
			return fmt.Errorf("failed to fetch similar flyers: %w", err)
		}
		flyers, err = s.samples.Flyers(ctx)
		if err != nil {
			return fmt.Errorf("failed to load sample flyers: %w", err)
		}
	}

	similar := catalog.SimilarTo(&product, flyers)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return nil
	}
	s.similar = similar
	return nil
}

// Flyer returns the loaded flyer, or nil.
func (s *Store) Flyer() *model.Flyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flyer == nil {
		return nil
	}
	f := *s.flyer
	return &f
}

// Layout returns the slot layout of the loaded flyer.
func (s *Store) Layout() variant.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// State returns a copy of the form state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Similar returns the similar flyers of the last fetch.
func (s *Store) Similar() []model.Flyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Flyer(nil), s.similar...)
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Subtotal is recomputed from the flyer price, extras and delivery on every call.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subtotalLocked()
}

func (s *Store) subtotalLocked() decimal.Decimal {
	if s.flyer == nil {
		return decimal.Zero
	}
	return Subtotal(s.flyer.Price, s.state.Extras, s.state.Delivery)
}

// ValidateForm checks the fields required for submission.
func (s *Store) ValidateForm() Validation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate(&s.state)
}

// Snapshot is a read-only view of the whole form.
type Snapshot struct {
	Flyer      *model.Flyer    `json:"flyer"`
	Variant    variant.Variant `json:"variant"`
	Layout     variant.Layout  `json:"layout"`
	State      State           `json:"state"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Breakdown  []PriceLine     `json:"breakdown"`
	Validation Validation      `json:"validation"`
	Similar    []model.Flyer   `json:"similar"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
}

// Snapshot copies the current form.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Layout:     s.layout,
		Variant:    s.layout.Variant,
		State:      s.state.clone(),
		Subtotal:   s.subtotalLocked(),
		Validation: validate(&s.state),
		Similar:    append([]model.Flyer{}, s.similar...),
		Loading:    s.loading,
	}
	if s.flyer != nil {
		f := *s.flyer
		snap.Flyer = &f
		snap.Breakdown = Breakdown(&f, s.state.Extras, s.state.Delivery)
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}
