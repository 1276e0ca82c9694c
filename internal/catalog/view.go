package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"flyer-kart/internal/filter"
	"flyer-kart/internal/model"
)

// View is one visitor's filtered slice of the catalog.
type View struct {
	store  *Store
	logger zerolog.Logger

	mu        sync.RWMutex
	selection filter.Selection
	visible   []model.Flyer
}

// NewView creates a view showing the whole catalog.
func NewView(store *Store, logger zerolog.Logger) *View {
	v := &View{
		store:  store,
		logger: logger.With().Str("component", "catalog-view").Logger(),
	}
	v.Apply(filter.Selection{})
	return v
}

// Apply recomputes the visible flyers for sel.
func (v *View) Apply(sel filter.Selection) {
	visible := v.store.Filter(sel)

	v.mu.Lock()
	v.selection = sel
	v.visible = visible
	v.mu.Unlock()

	v.logger.Debug().
		Str("price", sel.Price).
		Str("category", sel.Category).
		Int("visible", len(visible)).
		Msg("catalog view refreshed")
}

// Refresh re-applies the current selection, e.g. after a catalog reload.
func (v *View) Refresh() {
	v.Apply(v.Selection())
}

// Visible returns the flyers matching the current selection.
func (v *View) Visible() []model.Flyer {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Flyer(nil), v.visible...)
}

// Selection returns the selection the view was last filtered with.
func (v *View) Selection() filter.Selection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.selection
}

// Watch re-filters on every selection received until ctx is done or
// selections is closed.
func (v *View) Watch(ctx context.Context, selections <-chan filter.Selection) {
	for {
		select {
		case <-ctx.Done():
			return
		case sel, ok := <-selections:
			if !ok {
				return
			}
			v.Apply(sel)
		}
	}
}
