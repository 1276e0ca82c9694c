// Package catalog caches the remote flyer catalog and derives filtered views.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/filter"
	"flyer-kart/internal/model"
)

// Store holds the last loaded catalog. Collections are replaced wholesale on
// every load and exposed as copies.
type Store struct {
	api    backend.CatalogAPI
	logger zerolog.Logger

	mu         sync.RWMutex
	flyers     []model.Flyer
	categories []model.Category
	banners    []model.Banner
	loading    bool
	err        error
	loadedAt   time.Time
}

// NewStore creates an empty catalog store.
func NewStore(api backend.CatalogAPI, logger zerolog.Logger) *Store {
	return &Store{
		api:    api,
		logger: logger.With().Str("store", "catalog").Logger(),
	}
}

// Load fetches flyers, categories and banners concurrently. On failure the
// previous collections are kept and the error is recorded.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.err = nil
	s.mu.Unlock()

	var (
		flyers     []model.Flyer
		categories []model.Category
		banners    []model.Banner
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		flyers, err = s.api.ListFlyers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		banners, err = s.api.ListBanners(gctx)
		return err
	})

	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.err = err
		s.logger.Error().Err(err).Msg("failed to load catalog")
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	s.flyers = flyers
	s.categories = categories
	s.banners = banners
	s.loadedAt = time.Now()

	s.logger.Info().
		Int("flyers", len(flyers)).
		Int("categories", len(categories)).
		Int("banners", len(banners)).
		Msg("catalog loaded")

	return nil
}

// Flyers returns every loaded flyer.
func (s *Store) Flyers() []model.Flyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Flyer(nil), s.flyers...)
}

// Categories returns the loaded categories.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Banners returns the active banners.
func (s *Store) Banners() []model.Banner {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Banner, 0, len(s.banners))
	for _, b := range s.banners {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// Flyer looks a flyer up by id in the loaded catalog.
func (s *Store) Flyer(id model.ID) (model.Flyer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flyers {
		if f.ID == id {
			return f, true
		}
	}
	return model.Flyer{}, false
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

// LoadedAt is the time of the last successful load.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// ByCategory returns flyers in the named category.
func (s *Store) ByCategory(name string) []model.Flyer {
	return s.Filter(filter.Selection{Category: name})
}

// ByPriceTier returns flyers in the given price tier.
func (s *Store) ByPriceTier(tier string) []model.Flyer {
	return s.Filter(filter.Selection{Price: tier})
}

// Recent returns recently added flyers, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) []model.Flyer {
	s.mu.RLock()
	var out []model.Flyer
	for _, f := range s.flyers {
		if f.RecentlyAdded {
			out = append(out, f)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Featured returns flyers flagged as featured.
func (s *Store) Featured() []model.Flyer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Flyer
	for _, f := range s.flyers {
		if f.Featured {
			out = append(out, f)
		}
	}
	return out
}

// Filter returns flyers matching sel. A zero selection returns everything.
func (s *Store) Filter(sel filter.Selection) []model.Flyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Match(s.flyers, sel)
}

// Match applies sel to flyers.
func Match(flyers []model.Flyer, sel filter.Selection) []model.Flyer {
	out := make([]model.Flyer, 0, len(flyers))
	for _, f := range flyers {
		if matchesPrice(&f, sel.Price) && matchesCategory(&f, sel.Category) {
			out = append(out, f)
		}
	}
	return out
}

func matchesCategory(f *model.Flyer, category string) bool {
	if category == "" || strings.EqualFold(category, "all") {
		return true
	}
	return f.Categories.Contains(category)
}

// matchesPrice accepts a tier label ("Premium") or an amount ("$15", "40").
func matchesPrice(f *model.Flyer, tier string) bool {
	if tier == "" || strings.EqualFold(tier, "all") {
		return true
	}
	if f.PriceTier != "" && strings.EqualFold(f.PriceTier, tier) {
		return true
	}

	want, err := model.ParsePriceString(tier)
	if err != nil {
		return false
	}
	return f.PriceError == nil && f.Price.Equal(want)
}

// SimilarTo returns flyers sharing at least one category with product,
// excluding the product itself.
func SimilarTo(product *model.Flyer, flyers []model.Flyer) []model.Flyer {
	out := make([]model.Flyer, 0)
	for i := range flyers {
		if flyers[i].ID == product.ID {
			continue
		}
		if product.SharesCategory(&flyers[i]) {
			out = append(out, flyers[i])
		}
	}
	return out
}
