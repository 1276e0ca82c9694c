package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-kart/internal/handler"
	"flyer-kart/internal/middleware"
	"flyer-kart/internal/storefront"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Auth      *handler.AuthHandler
	Cart      *handler.CartHandler
	Favorites *handler.FavoritesHandler
	Form      *handler.FormHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	AllowedOrigin string
	Cookie        middleware.CookieOptions
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, reg *storefront.Registry, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))
	r.Use(middleware.Session(reg, opts.Cookie, logger))

	// Health check endpoint (no session required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/flyers", h.Catalog.Flyers)
			r.Get("/flyers/{flyerID}", h.Catalog.Flyer)
			r.Get("/recent", h.Catalog.Recent)
			r.Get("/featured", h.Catalog.Featured)
			r.Get("/categories", h.Catalog.Categories)
			r.Get("/banners", h.Catalog.Banners)
		})

		r.Put("/filter", h.Catalog.SetFilter)
		r.Delete("/filter", h.Catalog.ClearFilter)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
			r.Post("/otp/send", h.Auth.SendOTP)
			r.Post("/otp/verify", h.Auth.VerifyOTP)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Delete("/{itemID}", h.Cart.Remove)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Favorites.List)
			r.Post("/{flyerID}/toggle", h.Favorites.Toggle)
		})

		r.Route("/form", func(r chi.Router) {
			r.Get("/", h.Form.Get)
			r.Patch("/event", h.Form.UpdateEvent)
			r.Put("/venue", h.Form.SetVenue)

			r.Post("/djs", h.Form.AddDJ)
			r.Patch("/djs/{index}", h.Form.UpdateDJ)
			r.Delete("/djs/{index}", h.Form.RemoveDJ)

			r.Post("/hosts", h.Form.AddHost)
			r.Patch("/hosts/{index}", h.Form.UpdateHost)
			r.Delete("/hosts/{index}", h.Form.RemoveHost)

			r.Put("/extras/{key}", h.Form.ToggleExtra)
			r.Put("/delivery", h.Form.SetDelivery)
			r.Put("/note", h.Form.SetNote)

			r.Post("/photos", h.Form.UploadPhoto)
			r.Delete("/photos", h.Form.RemovePhoto)

			r.Post("/cart", h.Form.AddToCart)
			r.Post("/checkout", h.Form.Checkout)
			r.Post("/test-order", h.Form.TestOrder)

			// Static segments above take precedence over the flyer id.
			r.Post("/{flyerID}", h.Form.Load)
		})
	})

	return r
}
