package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/catalog"
	"flyer-kart/internal/handler"
	"flyer-kart/internal/middleware"
	"flyer-kart/internal/router"
	"flyer-kart/internal/session"
	"flyer-kart/internal/storefront"
)

// TestRedis represents a throwaway Redis instance for session storage.
type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
}

// SetupTestRedis starts a Redis container.
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestRedis{Container: container, Client: client}
}

// testProvider signs anyone in as user u1.
type testProvider struct{}

func (testProvider) SignIn(ctx context.Context, email, password string) (*session.Tokens, error) {
	return &session.Tokens{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (testProvider) SignUp(ctx context.Context, name, email, password string) (*session.SignUpResult, error) {
	return &session.SignUpResult{UserSub: "u1", Confirmed: true}, nil
}

func (testProvider) SignOut(ctx context.Context, accessToken string) error { return nil }

func (testProvider) CurrentUser(ctx context.Context, accessToken string) (*session.ProviderUser, error) {
	return &session.ProviderUser{Subject: "u1", Email: "dj@example.com", Name: "DJ Nova"}, nil
}

func (testProvider) Refresh(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	return &session.Tokens{AccessToken: "access-2", RefreshToken: refreshToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (testProvider) ForgotPassword(ctx context.Context, email string) error { return nil }

func (testProvider) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	return nil
}

const flyersJSON = `[
	{"id":"f1","title":"Neon Nights","price":10,"form_type":"No Photo","categories":["Club"],"recently_added":true},
	{"id":"f2","title":"Rooftop Vibes","price":"$15.00","hasPhotos":true,"categories":["Club","Day Party"],"featured":true},
	{"id":"f3","title":"Sweet Sixteen","price":"$40.00","form_type":"Birthday","categories":["Birthday"]}
]`

// FakeBackend is an in-memory flyer backend holding one cart and one
// favorites list per user.
type FakeBackend struct {
	mu        sync.Mutex
	carts     map[string][]map[string]any
	favorites map[string][]string
	nextItem  int
	Server    *httptest.Server
}

// NewFakeBackend starts the fake backend.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		carts:     make(map[string][]map[string]any),
		favorites: make(map[string][]string),
		nextItem:  100,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flyers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, flyersJSON)
	})
	mux.HandleFunc("GET /api/flyers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f := findFlyer(r.PathValue("id")); f != nil {
			_ = json.NewEncoder(w).Encode(f)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"flyer not found"}`)
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Club"},{"id":2,"name":"Birthday"}]}`)
	})
	mux.HandleFunc("GET /api/banners", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/cart/{userID}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		items := fb.carts[r.PathValue("userID")]
		if items == nil {
			items = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(items)
	})
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.nextItem++
		userID := r.FormValue("userId")
		fb.carts[userID] = append(fb.carts[userID], map[string]any{
			"id":          fb.nextItem,
			"total_price": r.FormValue("total_price"),
			"status":      "active",
			"flyer":       findFlyer(r.FormValue("flyerId")),
		})
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/cart/clear/{userID}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		delete(fb.carts, r.PathValue("userID"))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/favorites/user/{userID}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		out := []map[string]any{}
		for _, id := range fb.favorites[r.PathValue("userID")] {
			out = append(out, map[string]any{"flyer_id": id, "flyer": findFlyer(id)})
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /api/favorites/add", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID  string `json:"userId"`
			FlyerID string `json:"flyerId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.favorites[body.UserID] = append(fb.favorites[body.UserID], body.FlyerID)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/checkout/create-session", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"sessionId":"cs_1"}`)
	})
	mux.HandleFunc("GET /api/checkout/get-session-url", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"url":"https://pay.example/`+r.URL.Query().Get("sessionId")+`"}`)
	})
	mux.HandleFunc("POST /api/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Server.Close)
	return fb
}

// CartLen returns the number of line items the backend holds for userID.
func (fb *FakeBackend) CartLen(userID string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.carts[userID])
}

func findFlyer(id string) map[string]any {
	var flyers []map[string]any
	_ = json.Unmarshal([]byte(flyersJSON), &flyers)
	for _, f := range flyers {
		if f["id"] == id {
			return f
		}
	}
	return nil
}

// TestServer is a fully wired storefront over a backend and a session persister.
type TestServer struct {
	Handler  http.Handler
	Registry *storefront.Registry
}

// SetupTestServer wires the storefront the way the server binary does.
func SetupTestServer(t *testing.T, fb *FakeBackend, persister session.Persister) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()

	client := backend.New(fb.Server.URL, fb.Server.Client(), logger)
	store := catalog.NewStore(client, logger)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	reg := storefront.NewRegistry(storefront.Deps{
		Catalog:    store,
		CatalogAPI: client,
		Cart:       client,
		Favorites:  client,
		Checkout:   client,
		Users:      client,
		Provider:   testProvider{},
		Persister:  persister,
	}, logger)
	t.Cleanup(reg.CloseAll)

	h := router.New(router.Handlers{
		Catalog:   handler.NewCatalogHandler(store, logger),
		Auth:      handler.NewAuthHandler(logger),
		Cart:      handler.NewCartHandler(logger),
		Favorites: handler.NewFavoritesHandler(logger),
		Form:      handler.NewFormHandler(logger),
	}, reg, router.Options{
		AllowedOrigin: "http://localhost:3000",
		Cookie:        middleware.CookieOptions{MaxAge: time.Hour},
	}, logger)

	return &TestServer{Handler: h, Registry: reg}
}
