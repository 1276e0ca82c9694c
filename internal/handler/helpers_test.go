package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/catalog"
	"flyer-kart/internal/middleware"
	"flyer-kart/internal/session"
	"flyer-kart/internal/storefront"
)

// stubProvider signs anyone in as user u1.
type stubProvider struct{}

func (stubProvider) SignIn(ctx context.Context, email, password string) (*session.Tokens, error) {
	return &session.Tokens{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubProvider) SignUp(ctx context.Context, name, email, password string) (*session.SignUpResult, error) {
	return &session.SignUpResult{UserSub: "u1"}, nil
}

func (stubProvider) SignOut(ctx context.Context, accessToken string) error { return nil }

func (stubProvider) CurrentUser(ctx context.Context, accessToken string) (*session.ProviderUser, error) {
	return &session.ProviderUser{Subject: "u1", Email: "dj@example.com", Name: "DJ Nova"}, nil
}

func (stubProvider) Refresh(ctx context.Context, refreshToken string) (*session.Tokens, error) {
	return &session.Tokens{AccessToken: "access", RefreshToken: refreshToken}, nil
}

func (stubProvider) ForgotPassword(ctx context.Context, email string) error { return nil }

func (stubProvider) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	return nil
}

const flyersJSON = `[
	{"id":"f1","title":"Neon Nights","price":10,"categories":["Club"],"recently_added":true},
	{"id":"f2","title":"Rooftop Vibes","price":"$15.00","hasPhotos":true,"categories":["Club","Day Party"],"featured":true}
]`

// fakeBackend serves the subset of the flyer backend the handlers reach.
func fakeBackend(t *testing.T) *backend.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/flyers", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, flyersJSON)
	})
	mux.HandleFunc("GET /api/flyers/{id}", func(w http.ResponseWriter, r *http.Request) {
		var flyers []map[string]any
		_ = json.Unmarshal([]byte(flyersJSON), &flyers)
		for _, f := range flyers {
			if f["id"] == r.PathValue("id") {
				_ = json.NewEncoder(w).Encode(f)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"Club"}]`)
	})
	mux.HandleFunc("GET /api/banners", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"Summer","active":true},{"id":2,"title":"Old","active":false}]`)
	})
	mux.HandleFunc("GET /api/cart/u1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":7,"total_price":"25.00","flyer":{"id":"f1","title":"Neon Nights","price":10}}]`)
	})
	mux.HandleFunc("POST /api/cart/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("DELETE /api/cart/clear/u1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/favorites/user/u1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	mux.HandleFunc("POST /api/favorites/add", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /api/checkout/create-session", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"sessionId":"cs_1","url":"https://pay.example/cs_1"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL, srv.Client(), zerolog.Nop())
}

type testEnv struct {
	catalog *catalog.Store
	reg     *storefront.Registry
	sess    *storefront.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	client := fakeBackend(t)
	store := catalog.NewStore(client, zerolog.Nop())
	require.NoError(t, store.Load(context.Background()))

	reg := storefront.NewRegistry(storefront.Deps{
		Catalog:    store,
		CatalogAPI: client,
		Cart:       client,
		Favorites:  client,
		Checkout:   client,
		Users:      client,
		Provider:   stubProvider{},
		Persister:  session.NewMemoryPersister(time.Hour),
	}, zerolog.Nop())
	t.Cleanup(reg.CloseAll)

	return &testEnv{catalog: store, reg: reg, sess: reg.Create()}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := e.sess.Auth.Login(context.Background(), session.Credentials{Email: "dj@example.com", Password: "secret"})
	require.NoError(t, err)
}

// serve calls h with the env's session and the given chi URL params.
func (e *testEnv) serve(h http.HandlerFunc, req *http.Request, params map[string]string) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithSession(ctx, e.sess)

	w := httptest.NewRecorder()
	h(w, req.WithContext(ctx))
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	return httptest.NewRequest(method, path, &buf)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}
