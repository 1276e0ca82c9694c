package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyer-kart/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client(), zerolog.Nop())
}

func TestClient_ListFlyers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Bare array", body: `[{"id":1,"title":"A","price":"$15.00"},{"id":"2","title":"B","price":10}]`},
		{name: "Data envelope", body: `{"data":[{"id":1,"title":"A","price":"$15.00"},{"id":"2","title":"B","price":10}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/flyers", r.URL.Path)
				_, _ = io.WriteString(w, tt.body)
			})

			flyers, err := client.ListFlyers(context.Background())

			require.NoError(t, err)
			require.Len(t, flyers, 2)
			assert.Equal(t, model.ID("1"), flyers[0].ID)
			assert.True(t, decimal.NewFromInt(15).Equal(flyers[0].Price))
			assert.True(t, decimal.NewFromInt(10).Equal(flyers[1].Price))
		})
	}
}

func TestClient_GetFlyer(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/flyers/f1", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":"f1","title":"Neon","price":"40"}`)
		})

		flyer, err := client.GetFlyer(context.Background(), "f1")

		require.NoError(t, err)
		assert.Equal(t, "Neon", flyer.Title)
	})

	t.Run("Not found maps to domain error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"no such flyer"}`)
		})

		flyer, err := client.GetFlyer(context.Background(), "missing")

		assert.Nil(t, flyer)
		assert.True(t, errors.Is(err, model.ErrFlyerNotFound))
	})

	t.Run("Server error keeps status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"database down"}`)
		})

		_, err := client.GetFlyer(context.Background(), "f1")

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		assert.Equal(t, "database down", se.Message)
	})
}

func TestClient_ListBanners_MissingEndpoint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	banners, err := client.ListBanners(context.Background())

	require.NoError(t, err)
	assert.Empty(t, banners)
}

func TestClient_CartEndpoints(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":7,"total_price":"25.00","status":"paid"}]`)
		case r.URL.Path == "/api/cart/add":
			assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "u1", r.FormValue("userId"))
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	items, err := client.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "paid", items[0].Status)

	payload, err := NewFormBuilder().Field("userId", "u1").Build()
	require.NoError(t, err)
	require.NoError(t, client.AddToCart(ctx, payload))
	require.NoError(t, client.RemoveFromCart(ctx, "7"))
	require.NoError(t, client.ClearCart(ctx, "u1"))

	assert.Equal(t, []string{
		"GET /api/cart/u1",
		"POST /api/cart/add",
		"DELETE /api/cart/remove/7",
		"DELETE /api/cart/clear/u1",
	}, calls)
}

func TestClient_Favorites(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			assert.Equal(t, "/api/favorites/user/u1", r.URL.Path)
			_, _ = io.WriteString(w, `[{"id":1,"user_id":"u1","flyer_id":42}]`)
			return
		}

		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req["userId"])
		assert.Equal(t, "42", req["flyerId"])
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	require.NoError(t, client.AddFavorite(ctx, "u1", "42"))
	require.NoError(t, client.RemoveFavorite(ctx, "u1", "42"))

	favs, err := client.ListFavorites(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, model.ID("42"), favs[0].FlyerID)
}

func TestClient_Checkout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/checkout/create-session":
			_, _ = io.WriteString(w, `{"sessionId":"cs_1","url":"https://pay.example/cs_1"}`)
		case "/api/checkout/get-session-url":
			assert.Equal(t, "cs_1", r.URL.Query().Get("sessionId"))
			_, _ = io.WriteString(w, `{"url":"https://pay.example/cs_1"}`)
		case "/api/test-order":
			_, _ = io.WriteString(w, `{"valid":true,"received":{"flyerId":"f1"}}`)
		}
	})
	ctx := context.Background()
	payload, err := NewFormBuilder().Field("flyerId", "f1").Build()
	require.NoError(t, err)

	session, err := client.CreateCheckoutSession(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.SessionID)

	url, err := client.GetSessionURL(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_1", url)

	result, err := client.TestOrder(ctx, payload)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "f1", result.Received["flyerId"])
}

func TestClient_RegisterUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users", r.URL.Path)
		var user model.AuthUser
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		assert.Equal(t, "dj@example.com", user.Email)
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, "already exists")
	})

	err := client.RegisterUser(context.Background(), &model.AuthUser{ID: "u1", Email: "dj@example.com"})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "already exists", se.Message)
}

func TestFormBuilder_RoundTrip(t *testing.T) {
	payload, err := NewFormBuilder().
		Field("event_title", "Neon Nights").
		File("venue_logo", &model.Upload{Filename: "logo.png", ContentType: "image/png", Data: []byte("png")}).
		File("dj_photo_0", nil).
		Build()
	require.NoError(t, err)

	form, err := payload.Form()
	require.NoError(t, err)

	assert.Equal(t, []string{"Neon Nights"}, form.Value["event_title"])
	require.Len(t, form.File["venue_logo"], 1)
	assert.Equal(t, "logo.png", form.File["venue_logo"][0].Filename)
	assert.Empty(t, form.File["dj_photo_0"])
}
