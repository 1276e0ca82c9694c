package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/events"
	"flyer-kart/internal/model"
)

// MockCartAPI is a mock implementation of backend.CartAPI.
type MockCartAPI struct {
	mock.Mock
}

func (m *MockCartAPI) GetCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartItem), args.Error(1)
}

func (m *MockCartAPI) AddToCart(ctx context.Context, payload *backend.Multipart) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *MockCartAPI) RemoveFromCart(ctx context.Context, itemID model.ID) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *MockCartAPI) ClearCart(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func item(id model.ID, price int64, status string) model.CartItem {
	return model.CartItem{
		ID:         id,
		UserID:     "u1",
		Status:     status,
		TotalPrice: model.NewAmount(decimal.NewFromInt(price)),
	}
}

func TestStore_Load(t *testing.T) {
	api := new(MockCartAPI)
	api.On("GetCart", mock.Anything, "u1").Return([]model.CartItem{item("1", 10, ""), item("2", 15, "paid")}, nil)
	store := NewStore(api, zerolog.Nop())

	require.NoError(t, store.Load(context.Background(), "u1"))

	assert.Equal(t, 2, store.Count())
	assert.False(t, store.IsEmpty())
	assert.True(t, decimal.NewFromInt(25).Equal(store.TotalPrice()))
	assert.Equal(t, "$25.00", store.FormattedTotalPrice())
	assert.Equal(t, ViewItems, store.View())

	groups := store.ItemsByStatus()
	assert.Len(t, groups[model.DefaultCartStatus], 1)
	assert.Len(t, groups["paid"], 1)
}

func TestStore_Load_Anonymous(t *testing.T) {
	store := NewStore(new(MockCartAPI), zerolog.Nop())
	assert.ErrorIs(t, store.Load(context.Background(), ""), model.ErrNotAuthenticated)
}

func TestStore_View(t *testing.T) {
	t.Run("Empty cart renders empty state", func(t *testing.T) {
		api := new(MockCartAPI)
		api.On("GetCart", mock.Anything, "u1").Return([]model.CartItem{}, nil)
		store := NewStore(api, zerolog.Nop())

		require.NoError(t, store.Load(context.Background(), "u1"))

		assert.False(t, store.IsLoading())
		assert.NoError(t, store.Err())
		assert.Equal(t, ViewEmpty, store.View())
	})

	t.Run("Failure renders error state", func(t *testing.T) {
		api := new(MockCartAPI)
		api.On("GetCart", mock.Anything, "u1").Return(nil, errors.New("timeout"))
		store := NewStore(api, zerolog.Nop())

		require.Error(t, store.Load(context.Background(), "u1"))

		assert.Equal(t, ViewError, store.View())
	})
}

func TestStore_MutationsReload(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(api *MockCartAPI)
		mutate func(s *Store) error
	}{
		{
			name:   "Add",
			setup:  func(api *MockCartAPI) { api.On("AddToCart", mock.Anything, mock.Anything).Return(nil) },
			mutate: func(s *Store) error { return s.AddToCart(context.Background(), "u1", &backend.Multipart{}) },
		},
		{
			name:   "Remove",
			setup:  func(api *MockCartAPI) { api.On("RemoveFromCart", mock.Anything, model.ID("1")).Return(nil) },
			mutate: func(s *Store) error { return s.RemoveFromCart(context.Background(), "1", "u1") },
		},
		{
			name:   "Clear",
			setup:  func(api *MockCartAPI) { api.On("ClearCart", mock.Anything, "u1").Return(nil) },
			mutate: func(s *Store) error { return s.ClearCart(context.Background(), "u1") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockCartAPI)
			tt.setup(api)
			// The server answer wins, whatever the mutation was.
			serverCopy := []model.CartItem{item("9", 40, "pending")}
			api.On("GetCart", mock.Anything, "u1").Return(serverCopy, nil).Once()
			store := NewStore(api, zerolog.Nop())

			require.NoError(t, tt.mutate(store))

			assert.Equal(t, serverCopy, store.Items())
			api.AssertExpectations(t)
		})
	}
}

func TestStore_MutationFailureSkipsReload(t *testing.T) {
	api := new(MockCartAPI)
	api.On("RemoveFromCart", mock.Anything, model.ID("1")).Return(errors.New("forbidden"))
	store := NewStore(api, zerolog.Nop())

	err := store.RemoveFromCart(context.Background(), "1", "u1")

	assert.Error(t, err)
	assert.Equal(t, ViewError, store.View())
	api.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
}

func TestStore_StaleLoadDiscarded(t *testing.T) {
	api := new(MockCartAPI)
	release := make(chan struct{})
	entered := make(chan struct{})
	stale := []model.CartItem{item("old", 10, "")}
	fresh := []model.CartItem{item("new", 15, "")}

	api.On("GetCart", mock.Anything, "u1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(stale, nil).Once()
	api.On("GetCart", mock.Anything, "u1").Return(fresh, nil).Once()

	store := NewStore(api, zerolog.Nop())

	done := make(chan error, 1)
	go func() { done <- store.Load(context.Background(), "u1") }()
	<-entered

	require.NoError(t, store.Load(context.Background(), "u1"))
	close(release)
	require.NoError(t, <-done)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, model.ID("new"), items[0].ID)
	assert.False(t, store.IsLoading())
}

func TestStore_PurgeOnSessionEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := new(MockCartAPI)
	api.On("GetCart", mock.Anything, "u1").Return([]model.CartItem{item("1", 10, "")}, nil)
	store := NewStore(api, zerolog.Nop())
	require.NoError(t, store.Load(ctx, "u1"))

	hub := events.NewHub[events.SessionEvent]()
	go store.PurgeOnSessionEnd(ctx, hub)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(events.SessionEvent{Type: events.SessionRefreshed, UserID: "u1"})
	hub.Publish(events.SessionEvent{Type: events.SessionEnded, UserID: "u1"})

	require.Eventually(t, store.IsEmpty, time.Second, 5*time.Millisecond)
	assert.Equal(t, ViewEmpty, store.View())
}
