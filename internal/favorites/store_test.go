package favorites

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flyer-kart/internal/events"
	"flyer-kart/internal/model"
)

// MockFavoritesAPI is a mock implementation of backend.FavoritesAPI.
type MockFavoritesAPI struct {
	mock.Mock
}

func (m *MockFavoritesAPI) AddFavorite(ctx context.Context, userID string, flyerID model.ID) error {
	return m.Called(ctx, userID, flyerID).Error(0)
}

func (m *MockFavoritesAPI) RemoveFavorite(ctx context.Context, userID string, flyerID model.ID) error {
	return m.Called(ctx, userID, flyerID).Error(0)
}

func (m *MockFavoritesAPI) ListFavorites(ctx context.Context, userID string) ([]model.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func TestStore_ToggleRoundTrip(t *testing.T) {
	api := new(MockFavoritesAPI)
	api.On("AddFavorite", mock.Anything, "u1", model.ID("42")).Return(nil)
	api.On("RemoveFavorite", mock.Anything, "u1", model.ID("42")).Return(nil)
	store := NewStore(api, zerolog.Nop())
	ctx := context.Background()

	on, err := store.ToggleFavorite(ctx, "u1", "42")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, store.IsFavorited("42"))

	on, err = store.ToggleFavorite(ctx, "u1", "42")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, store.IsFavorited("42"))

	api.AssertExpectations(t)
}

func TestStore_RollbackOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		initial  bool
		method   string
		expected bool
	}{
		{name: "Failed add", initial: false, method: "AddFavorite", expected: false},
		{name: "Failed remove", initial: true, method: "RemoveFavorite", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockFavoritesAPI)
			store := NewStore(api, zerolog.Nop())
			if tt.initial {
				api.On("ListFavorites", mock.Anything, "u1").Return([]model.Favorite{{FlyerID: "42"}}, nil)
				require.NoError(t, store.FetchFavorites(context.Background(), "u1"))
			}
			api.On(tt.method, mock.Anything, "u1", model.ID("42")).Return(errors.New("server error"))

			on, err := store.ToggleFavorite(context.Background(), "u1", "42")

			assert.Error(t, err)
			assert.Equal(t, tt.expected, on, "returned membership matches the rolled-back state")
			assert.Equal(t, tt.expected, store.IsFavorited("42"))
			assert.False(t, store.IsPending("42"))
			assert.Error(t, store.Err())
		})
	}
}

func TestStore_OptimisticFlipAndPendingGuard(t *testing.T) {
	api := new(MockFavoritesAPI)
	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("AddFavorite", mock.Anything, "u1", model.ID("42")).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil)
	store := NewStore(api, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := store.ToggleFavorite(context.Background(), "u1", "42")
		done <- err
	}()
	<-entered

	assert.True(t, store.IsFavorited("42"), "flip is visible before the server answers")
	assert.True(t, store.IsPending("42"))
	_, err := store.ToggleFavorite(context.Background(), "u1", "42")
	assert.ErrorIs(t, err, model.ErrTogglePending)

	close(release)
	require.NoError(t, <-done)
	assert.True(t, store.IsFavorited("42"))
	assert.False(t, store.IsPending("42"))
}

func TestStore_FetchDiscardedAfterPurge(t *testing.T) {
	api := new(MockFavoritesAPI)
	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("ListFavorites", mock.Anything, "u1").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]model.Favorite{{FlyerID: "f1"}}, nil)
	store := NewStore(api, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		done <- store.FetchFavorites(context.Background(), "u1")
	}()
	<-entered

	store.Purge()
	close(release)
	require.NoError(t, <-done)

	assert.False(t, store.IsFavorited("f1"))
	assert.Empty(t, store.IDs())
	assert.Empty(t, store.Records())
	assert.False(t, store.IsLoading())
}

func TestStore_FetchFavorites(t *testing.T) {
	api := new(MockFavoritesAPI)
	api.On("ListFavorites", mock.Anything, "u1").Return([]model.Favorite{
		{ID: "1", FlyerID: "10"},
		{ID: "2", FlyerID: "20"},
	}, nil)
	api.On("RemoveFavorite", mock.Anything, "u1", model.ID("10")).Return(nil)
	store := NewStore(api, zerolog.Nop())

	require.NoError(t, store.FetchFavorites(context.Background(), "u1"))
	assert.ElementsMatch(t, []model.ID{"10", "20"}, store.IDs())
	assert.Len(t, store.Records(), 2)

	require.NoError(t, store.RemoveFromFavorites(context.Background(), "u1", "10"))
	assert.Len(t, store.Records(), 1)
	assert.Equal(t, []model.ID{"20"}, store.IDs())
}

func TestStore_AddIsIdempotent(t *testing.T) {
	api := new(MockFavoritesAPI)
	api.On("AddFavorite", mock.Anything, "u1", model.ID("42")).Return(nil).Once()
	store := NewStore(api, zerolog.Nop())

	require.NoError(t, store.AddToFavorites(context.Background(), "u1", "42"))
	require.NoError(t, store.AddToFavorites(context.Background(), "u1", "42"))

	api.AssertNumberOfCalls(t, "AddFavorite", 1)
}

func TestStore_RequiresUser(t *testing.T) {
	store := NewStore(new(MockFavoritesAPI), zerolog.Nop())

	_, err := store.ToggleFavorite(context.Background(), "", "42")
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	assert.ErrorIs(t, store.FetchFavorites(context.Background(), ""), model.ErrNotAuthenticated)
}

func TestStore_PurgeOnSessionEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := new(MockFavoritesAPI)
	api.On("AddFavorite", mock.Anything, "u1", model.ID("42")).Return(nil)
	store := NewStore(api, zerolog.Nop())
	require.NoError(t, store.AddToFavorites(ctx, "u1", "42"))

	hub := events.NewHub[events.SessionEvent]()
	go store.PurgeOnSessionEnd(ctx, hub)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(events.SessionEvent{Type: events.SessionEnded, UserID: "u1"})

	require.Eventually(t, func() bool { return len(store.IDs()) == 0 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, store.Records())
}
