package orderform

import (
	"context"

	"github.com/stretchr/testify/mock"

	"flyer-kart/internal/backend"
	"flyer-kart/internal/model"
)

// MockCatalogAPI is a mock implementation of backend.CatalogAPI.
type MockCatalogAPI struct {
	mock.Mock
}

func (m *MockCatalogAPI) ListFlyers(ctx context.Context) ([]model.Flyer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Flyer), args.Error(1)
}

func (m *MockCatalogAPI) GetFlyer(ctx context.Context, id model.ID) (*model.Flyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Flyer), args.Error(1)
}

func (m *MockCatalogAPI) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCatalogAPI) ListBanners(ctx context.Context) ([]model.Banner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Banner), args.Error(1)
}

// MockCheckoutAPI is a mock implementation of backend.CheckoutAPI.
type MockCheckoutAPI struct {
	mock.Mock
}

func (m *MockCheckoutAPI) CreateCheckoutSession(ctx context.Context, payload *backend.Multipart) (*model.CheckoutSession, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSession), args.Error(1)
}

func (m *MockCheckoutAPI) GetSessionURL(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutAPI) TestOrder(ctx context.Context, payload *backend.Multipart) (*model.TestOrderResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TestOrderResult), args.Error(1)
}

// MockCart is a mock implementation of CartAdder.
type MockCart struct {
	mock.Mock
}

func (m *MockCart) AddToCart(ctx context.Context, userID string, payload *backend.Multipart) error {
	args := m.Called(ctx, userID, payload)
	return args.Error(0)
}

type stubSamples struct {
	flyers []model.Flyer
	err    error
}

func (s *stubSamples) Flyers(ctx context.Context) ([]model.Flyer, error) {
	return s.flyers, s.err
}
