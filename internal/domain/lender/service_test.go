package lender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"loan-marketplace/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Lender, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Lender), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, lenderID int64) (*Lender, error) {
	args := m.Called(ctx, lenderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Lender), args.Error(1)
}

func (m *MockRepository) RefreshStatistics(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) GetCatalog(ctx context.Context) ([]Lender, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]Lender), args.Bool(1), args.Error(2)
}

func (m *MockCatalogCache) SetCatalog(ctx context.Context, lenders []Lender) error {
	return m.Called(ctx, lenders).Error(0)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func newTestService(cache CatalogCache) (*MockRepository, Service) {
	repo := new(MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, NewService(repo, cache, logger)
}

func TestService_Catalog(t *testing.T) {
	ctx := context.Background()
	catalog := []Lender{{ID: 1, Name: "Avanse"}, {ID: 2, Name: "Credila"}}

	t.Run("Cache hit skips the database", func(t *testing.T) {
		cache := new(MockCatalogCache)
		repo, svc := newTestService(cache)
		cache.On("GetCatalog", ctx).Return(catalog, true, nil).Once()

		got, err := svc.Catalog(ctx)
		require.NoError(t, err)
		assert.Equal(t, catalog, got)
		repo.AssertNotCalled(t, "ListActive", mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("Cache miss reads through and populates", func(t *testing.T) {
		cache := new(MockCatalogCache)
		repo, svc := newTestService(cache)
		cache.On("GetCatalog", ctx).Return(nil, false, nil).Once()
		repo.On("ListActive", ctx).Return(catalog, nil).Once()
		cache.On("SetCatalog", ctx, catalog).Return(nil).Once()

		got, err := svc.Catalog(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("Cache errors never fail the call", func(t *testing.T) {
		cache := new(MockCatalogCache)
		repo, svc := newTestService(cache)
		cache.On("GetCatalog", ctx).Return(nil, false, errors.New("redis down")).Once()
		repo.On("ListActive", ctx).Return(catalog, nil).Once()
		cache.On("SetCatalog", ctx, catalog).Return(errors.New("redis down")).Once()

		got, err := svc.Catalog(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Without cache", func(t *testing.T) {
		repo, svc := newTestService(nil)
		repo.On("ListActive", ctx).Return(nil, apperrors.ErrDatabase).Once()

		_, err := svc.Catalog(ctx)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestService_GetLender(t *testing.T) {
	ctx := context.Background()
	repo, svc := newTestService(nil)
	repo.On("GetByID", ctx, int64(9)).Return(nil, apperrors.ErrNotFound).Once()
	repo.On("GetByID", ctx, int64(1)).Return(&Lender{ID: 1, Name: "Avanse"}, nil).Once()

	_, err := svc.GetLender(ctx, 9)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	l, err := svc.GetLender(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Avanse", l.Name)
}

func TestService_RefreshStatistics(t *testing.T) {
	ctx := context.Background()
	cache := new(MockCatalogCache)
	repo, svc := newTestService(cache)
	repo.On("RefreshStatistics", ctx).Return(int64(3), nil).Once()
	cache.On("Invalidate", ctx).Return(nil).Once()

	n, err := svc.RefreshStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	cache.AssertExpectations(t)
}
