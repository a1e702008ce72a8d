package lender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-marketplace/internal/pkg/apperrors"
)

type Service interface {
	Catalog(ctx context.Context) ([]Lender, error)

	GetLender(ctx context.Context, lenderID int64) (*Lender, error)

	RefreshStatistics(ctx context.Context) (int64, error)
}

type serviceImpl struct {
	repo   Repository
	cache  CatalogCache
	logger *slog.Logger
}

// NewService builds the catalog service. cache may be nil, in which case every
// call reads through to the repository.
func NewService(repo Repository, cache CatalogCache, logger *slog.Logger) Service {
	return &serviceImpl{repo: repo, cache: cache, logger: logger.With("component", "LenderService")}
}

func (s *serviceImpl) Catalog(ctx context.Context) ([]Lender, error) {
	if s.cache != nil {
		lenders, ok, err := s.cache.GetCatalog(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Lender catalog cache read failed, falling back to database", "error", err)
		} else if ok {
			s.logger.DebugContext(ctx, "Lender catalog served from cache", "count", len(lenders))
			return lenders, nil
		}
	}

	lenders, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list active lenders", "error", err)
		return nil, fmt.Errorf("failed to load lender catalog: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCatalog(ctx, lenders); err != nil {
			s.logger.WarnContext(ctx, "Failed to populate lender catalog cache", "error", err)
		}
	}
	return lenders, nil
}

func (s *serviceImpl) GetLender(ctx context.Context, lenderID int64) (*Lender, error) {
	l, err := s.repo.GetByID(ctx, lenderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: lender %d not found", apperrors.ErrNotFound, lenderID)
		}
		return nil, err
	}
	return l, nil
}

func (s *serviceImpl) RefreshStatistics(ctx context.Context) (int64, error) {
	updated, err := s.repo.RefreshStatistics(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to refresh lender statistics", "error", err)
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "Failed to invalidate lender catalog cache", "error", err)
		}
	}
	s.logger.InfoContext(ctx, "Lender statistics refreshed", "lenders_updated", updated)
	return updated, nil
}
