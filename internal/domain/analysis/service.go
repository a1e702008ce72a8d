package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/eligibility"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/infrastructure/monitoring"
	"loan-marketplace/internal/pkg/apperrors"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type BorrowerReader interface {
	GetBorrower(ctx context.Context, borrowerID int64) (*borrower.Borrower, error)
}

type LenderCatalog interface {
	Catalog(ctx context.Context) ([]lender.Lender, error)
}

type Matcher interface {
	MatchAll(ctx context.Context, profile eligibility.Profile, lenders []lender.Lender) ([]eligibility.Result, error)
}

type Service interface {
	Analyze(ctx context.Context, borrowerID int64) (*Snapshot, error)

	History(ctx context.Context, borrowerID int64, page, pageSize int) (*Page, error)

	Get(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (*Snapshot, error)

	Delete(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) error
}

type serviceImpl struct {
	repo      Repository
	borrowers BorrowerReader
	lenders   LenderCatalog
	matcher   Matcher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

func NewService(repo Repository, borrowers BorrowerReader, lenders LenderCatalog, matcher Matcher, logger *slog.Logger) Service {
	return &serviceImpl{
		repo:      repo,
		borrowers: borrowers,
		lenders:   lenders,
		matcher:   matcher,
		logger:    logger.With("component", "AnalysisService"),
		now:       time.Now,
		newID:     uuid.New,
	}
}

func (s *serviceImpl) Analyze(ctx context.Context, borrowerID int64) (_ *Snapshot, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			status = "invalid"
		case errors.Is(err, apperrors.ErrPersistence):
			status = "persistence_failure"
		case err != nil:
			status = "failure"
		}
		monitoring.RecordAnalysisRun(status, time.Since(start))
	}()

	b, err := s.borrowers.GetBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if err = b.ValidateForAnalysis(); err != nil {
		s.logger.InfoContext(ctx, "Borrower not ready for analysis", "borrowerID", borrowerID, "error", err)
		return nil, err
	}

	co := borrower.BestCoBorrower(b.CoBorrowers)
	profile := eligibility.NewProfile(b, co)

	lenders, err := s.lenders.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.matcher.MatchAll(ctx, profile, lenders)
	if err != nil {
		s.logger.ErrorContext(ctx, "Matching run failed", "borrowerID", borrowerID, "error", err)
		return nil, fmt.Errorf("%w: matching run failed: %v", apperrors.ErrInternalServer, err)
	}

	snap := &Snapshot{
		ID:         s.newID(),
		BorrowerID: borrowerID,
		Profile:    profile,
		Results:    results,
		CreatedAt:  s.now().UTC(),
	}
	if co != nil {
		id := co.ID
		snap.CoBorrowerID = &id
	}
	for _, r := range results {
		switch r.Status {
		case eligibility.StatusEligible:
			snap.EligibleCount++
		case eligibility.StatusBorderline:
			snap.BorderlineCount++
		default:
			snap.NotEligibleCount++
		}
	}

	if err = s.repo.Insert(ctx, snap); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist analysis snapshot", "borrowerID", borrowerID, "error", err)
		if errors.Is(err, apperrors.ErrPersistence) {
			return nil, err
		}
		return nil, apperrors.WrapPersistenceError(err, "analysis snapshot was not saved")
	}

	s.logger.InfoContext(ctx, "Analysis snapshot created",
		"borrowerID", borrowerID,
		"snapshotID", snap.ID,
		"lenders", len(results),
		"eligible", snap.EligibleCount,
		"borderline", snap.BorderlineCount)
	return snap, nil
}

func (s *serviceImpl) History(ctx context.Context, borrowerID int64, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	items, total, err := s.repo.ListByBorrower(ctx, borrowerID, pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list analysis history", "borrowerID", borrowerID, "error", err)
		return nil, err
	}
	if items == nil {
		items = []Snapshot{}
	}
	return &Page{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *serviceImpl) Get(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (*Snapshot, error) {
	snap, err := s.repo.GetByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: snapshot %s not found", apperrors.ErrNotFound, snapshotID)
		}
		return nil, err
	}
	if snap.BorrowerID != borrowerID {
		return nil, fmt.Errorf("%w: snapshot %s not found", apperrors.ErrNotFound, snapshotID)
	}
	return snap, nil
}

func (s *serviceImpl) Delete(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, borrowerID, snapshotID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete analysis snapshot", "snapshotID", snapshotID, "error", err)
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: snapshot %s not found", apperrors.ErrNotFound, snapshotID)
	}
	s.logger.InfoContext(ctx, "Analysis snapshot deleted", "borrowerID", borrowerID, "snapshotID", snapshotID)
	return nil
}
