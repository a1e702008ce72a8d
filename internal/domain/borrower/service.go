package borrower

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/pkg/apperrors"
)

// KYCInput records the outcome of an identity check. Reverify must be set to
// overwrite a co-borrower whose KYC is already verified.
type KYCInput struct {
	Verified  bool
	Reference string
	Reverify  bool
}

// InfoMutation changes a co-borrower's evidence in place.
type InfoMutation func(info *financial.Info) error

type Service interface {
	GetBorrower(ctx context.Context, borrowerID int64) (*Borrower, error)

	GetCoBorrower(ctx context.Context, borrowerID, coBorrowerID int64) (*CoBorrower, error)

	RecordKYC(ctx context.Context, borrowerID, coBorrowerID int64, in KYCInput) (*CoBorrower, error)

	// ApplyEvidence runs mutate against the locked co-borrower row and stores
	// the result together with a freshly computed summary.
	ApplyEvidence(ctx context.Context, borrowerID, coBorrowerID int64, mutate InfoMutation) (*CoBorrower, error)
}

type serviceImpl struct {
	repo   Repository
	cfg    financial.AggregationConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, cfg financial.AggregationConfig, logger *slog.Logger) Service {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		logger: logger.With("component", "BorrowerService"),
		now:    time.Now,
	}
}

func (s *serviceImpl) GetBorrower(ctx context.Context, borrowerID int64) (*Borrower, error) {
	b, err := s.repo.GetBorrower(ctx, borrowerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: borrower %d not found", apperrors.ErrNotFound, borrowerID)
		}
		s.logger.ErrorContext(ctx, "Failed to load borrower", "borrowerID", borrowerID, "error", err)
		return nil, err
	}
	for i := range b.CoBorrowers {
		s.summarize(&b.CoBorrowers[i])
	}
	return b, nil
}

// summarize replaces the stored summary with one derived from the evidence
// under the current weight table. The persisted column is a read model only.
func (s *serviceImpl) summarize(co *CoBorrower) {
	co.FinancialInfo.KYCVerified = co.KYC.Verified
	co.Summary = financial.Summarize(co.FinancialInfo, s.cfg)
}

func (s *serviceImpl) GetCoBorrower(ctx context.Context, borrowerID, coBorrowerID int64) (*CoBorrower, error) {
	co, err := s.repo.GetCoBorrower(ctx, coBorrowerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: co-borrower %d not found", apperrors.ErrNotFound, coBorrowerID)
		}
		return nil, err
	}
	if co.BorrowerID != borrowerID {
		return nil, fmt.Errorf("%w: co-borrower %d does not belong to borrower %d", apperrors.ErrForbidden, coBorrowerID, borrowerID)
	}
	s.summarize(co)
	return co, nil
}

func (s *serviceImpl) RecordKYC(ctx context.Context, borrowerID, coBorrowerID int64, in KYCInput) (*CoBorrower, error) {
	reference := strings.TrimSpace(in.Reference)
	if in.Verified && reference == "" {
		return nil, apperrors.NewValidationError("reference", "a verification reference is required")
	}

	return s.withLockedCoBorrower(ctx, borrowerID, coBorrowerID, func(co *CoBorrower) error {
		if co.KYC.Verified && !in.Reverify {
			return fmt.Errorf("%w: KYC for co-borrower %d is already verified, re-verification must be requested explicitly",
				apperrors.ErrConflict, co.ID)
		}

		co.KYC = KYC{Verified: in.Verified, Reference: reference}
		if in.Verified {
			at := s.now().UTC()
			co.KYC.VerifiedAt = &at
		}
		co.FinancialInfo.KYCVerified = in.Verified
		return nil
	})
}

func (s *serviceImpl) ApplyEvidence(ctx context.Context, borrowerID, coBorrowerID int64, mutate InfoMutation) (*CoBorrower, error) {
	return s.withLockedCoBorrower(ctx, borrowerID, coBorrowerID, func(co *CoBorrower) error {
		return mutate(&co.FinancialInfo)
	})
}

// withLockedCoBorrower is the single write path for co-borrower evidence. The
// summary is recomputed after every change.
func (s *serviceImpl) withLockedCoBorrower(ctx context.Context, borrowerID, coBorrowerID int64, change func(co *CoBorrower) error) (_ *CoBorrower, err error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	co, err := s.repo.GetCoBorrowerForUpdate(ctx, tx, coBorrowerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: co-borrower %d not found", apperrors.ErrNotFound, coBorrowerID)
		}
		s.logger.ErrorContext(ctx, "Failed to lock co-borrower", "coBorrowerID", coBorrowerID, "error", err)
		return nil, err
	}
	if co.BorrowerID != borrowerID {
		return nil, fmt.Errorf("%w: co-borrower %d does not belong to borrower %d", apperrors.ErrForbidden, coBorrowerID, borrowerID)
	}

	if err = change(co); err != nil {
		return nil, err
	}

	s.summarize(co)
	co.UpdatedAt = s.now().UTC()

	if err = s.repo.UpdateCoBorrowerInTx(ctx, tx, co); err != nil {
		s.logger.ErrorContext(ctx, "Failed to store co-borrower evidence", "coBorrowerID", coBorrowerID, "error", err)
		return nil, err
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "coBorrowerID", coBorrowerID, "error", err)
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.InfoContext(ctx, "Co-borrower financial summary recomputed",
		"coBorrowerID", co.ID,
		"completeness", co.Summary.CompletenessScore,
		"foir", co.Summary.FOIR,
		"overall", co.Summary.Verification.Overall)
	return co, nil
}
