package loanrequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/eligibility"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/event"
	"loan-marketplace/internal/infrastructure/monitoring"
	"loan-marketplace/internal/pkg/apperrors"
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
)

// Party is the caller a request is read or changed on behalf of.
type Party struct {
	Role Role
	ID   int64
}

type SnapshotReader interface {
	Get(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (*analysis.Snapshot, error)
}

type LenderReader interface {
	GetLender(ctx context.Context, lenderID int64) (*lender.Lender, error)
}

type AcceptOutcome struct {
	Request       *LoanRequest
	AutoCancelled []LoanRequest
}

type Service interface {
	Create(ctx context.Context, borrowerID int64, snapshotID uuid.UUID, lenderID int64) (*LoanRequest, error)

	Decide(ctx context.Context, lenderID int64, requestID uuid.UUID, decision Decision, note string) (*LoanRequest, error)

	Cancel(ctx context.Context, borrowerID int64, requestID uuid.UUID) (*LoanRequest, error)

	// Accept moves an approved request to accepted and cancels the borrower's
	// other pending requests in the same transaction.
	Accept(ctx context.Context, borrowerID int64, requestID uuid.UUID) (*AcceptOutcome, error)

	Get(ctx context.Context, party Party, requestID uuid.UUID) (*LoanRequest, error)

	ListForBorrower(ctx context.Context, borrowerID int64) ([]LoanRequest, error)

	ListForLender(ctx context.Context, lenderID int64, status Status) ([]LoanRequest, error)
}

type serviceImpl struct {
	repo      Repository
	snapshots SnapshotReader
	lenders   LenderReader
	pub       event.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

func NewService(repo Repository, snapshots SnapshotReader, lenders LenderReader, pub event.EventPublisher, logger *slog.Logger) Service {
	return &serviceImpl{
		repo:      repo,
		snapshots: snapshots,
		lenders:   lenders,
		pub:       pub,
		logger:    logger.With("component", "LoanRequestService"),
		now:       time.Now,
		newID:     uuid.New,
	}
}

func (s *serviceImpl) Create(ctx context.Context, borrowerID int64, snapshotID uuid.UUID, lenderID int64) (*LoanRequest, error) {
	snap, err := s.snapshots.Get(ctx, borrowerID, snapshotID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("snapshotId", "analysis snapshot not found")
		}
		return nil, err
	}

	result, ok := snap.ResultFor(lenderID)
	if !ok {
		return nil, apperrors.NewValidationError("lenderId", "lender was not evaluated in this analysis")
	}
	if result.Status == eligibility.StatusNotEligible {
		return nil, apperrors.NewValidationError("lenderId", "borrower is not eligible for this lender")
	}

	l, err := s.lenders.GetLender(ctx, lenderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("lenderId", "lender not found")
		}
		return nil, err
	}
	if !l.Active {
		return nil, apperrors.NewValidationError("lenderId", "lender is not accepting requests")
	}

	now := s.now().UTC()
	req := &LoanRequest{
		ID:         s.newID(),
		BorrowerID: borrowerID,
		LenderID:   lenderID,
		LenderName: l.Name,
		SnapshotID: snap.ID,
		Status:     StatusPending,
		Rationale:  RationaleFrom(result),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		if errors.Is(err, apperrors.ErrConcurrencyConflict) {
			monitoring.RecordTransition(string(StatusPending), "conflict")
			s.logger.InfoContext(ctx, "Duplicate active loan request rejected", "borrowerID", borrowerID, "lenderID", lenderID)
			return nil, err
		}
		monitoring.RecordTransition(string(StatusPending), "failure")
		s.logger.ErrorContext(ctx, "Failed to create loan request", "borrowerID", borrowerID, "lenderID", lenderID, "error", err)
		return nil, err
	}

	monitoring.RecordTransition(string(StatusPending), "success")
	s.logger.InfoContext(ctx, "Loan request created", "requestID", req.ID, "borrowerID", borrowerID, "lenderID", lenderID)
	s.publish(ctx, req, "", "")
	return req, nil
}

func (s *serviceImpl) Decide(ctx context.Context, lenderID int64, requestID uuid.UUID, decision Decision, note string) (*LoanRequest, error) {
	to, ok := decision.Status()
	if !ok {
		return nil, apperrors.NewValidationError("decision", "decision must be approved or rejected")
	}

	req, err := s.Get(ctx, Party{Role: RoleLender, ID: lenderID}, requestID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req, to, note)
}

func (s *serviceImpl) Cancel(ctx context.Context, borrowerID int64, requestID uuid.UUID) (*LoanRequest, error) {
	req, err := s.Get(ctx, Party{Role: RoleBorrower, ID: borrowerID}, requestID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, req, StatusCancelled, "")
}

func (s *serviceImpl) Accept(ctx context.Context, borrowerID int64, requestID uuid.UUID) (_ *AcceptOutcome, err error) {
	req, err := s.Get(ctx, Party{Role: RoleBorrower, ID: borrowerID}, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Status.CanTransitionTo(StatusAccepted) {
		monitoring.RecordTransition(string(StatusAccepted), "invalid")
		return nil, fmt.Errorf("%w: cannot accept a request in status %s", apperrors.ErrInvalidTransition, req.Status)
	}

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
			monitoring.RecordTransition(string(StatusAccepted), "failure")
		}
	}()

	now := s.now().UTC()
	accepted, err := s.repo.TransitionInTx(ctx, tx, Transition{RequestID: req.ID, From: StatusApproved, To: StatusAccepted, At: now})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: request %s changed concurrently", apperrors.ErrInvalidTransition, req.ID)
		}
		return nil, err
	}

	cancelled, err := s.repo.CancelPendingForBorrowerInTx(ctx, tx, borrowerID, req.ID, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to cancel remaining pending requests", "borrowerID", borrowerID, "error", err)
		return nil, err
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "requestID", req.ID, "error", err)
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordTransition(string(StatusAccepted), "success")
	s.logger.InfoContext(ctx, "Loan request accepted",
		"requestID", accepted.ID, "borrowerID", borrowerID, "autoCancelled", len(cancelled))

	s.publish(ctx, accepted, StatusApproved, "")
	for i := range cancelled {
		monitoring.RecordTransition(string(StatusCancelled), "success")
		s.publish(ctx, &cancelled[i], StatusPending, "another offer was accepted")
	}
	if cancelled == nil {
		cancelled = []LoanRequest{}
	}
	return &AcceptOutcome{Request: accepted, AutoCancelled: cancelled}, nil
}

func (s *serviceImpl) Get(ctx context.Context, party Party, requestID uuid.UUID) (*LoanRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan request %s not found", apperrors.ErrNotFound, requestID)
		}
		return nil, err
	}

	switch party.Role {
	case RoleBorrower:
		if req.BorrowerID == party.ID {
			return req, nil
		}
	case RoleLender:
		if req.LenderID == party.ID {
			return req, nil
		}
	}
	return nil, fmt.Errorf("%w: loan request %s belongs to another party", apperrors.ErrForbidden, requestID)
}

func (s *serviceImpl) ListForBorrower(ctx context.Context, borrowerID int64) ([]LoanRequest, error) {
	reqs, err := s.repo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list borrower loan requests", "borrowerID", borrowerID, "error", err)
		return nil, err
	}
	return reqs, nil
}

func (s *serviceImpl) ListForLender(ctx context.Context, lenderID int64, status Status) ([]LoanRequest, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	reqs, err := s.repo.ListByLender(ctx, lenderID, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list lender loan requests", "lenderID", lenderID, "error", err)
		return nil, err
	}
	return reqs, nil
}

func (s *serviceImpl) transition(ctx context.Context, req *LoanRequest, to Status, note string) (*LoanRequest, error) {
	if !req.Status.CanTransitionTo(to) {
		monitoring.RecordTransition(string(to), "invalid")
		return nil, fmt.Errorf("%w: cannot move request from %s to %s", apperrors.ErrInvalidTransition, req.Status, to)
	}

	updated, err := s.repo.Transition(ctx, Transition{RequestID: req.ID, From: req.Status, To: to, Note: note, At: s.now().UTC()})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			monitoring.RecordTransition(string(to), "invalid")
			return nil, fmt.Errorf("%w: request %s changed concurrently", apperrors.ErrInvalidTransition, req.ID)
		}
		monitoring.RecordTransition(string(to), "failure")
		s.logger.ErrorContext(ctx, "Failed to update loan request status", "requestID", req.ID, "to", to, "error", err)
		return nil, err
	}

	monitoring.RecordTransition(string(to), "success")
	s.logger.InfoContext(ctx, "Loan request status changed", "requestID", req.ID, "from", req.Status, "to", to)
	s.publish(ctx, updated, req.Status, note)
	return updated, nil
}

// publish never fails the caller; the state change is already committed.
func (s *serviceImpl) publish(ctx context.Context, req *LoanRequest, from Status, note string) {
	if s.pub == nil {
		return
	}
	evt := event.LoanRequestEvent{
		RequestID:  req.ID.String(),
		BorrowerID: req.BorrowerID,
		LenderID:   req.LenderID,
		SnapshotID: req.SnapshotID.String(),
		FromStatus: string(from),
		ToStatus:   string(req.Status),
		Note:       note,
		Timestamp:  s.now().UTC(),
	}
	if req.Status == StatusPending {
		evt.ToStatus = "created"
	}
	if err := s.pub.PublishLoanRequestEvent(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish loan request event", "requestID", req.ID, "error", err)
	}
}
