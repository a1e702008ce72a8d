package loanrequest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// Create inserts a pending request. A second active request for the same
	// borrower and lender fails with apperrors.ErrConcurrencyConflict.
	Create(ctx context.Context, r *LoanRequest) error

	GetByID(ctx context.Context, requestID uuid.UUID) (*LoanRequest, error)

	ListByBorrower(ctx context.Context, borrowerID int64) ([]LoanRequest, error)

	// ListByLender returns every request for the lender, filtered by status
	// when status is non-empty.
	ListByLender(ctx context.Context, lenderID int64, status Status) ([]LoanRequest, error)

	// Transition applies t only when the row is still in t.From and returns the
	// updated request. It returns apperrors.ErrNotFound when no row matched.
	Transition(ctx context.Context, t Transition) (*LoanRequest, error)

	TransitionInTx(ctx context.Context, tx pgx.Tx, t Transition) (*LoanRequest, error)

	// CancelPendingForBorrowerInTx cancels every pending request of the
	// borrower except exceptID and returns the ids it cancelled.
	CancelPendingForBorrowerInTx(ctx context.Context, tx pgx.Tx, borrowerID int64, exceptID uuid.UUID, at time.Time) ([]LoanRequest, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
