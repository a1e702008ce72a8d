package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"loan-marketplace/internal/domain/loanrequest"
	"loan-marketplace/internal/pkg/apperrors"
)

const (
	loanRequestColumns = `id, borrower_id, lender_id, lender_name, snapshot_id, status, rationale, lender_note,
		decided_at, accepted_at, cancelled_at, created_at, updated_at`

	insertLoanRequestSQL = `
	INSERT INTO loan_requests (id, borrower_id, lender_id, lender_name, snapshot_id, status, rationale, lender_note, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	selectLoanRequestSQL = `SELECT ` + loanRequestColumns + ` FROM loan_requests WHERE id = $1`

	selectBorrowerLoanRequestsSQL = `SELECT ` + loanRequestColumns + `
	FROM loan_requests WHERE borrower_id = $1 ORDER BY created_at DESC, id`

	selectLenderLoanRequestsSQL = `SELECT ` + loanRequestColumns + `
	FROM loan_requests WHERE lender_id = $1 ORDER BY created_at DESC, id`

	selectLenderLoanRequestsByStatusSQL = `SELECT ` + loanRequestColumns + `
	FROM loan_requests WHERE lender_id = $1 AND status = $2 ORDER BY created_at DESC, id`

	decideLoanRequestSQL = `
	UPDATE loan_requests
	SET status = $3, lender_note = $4, decided_at = $5, updated_at = $5
	WHERE id = $1 AND status = $2
	RETURNING ` + loanRequestColumns

	acceptLoanRequestSQL = `
	UPDATE loan_requests
	SET status = $3, accepted_at = $4, updated_at = $4
	WHERE id = $1 AND status = $2
	RETURNING ` + loanRequestColumns

	cancelLoanRequestSQL = `
	UPDATE loan_requests
	SET status = $3, cancelled_at = $4, updated_at = $4
	WHERE id = $1 AND status = $2
	RETURNING ` + loanRequestColumns

	cancelPendingForBorrowerSQL = `
	UPDATE loan_requests
	SET status = $3, cancelled_at = $4, updated_at = $4
	WHERE borrower_id = $1 AND id <> $2 AND status = $5
	RETURNING ` + loanRequestColumns
)

type LoanRequestRepository struct {
	txManager
}

var _ loanrequest.Repository = (*LoanRequestRepository)(nil)

func NewLoanRequestRepository(db DBPool, logger *slog.Logger) *LoanRequestRepository {
	return &LoanRequestRepository{txManager{db: db, logger: logger.With("component", "LoanRequestRepository")}}
}

// querier is the part of DBPool and pgx.Tx a single statement needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *LoanRequestRepository) Create(ctx context.Context, lr *loanrequest.LoanRequest) (err error) {
	logCtx := r.logger.With(slog.String("request_id", lr.ID.String()),
		slog.Int64("borrower_id", lr.BorrowerID), slog.Int64("lender_id", lr.LenderID))
	defer observe("create_loan_request", time.Now(), &err)

	rationale, err := jsonColumn(lr.Rationale)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, insertLoanRequestSQL,
		lr.ID, lr.BorrowerID, lr.LenderID, lr.LenderName, lr.SnapshotID, lr.Status, rationale, lr.LenderNote,
		lr.CreatedAt, lr.UpdatedAt,
	)
	if err != nil {
		return translateDBError(err, logCtx)
	}
	return nil
}

func (r *LoanRequestRepository) GetByID(ctx context.Context, requestID uuid.UUID) (lr *loanrequest.LoanRequest, err error) {
	defer observe("get_loan_request", time.Now(), &err)

	lr, err = scanLoanRequest(r.db.QueryRow(ctx, selectLoanRequestSQL, requestID))
	if err != nil {
		return nil, translateDBError(err, r.logger.With(slog.String("request_id", requestID.String())))
	}
	return lr, nil
}

func (r *LoanRequestRepository) ListByBorrower(ctx context.Context, borrowerID int64) (out []loanrequest.LoanRequest, err error) {
	defer observe("list_borrower_loan_requests", time.Now(), &err)
	return r.list(ctx, r.db, r.logger.With(slog.Int64("borrower_id", borrowerID)), selectBorrowerLoanRequestsSQL, borrowerID)
}

func (r *LoanRequestRepository) ListByLender(ctx context.Context, lenderID int64, status loanrequest.Status) (out []loanrequest.LoanRequest, err error) {
	defer observe("list_lender_loan_requests", time.Now(), &err)

	logCtx := r.logger.With(slog.Int64("lender_id", lenderID))
	if status == "" {
		return r.list(ctx, r.db, logCtx, selectLenderLoanRequestsSQL, lenderID)
	}
	return r.list(ctx, r.db, logCtx, selectLenderLoanRequestsByStatusSQL, lenderID, status)
}

func (r *LoanRequestRepository) Transition(ctx context.Context, t loanrequest.Transition) (*loanrequest.LoanRequest, error) {
	return r.transition(ctx, r.db, t)
}

func (r *LoanRequestRepository) TransitionInTx(ctx context.Context, tx pgx.Tx, t loanrequest.Transition) (*loanrequest.LoanRequest, error) {
	return r.transition(ctx, tx, t)
}

func (r *LoanRequestRepository) transition(ctx context.Context, q querier, t loanrequest.Transition) (lr *loanrequest.LoanRequest, err error) {
	logCtx := r.logger.With(slog.String("request_id", t.RequestID.String()),
		slog.String("from", string(t.From)), slog.String("to", string(t.To)))
	defer observe("transition_loan_request", time.Now(), &err)

	query, args, err := transitionStatement(t)
	if err != nil {
		return nil, err
	}

	lr, err = scanLoanRequest(q.QueryRow(ctx, query, args...))
	if err != nil {
		err = translateDBError(err, logCtx)
		if errors.Is(err, apperrors.ErrNotFound) {
			logCtx.InfoContext(ctx, "Conditional transition matched no row")
		}
		return nil, err
	}
	return lr, nil
}

func transitionStatement(t loanrequest.Transition) (string, []any, error) {
	switch t.To {
	case loanrequest.StatusApproved, loanrequest.StatusRejected:
		return decideLoanRequestSQL, []any{t.RequestID, t.From, t.To, t.Note, t.At}, nil
	case loanrequest.StatusAccepted:
		return acceptLoanRequestSQL, []any{t.RequestID, t.From, t.To, t.At}, nil
	case loanrequest.StatusCancelled:
		return cancelLoanRequestSQL, []any{t.RequestID, t.From, t.To, t.At}, nil
	}
	return "", nil, fmt.Errorf("%w: no statement for target status %q", apperrors.ErrInvalidTransition, t.To)
}

func (r *LoanRequestRepository) CancelPendingForBorrowerInTx(ctx context.Context, tx pgx.Tx, borrowerID int64, exceptID uuid.UUID, at time.Time) (out []loanrequest.LoanRequest, err error) {
	defer observe("cancel_pending_loan_requests", time.Now(), &err)

	logCtx := r.logger.With(slog.Int64("borrower_id", borrowerID), slog.String("except_id", exceptID.String()))
	return r.list(ctx, tx, logCtx, cancelPendingForBorrowerSQL,
		borrowerID, exceptID, loanrequest.StatusCancelled, at, loanrequest.StatusPending)
}

func (r *LoanRequestRepository) list(ctx context.Context, q querier, logCtx *slog.Logger, query string, args ...any) ([]loanrequest.LoanRequest, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query loan requests", "error", err)
		return nil, fmt.Errorf("%w: failed to query loan requests: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	out := make([]loanrequest.LoanRequest, 0)
	for rows.Next() {
		lr, err := scanLoanRequest(rows)
		if err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan loan request row", "error", err)
			return nil, fmt.Errorf("%w: failed scanning loan request: %w", apperrors.ErrDatabase, err)
		}
		out = append(out, *lr)
	}
	if err := rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating loan request rows", "error", err)
		return nil, fmt.Errorf("%w: failed iterating loan requests: %w", apperrors.ErrDatabase, err)
	}
	return out, nil
}

func scanLoanRequest(row rowScanner) (*loanrequest.LoanRequest, error) {
	lr := &loanrequest.LoanRequest{}
	var rationale []byte
	err := row.Scan(
		&lr.ID, &lr.BorrowerID, &lr.LenderID, &lr.LenderName, &lr.SnapshotID, &lr.Status, &rationale, &lr.LenderNote,
		&lr.DecidedAt, &lr.AcceptedAt, &lr.CancelledAt, &lr.CreatedAt, &lr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeColumn(rationale, &lr.Rationale, "rationale"); err != nil {
		return nil, err
	}
	return lr, nil
}
