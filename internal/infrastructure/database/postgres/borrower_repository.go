package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/pkg/apperrors"
)

const (
	selectBorrowerSQL = `
	SELECT id, name, course, country, loan_amount, collateral_value, academics, gap_years,
		institution, test_scores, admission, created_at, updated_at
	FROM borrowers
	WHERE id = $1`

	coBorrowerColumns = `id, borrower_id, name, relation, kyc, credit_report, financial_info, financial_summary, updated_at`

	selectCoBorrowersSQL = `SELECT ` + coBorrowerColumns + ` FROM co_borrowers WHERE borrower_id = $1 ORDER BY id`

	selectCoBorrowerSQL = `SELECT ` + coBorrowerColumns + ` FROM co_borrowers WHERE id = $1`

	selectCoBorrowerForUpdateSQL = selectCoBorrowerSQL + ` FOR UPDATE`

	updateCoBorrowerSQL = `
	UPDATE co_borrowers
	SET kyc = $2, financial_info = $3, financial_summary = $4, updated_at = $5
	WHERE id = $1`
)

type rowScanner interface {
	Scan(dest ...any) error
}

type BorrowerRepository struct {
	txManager
}

var _ borrower.Repository = (*BorrowerRepository)(nil)

func NewBorrowerRepository(db DBPool, logger *slog.Logger) *BorrowerRepository {
	return &BorrowerRepository{txManager{db: db, logger: logger.With("component", "BorrowerRepository")}}
}

func (r *BorrowerRepository) GetBorrower(ctx context.Context, borrowerID int64) (b *borrower.Borrower, err error) {
	logCtx := r.logger.With(slog.Int64("borrower_id", borrowerID))
	defer observe("get_borrower", time.Now(), &err)

	b = &borrower.Borrower{}
	var academics, institution, testScores, admission []byte
	err = r.db.QueryRow(ctx, selectBorrowerSQL, borrowerID).Scan(
		&b.ID, &b.Name, &b.Course, &b.Country, &b.LoanAmount, &b.CollateralValue, &academics, &b.GapYears,
		&institution, &testScores, &admission, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		logCtx.DebugContext(ctx, "Borrower lookup failed", "error", err)
		return nil, translateDBError(err, logCtx)
	}

	if err = decodeColumn(academics, &b.Academics, "academics"); err != nil {
		return nil, err
	}
	if err = decodeColumn(institution, &b.Institution, "institution"); err != nil {
		return nil, err
	}
	if err = decodeColumn(testScores, &b.TestScores, "test_scores"); err != nil {
		return nil, err
	}
	if err = decodeColumn(admission, &b.Admission, "admission"); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, selectCoBorrowersSQL, borrowerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query co-borrowers", "error", err)
		return nil, fmt.Errorf("%w: failed to query co-borrowers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		co, scanErr := scanCoBorrower(rows)
		if scanErr != nil {
			err = scanErr
			logCtx.ErrorContext(ctx, "Failed to scan co-borrower row", "error", err)
			return nil, err
		}
		b.CoBorrowers = append(b.CoBorrowers, *co)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating co-borrower rows", "error", err)
		return nil, fmt.Errorf("%w: failed iterating co-borrowers: %w", apperrors.ErrDatabase, err)
	}

	return b, nil
}

func (r *BorrowerRepository) GetCoBorrower(ctx context.Context, coBorrowerID int64) (co *borrower.CoBorrower, err error) {
	defer observe("get_co_borrower", time.Now(), &err)

	co, err = scanCoBorrower(r.db.QueryRow(ctx, selectCoBorrowerSQL, coBorrowerID))
	if err != nil {
		return nil, translateDBError(err, r.logger.With(slog.Int64("co_borrower_id", coBorrowerID)))
	}
	return co, nil
}

func (r *BorrowerRepository) GetCoBorrowerForUpdate(ctx context.Context, tx pgx.Tx, coBorrowerID int64) (co *borrower.CoBorrower, err error) {
	defer observe("lock_co_borrower", time.Now(), &err)

	co, err = scanCoBorrower(tx.QueryRow(ctx, selectCoBorrowerForUpdateSQL, coBorrowerID))
	if err != nil {
		return nil, translateDBError(err, r.logger.With(slog.Int64("co_borrower_id", coBorrowerID)))
	}
	return co, nil
}

func (r *BorrowerRepository) UpdateCoBorrowerInTx(ctx context.Context, tx pgx.Tx, co *borrower.CoBorrower) (err error) {
	logCtx := r.logger.With(slog.Int64("co_borrower_id", co.ID))
	defer observe("update_co_borrower", time.Now(), &err)

	kyc, err := jsonColumn(co.KYC)
	if err != nil {
		return err
	}
	info, err := jsonColumn(co.FinancialInfo)
	if err != nil {
		return err
	}
	summary, err := jsonColumn(co.Summary)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, updateCoBorrowerSQL, co.ID, kyc, info, summary, co.UpdatedAt)
	if err != nil {
		return translateDBError(err, logCtx)
	}
	if tag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Co-borrower update matched no rows")
		return apperrors.ErrNotFound
	}
	return nil
}

func scanCoBorrower(row rowScanner) (*borrower.CoBorrower, error) {
	co := &borrower.CoBorrower{}
	var kyc, credit, info, summary []byte
	err := row.Scan(&co.ID, &co.BorrowerID, &co.Name, &co.Relation, &kyc, &credit, &info, &summary, &co.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := decodeColumn(kyc, &co.KYC, "kyc"); err != nil {
		return nil, err
	}
	if len(credit) > 0 && string(credit) != "null" {
		co.Credit = &borrower.CreditReport{}
		if err := decodeColumn(credit, co.Credit, "credit_report"); err != nil {
			return nil, err
		}
	}
	if err := decodeColumn(info, &co.FinancialInfo, "financial_info"); err != nil {
		return nil, err
	}
	if err := decodeColumn(summary, &co.Summary, "financial_summary"); err != nil {
		return nil, err
	}
	return co, nil
}
