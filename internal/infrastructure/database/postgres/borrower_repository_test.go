package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/pkg/apperrors"
)

var borrowerColumns = []string{
	"id", "name", "course", "country", "loan_amount", "collateral_value", "academics", "gap_years",
	"institution", "test_scores", "admission", "created_at", "updated_at",
}

var coBorrowerColumnNames = []string{
	"id", "borrower_id", "name", "relation", "kyc", "credit_report", "financial_info", "financial_summary", "updated_at",
}

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func setupBorrowerRepo(t *testing.T) (context.Context, *BorrowerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	return context.Background(), NewBorrowerRepository(mockPool, logger), mockPool
}

func coBorrowerRow(rows *pgxmock.Rows, id int64, credit []byte) *pgxmock.Rows {
	return rows.AddRow(
		id, int64(7), "Asha", "mother",
		[]byte(`{"verified":true,"reference":"KYC-1"}`),
		credit,
		[]byte(`{"kycVerified":true,"salarySlips":[{"month":"2026-01","netSalary":80000,"grossSalary":95000,"isConsistent":true,"confidence":0.9,"needsReview":false}],"taxReturns":[],"employerCertificates":[]}`),
		[]byte(`{"avgMonthlyIncome":80000,"completenessScore":45}`),
		fixedTime,
	)
}

func TestBorrowerRepository_GetBorrower(t *testing.T) {
	t.Run("loads borrower with co-borrowers", func(t *testing.T) {
		ctx, repo, mockPool := setupBorrowerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(selectBorrowerSQL)).WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(borrowerColumns).AddRow(
				int64(7), "Ravi", "MS Computer Science", "USA", 4000000.0, 0.0,
				[]byte(`[{"level":"12th","percentage":88}]`), 1,
				[]byte(`{"name":"State University","ranking":120}`),
				[]byte(`{"gre":320}`),
				[]byte(`{"hasOfferLetter":true}`),
				fixedTime, fixedTime,
			))

		rows := pgxmock.NewRows(coBorrowerColumnNames)
		coBorrowerRow(rows, 11, []byte(`{"score":760,"hasOverdue":false}`))
		coBorrowerRow(rows, 12, nil)
		mockPool.ExpectQuery(regexp.QuoteMeta(selectCoBorrowersSQL)).WithArgs(int64(7)).WillReturnRows(rows)

		b, err := repo.GetBorrower(ctx, 7)
		require.NoError(t, err)

		assert.Equal(t, "USA", b.Country)
		assert.Equal(t, 4000000.0, b.LoanAmount)
		assert.Equal(t, []borrower.AcademicRecord{{Level: "12th", Percentage: 88}}, b.Academics)
		assert.Equal(t, 120, b.Institution.Ranking)
		assert.Equal(t, 320.0, b.TestScores["gre"])
		assert.True(t, b.Admission.HasOfferLetter)

		require.Len(t, b.CoBorrowers, 2)
		first := b.CoBorrowers[0]
		assert.True(t, first.KYC.Verified)
		require.NotNil(t, first.Credit)
		assert.Equal(t, 760, first.Credit.Score)
		require.Len(t, first.FinancialInfo.SalarySlips, 1)
		assert.Equal(t, 80000.0, first.FinancialInfo.SalarySlips[0].NetSalary)
		assert.Equal(t, 45, first.Summary.CompletenessScore)
		assert.Nil(t, b.CoBorrowers[1].Credit)

		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("not found", func(t *testing.T) {
		ctx, repo, mockPool := setupBorrowerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(selectBorrowerSQL)).WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetBorrower(ctx, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("co-borrower query fails", func(t *testing.T) {
		ctx, repo, mockPool := setupBorrowerRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(selectBorrowerSQL)).WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows(borrowerColumns).AddRow(
				int64(7), "Ravi", "MBA", "UK", 100.0, 0.0, []byte(`[]`), 0,
				[]byte(`{}`), []byte(`{}`), []byte(`{}`), fixedTime, fixedTime,
			))
		mockPool.ExpectQuery(regexp.QuoteMeta(selectCoBorrowersSQL)).WithArgs(int64(7)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetBorrower(ctx, 7)
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestBorrowerRepository_GetCoBorrower(t *testing.T) {
	ctx, repo, mockPool := setupBorrowerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(selectCoBorrowerSQL)).WithArgs(int64(11)).
		WillReturnRows(coBorrowerRow(pgxmock.NewRows(coBorrowerColumnNames), 11, nil))

	co, err := repo.GetCoBorrower(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), co.ID)
	assert.Equal(t, int64(7), co.BorrowerID)
	assert.Equal(t, "KYC-1", co.KYC.Reference)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestBorrowerRepository_LockAndUpdateInTx(t *testing.T) {
	ctx, repo, mockPool := setupBorrowerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectBegin()
	mockPool.ExpectQuery(regexp.QuoteMeta(selectCoBorrowerForUpdateSQL)).WithArgs(int64(11)).
		WillReturnRows(coBorrowerRow(pgxmock.NewRows(coBorrowerColumnNames), 11, nil))
	mockPool.ExpectExec(regexp.QuoteMeta(updateCoBorrowerSQL)).
		WithArgs(int64(11), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), fixedTime).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mockPool.ExpectCommit()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	co, err := repo.GetCoBorrowerForUpdate(ctx, tx, 11)
	require.NoError(t, err)

	co.FinancialInfo.UpsertSalarySlip(financial.SalarySlip{Month: "2026-02", NetSalary: 81000})
	co.UpdatedAt = fixedTime
	require.NoError(t, repo.UpdateCoBorrowerInTx(ctx, tx, co))
	require.NoError(t, repo.CommitTx(ctx, tx))

	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestBorrowerRepository_UpdateCoBorrowerInTx_NoRows(t *testing.T) {
	ctx, repo, mockPool := setupBorrowerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(regexp.QuoteMeta(updateCoBorrowerSQL)).
		WithArgs(int64(5), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mockPool.ExpectRollback()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	err = repo.UpdateCoBorrowerInTx(ctx, tx, &borrower.CoBorrower{ID: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, repo.RollbackTx(ctx, tx))
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestTranslateDBError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"no rows", pgx.ErrNoRows, apperrors.ErrNotFound},
		{"active pair index", &pgconn.PgError{Code: "23505", ConstraintName: activeLoanRequestIndex}, apperrors.ErrConcurrencyConflict},
		{"other unique", &pgconn.PgError{Code: "23505", ConstraintName: "lenders_name_key"}, apperrors.ErrAlreadyExists},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "loan_requests_lender_id_fkey"}, apperrors.ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: "40001"}, apperrors.ErrDatabase},
		{"generic", errors.New("boom"), apperrors.ErrDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateDBError(tt.in, logger), tt.want)
		})
	}

	assert.NoError(t, translateDBError(nil, logger))
}
