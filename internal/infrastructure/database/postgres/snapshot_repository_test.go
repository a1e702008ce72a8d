package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/eligibility"
	"loan-marketplace/internal/pkg/apperrors"
)

var snapshotColumnNames = []string{
	"id", "borrower_id", "co_borrower_id", "profile", "results", "eligible_count", "borderline_count", "not_eligible_count", "created_at",
}

var snapshotID = uuid.MustParse("6f1c2a8e-3b7d-4e59-9a0f-1d2c3b4a5e6f")

func setupSnapshotRepo(t *testing.T) (context.Context, *SnapshotRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	return context.Background(), NewSnapshotRepository(mockPool, logger), mockPool
}

func snapshotRow(rows *pgxmock.Rows, id uuid.UUID) *pgxmock.Rows {
	coID := int64(11)
	return rows.AddRow(id, int64(7), &coID,
		[]byte(`{"borrowerId":7,"course":"MS Data Science","country":"USA","loanAmount":3500000}`),
		[]byte(`[{"lenderId":1,"lenderName":"Avanse","status":"eligible","matchPercentage":82.5},{"lenderId":2,"lenderName":"Credila","status":"not_eligible","matchPercentage":30}]`),
		1, 0, 1, fixedTime)
}

func TestSnapshotRepository_Insert(t *testing.T) {
	t.Run("single statement insert", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		s := &analysis.Snapshot{
			ID:            snapshotID,
			BorrowerID:    7,
			Profile:       eligibility.Profile{BorrowerID: 7, Course: "MBA"},
			Results:       []eligibility.Result{{LenderID: 1, Status: eligibility.StatusEligible}},
			EligibleCount: 1,
			CreatedAt:     fixedTime,
		}

		mockPool.ExpectExec(regexp.QuoteMeta(insertSnapshotSQL)).
			WithArgs(snapshotID, int64(7), (*int64)(nil), pgxmock.AnyArg(), pgxmock.AnyArg(), 1, 0, 0, fixedTime).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Insert(ctx, s))
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("insert failure is a database error", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		mockPool.ExpectExec(regexp.QuoteMeta(insertSnapshotSQL)).WillReturnError(errors.New("disk full"))

		err := repo.Insert(ctx, &analysis.Snapshot{ID: snapshotID, BorrowerID: 7})
		assert.ErrorIs(t, err, apperrors.ErrDatabase)
	})
}

func TestSnapshotRepository_GetByID(t *testing.T) {
	t.Run("decodes profile and results", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(selectSnapshotSQL)).WithArgs(snapshotID).
			WillReturnRows(snapshotRow(pgxmock.NewRows(snapshotColumnNames), snapshotID))

		s, err := repo.GetByID(ctx, snapshotID)
		require.NoError(t, err)
		assert.Equal(t, snapshotID, s.ID)
		require.NotNil(t, s.CoBorrowerID)
		assert.Equal(t, int64(11), *s.CoBorrowerID)
		assert.Equal(t, "USA", s.Profile.Country)
		require.Len(t, s.Results, 2)

		res, ok := s.ResultFor(2)
		require.True(t, ok)
		assert.Equal(t, eligibility.StatusNotEligible, res.Status)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("not found", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(selectSnapshotSQL)).WithArgs(snapshotID).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, snapshotID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestSnapshotRepository_ListByBorrower(t *testing.T) {
	t.Run("returns page and total", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		second := uuid.MustParse("0b6f0e9a-8a33-4c1e-bf3a-5d1f7c0e2a44")
		mockPool.ExpectQuery(regexp.QuoteMeta(countSnapshotsSQL)).WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
		rows := pgxmock.NewRows(snapshotColumnNames)
		snapshotRow(rows, snapshotID)
		snapshotRow(rows, second)
		mockPool.ExpectQuery(regexp.QuoteMeta(listSnapshotsSQL)).WithArgs(int64(7), 2, 0).WillReturnRows(rows)

		items, total, err := repo.ListByBorrower(ctx, 7, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, items, 2)
		assert.Equal(t, second, items[1].ID)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})

	t.Run("offset past the end skips the page query", func(t *testing.T) {
		ctx, repo, mockPool := setupSnapshotRepo(t)
		defer mockPool.Close()

		mockPool.ExpectQuery(regexp.QuoteMeta(countSnapshotsSQL)).WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

		items, total, err := repo.ListByBorrower(ctx, 7, 10, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, items)
		assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
	})
}

func TestSnapshotRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"owned snapshot", 1, true},
		{"missing or foreign snapshot", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, repo, mockPool := setupSnapshotRepo(t)
			defer mockPool.Close()

			mockPool.ExpectExec(regexp.QuoteMeta(deleteSnapshotSQL)).WithArgs(snapshotID, int64(7)).
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			deleted, err := repo.Delete(ctx, 7, snapshotID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
			assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
		})
	}
}
