package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/pkg/apperrors"
)

const (
	snapshotColumns = `id, borrower_id, co_borrower_id, profile, results, eligible_count, borderline_count, not_eligible_count, created_at`

	insertSnapshotSQL = `
	INSERT INTO analysis_snapshots (` + snapshotColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	selectSnapshotSQL = `SELECT ` + snapshotColumns + ` FROM analysis_snapshots WHERE id = $1`

	countSnapshotsSQL = `SELECT COUNT(*) FROM analysis_snapshots WHERE borrower_id = $1`

	listSnapshotsSQL = `
	SELECT ` + snapshotColumns + `
	FROM analysis_snapshots
	WHERE borrower_id = $1
	ORDER BY created_at DESC, id DESC
	LIMIT $2 OFFSET $3`

	deleteSnapshotSQL = `DELETE FROM analysis_snapshots WHERE id = $1 AND borrower_id = $2`
)

type SnapshotRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ analysis.Repository = (*SnapshotRepository)(nil)

func NewSnapshotRepository(db DBPool, logger *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger.With("component", "SnapshotRepository")}
}

func (r *SnapshotRepository) Insert(ctx context.Context, s *analysis.Snapshot) (err error) {
	logCtx := r.logger.With(slog.String("snapshot_id", s.ID.String()), slog.Int64("borrower_id", s.BorrowerID))
	defer observe("insert_snapshot", time.Now(), &err)

	profile, err := jsonColumn(s.Profile)
	if err != nil {
		return err
	}
	results, err := jsonColumn(s.Results)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, insertSnapshotSQL,
		s.ID, s.BorrowerID, s.CoBorrowerID, profile, results,
		s.EligibleCount, s.BorderlineCount, s.NotEligibleCount, s.CreatedAt,
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to insert analysis snapshot", "error", err)
		return translateDBError(err, logCtx)
	}

	logCtx.DebugContext(ctx, "Analysis snapshot stored", "results", len(s.Results))
	return nil
}

func (r *SnapshotRepository) GetByID(ctx context.Context, snapshotID uuid.UUID) (s *analysis.Snapshot, err error) {
	defer observe("get_snapshot", time.Now(), &err)

	s, err = scanSnapshot(r.db.QueryRow(ctx, selectSnapshotSQL, snapshotID))
	if err != nil {
		return nil, translateDBError(err, r.logger.With(slog.String("snapshot_id", snapshotID.String())))
	}
	return s, nil
}

func (r *SnapshotRepository) ListByBorrower(ctx context.Context, borrowerID int64, limit, offset int) (items []analysis.Snapshot, total int, err error) {
	logCtx := r.logger.With(slog.Int64("borrower_id", borrowerID))
	defer observe("list_snapshots", time.Now(), &err)

	if err = r.db.QueryRow(ctx, countSnapshotsSQL, borrowerID).Scan(&total); err != nil {
		logCtx.ErrorContext(ctx, "Failed to count analysis snapshots", "error", err)
		return nil, 0, fmt.Errorf("%w: failed to count snapshots: %w", apperrors.ErrDatabase, err)
	}

	items = make([]analysis.Snapshot, 0)
	if total == 0 || offset >= total {
		return items, total, nil
	}

	rows, err := r.db.Query(ctx, listSnapshotsSQL, borrowerID, limit, offset)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query analysis snapshots", "error", err)
		return nil, 0, fmt.Errorf("%w: failed to query snapshots: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	for rows.Next() {
		s, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			err = fmt.Errorf("%w: failed scanning snapshot: %w", apperrors.ErrDatabase, scanErr)
			logCtx.ErrorContext(ctx, "Failed to scan snapshot row", "error", scanErr)
			return nil, 0, err
		}
		items = append(items, *s)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating snapshot rows", "error", err)
		return nil, 0, fmt.Errorf("%w: failed iterating snapshots: %w", apperrors.ErrDatabase, err)
	}

	return items, total, nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (deleted bool, err error) {
	logCtx := r.logger.With(slog.Int64("borrower_id", borrowerID), slog.String("snapshot_id", snapshotID.String()))
	defer observe("delete_snapshot", time.Now(), &err)

	tag, err := r.db.Exec(ctx, deleteSnapshotSQL, snapshotID, borrowerID)
	if err != nil {
		return false, translateDBError(err, logCtx)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSnapshot(row rowScanner) (*analysis.Snapshot, error) {
	s := &analysis.Snapshot{}
	var profile, results []byte
	err := row.Scan(&s.ID, &s.BorrowerID, &s.CoBorrowerID, &profile, &results,
		&s.EligibleCount, &s.BorderlineCount, &s.NotEligibleCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeColumn(profile, &s.Profile, "profile"); err != nil {
		return nil, err
	}
	if err := decodeColumn(results, &s.Results, "results"); err != nil {
		return nil, err
	}
	return s, nil
}
