package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-marketplace/internal/domain/criteria"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/pkg/apperrors"
)

const (
	lenderColumns = `id, name, active, min_roi, max_roi, criteria, total_requests, approved_requests,
		rejected_requests, accepted_requests, approval_rate, stats_refreshed_at, created_at, updated_at`

	selectActiveLendersSQL = `SELECT ` + lenderColumns + ` FROM lenders WHERE active = TRUE ORDER BY name, id`

	selectLenderSQL = `SELECT ` + lenderColumns + ` FROM lenders WHERE id = $1`

	// Approval rate counts accepted requests as approved, over every decided request.
	refreshLenderStatisticsSQL = `
	UPDATE lenders l
	SET total_requests = s.total,
		approved_requests = s.approved,
		rejected_requests = s.rejected,
		accepted_requests = s.accepted,
		approval_rate = CASE WHEN s.approved + s.accepted + s.rejected = 0 THEN 0
			ELSE ROUND(100.0 * (s.approved + s.accepted) / (s.approved + s.accepted + s.rejected), 2) END,
		stats_refreshed_at = NOW(),
		updated_at = NOW()
	FROM (
		SELECT ld.id AS lender_id,
			COUNT(r.id) AS total,
			COUNT(r.id) FILTER (WHERE r.status = 'approved') AS approved,
			COUNT(r.id) FILTER (WHERE r.status = 'rejected') AS rejected,
			COUNT(r.id) FILTER (WHERE r.status = 'accepted') AS accepted
		FROM lenders ld
		LEFT JOIN loan_requests r ON r.lender_id = ld.id
		GROUP BY ld.id
	) s
	WHERE l.id = s.lender_id`
)

type LenderRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ lender.Repository = (*LenderRepository)(nil)

func NewLenderRepository(db DBPool, logger *slog.Logger) *LenderRepository {
	return &LenderRepository{db: db, logger: logger.With("component", "LenderRepository")}
}

// ListActive returns every active lender. A lender whose criteria document
// fails schema validation is left out of the catalog and logged.
func (r *LenderRepository) ListActive(ctx context.Context) (lenders []lender.Lender, err error) {
	logCtx := r.logger.With(slog.String("operation", "ListActive"))
	defer observe("list_active_lenders", time.Now(), &err)

	rows, err := r.db.Query(ctx, selectActiveLendersSQL)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query active lenders", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query active lenders: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	lenders = make([]lender.Lender, 0)
	for rows.Next() {
		l, raw, scanErr := scanLender(rows)
		if scanErr != nil {
			err = fmt.Errorf("%w: failed scanning lender: %w", apperrors.ErrDatabase, scanErr)
			logCtx.ErrorContext(ctx, "Failed to scan lender row", slog.Any("error", scanErr))
			return nil, err
		}
		if l.Criteria, scanErr = criteria.Parse(raw); scanErr != nil {
			logCtx.ErrorContext(ctx, "Lender criteria rejected, excluding from catalog",
				slog.Int64("lender_id", l.ID), slog.Any("error", scanErr))
			continue
		}
		lenders = append(lenders, *l)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating lender rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed iterating lenders: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Loaded active lenders", slog.Int("count", len(lenders)))
	return lenders, nil
}

func (r *LenderRepository) GetByID(ctx context.Context, lenderID int64) (l *lender.Lender, err error) {
	logCtx := r.logger.With(slog.Int64("lender_id", lenderID))
	defer observe("get_lender", time.Now(), &err)

	l, raw, err := scanLender(r.db.QueryRow(ctx, selectLenderSQL, lenderID))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	if l.Criteria, err = criteria.Parse(raw); err != nil {
		logCtx.ErrorContext(ctx, "Lender criteria rejected", slog.Any("error", err))
		return nil, fmt.Errorf("%w: lender %d criteria: %w", apperrors.ErrInternalServer, lenderID, err)
	}
	return l, nil
}

func (r *LenderRepository) RefreshStatistics(ctx context.Context) (updated int64, err error) {
	defer observe("refresh_lender_statistics", time.Now(), &err)

	tag, err := r.db.Exec(ctx, refreshLenderStatisticsSQL)
	if err != nil {
		return 0, translateDBError(err, r.logger.With(slog.String("operation", "RefreshStatistics")))
	}
	return tag.RowsAffected(), nil
}

func scanLender(row rowScanner) (*lender.Lender, []byte, error) {
	l := &lender.Lender{}
	var raw []byte
	err := row.Scan(
		&l.ID, &l.Name, &l.Active, &l.RateBand.MinROI, &l.RateBand.MaxROI, &raw,
		&l.Stats.TotalRequests, &l.Stats.Approved, &l.Stats.Rejected, &l.Stats.Accepted,
		&l.Stats.ApprovalRate, &l.Stats.RefreshedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	return l, raw, nil
}
