package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-marketplace/internal/domain/lender"
)

type RefreshLenderStatsJob struct {
	lenderService lender.Service
	timeout       time.Duration
	logger        *slog.Logger
}

// NewRefreshLenderStatsJob builds the job. A zero timeout lets a run take as
// long as the caller's context allows.
func NewRefreshLenderStatsJob(lenderSvc lender.Service, timeout time.Duration, logger *slog.Logger) *RefreshLenderStatsJob {
	if lenderSvc == nil || logger == nil {
		panic("RefreshLenderStatsJob dependencies cannot be nil")
	}
	return &RefreshLenderStatsJob{
		lenderService: lenderSvc,
		timeout:       timeout,
		logger:        logger.With("job", "RefreshLenderStats"),
	}
}

// Run recomputes every lender's request counters and approval rate, then warms
// the catalog cache the refresh invalidated.
func (j *RefreshLenderStatsJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting lender statistics refresh job.")

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	updated, err := j.lenderService.RefreshStatistics(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to refresh lender statistics, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to refresh lender statistics: %w", err)
	}

	catalogSize := 0
	lenders, err := j.lenderService.Catalog(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "Lender catalog warm-up failed, next analysis will read through.", slog.Any("error", err))
	} else {
		catalogSize = len(lenders)
	}

	j.logger.InfoContext(ctx, "Lender statistics refresh job finished successfully.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("lenders_updated", updated),
		slog.Int("active_lenders", catalogSize),
	)
	return nil
}
