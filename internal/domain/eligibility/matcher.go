package eligibility

import (
	"context"
	"log/slog"
	"sort"

	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/infrastructure/monitoring"

	"golang.org/x/sync/errgroup"
)

type Matcher struct {
	weights Weights
	logger  *slog.Logger
}

func NewMatcher(weights Weights, logger *slog.Logger) *Matcher {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Matcher{weights: weights, logger: logger.With("component", "EligibilityMatcher")}
}

// MatchAll evaluates the profile against every lender in parallel. Either every
// lender is evaluated or the run fails as a whole; partial results are never
// returned.
func (m *Matcher) MatchAll(ctx context.Context, profile Profile, lenders []lender.Lender) ([]Result, error) {
	results := make([]Result, len(lenders))
	g, ctx := errgroup.WithContext(ctx)

	for i := range lenders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Evaluate(profile, lenders[i], m.weights)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		m.logger.WarnContext(ctx, "Matching run aborted", "borrower_id", profile.BorrowerID, "error", err)
		return nil, err
	}

	SortResults(results)
	for _, r := range results {
		monitoring.RecordLenderOutcome(string(r.Status))
	}
	m.logger.DebugContext(ctx, "Matching run complete", "borrower_id", profile.BorrowerID, "lenders", len(results))
	return results, nil
}

// SortResults orders by status (eligible first), then match percentage
// descending, then lender name.
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Status.rank() != b.Status.rank() {
			return a.Status.rank() < b.Status.rank()
		}
		if a.MatchPercentage != b.MatchPercentage {
			return a.MatchPercentage > b.MatchPercentage
		}
		if a.LenderName != b.LenderName {
			return a.LenderName < b.LenderName
		}
		return a.LenderID < b.LenderID
	})
}
