package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/eligibility"
)

// Snapshot is the immutable record of one matching run. It is written once and
// only ever deleted by its owner.
type Snapshot struct {
	ID               uuid.UUID            `json:"id"`
	BorrowerID       int64                `json:"borrowerId"`
	CoBorrowerID     *int64               `json:"coBorrowerId,omitempty"`
	Profile          eligibility.Profile  `json:"profile"`
	Results          []eligibility.Result `json:"results"`
	EligibleCount    int                  `json:"eligibleCount"`
	BorderlineCount  int                  `json:"borderlineCount"`
	NotEligibleCount int                  `json:"notEligibleCount"`
	CreatedAt        time.Time            `json:"createdAt"`
}

// ResultFor returns the stored result for lenderID.
func (s *Snapshot) ResultFor(lenderID int64) (eligibility.Result, bool) {
	for _, r := range s.Results {
		if r.LenderID == lenderID {
			return r, true
		}
	}
	return eligibility.Result{}, false
}

type Page struct {
	Items    []Snapshot `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int        `json:"total"`
}

type Repository interface {
	// Insert writes the snapshot in a single statement.
	Insert(ctx context.Context, s *Snapshot) error

	GetByID(ctx context.Context, snapshotID uuid.UUID) (*Snapshot, error)

	// ListByBorrower returns one page, newest first, and the borrower's total.
	ListByBorrower(ctx context.Context, borrowerID int64, limit, offset int) ([]Snapshot, int, error)

	// Delete removes the snapshot only when it belongs to borrowerID.
	Delete(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (bool, error)
}
