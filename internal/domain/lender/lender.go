package lender

import (
	"context"
	"time"

	"loan-marketplace/internal/domain/criteria"
)

// RateBand is the annual rate range a lender quotes, in percent.
type RateBand struct {
	MinROI float64 `json:"minRoi"`
	MaxROI float64 `json:"maxRoi"`
}

type Statistics struct {
	TotalRequests int        `json:"totalRequests"`
	Approved      int        `json:"approved"`
	Rejected      int        `json:"rejected"`
	Accepted      int        `json:"accepted"`
	ApprovalRate  float64    `json:"approvalRate"`
	RefreshedAt   *time.Time `json:"refreshedAt,omitempty"`
}

type Lender struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Active    bool         `json:"active"`
	RateBand  RateBand     `json:"rateBand"`
	Criteria  criteria.Set `json:"criteria"`
	Stats     Statistics   `json:"stats"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type Repository interface {
	ListActive(ctx context.Context) ([]Lender, error)

	GetByID(ctx context.Context, lenderID int64) (*Lender, error)

	// RefreshStatistics recomputes every lender's aggregate counters from the
	// loan_requests table and returns the number of lenders updated.
	RefreshStatistics(ctx context.Context) (int64, error)
}

// CatalogCache holds the active lender catalog between analysis runs.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]Lender, bool, error)
	SetCatalog(ctx context.Context, lenders []Lender) error
	Invalidate(ctx context.Context) error
}
