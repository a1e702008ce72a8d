package borrower

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Repository interface {
	// GetBorrower loads the borrower together with every co-borrower.
	GetBorrower(ctx context.Context, borrowerID int64) (*Borrower, error)

	GetCoBorrower(ctx context.Context, coBorrowerID int64) (*CoBorrower, error)

	// GetCoBorrowerForUpdate locks the co-borrower row until tx ends.
	GetCoBorrowerForUpdate(ctx context.Context, tx pgx.Tx, coBorrowerID int64) (*CoBorrower, error)

	UpdateCoBorrowerInTx(ctx context.Context, tx pgx.Tx, co *CoBorrower) error

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error
}
