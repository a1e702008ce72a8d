package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/domain/loanrequest"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func asPrincipal(r *http.Request, role middleware.Role, id int64) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), middleware.Principal{Role: role, ID: id}))
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, borrowerID int64) (*analysis.Snapshot, error) {
	args := m.Called(ctx, borrowerID)
	if s, ok := args.Get(0).(*analysis.Snapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalysisService) History(ctx context.Context, borrowerID int64, page, pageSize int) (*analysis.Page, error) {
	args := m.Called(ctx, borrowerID, page, pageSize)
	if p, ok := args.Get(0).(*analysis.Page); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalysisService) Get(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) (*analysis.Snapshot, error) {
	args := m.Called(ctx, borrowerID, snapshotID)
	if s, ok := args.Get(0).(*analysis.Snapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalysisService) Delete(ctx context.Context, borrowerID int64, snapshotID uuid.UUID) error {
	return m.Called(ctx, borrowerID, snapshotID).Error(0)
}

type MockLoanRequestService struct {
	mock.Mock
}

func (m *MockLoanRequestService) Create(ctx context.Context, borrowerID int64, snapshotID uuid.UUID, lenderID int64) (*loanrequest.LoanRequest, error) {
	args := m.Called(ctx, borrowerID, snapshotID, lenderID)
	if lr, ok := args.Get(0).(*loanrequest.LoanRequest); ok {
		return lr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) Decide(ctx context.Context, lenderID int64, requestID uuid.UUID, decision loanrequest.Decision, note string) (*loanrequest.LoanRequest, error) {
	args := m.Called(ctx, lenderID, requestID, decision, note)
	if lr, ok := args.Get(0).(*loanrequest.LoanRequest); ok {
		return lr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) Cancel(ctx context.Context, borrowerID int64, requestID uuid.UUID) (*loanrequest.LoanRequest, error) {
	args := m.Called(ctx, borrowerID, requestID)
	if lr, ok := args.Get(0).(*loanrequest.LoanRequest); ok {
		return lr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) Accept(ctx context.Context, borrowerID int64, requestID uuid.UUID) (*loanrequest.AcceptOutcome, error) {
	args := m.Called(ctx, borrowerID, requestID)
	if o, ok := args.Get(0).(*loanrequest.AcceptOutcome); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) Get(ctx context.Context, party loanrequest.Party, requestID uuid.UUID) (*loanrequest.LoanRequest, error) {
	args := m.Called(ctx, party, requestID)
	if lr, ok := args.Get(0).(*loanrequest.LoanRequest); ok {
		return lr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) ListForBorrower(ctx context.Context, borrowerID int64) ([]loanrequest.LoanRequest, error) {
	args := m.Called(ctx, borrowerID)
	if items, ok := args.Get(0).([]loanrequest.LoanRequest); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanRequestService) ListForLender(ctx context.Context, lenderID int64, status loanrequest.Status) ([]loanrequest.LoanRequest, error) {
	args := m.Called(ctx, lenderID, status)
	if items, ok := args.Get(0).([]loanrequest.LoanRequest); ok {
		return items, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLenderService struct {
	mock.Mock
}

func (m *MockLenderService) Catalog(ctx context.Context) ([]lender.Lender, error) {
	args := m.Called(ctx)
	if l, ok := args.Get(0).([]lender.Lender); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLenderService) GetLender(ctx context.Context, lenderID int64) (*lender.Lender, error) {
	args := m.Called(ctx, lenderID)
	if l, ok := args.Get(0).(*lender.Lender); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLenderService) RefreshStatistics(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockBorrowerService struct {
	mock.Mock
}

func (m *MockBorrowerService) GetBorrower(ctx context.Context, borrowerID int64) (*borrower.Borrower, error) {
	args := m.Called(ctx, borrowerID)
	if b, ok := args.Get(0).(*borrower.Borrower); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowerService) GetCoBorrower(ctx context.Context, borrowerID, coBorrowerID int64) (*borrower.CoBorrower, error) {
	args := m.Called(ctx, borrowerID, coBorrowerID)
	if co, ok := args.Get(0).(*borrower.CoBorrower); ok {
		return co, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowerService) RecordKYC(ctx context.Context, borrowerID, coBorrowerID int64, in borrower.KYCInput) (*borrower.CoBorrower, error) {
	args := m.Called(ctx, borrowerID, coBorrowerID, in)
	if co, ok := args.Get(0).(*borrower.CoBorrower); ok {
		return co, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBorrowerService) ApplyEvidence(ctx context.Context, borrowerID, coBorrowerID int64, mutate borrower.InfoMutation) (*borrower.CoBorrower, error) {
	args := m.Called(ctx, borrowerID, coBorrowerID, mutate)
	if co, ok := args.Get(0).(*borrower.CoBorrower); ok {
		return co, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEvidenceIngester struct {
	mock.Mock
}

func (m *MockEvidenceIngester) Ingest(ctx context.Context, borrowerID, coBorrowerID int64, up borrower.Upload) (*borrower.EvidenceOutcome, error) {
	args := m.Called(ctx, borrowerID, coBorrowerID, up)
	if o, ok := args.Get(0).(*borrower.EvidenceOutcome); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
