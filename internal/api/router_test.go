package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mw "loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/config"
	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/lender"
	"loan-marketplace/internal/domain/loanrequest"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Embedded nil interfaces satisfy the service contracts; only the methods a
// test reaches are implemented.
type stubAnalysis struct{ analysis.Service }

type stubLoanRequests struct{ loanrequest.Service }

type stubBorrowers struct{ borrower.Service }

type stubEvidence struct{}

func (stubEvidence) Ingest(ctx context.Context, borrowerID, coBorrowerID int64, up borrower.Upload) (*borrower.EvidenceOutcome, error) {
	return nil, nil
}

type stubLenders struct{ lender.Service }

func (stubLenders) Catalog(ctx context.Context) ([]lender.Lender, error) {
	return []lender.Lender{{ID: 1, Name: "Avanse", Active: true}}, nil
}

func newTestRouter(authEnabled bool) http.Handler {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{Enabled: authEnabled, JWTSecret: "router-test-secret"},
		},
	}
	return SetupRouter(Services{
		Analysis:     stubAnalysis{},
		LoanRequests: stubLoanRequests{},
		Lenders:      stubLenders{},
		Borrowers:    stubBorrowers{},
		Evidence:     stubEvidence{},
	}, nil, cfg, logger)
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lenders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_IssuedTokenReachesCatalog(t *testing.T) {
	router := newTestRouter(true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"role":"student","id":7}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var tok struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tok))

	req := httptest.NewRequest(http.MethodGet, "/lenders", nil)
	req.Header.Set("Authorization", tok.Token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Avanse")
}

func TestRouter_RoleEnforcement(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		role   mw.Role
	}{
		{"lender cannot analyze", http.MethodPost, "/analysis", mw.RoleLender},
		{"lender cannot create requests", http.MethodPost, "/loan-requests", mw.RoleLender},
		{"student cannot decide", http.MethodPost, "/loan-requests/9d3c6b0e-2f41-4a8b-8c77-0e5f4a3b2c1d/decision", mw.RoleStudent},
		{"lender cannot accept", http.MethodPost, "/loan-requests/9d3c6b0e-2f41-4a8b-8c77-0e5f4a3b2c1d/accept", mw.RoleLender},
		{"lender cannot upload evidence", http.MethodPost, "/co-borrowers/11/evidence/salary_slip", mw.RoleLender},
	}

	router := newTestRouter(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(mw.HeaderPrincipalRole, string(tt.role))
			req.Header.Set(mw.HeaderPrincipalID, "1")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}
