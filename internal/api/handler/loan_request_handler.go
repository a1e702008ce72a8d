package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/domain/loanrequest"
	"loan-marketplace/internal/pkg/apperrors"
)

type LoanRequestHandler struct {
	service loanrequest.Service
	logger  *slog.Logger
}

func NewLoanRequestHandler(s loanrequest.Service, l *slog.Logger) *LoanRequestHandler {
	if s == nil {
		panic("loan request service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &LoanRequestHandler{
		service: s,
		logger:  l.With("component", "LoanRequestHandler"),
	}
}

func partyOf(p middleware.Principal) loanrequest.Party {
	if p.Role == middleware.RoleLender {
		return loanrequest.Party{Role: loanrequest.RoleLender, ID: p.ID}
	}
	return loanrequest.Party{Role: loanrequest.RoleBorrower, ID: p.ID}
}

// Create handles POST /loan-requests
// @Summary Request a loan from a matched lender
// @Description Creates a pending request using the rationale stored in the referenced snapshot. Only one pending or approved request may exist per lender.
// @Tags Loan Requests
// @Accept json
// @Produce json
// @Param request body dto.CreateLoanRequestRequest true "Snapshot and lender"
// @Success 201 {object} dto.LoanRequestResponse "Loan request created"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload, unknown snapshot or lender not eligible"
// @Failure 409 {object} dto.ErrorResponse "An active request for this lender already exists"
// @Router /loan-requests [post]
// @Security BearerAuth
func (h *LoanRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CreateLoanRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	lr, err := h.service.Create(r.Context(), p.ID, uuid.MustParse(req.SnapshotID), req.LenderID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to create loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan request created", "requestID", lr.ID, "lenderID", lr.LenderID)
	respondJSON(w, http.StatusCreated, dto.NewLoanRequestResponse(lr))
}

// List handles GET /loan-requests
// @Summary List loan requests visible to the caller
// @Description Students see their own requests. Lenders see requests addressed to them, optionally filtered by status.
// @Tags Loan Requests
// @Produce json
// @Param status query string false "Status filter (lenders only)" Enums(pending, approved, rejected, cancelled, accepted)
// @Success 200 {array} dto.LoanRequestResponse "Loan requests"
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Router /loan-requests [get]
// @Security BearerAuth
func (h *LoanRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var items []loanrequest.LoanRequest
	if p.Role == middleware.RoleLender {
		status := loanrequest.Status(strings.ToLower(r.URL.Query().Get("status")))
		if status != "" && !status.Valid() {
			respondError(w, apperrors.NewValidationError("status", fmt.Sprintf("unknown status %q", status)))
			return
		}
		items, err = h.service.ListForLender(r.Context(), p.ID, status)
	} else {
		items, err = h.service.ListForBorrower(r.Context(), p.ID)
	}
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list loan requests", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanRequestListResponse(items))
}

// Get handles GET /loan-requests/{requestID}
// @Summary Retrieve one loan request
// @Tags Loan Requests
// @Produce json
// @Param requestID path string true "Loan request ID" format(uuid)
// @Success 200 {object} dto.LoanRequestResponse "Loan request"
// @Failure 403 {object} dto.ErrorResponse "Request belongs to another party"
// @Failure 404 {object} dto.ErrorResponse "Loan request not found"
// @Router /loan-requests/{requestID} [get]
// @Security BearerAuth
func (h *LoanRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requestID, err := uuidURLParam(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	lr, err := h.service.Get(r.Context(), partyOf(p), requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(lr))
}

// Decide handles POST /loan-requests/{requestID}/decision
// @Summary Approve or reject a pending request
// @Tags Loan Requests
// @Accept json
// @Produce json
// @Param requestID path string true "Loan request ID" format(uuid)
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.LoanRequestResponse "Decision recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid decision"
// @Failure 403 {object} dto.ErrorResponse "Request addressed to another lender"
// @Failure 409 {object} dto.ErrorResponse "Request is no longer pending"
// @Router /loan-requests/{requestID}/decision [post]
// @Security BearerAuth
func (h *LoanRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requestID, err := uuidURLParam(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	lr, err := h.service.Decide(r.Context(), p.ID, requestID, loanrequest.Decision(strings.ToLower(req.Decision)), strings.TrimSpace(req.Note))
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to record decision", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan request decided", "requestID", lr.ID, "status", lr.Status)
	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(lr))
}

// Accept handles POST /loan-requests/{requestID}/accept
// @Summary Accept an approved offer
// @Description Accepting cancels the caller's other pending requests.
// @Tags Loan Requests
// @Produce json
// @Param requestID path string true "Loan request ID" format(uuid)
// @Success 200 {object} dto.AcceptResponse "Offer accepted"
// @Failure 403 {object} dto.ErrorResponse "Request belongs to another student"
// @Failure 409 {object} dto.ErrorResponse "Request is not approved"
// @Router /loan-requests/{requestID}/accept [post]
// @Security BearerAuth
func (h *LoanRequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requestID, err := uuidURLParam(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	outcome, err := h.service.Accept(r.Context(), p.ID, requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to accept loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan request accepted", "requestID", requestID, "autoCancelled", len(outcome.AutoCancelled))
	respondJSON(w, http.StatusOK, dto.NewAcceptResponse(outcome))
}

// Cancel handles POST /loan-requests/{requestID}/cancel
// @Summary Withdraw a pending request
// @Tags Loan Requests
// @Produce json
// @Param requestID path string true "Loan request ID" format(uuid)
// @Success 200 {object} dto.LoanRequestResponse "Request cancelled"
// @Failure 403 {object} dto.ErrorResponse "Request belongs to another student"
// @Failure 409 {object} dto.ErrorResponse "Request is no longer pending"
// @Router /loan-requests/{requestID}/cancel [post]
// @Security BearerAuth
func (h *LoanRequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	requestID, err := uuidURLParam(r, "requestID")
	if err != nil {
		respondError(w, err)
		return
	}

	lr, err := h.service.Cancel(r.Context(), p.ID, requestID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to cancel loan request", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan request cancelled", "requestID", lr.ID)
	respondJSON(w, http.StatusOK, dto.NewLoanRequestResponse(lr))
}
