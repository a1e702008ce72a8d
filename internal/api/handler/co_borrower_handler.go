package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/pkg/apperrors"
)

// multipart overhead allowed on top of the document itself
const uploadFormSlack = 1 << 20

type EvidenceIngester interface {
	Ingest(ctx context.Context, borrowerID, coBorrowerID int64, up borrower.Upload) (*borrower.EvidenceOutcome, error)
}

type CoBorrowerHandler struct {
	borrowers borrower.Service
	evidence  EvidenceIngester
	logger    *slog.Logger
}

func NewCoBorrowerHandler(borrowers borrower.Service, evidence EvidenceIngester, l *slog.Logger) *CoBorrowerHandler {
	if borrowers == nil || evidence == nil {
		panic("co-borrower handler dependencies cannot be nil")
	}
	return &CoBorrowerHandler{
		borrowers: borrowers,
		evidence:  evidence,
		logger:    l.With("component", "CoBorrowerHandler"),
	}
}

// UploadEvidence handles POST /co-borrowers/{coBorrowerID}/evidence/{category}
// @Summary Upload a financial document for a co-borrower
// @Description Stores the document, extracts its fields and recomputes the financial summary. Documents no provider can read are kept as records flagged for review.
// @Tags Co-Borrowers
// @Accept multipart/form-data
// @Produce json
// @Param coBorrowerID path int true "Co-borrower ID" Minimum(1)
// @Param category path string true "Evidence category" Enums(salary_slip, bank_statement, tax_return, employer_certificate)
// @Param period formData string false "YYYY-MM for salary slips, YYYY-YY for tax documents"
// @Param file formData file true "Document"
// @Success 201 {object} dto.EvidenceResponse "Evidence recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid upload"
// @Failure 404 {object} dto.ErrorResponse "Co-borrower not found"
// @Failure 413 {object} dto.ErrorResponse "Upload too large"
// @Router /co-borrowers/{coBorrowerID}/evidence/{category} [post]
// @Security BearerAuth
func (h *CoBorrowerHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	coBorrowerID, err := int64URLParam(r, "coBorrowerID")
	if err != nil {
		respondError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, borrower.MaxEvidenceBytes+uploadFormSlack)
	if err := r.ParseMultipartForm(borrower.MaxEvidenceBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{
				Error: dto.ErrorDetail{Message: "uploaded file exceeds the 10 MiB limit", Field: "file"},
			})
			return
		}
		respondError(w, fmt.Errorf("%w: invalid multipart form: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, apperrors.NewValidationError("file", "a file is required"))
		return
	}
	defer file.Close()

	up := borrower.Upload{
		Category:    financial.Category(chi.URLParam(r, "category")),
		Period:      r.FormValue("period"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}

	outcome, err := h.evidence.Ingest(r.Context(), p.ID, coBorrowerID, up)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to ingest evidence", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dto.NewEvidenceResponse(outcome))
}

// RecordKYC handles PUT /co-borrowers/{coBorrowerID}/kyc
// @Summary Record the outcome of a co-borrower identity check
// @Description Overwriting a verified KYC requires reverify=true.
// @Tags Co-Borrowers
// @Accept json
// @Produce json
// @Param coBorrowerID path int true "Co-borrower ID" Minimum(1)
// @Param request body dto.RecordKYCRequest true "KYC outcome"
// @Success 200 {object} dto.CoBorrowerResponse "KYC recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid payload"
// @Failure 404 {object} dto.ErrorResponse "Co-borrower not found"
// @Failure 409 {object} dto.ErrorResponse "KYC already verified"
// @Router /co-borrowers/{coBorrowerID}/kyc [put]
// @Security BearerAuth
func (h *CoBorrowerHandler) RecordKYC(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	coBorrowerID, err := int64URLParam(r, "coBorrowerID")
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordKYCRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, apperrors.NewValidationError("reference", err.Error()))
		return
	}

	co, err := h.borrowers.RecordKYC(r.Context(), p.ID, coBorrowerID, borrower.KYCInput{
		Verified:  req.Verified,
		Reference: req.Reference,
		Reverify:  req.Reverify,
	})
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to record KYC", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "KYC recorded", "coBorrowerID", co.ID, "verified", co.KYC.Verified)
	respondJSON(w, http.StatusOK, dto.NewCoBorrowerResponse(co))
}
