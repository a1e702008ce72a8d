package handler

import (
	"log/slog"
	"net/http"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/domain/analysis"
)

type AnalysisHandler struct {
	service analysis.Service
	logger  *slog.Logger
}

func NewAnalysisHandler(s analysis.Service, l *slog.Logger) *AnalysisHandler {
	if s == nil {
		panic("analysis service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &AnalysisHandler{
		service: s,
		logger:  l.With("component", "AnalysisHandler"),
	}
}

// Analyze handles POST /analysis
// @Summary Run lender matching for the calling student
// @Description Builds the borrower profile from the best co-borrower, evaluates every active lender and stores the result as an immutable snapshot.
// @Tags Analysis
// @Produce json
// @Success 201 {object} dto.SnapshotResponse "Snapshot created"
// @Failure 400 {object} dto.ErrorResponse "Borrower profile incomplete"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Borrower not found"
// @Failure 500 {object} dto.ErrorResponse "Snapshot could not be persisted"
// @Router /analysis [post]
// @Security BearerAuth
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.DebugContext(r.Context(), "Received analysis request", "borrowerID", p.ID)
	snap, err := h.service.Analyze(r.Context(), p.ID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to analyze borrower", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Analysis snapshot created", "snapshotID", snap.ID, "eligible", snap.EligibleCount)
	respondJSON(w, http.StatusCreated, dto.NewSnapshotResponse(snap))
}

// History handles GET /analysis/history
// @Summary List the caller's analysis snapshots
// @Description Paginated, newest first.
// @Tags Analysis
// @Produce json
// @Param page query int false "Page number" minimum(1) default(1)
// @Param pageSize query int false "Page size" minimum(1) maximum(50) default(10)
// @Success 200 {object} dto.SnapshotPageResponse "Snapshot page"
// @Failure 400 {object} dto.ErrorResponse "Invalid paging parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /analysis/history [get]
// @Security BearerAuth
func (h *AnalysisHandler) History(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	page, err := intQueryParam(r, "page", 1)
	if err != nil {
		respondError(w, err)
		return
	}
	pageSize, err := intQueryParam(r, "pageSize", analysis.DefaultPageSize)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.History(r.Context(), p.ID, page, pageSize)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to list snapshots", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSnapshotPageResponse(result))
}

// GetSnapshot handles GET /analysis/history/{snapshotID}
// @Summary Retrieve one analysis snapshot
// @Tags Analysis
// @Produce json
// @Param snapshotID path string true "Snapshot ID" format(uuid)
// @Success 200 {object} dto.SnapshotResponse "Snapshot"
// @Failure 400 {object} dto.ErrorResponse "Invalid snapshot ID"
// @Failure 404 {object} dto.ErrorResponse "Snapshot not found"
// @Router /analysis/history/{snapshotID} [get]
// @Security BearerAuth
func (h *AnalysisHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	snapshotID, err := uuidURLParam(r, "snapshotID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get snapshot ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	snap, err := h.service.Get(r.Context(), p.ID, snapshotID)
	if err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to get snapshot", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewSnapshotResponse(snap))
}

// DeleteSnapshot handles DELETE /analysis/history/{snapshotID}
// @Summary Delete one of the caller's snapshots
// @Tags Analysis
// @Param snapshotID path string true "Snapshot ID" format(uuid)
// @Success 204 "Snapshot deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid snapshot ID"
// @Failure 404 {object} dto.ErrorResponse "Snapshot not found"
// @Router /analysis/history/{snapshotID} [delete]
// @Security BearerAuth
func (h *AnalysisHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		respondError(w, err)
		return
	}
	snapshotID, err := uuidURLParam(r, "snapshotID")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), p.ID, snapshotID); err != nil {
		h.logger.Log(r.Context(), logLevelFor(err), "Service failed to delete snapshot", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Snapshot deleted", "snapshotID", snapshotID)
	respondJSON(w, http.StatusNoContent, nil)
}
