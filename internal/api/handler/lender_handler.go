package handler

import (
	"log/slog"
	"net/http"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/domain/lender"
)

type LenderHandler struct {
	service lender.Service
	logger  *slog.Logger
}

func NewLenderHandler(s lender.Service, l *slog.Logger) *LenderHandler {
	return &LenderHandler{
		service: s,
		logger:  l.With("component", "LenderHandler"),
	}
}

// ListLenders handles GET /lenders
// @Summary List active lenders
// @Description Returns the active lender catalog with rate bands and approval statistics.
// @Tags Lenders
// @Produce json
// @Success 200 {array} dto.LenderResponse "Active lenders"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /lenders [get]
// @Security BearerAuth
func (h *LenderHandler) ListLenders(w http.ResponseWriter, r *http.Request) {
	lenders, err := h.service.Catalog(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to load lender catalog", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLenderListResponse(lenders))
}
