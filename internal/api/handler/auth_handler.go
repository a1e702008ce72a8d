package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/config"
	"loan-marketplace/internal/pkg/apperrors"
)

type AuthHandler struct {
	cfg    config.AuthConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthHandler(cfg config.AuthConfig, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:    cfg,
		logger: l.With("component", "AuthHandler"),
		now:    time.Now,
	}
}

// GenerateBearerToken issues a development token for a student or lender.
//
// @Summary Generate a JWT bearer token
// @Description Issues a token scoped to one student (borrower id) or lender (lender id).
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.TokenRequest true "Principal"
// @Success 200 {object} dto.TokenResponse "Token successfully generated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateBearerToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", "error", err)
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	principal := middleware.Principal{Role: middleware.Role(strings.ToLower(req.Role)), ID: req.ID}
	token, err := middleware.IssueToken(h.cfg, principal, h.now())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", "error", err)
		respondError(w, fmt.Errorf("%w: could not sign token", apperrors.ErrInternalServer))
		return
	}

	ttl := h.cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	h.logger.InfoContext(r.Context(), "Issued bearer token", "role", principal.Role, "principalID", principal.ID)
	respondJSON(w, http.StatusOK, dto.TokenResponse{Token: "Bearer " + token, ExpiresIn: int64(ttl.Seconds())})
}
