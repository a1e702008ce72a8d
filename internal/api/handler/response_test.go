package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/pkg/apperrors"
)

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidationError("loanAmount", "loan amount is required"), http.StatusBadRequest},
		{"invalid argument", fmt.Errorf("%w: bad", apperrors.ErrInvalidArgument), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: snapshot", apperrors.ErrNotFound), http.StatusNotFound},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: other lender", apperrors.ErrForbidden), http.StatusForbidden},
		{"concurrency conflict", apperrors.ErrConcurrencyConflict, http.StatusConflict},
		{"invalid transition", apperrors.ErrInvalidTransition, http.StatusConflict},
		{"already exists", apperrors.ErrAlreadyExists, http.StatusConflict},
		{"persistence", apperrors.WrapPersistenceError(errors.New("timeout"), "failed"), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestRespondError_ValidationField(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, apperrors.NewValidationError("loanAmount", "loan amount is required"))

	var resp dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "loanAmount", resp.Error.Field)
	assert.Equal(t, "loan amount is required", resp.Error.Message)
}
