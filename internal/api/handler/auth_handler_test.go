package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/api/handler/dto"
	"loan-marketplace/internal/api/middleware"
	"loan-marketplace/internal/config"
)

func newTestAuthConfig() config.AuthConfig {
	return config.AuthConfig{Enabled: true, JWTSecret: "test-jwt-secret-key", TokenTTL: time.Hour}
}

func TestGenerateBearerToken(t *testing.T) {
	cfg := newTestAuthConfig()
	handler := NewAuthHandler(cfg, logger)

	t.Run("successfully generates token", func(t *testing.T) {
		body, _ := json.Marshal(dto.TokenRequest{Role: "Lender", ID: 3})
		req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.GenerateBearerToken(w, req)

		resp := w.Result()
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var respBody dto.TokenResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&respBody))
		assert.Equal(t, int64(3600), respBody.ExpiresIn)
		require.True(t, strings.HasPrefix(respBody.Token, "Bearer "))

		var claims middleware.Claims
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(respBody.Token, "Bearer "), &claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		require.NoError(t, err)
		assert.Equal(t, middleware.RoleLender, claims.Role)
		assert.Equal(t, "3", claims.Subject)
	})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"role":`},
		{"unknown role", `{"role":"admin","id":1}`},
		{"missing id", `{"role":"student"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.GenerateBearerToken(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var respBody dto.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&respBody))
			assert.Contains(t, respBody.Error.Message, "invalid argument")
		})
	}
}
