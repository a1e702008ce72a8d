package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-marketplace/internal/config"
)

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	secret := "testsecret"
	cfg := config.AuthConfig{Enabled: true, JWTSecret: secret, TokenTTL: time.Hour}

	var got Principal
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	serve := func(cfg config.AuthConfig, req *http.Request) *httptest.ResponseRecorder {
		got = Principal{}
		rec := httptest.NewRecorder()
		AuthMiddleware(cfg, logger)(nextHandler).ServeHTTP(rec, req)
		return rec
	}

	t.Run("should resolve principal from a valid token", func(t *testing.T) {
		token, err := IssueToken(cfg, Principal{Role: RoleStudent, ID: 7}, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := serve(cfg, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Principal{Role: RoleStudent, ID: 7}, got)
	})

	t.Run("should reject request with missing Authorization header", func(t *testing.T) {
		rec := serve(cfg, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":{"message":"Unauthorized"}}`, rec.Body.String())
	})

	t.Run("should reject request with invalid header format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, req).Code)
	})

	t.Run("should reject token signed with another secret", func(t *testing.T) {
		token, err := IssueToken(config.AuthConfig{JWTSecret: "other"}, Principal{Role: RoleLender, ID: 1}, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, req).Code)
	})

	t.Run("should reject expired token", func(t *testing.T) {
		token, err := IssueToken(cfg, Principal{Role: RoleLender, ID: 1}, time.Now().Add(-2*time.Hour))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, req).Code)
	})

	t.Run("should reject token without a known role", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": "7", "role": "admin", "exp": time.Now().Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, serve(cfg, req).Code)
	})

	t.Run("should trust principal headers when disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderPrincipalRole, "Lender")
		req.Header.Set(HeaderPrincipalID, "3")

		rec := serve(disabled, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Principal{Role: RoleLender, ID: 3}, got)
	})

	t.Run("should reject missing principal headers when disabled", func(t *testing.T) {
		disabled := cfg
		disabled.Enabled = false

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderPrincipalRole, "student")
		assert.Equal(t, http.StatusUnauthorized, serve(disabled, req).Code)
	})
}

func TestRequireRole(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireRole(RoleLender)(nextHandler)

	tests := []struct {
		name      string
		principal *Principal
		want      int
	}{
		{"matching role", &Principal{Role: RoleLender, ID: 1}, http.StatusNoContent},
		{"other role", &Principal{Role: RoleStudent, ID: 1}, http.StatusForbidden},
		{"no principal", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), *tt.principal))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
