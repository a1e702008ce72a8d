package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"loan-marketplace/internal/config"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleLender  Role = "lender"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleLender
}

// Principal is the authenticated caller. ID is the borrower id for students
// and the lender id for lenders.
type Principal struct {
	Role Role
	ID   int64
}

// Claims is the token payload issued by the auth handler.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

const (
	HeaderPrincipalRole = "X-Principal-Role"
	HeaderPrincipalID   = "X-Principal-ID"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

var (
	errMissingCredentials = errors.New("missing credentials")
	errInvalidPrincipal   = errors.New("invalid principal")
)

// AuthMiddleware resolves the caller into a Principal. With auth enabled the
// principal comes from a signed bearer token; otherwise from the development
// headers.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	resolve := func(r *http.Request) (Principal, error) {
		return principalFromToken(r, cfg.JWTSecret)
	}
	if !cfg.Enabled {
		logger.Warn("AuthMiddleware: token validation disabled, trusting principal headers")
		resolve = principalFromHeaders
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolve(r)
			if err != nil {
				logger.WarnContext(r.Context(), "AuthMiddleware: rejected request", "path", r.URL.Path, "error", err)
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects principals of any other role with 403.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeUnauthorized(w)
				return
			}
			if p.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"message": fmt.Sprintf("this operation requires the %s role", role)},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const defaultTokenTTL = 24 * time.Hour

// IssueToken signs a token for p valid for the configured TTL.
func IssueToken(cfg config.AuthConfig, p Principal, issuedAt time.Time) (string, error) {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

func principalFromToken(r *http.Request, secret string) (Principal, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Principal{}, errMissingCredentials
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return Principal{}, fmt.Errorf("%w: invalid Authorization header format", errMissingCredentials)
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	return buildPrincipal(string(claims.Role), claims.Subject)
}

func principalFromHeaders(r *http.Request) (Principal, error) {
	role, id := r.Header.Get(HeaderPrincipalRole), r.Header.Get(HeaderPrincipalID)
	if role == "" || id == "" {
		return Principal{}, errMissingCredentials
	}
	return buildPrincipal(role, id)
}

func buildPrincipal(role, subject string) (Principal, error) {
	p := Principal{Role: Role(strings.ToLower(role))}
	if !p.Role.Valid() {
		return Principal{}, fmt.Errorf("%w: unknown role %q", errInvalidPrincipal, role)
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, fmt.Errorf("%w: subject %q is not a positive id", errInvalidPrincipal, subject)
	}
	p.ID = id
	return p, nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": "Unauthorized"},
	})
}
