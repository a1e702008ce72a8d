package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Role string `json:"role"`
	ID   int64  `json:"id"`
}

func (r *TokenRequest) Validate() error {
	switch strings.ToLower(r.Role) {
	case "student", "lender":
	default:
		return fmt.Errorf("role must be student or lender")
	}
	if r.ID <= 0 {
		return fmt.Errorf("id must be a positive number")
	}
	return nil
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
