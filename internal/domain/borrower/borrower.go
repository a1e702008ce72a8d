package borrower

import (
	"strings"
	"time"

	"loan-marketplace/internal/domain/financial"
	"loan-marketplace/internal/pkg/apperrors"
)

type AcademicRecord struct {
	Level      string  `json:"level"`
	Percentage float64 `json:"percentage"`
}

type Institution struct {
	Name string `json:"name"`
	// Ranking is 0 when the institution is unranked.
	Ranking int    `json:"ranking"`
	Tier    string `json:"tier"`
}

type Admission struct {
	HasOfferLetter             bool `json:"hasOfferLetter"`
	SanctionWithoutOfferLetter bool `json:"sanctionWithoutOfferLetter"`
}

type CreditReport struct {
	Score      int       `json:"score"`
	HasOverdue bool      `json:"hasOverdue"`
	ReportedAt time.Time `json:"reportedAt"`
}

type KYC struct {
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	Reference  string     `json:"reference,omitempty"`
}

type Borrower struct {
	ID              int64
	Name            string
	Course          string
	Country         string
	LoanAmount      float64
	CollateralValue float64
	Academics       []AcademicRecord
	GapYears        int
	Institution     Institution
	TestScores      map[string]float64
	Admission       Admission
	CoBorrowers     []CoBorrower
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CoBorrower owns the financial evidence. Summary is always the result of
// financial.Summarize over FinancialInfo and is never written independently.
type CoBorrower struct {
	ID            int64
	BorrowerID    int64
	Name          string
	Relation      string
	KYC           KYC
	Credit        *CreditReport
	FinancialInfo financial.Info
	Summary       financial.Summary
	UpdatedAt     time.Time
}

// ValidateForAnalysis checks the fields a matching run cannot do without.
func (b *Borrower) ValidateForAnalysis() error {
	if strings.TrimSpace(b.Course) == "" {
		return apperrors.NewValidationError("course", "target course is required before analysis")
	}
	if strings.TrimSpace(b.Country) == "" {
		return apperrors.NewValidationError("country", "target country is required before analysis")
	}
	if b.LoanAmount <= 0 {
		return apperrors.NewValidationError("loanAmount", "requested loan amount must be greater than zero")
	}
	return nil
}

// BestCoBorrower picks the co-borrower with the highest completeness, then the
// highest monthly income, then the lowest id.
func BestCoBorrower(cos []CoBorrower) *CoBorrower {
	var best *CoBorrower
	for i := range cos {
		c := &cos[i]
		if best == nil || better(c, best) {
			best = c
		}
	}
	return best
}

func better(a, b *CoBorrower) bool {
	if a.Summary.CompletenessScore != b.Summary.CompletenessScore {
		return a.Summary.CompletenessScore > b.Summary.CompletenessScore
	}
	if a.Summary.AvgMonthlyIncome != b.Summary.AvgMonthlyIncome {
		return a.Summary.AvgMonthlyIncome > b.Summary.AvgMonthlyIncome
	}
	return a.ID < b.ID
}
