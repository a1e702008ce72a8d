package eligibility

import (
	"loan-marketplace/internal/domain/borrower"
	"loan-marketplace/internal/domain/financial"
)

// BankSignals is the subset of a bank statement analysis the matcher reads.
type BankSignals struct {
	AverageBalance float64 `json:"averageBalance"`
	MonthsCovered  int     `json:"monthsCovered"`
	BounceCount    int     `json:"bounceCount"`
	SameBankBounce bool    `json:"sameBankBounce"`
	Verified       bool    `json:"verified"`
}

type CoBorrowerProfile struct {
	ID       int64                  `json:"id"`
	Relation string                 `json:"relation"`
	Credit   *borrower.CreditReport `json:"credit,omitempty"`
	Summary  financial.Summary      `json:"summary"`
	Bank     *BankSignals           `json:"bank,omitempty"`
}

// Profile is the denormalized set of borrower signals one matching run reads.
// It is stored verbatim in the analysis snapshot.
type Profile struct {
	BorrowerID      int64                     `json:"borrowerId"`
	Course          string                    `json:"course"`
	Country         string                    `json:"country"`
	LoanAmount      float64                   `json:"loanAmount"`
	CollateralValue float64                   `json:"collateralValue"`
	Academics       []borrower.AcademicRecord `json:"academics"`
	GapYears        int                       `json:"gapYears"`
	Institution     borrower.Institution      `json:"institution"`
	TestScores      map[string]float64        `json:"testScores"`
	Admission       borrower.Admission        `json:"admission"`
	CoBorrower      *CoBorrowerProfile        `json:"coBorrower,omitempty"`
}

func NewProfile(b *borrower.Borrower, co *borrower.CoBorrower) Profile {
	p := Profile{
		BorrowerID:      b.ID,
		Course:          b.Course,
		Country:         b.Country,
		LoanAmount:      b.LoanAmount,
		CollateralValue: b.CollateralValue,
		Academics:       append([]borrower.AcademicRecord(nil), b.Academics...),
		GapYears:        b.GapYears,
		Institution:     b.Institution,
		TestScores:      make(map[string]float64, len(b.TestScores)),
		Admission:       b.Admission,
	}
	for name, score := range b.TestScores {
		p.TestScores[name] = score
	}

	if co == nil {
		return p
	}

	cp := &CoBorrowerProfile{
		ID:       co.ID,
		Relation: co.Relation,
		Summary:  co.Summary,
	}
	if co.Credit != nil {
		credit := *co.Credit
		cp.Credit = &credit
	}
	if bank := co.FinancialInfo.BankStatement; bank != nil && !bank.NeedsReview {
		cp.Bank = &BankSignals{
			AverageBalance: bank.AverageBalance,
			MonthsCovered:  bank.MonthsCovered,
			BounceCount:    bank.BounceCount,
			SameBankBounce: bank.SameBankBounce,
			Verified:       bank.Verified,
		}
	}
	p.CoBorrower = cp
	return p
}

func (p Profile) Completeness() int {
	if p.CoBorrower == nil {
		return 0
	}
	return p.CoBorrower.Summary.CompletenessScore
}

// incomeVerified also rejects a zero income, so a summary that was never
// derived cannot turn FOIR 0 into a passing ratio.
func (p Profile) incomeVerified() bool {
	if p.CoBorrower == nil {
		return false
	}
	s := p.CoBorrower.Summary
	return !s.Verification.IncomeUnverified && s.AvgMonthlyIncome > 0
}
