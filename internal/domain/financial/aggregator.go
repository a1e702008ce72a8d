package financial

import (
	"fmt"
	"math"

	"loan-marketplace/internal/config"
	"loan-marketplace/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Weights is the completeness checklist weighting. It must sum to 100.
type Weights struct {
	KYC                  int
	SalarySlips          int
	BankStatement        int
	TaxReturns           int
	EmployerCertificates int
}

func (w Weights) Total() int {
	return w.KYC + w.SalarySlips + w.BankStatement + w.TaxReturns + w.EmployerCertificates
}

type AggregationConfig struct {
	Weights               Weights
	MinSalarySlips        int
	MinTaxReturnYears     int
	MinCertificateYears   int
	MinVerifiedChecks     int
	CrossValidationMargin float64
}

func DefaultAggregationConfig() AggregationConfig {
	return AggregationConfig{
		Weights:               Weights{KYC: 20, SalarySlips: 20, BankStatement: 20, TaxReturns: 20, EmployerCertificates: 20},
		MinSalarySlips:        3,
		MinTaxReturnYears:     2,
		MinCertificateYears:   2,
		MinVerifiedChecks:     3,
		CrossValidationMargin: 0.10,
	}
}

func AggregationConfigFrom(cfg config.AggregationConfig) (AggregationConfig, error) {
	out := AggregationConfig{
		Weights: Weights{
			KYC:                  cfg.Weights.KYC,
			SalarySlips:          cfg.Weights.SalarySlips,
			BankStatement:        cfg.Weights.BankStatement,
			TaxReturns:           cfg.Weights.TaxReturns,
			EmployerCertificates: cfg.Weights.EmployerCertificates,
		},
		MinSalarySlips:        cfg.MinSalarySlips,
		MinTaxReturnYears:     cfg.MinTaxReturnYears,
		MinCertificateYears:   cfg.MinCertificateYears,
		MinVerifiedChecks:     cfg.MinVerifiedChecks,
		CrossValidationMargin: cfg.CrossValidationMargin,
	}
	return out, out.Validate()
}

func (c AggregationConfig) Validate() error {
	w := c.Weights
	for _, v := range []int{w.KYC, w.SalarySlips, w.BankStatement, w.TaxReturns, w.EmployerCertificates} {
		if v < 0 {
			return fmt.Errorf("%w: completeness weights must not be negative", apperrors.ErrInvalidArgument)
		}
	}
	if w.Total() != 100 {
		return fmt.Errorf("%w: completeness weights must sum to 100, got %d", apperrors.ErrInvalidArgument, w.Total())
	}
	if c.MinVerifiedChecks < 1 || c.MinVerifiedChecks > 3 {
		return fmt.Errorf("%w: minVerifiedChecks must be between 1 and 3", apperrors.ErrInvalidArgument)
	}
	if c.CrossValidationMargin < 0 {
		return fmt.Errorf("%w: crossValidationMargin must not be negative", apperrors.ErrInvalidArgument)
	}
	return nil
}

// Summarize derives the canonical Summary from raw evidence. It is pure and
// total: missing categories degrade to zero values, never to an error.
// Records flagged NeedsReview are excluded from every average and checklist item.
func Summarize(info Info, cfg AggregationConfig) Summary {
	slips, pending := usableSlips(info.SalarySlips)
	returns, pendingReturns := usableTaxReturns(info.TaxReturns)
	certs, pendingCerts := usableCertificates(info.EmployerCertificates)
	pending += pendingReturns + pendingCerts + len(info.PendingReviews)

	bank := info.BankStatement
	if bank != nil && bank.NeedsReview {
		pending++
		bank = nil
	}

	s := Summary{
		IncomeSource:    IncomeSourceNone,
		IncomeStability: incomeStability(slips),
		TaxFilingYears:  distinctYears(returns),
		PendingReview:   pending,
	}

	if len(slips) > 0 {
		total := decimal.Zero
		for _, slip := range slips {
			total = total.Add(decimal.NewFromFloat(slip.NetSalary))
		}
		s.AvgMonthlySalary = round2(total.Div(decimal.NewFromInt(int64(len(slips)))))
		s.IncomeSource = IncomeSourceSalaried
	}

	s.AvgMonthlyIncome = s.AvgMonthlySalary
	if bank != nil && bank.AverageSalaryCredit > s.AvgMonthlyIncome {
		s.AvgMonthlyIncome = round2(decimal.NewFromFloat(bank.AverageSalaryCredit))
		s.IncomeSource = IncomeSourceSalaried
	}

	if s.AvgMonthlyIncome == 0 && len(returns) > 0 {
		total := decimal.Zero
		for _, r := range returns {
			total = total.Add(decimal.NewFromFloat(r.TaxableIncome))
		}
		monthly := total.Div(decimal.NewFromInt(int64(len(returns)))).Div(decimal.NewFromInt(12))
		s.AvgMonthlyIncome = round2(monthly)
		if s.AvgMonthlyIncome > 0 {
			s.IncomeSource = IncomeSourceSelfEmployed
		}
	}

	s.EstimatedAnnualIncome = round2(decimal.NewFromFloat(s.AvgMonthlyIncome).Mul(decimal.NewFromInt(12)))

	if bank != nil {
		s.TotalExistingEMI = round2(decimal.NewFromFloat(math.Max(bank.TotalEMIObligations, 0)))
	}
	s.FOIR = foir(s.TotalExistingEMI, s.AvgMonthlyIncome)

	s.TaxCrossValidated = crossValidated(certs, returns, cfg.CrossValidationMargin)
	s.CompletenessScore = completeness(info.KYCVerified, slips, bank, returns, certs, cfg)
	s.Verification = verification(info.KYCVerified, s, slips, bank, returns, cfg)

	return s
}

// foir is 0 when income is 0 so callers never see NaN or Inf.
func foir(emi, income float64) float64 {
	if income <= 0 {
		return 0
	}
	ratio := decimal.NewFromFloat(emi).Div(decimal.NewFromFloat(income)).Mul(decimal.NewFromInt(100))
	return round2(ratio)
}

func incomeStability(slips []SalarySlip) IncomeStability {
	if len(slips) == 0 {
		return IncomeUnknown
	}
	for _, slip := range slips {
		if !slip.IsConsistent {
			return IncomeModerate
		}
	}
	return IncomeStable
}

func completeness(kyc bool, slips []SalarySlip, bank *BankStatementAnalysis, returns []TaxReturn, certs []EmployerTaxCertificate, cfg AggregationConfig) int {
	score := 0
	if kyc {
		score += cfg.Weights.KYC
	}
	if len(slips) >= cfg.MinSalarySlips {
		score += cfg.Weights.SalarySlips
	}
	if bank != nil && bank.Verified {
		score += cfg.Weights.BankStatement
	}
	if distinctYears(returns) >= cfg.MinTaxReturnYears {
		score += cfg.Weights.TaxReturns
	}
	if distinctCertificateYears(certs) >= cfg.MinCertificateYears {
		score += cfg.Weights.EmployerCertificates
	}
	return clamp(score, 0, 100)
}

func verification(kyc bool, s Summary, slips []SalarySlip, bank *BankStatementAnalysis, returns []TaxReturn, cfg AggregationConfig) VerificationStatus {
	v := VerificationStatus{
		KYC:              CheckPending,
		Income:           CheckPending,
		Bank:             CheckPending,
		Overall:          CheckPending,
		IncomeUnverified: s.AvgMonthlyIncome <= 0,
	}

	if kyc {
		v.KYC = CheckVerified
		v.VerifiedChecks++
	}

	bankVerified := bank != nil && bank.Verified
	if bankVerified {
		v.Bank = CheckVerified
		v.VerifiedChecks++
	}

	if !v.IncomeUnverified {
		verifiedReturns := 0
		for _, r := range returns {
			if r.Verified {
				verifiedReturns++
			}
		}
		if len(slips) >= cfg.MinSalarySlips ||
			(bankVerified && bank.AverageSalaryCredit > 0) ||
			verifiedReturns >= cfg.MinTaxReturnYears {
			v.Income = CheckVerified
			v.VerifiedChecks++
		}
	}

	if v.VerifiedChecks >= cfg.MinVerifiedChecks {
		v.Overall = CheckVerified
	}
	return v
}

// crossValidated reports whether every employer certificate with a same-year
// tax return agrees with it within margin. At least one pair must exist.
func crossValidated(certs []EmployerTaxCertificate, returns []TaxReturn, margin float64) bool {
	byYear := make(map[string]float64, len(returns))
	for _, r := range returns {
		byYear[r.AssessmentYear] = r.TaxableIncome
	}

	matched := 0
	for _, c := range certs {
		taxable, ok := byYear[c.AssessmentYear]
		if !ok {
			continue
		}
		base := math.Max(taxable, 1)
		if math.Abs(c.GrossIncome-taxable)/base > margin {
			return false
		}
		matched++
	}
	return matched > 0
}

func usableSlips(in []SalarySlip) ([]SalarySlip, int) {
	out := make([]SalarySlip, 0, len(in))
	pending := 0
	for _, slip := range in {
		if slip.NeedsReview {
			pending++
			continue
		}
		out = append(out, slip)
	}
	return out, pending
}

func usableTaxReturns(in []TaxReturn) ([]TaxReturn, int) {
	out := make([]TaxReturn, 0, len(in))
	pending := 0
	for _, r := range in {
		if r.NeedsReview {
			pending++
			continue
		}
		out = append(out, r)
	}
	return out, pending
}

func usableCertificates(in []EmployerTaxCertificate) ([]EmployerTaxCertificate, int) {
	out := make([]EmployerTaxCertificate, 0, len(in))
	pending := 0
	for _, c := range in {
		if c.NeedsReview {
			pending++
			continue
		}
		out = append(out, c)
	}
	return out, pending
}

func distinctYears(returns []TaxReturn) int {
	seen := make(map[string]struct{}, len(returns))
	for _, r := range returns {
		if r.AssessmentYear == "" {
			continue
		}
		seen[r.AssessmentYear] = struct{}{}
	}
	return len(seen)
}

func distinctCertificateYears(certs []EmployerTaxCertificate) int {
	seen := make(map[string]struct{}, len(certs))
	for _, c := range certs {
		if c.AssessmentYear == "" {
			continue
		}
		seen[c.AssessmentYear] = struct{}{}
	}
	return len(seen)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
