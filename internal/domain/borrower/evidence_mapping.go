package borrower

import (
	"strconv"
	"strings"

	"loan-marketplace/internal/domain/financial"
)

// mapRecord turns provider fields into an evidence mutation. It reports false
// when a field the category cannot do without is missing.
func mapRecord(up Upload, fields map[string]any, prov financial.Provenance) (InfoMutation, bool) {
	switch up.Category {
	case financial.CategorySalarySlip:
		net, ok := number(fields, "netSalary", "net_salary", "netPay")
		if !ok {
			return nil, false
		}
		gross, _ := number(fields, "grossSalary", "gross_salary", "grossPay")
		slip := financial.SalarySlip{Month: up.Period, NetSalary: net, GrossSalary: gross, Provenance: prov}
		return func(info *financial.Info) error {
			info.UpsertSalarySlip(slip)
			return nil
		}, true

	case financial.CategoryBankStatement:
		credit, okCredit := number(fields, "averageSalaryCredit", "average_salary_credit")
		balance, okBalance := number(fields, "averageBalance", "average_balance")
		if !okCredit && !okBalance {
			return nil, false
		}
		emi, _ := number(fields, "totalEmiObligations", "totalEMIObligations", "total_emi_obligations")
		months, _ := number(fields, "monthsCovered", "months_covered")
		bounces, _ := number(fields, "bounceCount", "bounce_count")
		bank := financial.BankStatementAnalysis{
			AverageSalaryCredit: credit,
			TotalEMIObligations: emi,
			AverageBalance:      balance,
			MonthsCovered:       int(months),
			BounceCount:         int(bounces),
			SameBankBounce:      boolean(fields, "sameBankBounce", "same_bank_bounce"),
			Verified:            boolean(fields, "verified", "isVerified"),
			Provenance:          prov,
		}
		return func(info *financial.Info) error {
			info.SetBankStatement(bank)
			return nil
		}, true

	case financial.CategoryTaxReturn:
		income, ok := number(fields, "taxableIncome", "taxable_income", "totalIncome")
		if !ok {
			return nil, false
		}
		tr := financial.TaxReturn{
			AssessmentYear: up.Period,
			TaxableIncome:  income,
			Verified:       boolean(fields, "verified", "isVerified"),
			Provenance:     prov,
		}
		return func(info *financial.Info) error {
			info.UpsertTaxReturn(tr)
			return nil
		}, true

	case financial.CategoryEmployerCertificate:
		gross, ok := number(fields, "grossIncome", "gross_income", "grossSalary")
		if !ok {
			return nil, false
		}
		deducted, _ := number(fields, "taxDeducted", "tax_deducted", "tds")
		cert := financial.EmployerTaxCertificate{
			AssessmentYear: up.Period,
			GrossIncome:    gross,
			TaxDeducted:    deducted,
			Provenance:     prov,
		}
		return func(info *financial.Info) error {
			info.UpsertEmployerCertificate(cert)
			return nil
		}, true
	}
	return nil, false
}

// fallbackRecord stores a zero-valued record of the uploaded category so the
// document is visible for manual review. It never counts towards the summary.
func fallbackRecord(up Upload, prov financial.Provenance) InfoMutation {
	return func(info *financial.Info) error {
		switch up.Category {
		case financial.CategorySalarySlip:
			info.UpsertSalarySlip(financial.SalarySlip{Month: up.Period, Provenance: prov})
		case financial.CategoryBankStatement:
			info.SetBankStatement(financial.BankStatementAnalysis{Provenance: prov})
		case financial.CategoryTaxReturn:
			info.UpsertTaxReturn(financial.TaxReturn{AssessmentYear: up.Period, Provenance: prov})
		case financial.CategoryEmployerCertificate:
			info.UpsertEmployerCertificate(financial.EmployerTaxCertificate{AssessmentYear: up.Period, Provenance: prov})
		}
		return nil
	}
}

func number(fields map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, n >= 0
		case int:
			return float64(n), n >= 0
		case int64:
			return float64(n), n >= 0
		case string:
			f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
			if err == nil && f >= 0 {
				return f, true
			}
		}
	}
	return 0, false
}

func boolean(fields map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch b := fields[k].(type) {
		case bool:
			return b
		case string:
			v, err := strconv.ParseBool(b)
			if err == nil {
				return v
			}
		}
	}
	return false
}
