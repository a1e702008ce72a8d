package financial

import (
	"math"
	"sort"
)

// ConsistencyTolerance is the largest relative deviation from the slip mean a
// salary slip may show and still count as consistent.
const ConsistencyTolerance = 0.15

// UpsertSalarySlip replaces the slip for the same month or appends a new one,
// then re-derives every slip's consistency flag. A NeedsReview slip never
// replaces a usable one; it is held in PendingReviews instead.
func (i *Info) UpsertSalarySlip(slip SalarySlip) {
	replaced := false
	for idx := range i.SalarySlips {
		if i.SalarySlips[idx].Month == slip.Month {
			if slip.NeedsReview && !i.SalarySlips[idx].NeedsReview {
				i.holdForReview(CategorySalarySlip, slip.Month, slip.Provenance)
				return
			}
			i.SalarySlips[idx] = slip
			replaced = true
			break
		}
	}
	if !slip.NeedsReview {
		i.clearReview(CategorySalarySlip, slip.Month)
	}
	if !replaced {
		i.SalarySlips = append(i.SalarySlips, slip)
	}
	sort.SliceStable(i.SalarySlips, func(a, b int) bool {
		return i.SalarySlips[a].Month < i.SalarySlips[b].Month
	})
	markConsistency(i.SalarySlips)
}

// SetBankStatement replaces any earlier analysis. Only one statement analysis is
// kept per co-borrower, and a usable one is never replaced by a NeedsReview record.
func (i *Info) SetBankStatement(bank BankStatementAnalysis) {
	if bank.NeedsReview && i.BankStatement != nil && !i.BankStatement.NeedsReview {
		i.holdForReview(CategoryBankStatement, "", bank.Provenance)
		return
	}
	if !bank.NeedsReview {
		i.clearReview(CategoryBankStatement, "")
	}
	i.BankStatement = &bank
}

func (i *Info) UpsertTaxReturn(tr TaxReturn) {
	for idx := range i.TaxReturns {
		if i.TaxReturns[idx].AssessmentYear == tr.AssessmentYear {
			if tr.NeedsReview && !i.TaxReturns[idx].NeedsReview {
				i.holdForReview(CategoryTaxReturn, tr.AssessmentYear, tr.Provenance)
				return
			}
			i.TaxReturns[idx] = tr
			if !tr.NeedsReview {
				i.clearReview(CategoryTaxReturn, tr.AssessmentYear)
			}
			return
		}
	}
	i.TaxReturns = append(i.TaxReturns, tr)
	sort.SliceStable(i.TaxReturns, func(a, b int) bool {
		return i.TaxReturns[a].AssessmentYear < i.TaxReturns[b].AssessmentYear
	})
}

func (i *Info) UpsertEmployerCertificate(c EmployerTaxCertificate) {
	for idx := range i.EmployerCertificates {
		if i.EmployerCertificates[idx].AssessmentYear == c.AssessmentYear {
			if c.NeedsReview && !i.EmployerCertificates[idx].NeedsReview {
				i.holdForReview(CategoryEmployerCertificate, c.AssessmentYear, c.Provenance)
				return
			}
			i.EmployerCertificates[idx] = c
			if !c.NeedsReview {
				i.clearReview(CategoryEmployerCertificate, c.AssessmentYear)
			}
			return
		}
	}
	i.EmployerCertificates = append(i.EmployerCertificates, c)
	sort.SliceStable(i.EmployerCertificates, func(a, b int) bool {
		return i.EmployerCertificates[a].AssessmentYear < i.EmployerCertificates[b].AssessmentYear
	})
}

// holdForReview keeps at most one pending review per slot; the latest upload wins.
func (i *Info) holdForReview(category Category, period string, prov Provenance) {
	review := PendingReview{Category: category, Period: period, Provenance: prov}
	for idx := range i.PendingReviews {
		if i.PendingReviews[idx].Category == category && i.PendingReviews[idx].Period == period {
			i.PendingReviews[idx] = review
			return
		}
	}
	i.PendingReviews = append(i.PendingReviews, review)
}

func (i *Info) clearReview(category Category, period string) {
	kept := i.PendingReviews[:0]
	for _, r := range i.PendingReviews {
		if r.Category != category || r.Period != period {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	i.PendingReviews = kept
}

// markConsistency compares each usable slip against the mean of all usable
// slips. Slips awaiting review are never consistent.
func markConsistency(slips []SalarySlip) {
	var sum float64
	n := 0
	for _, s := range slips {
		if !s.NeedsReview {
			sum += s.NetSalary
			n++
		}
	}
	if n == 0 {
		for idx := range slips {
			slips[idx].IsConsistent = false
		}
		return
	}

	mean := sum / float64(n)
	for idx := range slips {
		s := &slips[idx]
		if s.NeedsReview || mean <= 0 {
			s.IsConsistent = false
			continue
		}
		s.IsConsistent = math.Abs(s.NetSalary-mean)/mean < ConsistencyTolerance
	}
}
