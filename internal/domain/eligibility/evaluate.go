package eligibility

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"loan-marketplace/internal/domain/criteria"
	"loan-marketplace/internal/domain/lender"

	"github.com/shopspring/decimal"
)

// Weights sets each group's share of the match percentage. Neutral groups are
// dropped from the denominator.
type Weights map[string]int

func DefaultWeights() Weights {
	return Weights{
		GroupCredit:       15,
		GroupFOIR:         15,
		GroupIncome:       15,
		GroupBankBalance:  10,
		GroupAcademics:    10,
		GroupInstitution:  10,
		GroupLoanToIncome: 8,
		GroupCollateral:   5,
		GroupOfferLetter:  4,
		GroupTests:        4,
		GroupCoBorrower:   4,
	}
}

// groupEval accumulates the checks of one criteria group.
type groupEval struct {
	name                string
	passed, soft, total int
	failed              bool
	strengths           []string
	gaps                []string
	recs                []string
}

func (g *groupEval) pass(strength string) {
	g.passed++
	g.total++
	if strength != "" {
		g.strengths = append(g.strengths, strength)
	}
}

func (g *groupEval) fail(gap, rec string) {
	g.failed = true
	g.total++
	g.gaps = append(g.gaps, gap)
	if rec != "" {
		g.recs = append(g.recs, rec)
	}
}

func (g *groupEval) borderline(gap, rec string) {
	g.soft++
	g.total++
	g.gaps = append(g.gaps, gap)
	if rec != "" {
		g.recs = append(g.recs, rec)
	}
}

// softBand applies a lender's configured action to a profile inside a soft band.
func (g *groupEval) softBand(action, fallback criteria.Action, gap, rec, approved string) {
	if action == "" {
		action = fallback
	}
	switch action {
	case criteria.ActionApprove:
		g.pass(approved)
	case criteria.ActionReject:
		g.fail(gap, rec)
	default:
		g.borderline(gap, rec)
	}
}

func (g *groupEval) outcome() Outcome {
	switch {
	case g.total == 0:
		return OutcomeNeutral
	case g.failed:
		return OutcomeFail
	case g.soft > 0:
		return OutcomeBorderline
	default:
		return OutcomePass
	}
}

func (g *groupEval) score() decimal.Decimal {
	if g.total == 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(g.passed)).Add(decimal.NewFromInt(int64(g.soft)).Div(decimal.NewFromInt(2)))
	return num.Div(decimal.NewFromInt(int64(g.total)))
}

// Evaluate classifies one profile against one lender. It never fails: groups
// without the input they need degrade to neutral or to a hard gap.
func Evaluate(p Profile, l lender.Lender, weights Weights) Result {
	set := l.Criteria
	res := Result{
		LenderID:        l.ID,
		LenderName:      l.Name,
		Strengths:       []string{},
		Gaps:            []string{},
		Recommendations: []string{},
		Breakdown:       []GroupResult{},
	}

	var evals []*groupEval
	configured := 0
	add := func(set bool, name string, fn func(*groupEval)) {
		if !set {
			return
		}
		configured++
		g := &groupEval{name: name}
		fn(g)
		evals = append(evals, g)
	}

	add(set.Credit.Set, GroupCredit, func(g *groupEval) { evalCredit(g, p, set.Credit.Value) })
	add(set.FOIR.Set, GroupFOIR, func(g *groupEval) { evalFOIR(g, p, set.FOIR.Value) })
	add(set.Income.Set, GroupIncome, func(g *groupEval) { evalIncome(g, p, set.Income.Value) })
	add(set.BankBalance.Set, GroupBankBalance, func(g *groupEval) { evalBankBalance(g, p, set.BankBalance.Value) })
	add(set.Academics.Set, GroupAcademics, func(g *groupEval) { evalAcademics(g, p, set.Academics.Value) })
	add(set.Institution.Set, GroupInstitution, func(g *groupEval) { evalInstitution(g, p, set.Institution.Value) })
	add(set.LoanToIncome.Set, GroupLoanToIncome, func(g *groupEval) { evalLoanToIncome(g, p, set.LoanToIncome.Value) })
	add(set.Collateral.Set, GroupCollateral, func(g *groupEval) { evalCollateral(g, p, set.Collateral.Value) })
	add(set.OfferLetter.Set, GroupOfferLetter, func(g *groupEval) { evalOfferLetter(g, p, set.OfferLetter.Value) })
	add(set.Tests.Set, GroupTests, func(g *groupEval) { evalTests(g, p, set.Tests.Value) })
	add(set.CoBorrower.Set, GroupCoBorrower, func(g *groupEval) { evalCoBorrower(g, p, set.CoBorrower.Value) })

	weighted, totalWeight := decimal.Zero, 0
	evaluated := 0
	anyFail, anyBorderline := false, false

	for _, g := range evals {
		w := weights[g.name]
		out := g.outcome()
		score := g.score()

		res.Breakdown = append(res.Breakdown, GroupResult{
			Group:   g.name,
			Outcome: out,
			Weight:  w,
			Score:   score.Round(2).InexactFloat64(),
		})
		res.Strengths = append(res.Strengths, g.strengths...)
		res.Gaps = append(res.Gaps, g.gaps...)
		res.Recommendations = append(res.Recommendations, g.recs...)

		switch out {
		case OutcomeNeutral:
			continue
		case OutcomeFail:
			anyFail = true
		case OutcomeBorderline:
			anyBorderline = true
		}
		evaluated++
		totalWeight += w
		weighted = weighted.Add(score.Mul(decimal.NewFromInt(int64(w))))
	}

	if totalWeight > 0 {
		res.MatchPercentage = weighted.Div(decimal.NewFromInt(int64(totalWeight))).
			Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	if entry, ok := set.Blacklisted(p.Course); ok {
		res.Blacklisted = true
		res.Gaps = append(res.Gaps, fmt.Sprintf("Course %q is excluded by the lender (%s)", p.Course, entry))
	}

	switch {
	case res.Blacklisted || anyFail:
		res.Status = StatusNotEligible
	case anyBorderline:
		res.Status = StatusBorderline
	default:
		res.Status = StatusEligible
	}

	res.EstimatedROI = estimateROI(l.RateBand, res.MatchPercentage)
	res.Confidence = confidence(p.Completeness(), evaluated, configured)

	if p.Completeness() < 100 {
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("Profile is %d%% complete; uploading the remaining documents improves match accuracy", p.Completeness()))
	}
	return res
}

// estimateROI interpolates inside the lender's band: a 100% match gets the
// minimum rate, a 0% match the maximum.
func estimateROI(band lender.RateBand, match float64) float64 {
	if band.MaxROI <= 0 {
		return 0
	}
	lo, hi := decimal.NewFromFloat(band.MinROI), decimal.NewFromFloat(band.MaxROI)
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	spread := hi.Sub(lo).Mul(decimal.NewFromFloat(match)).Div(decimal.NewFromInt(100))
	return hi.Sub(spread).Round(2).InexactFloat64()
}

func confidence(completeness, evaluated, configured int) float64 {
	c := decimal.NewFromInt(int64(completeness)).Div(decimal.NewFromInt(100)).Mul(decimal.NewFromFloat(0.5))
	if configured > 0 {
		coverage := decimal.NewFromInt(int64(evaluated)).Div(decimal.NewFromInt(int64(configured)))
		c = c.Add(coverage.Mul(decimal.NewFromFloat(0.5)))
	}
	return c.Round(2).InexactFloat64()
}

func evalCredit(g *groupEval, p Profile, c criteria.Credit) {
	if p.CoBorrower == nil || p.CoBorrower.Credit == nil {
		if c.Mandatory {
			g.fail("Credit report is required", "Add a co-borrower with a credit report")
		}
		return
	}
	report := p.CoBorrower.Credit

	if c.MinScore > 0 {
		if report.Score >= c.MinScore {
			g.pass(fmt.Sprintf("Credit score %d meets the minimum of %d", report.Score, c.MinScore))
		} else {
			g.fail(fmt.Sprintf("Credit score %d is below the minimum of %d", report.Score, c.MinScore),
				"Consider a co-borrower with a stronger credit history")
		}
	}
	if report.HasOverdue && !c.AllowOverdue {
		g.fail("Credit report shows overdue accounts", "Clear overdue accounts before applying")
	} else if !report.HasOverdue {
		g.pass("No overdue accounts")
	}
	if bank := p.CoBorrower.Bank; bank != nil && bank.SameBankBounce && !c.AllowSameBankBounce {
		g.fail("Bank statement shows a same-bank cheque or EMI bounce", "")
	}
}

func evalFOIR(g *groupEval, p Profile, f criteria.FOIR) {
	if !p.incomeVerified() {
		g.borderline("Income is unverified, so FOIR cannot be assessed",
			"Upload salary slips, a bank statement or tax returns for the co-borrower")
		return
	}
	foir := p.CoBorrower.Summary.FOIR

	switch {
	case f.MaxPercentage > 0 && foir > f.MaxPercentage:
		g.fail(fmt.Sprintf("FOIR %.2f%% exceeds the maximum of %.2f%%", foir, f.MaxPercentage),
			"Reduce existing EMIs or add a co-borrower with higher income")
	case f.BorderlineStart > 0 && foir >= f.BorderlineStart:
		g.softBand(f.BorderlineAction, criteria.ActionClarify,
			fmt.Sprintf("FOIR %.2f%% is in the lender's borderline band (from %.2f%%)", foir, f.BorderlineStart),
			"Be ready to explain existing obligations to the lender",
			fmt.Sprintf("FOIR %.2f%% accepted inside the borderline band", foir))
	default:
		g.pass(fmt.Sprintf("FOIR %.2f%% is within the limit of %.2f%%", foir, f.MaxPercentage))
	}
}

func evalIncome(g *groupEval, p Profile, in criteria.Income) {
	if !p.incomeVerified() {
		if in.Mandatory {
			g.fail("Proof of income is required", "Upload salary slips or tax returns for the co-borrower")
		}
		return
	}
	s := p.CoBorrower.Summary

	if in.MinMonthlySalary > 0 {
		if s.AvgMonthlyIncome >= in.MinMonthlySalary {
			g.pass(fmt.Sprintf("Monthly income %.0f meets the minimum of %.0f", s.AvgMonthlyIncome, in.MinMonthlySalary))
		} else {
			g.fail(fmt.Sprintf("Monthly income %.0f is below the minimum of %.0f", s.AvgMonthlyIncome, in.MinMonthlySalary), "")
		}
	}
	if in.MinAnnualIncome > 0 {
		if s.EstimatedAnnualIncome >= in.MinAnnualIncome {
			g.pass(fmt.Sprintf("Annual income %.0f meets the minimum of %.0f", s.EstimatedAnnualIncome, in.MinAnnualIncome))
		} else {
			g.fail(fmt.Sprintf("Annual income %.0f is below the minimum of %.0f", s.EstimatedAnnualIncome, in.MinAnnualIncome), "")
		}
	}
	if in.MinTaxFilingYears > 0 {
		if s.TaxFilingYears >= in.MinTaxFilingYears {
			g.pass(fmt.Sprintf("%d years of tax filings on record", s.TaxFilingYears))
		} else {
			g.fail(fmt.Sprintf("%d years of tax filings required, %d on record", in.MinTaxFilingYears, s.TaxFilingYears),
				"Upload tax returns for the missing assessment years")
		}
	}
}

func evalBankBalance(g *groupEval, p Profile, b criteria.BankBalance) {
	if p.CoBorrower == nil || p.CoBorrower.Bank == nil {
		if b.Mandatory {
			g.fail("Bank statement is required", "Upload a bank statement for the co-borrower")
		}
		return
	}
	bank := p.CoBorrower.Bank

	if b.MinAverageBalance > 0 {
		if bank.AverageBalance >= b.MinAverageBalance {
			g.pass(fmt.Sprintf("Average balance %.0f meets the minimum of %.0f", bank.AverageBalance, b.MinAverageBalance))
		} else {
			g.fail(fmt.Sprintf("Average balance %.0f is below the minimum of %.0f", bank.AverageBalance, b.MinAverageBalance), "")
		}
	}
	if b.MinStatementMonths > 0 {
		if bank.MonthsCovered >= b.MinStatementMonths {
			g.pass("")
		} else {
			g.fail(fmt.Sprintf("%d months of bank statements required, %d provided", b.MinStatementMonths, bank.MonthsCovered),
				"Upload a longer bank statement")
		}
	}
	if g.total == 0 {
		g.pass("Bank statement on record")
	}
}

func evalAcademics(g *groupEval, p Profile, a criteria.Academics) {
	levels := make([]string, 0, len(a.MinPercentageByLevel))
	for level := range a.MinPercentageByLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)

	for _, level := range levels {
		minimum := a.MinPercentageByLevel[level]
		rec, ok := findAcademic(p, level)
		if !ok {
			if a.Mandatory {
				g.fail(fmt.Sprintf("Academic record for %s is required", level), "Add the missing academic record")
			}
			continue
		}
		if rec >= minimum {
			g.pass(fmt.Sprintf("%s score %.1f%% meets the minimum of %.1f%%", level, rec, minimum))
		} else {
			g.fail(fmt.Sprintf("%s score %.1f%% is below the minimum of %.1f%%", level, rec, minimum), "")
		}
	}

	if a.MaxGapYears > 0 {
		if p.GapYears <= a.MaxGapYears {
			g.pass("")
		} else {
			g.softBand(a.GapAction, criteria.ActionReject,
				fmt.Sprintf("%d gap years exceed the lender's limit of %d", p.GapYears, a.MaxGapYears),
				"Prepare documentation explaining the study gap",
				fmt.Sprintf("%d gap years accepted by the lender", p.GapYears))
		}
	}
}

func findAcademic(p Profile, level string) (float64, bool) {
	for _, r := range p.Academics {
		if strings.EqualFold(strings.TrimSpace(r.Level), strings.TrimSpace(level)) {
			return r.Percentage, true
		}
	}
	return 0, false
}

func evalInstitution(g *groupEval, p Profile, in criteria.Institution) {
	inst := p.Institution

	if len(in.AllowedTiers) > 0 {
		switch {
		case inst.Tier == "":
			g.softBand(in.UnrankedAction, criteria.ActionReject,
				"Institution tier is unknown", "Provide the institution's category", "")
		case containsFold(in.AllowedTiers, inst.Tier):
			g.pass(fmt.Sprintf("Institution tier %s is supported", inst.Tier))
		default:
			g.fail(fmt.Sprintf("Institution tier %s is not financed by the lender", inst.Tier), "")
		}
	}

	if in.RankingRequired {
		switch {
		case inst.Ranking <= 0:
			g.softBand(in.UnrankedAction, criteria.ActionReject,
				"Institution is unranked", "Share accreditation details for the institution",
				"Unranked institution accepted by the lender")
		case in.MaxRank > 0 && inst.Ranking > in.MaxRank:
			g.fail(fmt.Sprintf("Institution rank %d is outside the top %d", inst.Ranking, in.MaxRank), "")
		default:
			g.pass(fmt.Sprintf("Institution rank %d qualifies", inst.Ranking))
		}
	}
}

func evalLoanToIncome(g *groupEval, p Profile, l criteria.LoanToIncome) {
	amount := p.LoanAmount
	if l.MinAmount > 0 {
		if amount >= l.MinAmount {
			g.pass("")
		} else {
			g.fail(fmt.Sprintf("Requested amount %.0f is below the lender's minimum of %.0f", amount, l.MinAmount), "")
		}
	}
	if l.MaxAmount > 0 {
		if amount <= l.MaxAmount {
			g.pass("")
		} else {
			g.fail(fmt.Sprintf("Requested amount %.0f exceeds the lender's maximum of %.0f", amount, l.MaxAmount),
				"Reduce the requested amount or split funding")
		}
	}

	unsecured := amount - p.CollateralValue
	if unsecured < 0 {
		unsecured = 0
	}
	if l.MaxUnsecuredAmount > 0 {
		if unsecured <= l.MaxUnsecuredAmount {
			g.pass("")
		} else {
			g.fail(fmt.Sprintf("Unsecured amount %.0f exceeds the limit of %.0f", unsecured, l.MaxUnsecuredAmount),
				"Offer collateral to cover the difference")
		}
	}
	if l.MaxRatio > 0 && unsecured > 0 {
		annual := 0.0
		if p.incomeVerified() {
			annual = p.CoBorrower.Summary.EstimatedAnnualIncome
		}
		if annual <= 0 {
			g.borderline("Loan-to-income ratio cannot be assessed without verified income", "")
			return
		}
		ratio := unsecured / annual
		if ratio <= l.MaxRatio {
			g.pass(fmt.Sprintf("Loan-to-income ratio %.2f is within %.2f", ratio, l.MaxRatio))
		} else {
			g.fail(fmt.Sprintf("Loan-to-income ratio %.2f exceeds %.2f", ratio, l.MaxRatio), "")
		}
	}
}

func evalCollateral(g *groupEval, p Profile, c criteria.Collateral) {
	if c.RequiredAbove > 0 && p.LoanAmount <= c.RequiredAbove {
		g.pass("No collateral needed for the requested amount")
		return
	}
	if c.RequiredAbove > 0 && p.CollateralValue <= 0 {
		g.fail(fmt.Sprintf("Collateral is required above %.0f", c.RequiredAbove), "Offer property or deposits as collateral")
		return
	}
	if c.CoverageMultiple > 0 {
		needed := p.LoanAmount * c.CoverageMultiple
		switch {
		case p.CollateralValue >= needed && p.LoanAmount > 0:
			g.pass(fmt.Sprintf("Collateral covers %.2fx of the loan", p.CollateralValue/p.LoanAmount))
		case p.CollateralValue >= needed:
			g.pass("Collateral meets the required coverage")
		default:
			g.fail(fmt.Sprintf("Collateral %.0f is below the required coverage of %.0f", p.CollateralValue, needed), "")
		}
		return
	}
	if c.RequiredAbove > 0 {
		g.pass("Collateral offered")
	}
}

func evalOfferLetter(g *groupEval, p Profile, o criteria.OfferLetter) {
	switch {
	case p.Admission.HasOfferLetter:
		g.pass("Offer letter received")
	case !o.Required:
	case p.Admission.SanctionWithoutOfferLetter && o.AllowSanctionWithoutOfferLetter:
		g.pass("Lender sanctions before an offer letter")
		g.recs = append(g.recs, "Submit the offer letter before disbursement")
	default:
		g.fail("Offer letter is required", "Apply after receiving the admission offer letter")
	}
}

func evalTests(g *groupEval, p Profile, t criteria.Tests) {
	if len(t.Floors) == 0 {
		return
	}
	names := make([]string, 0, len(t.Floors))
	for name := range t.Floors {
		names = append(names, name)
	}
	sort.Strings(names)

	taken := 0
	for _, name := range names {
		score, ok := testScore(p, name)
		if !ok {
			continue
		}
		taken++
		floor := t.Floors[name]
		if score >= floor {
			g.pass(fmt.Sprintf("%s score %.1f meets the floor of %.1f", name, score, floor))
		} else {
			g.fail(fmt.Sprintf("%s score %.1f is below the floor of %.1f", name, score, floor), "Consider retaking the test")
		}
	}

	if taken == 0 && !t.OthersOptional {
		g.fail(fmt.Sprintf("One of the tests %s is required", strings.Join(names, ", ")), "")
	}
}

func testScore(p Profile, name string) (float64, bool) {
	if v, ok := p.TestScores[name]; ok {
		return v, true
	}
	for k, v := range p.TestScores {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return 0, false
}

func evalCoBorrower(g *groupEval, p Profile, c criteria.CoBorrower) {
	if p.CoBorrower == nil {
		if c.Mandatory {
			g.fail("A co-borrower is mandatory for this lender", "Add a parent or guardian as co-borrower")
		}
		return
	}

	allowed := c.AllowedRelations
	if tiered, ok := c.TierRelations[p.Institution.Tier]; ok && p.Institution.Tier != "" {
		allowed = tiered
	}
	if len(allowed) > 0 && !containsFold(allowed, p.CoBorrower.Relation) {
		g.fail(fmt.Sprintf("Co-borrower relation %q is not accepted", p.CoBorrower.Relation),
			fmt.Sprintf("Use a co-borrower who is one of: %s", strings.Join(allowed, ", ")))
		return
	}
	g.pass(fmt.Sprintf("Co-borrower relation %s accepted", p.CoBorrower.Relation))
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(v))
	})
}
