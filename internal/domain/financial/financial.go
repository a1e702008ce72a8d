package financial

type IncomeSource string

const (
	IncomeSourceSalaried     IncomeSource = "salaried"
	IncomeSourceSelfEmployed IncomeSource = "self_employed"
	IncomeSourceNone         IncomeSource = "none"
)

type IncomeStability string

const (
	IncomeStable   IncomeStability = "stable"
	IncomeModerate IncomeStability = "moderate"
	IncomeUnknown  IncomeStability = "unknown"
)

type CheckStatus string

const (
	CheckVerified CheckStatus = "verified"
	CheckPending  CheckStatus = "pending"
)

// Category names one kind of uploaded evidence.
type Category string

const (
	CategorySalarySlip          Category = "salary_slip"
	CategoryBankStatement       Category = "bank_statement"
	CategoryTaxReturn           Category = "tax_return"
	CategoryEmployerCertificate Category = "employer_certificate"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySalarySlip, CategoryBankStatement, CategoryTaxReturn, CategoryEmployerCertificate:
		return true
	}
	return false
}

// Provenance is shared by every extracted record. NeedsReview is set when the
// record is a low-confidence fallback produced after all providers failed.
type Provenance struct {
	Source      string  `json:"source,omitempty"`
	Confidence  float64 `json:"confidence"`
	NeedsReview bool    `json:"needsReview"`
	ArtifactURL string  `json:"artifactUrl,omitempty"`
}

type SalarySlip struct {
	Month        string  `json:"month"`
	NetSalary    float64 `json:"netSalary"`
	GrossSalary  float64 `json:"grossSalary"`
	IsConsistent bool    `json:"isConsistent"`
	Provenance
}

type BankStatementAnalysis struct {
	AverageSalaryCredit float64 `json:"averageSalaryCredit"`
	TotalEMIObligations float64 `json:"totalEmiObligations"`
	AverageBalance      float64 `json:"averageBalance"`
	MonthsCovered       int     `json:"monthsCovered"`
	BounceCount         int     `json:"bounceCount"`
	SameBankBounce      bool    `json:"sameBankBounce"`
	Verified            bool    `json:"verified"`
	Provenance
}

type TaxReturn struct {
	AssessmentYear string  `json:"assessmentYear"`
	TaxableIncome  float64 `json:"taxableIncome"`
	Verified       bool    `json:"verified"`
	Provenance
}

type EmployerTaxCertificate struct {
	AssessmentYear string  `json:"assessmentYear"`
	GrossIncome    float64 `json:"grossIncome"`
	TaxDeducted    float64 `json:"taxDeducted"`
	Provenance
}

// Info is the raw evidence held for one co-borrower. It grows as categories
// arrive; every mutation is followed by a fresh Summarize.
type Info struct {
	KYCVerified          bool                     `json:"kycVerified"`
	SalarySlips          []SalarySlip             `json:"salarySlips"`
	BankStatement        *BankStatementAnalysis   `json:"bankStatement,omitempty"`
	TaxReturns           []TaxReturn              `json:"taxReturns"`
	EmployerCertificates []EmployerTaxCertificate `json:"employerCertificates"`
	PendingReviews       []PendingReview          `json:"pendingReviews,omitempty"`
}

// PendingReview is an unreadable upload for a slot that already holds usable
// evidence. The usable record stays in place until a readable replacement arrives.
type PendingReview struct {
	Category Category `json:"category"`
	Period   string   `json:"period,omitempty"`
	Provenance
}

type VerificationStatus struct {
	KYC     CheckStatus `json:"kyc"`
	Income  CheckStatus `json:"income"`
	Bank    CheckStatus `json:"bank"`
	Overall CheckStatus `json:"overall"`

	VerifiedChecks int `json:"verifiedChecks"`
	// IncomeUnverified is true whenever no income could be established. FOIR is
	// then reported as 0, which must not be read as a passing ratio.
	IncomeUnverified bool `json:"incomeUnverified"`
}

// Summary is derived from Info and never set by hand.
type Summary struct {
	AvgMonthlySalary      float64            `json:"avgMonthlySalary"`
	AvgMonthlyIncome      float64            `json:"avgMonthlyIncome"`
	EstimatedAnnualIncome float64            `json:"estimatedAnnualIncome"`
	TotalExistingEMI      float64            `json:"totalExistingEmi"`
	FOIR                  float64            `json:"foir"`
	IncomeSource          IncomeSource       `json:"incomeSource"`
	IncomeStability       IncomeStability    `json:"incomeStability"`
	CompletenessScore     int                `json:"completenessScore"`
	Verification          VerificationStatus `json:"verificationStatus"`
	TaxFilingYears        int                `json:"taxFilingYears"`
	TaxCrossValidated     bool               `json:"taxCrossValidated"`
	PendingReview         int                `json:"pendingReview"`
}
