package eligibility

type Status string

const (
	StatusEligible    Status = "eligible"
	StatusBorderline  Status = "borderline"
	StatusNotEligible Status = "not_eligible"
)

func (s Status) rank() int {
	switch s {
	case StatusEligible:
		return 0
	case StatusBorderline:
		return 1
	default:
		return 2
	}
}

type Outcome string

const (
	OutcomePass       Outcome = "pass"
	OutcomeBorderline Outcome = "borderline"
	OutcomeFail       Outcome = "fail"
	OutcomeNeutral    Outcome = "neutral"
)

const (
	GroupCredit       = "credit"
	GroupFOIR         = "foir"
	GroupIncome       = "income"
	GroupBankBalance  = "bankBalance"
	GroupAcademics    = "academics"
	GroupInstitution  = "institution"
	GroupLoanToIncome = "loanToIncome"
	GroupCollateral   = "collateral"
	GroupOfferLetter  = "offerLetter"
	GroupTests        = "tests"
	GroupCoBorrower   = "coBorrower"
)

type GroupResult struct {
	Group   string  `json:"group"`
	Outcome Outcome `json:"outcome"`
	Weight  int     `json:"weight"`
	// Score is the group's pass ratio in [0,1]. Borderline checks count half.
	Score float64 `json:"score"`
}

type Result struct {
	LenderID        int64         `json:"lenderId"`
	LenderName      string        `json:"lenderName"`
	Status          Status        `json:"status"`
	MatchPercentage float64       `json:"matchPercentage"`
	Strengths       []string      `json:"strengths"`
	Gaps            []string      `json:"gaps"`
	Recommendations []string      `json:"recommendations"`
	EstimatedROI    float64       `json:"estimatedRoi"`
	Confidence      float64       `json:"confidence"`
	Blacklisted     bool          `json:"blacklisted"`
	Breakdown       []GroupResult `json:"breakdown"`
}
