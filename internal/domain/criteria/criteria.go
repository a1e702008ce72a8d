package criteria

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"loan-marketplace/internal/pkg/apperrors"

	"github.com/xeipuuv/gojsonschema"
)

// Action is what a lender does with a profile that lands in a soft band.
type Action string

const (
	ActionClarify Action = "clarify"
	ActionReject  Action = "reject"
	ActionApprove Action = "approve"
)

type Credit struct {
	MinScore            int  `json:"minScore"`
	AllowOverdue        bool `json:"allowOverdue"`
	AllowSameBankBounce bool `json:"allowSameBankBounce"`
	Mandatory           bool `json:"mandatory"`
}

type FOIR struct {
	MaxPercentage    float64 `json:"maxPercentage"`
	BorderlineStart  float64 `json:"borderlineStart"`
	BorderlineAction Action  `json:"borderlineAction"`
}

type Income struct {
	MinMonthlySalary  float64 `json:"minMonthlySalary"`
	MinAnnualIncome   float64 `json:"minAnnualIncome"`
	MinTaxFilingYears int     `json:"minTaxFilingYears"`
	Mandatory         bool    `json:"mandatory"`
}

type BankBalance struct {
	MinAverageBalance  float64 `json:"minAverageBalance"`
	MinStatementMonths int     `json:"minStatementMonths"`
	Mandatory          bool    `json:"mandatory"`
}

type Academics struct {
	MinPercentageByLevel map[string]float64 `json:"minPercentageByLevel"`
	MaxGapYears          int                `json:"maxGapYears"`
	GapAction            Action             `json:"gapAction"`
	Mandatory            bool               `json:"mandatory"`
}

type Institution struct {
	RankingRequired bool     `json:"rankingRequired"`
	MaxRank         int      `json:"maxRank"`
	UnrankedAction  Action   `json:"unrankedAction"`
	AllowedTiers    []string `json:"allowedTiers"`
}

type LoanToIncome struct {
	MinAmount          float64 `json:"minAmount"`
	MaxAmount          float64 `json:"maxAmount"`
	MaxUnsecuredAmount float64 `json:"maxUnsecuredAmount"`
	MaxRatio           float64 `json:"maxRatio"`
}

type Collateral struct {
	RequiredAbove    float64 `json:"requiredAbove"`
	CoverageMultiple float64 `json:"coverageMultiple"`
}

type OfferLetter struct {
	Required                        bool `json:"required"`
	AllowSanctionWithoutOfferLetter bool `json:"allowSanctionWithoutOfferLetter"`
}

type Tests struct {
	Floors         map[string]float64 `json:"floors"`
	OthersOptional bool               `json:"othersOptional"`
}

type CoBorrower struct {
	Mandatory        bool                `json:"mandatory"`
	AllowedRelations []string            `json:"allowedRelations"`
	TierRelations    map[string][]string `json:"tierRelations"`
}

// Set is one lender's underwriting policy. It is read-only once loaded.
type Set struct {
	Credit          Group[Credit]       `json:"credit"`
	FOIR            Group[FOIR]         `json:"foir"`
	Income          Group[Income]       `json:"income"`
	BankBalance     Group[BankBalance]  `json:"bankBalance"`
	Academics       Group[Academics]    `json:"academics"`
	Institution     Group[Institution]  `json:"institution"`
	LoanToIncome    Group[LoanToIncome] `json:"loanToIncome"`
	Collateral      Group[Collateral]   `json:"collateral"`
	OfferLetter     Group[OfferLetter]  `json:"offerLetter"`
	Tests           Group[Tests]        `json:"tests"`
	CoBorrower      Group[CoBorrower]   `json:"coBorrower"`
	CourseBlacklist []string            `json:"courseBlacklist"`
}

// Blacklisted matches case-insensitively, either exactly or by containment of
// a blacklist entry in the course name.
func (s Set) Blacklisted(course string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(course))
	if c == "" {
		return "", false
	}
	for _, entry := range s.CourseBlacklist {
		e := strings.ToLower(strings.TrimSpace(entry))
		if e == "" {
			continue
		}
		if c == e || strings.Contains(c, e) {
			return entry, true
		}
	}
	return "", false
}

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Parse validates a raw criteria document against the embedded schema and
// decodes it.
func Parse(raw []byte) (Set, error) {
	if len(raw) == 0 {
		return Set{}, nil
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Set{}, fmt.Errorf("%w: criteria document: %v", apperrors.ErrValidation, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return Set{}, fmt.Errorf("%w: criteria document failed validation: %v", apperrors.ErrValidation, errs)
	}

	var set Set
	if err := json.Unmarshal(raw, &set); err != nil {
		return Set{}, fmt.Errorf("%w: decode criteria: %v", apperrors.ErrValidation, err)
	}
	return set, nil
}
