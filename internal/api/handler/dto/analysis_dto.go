package dto

import (
	"time"

	"loan-marketplace/internal/domain/analysis"
	"loan-marketplace/internal/domain/eligibility"
	"loan-marketplace/internal/domain/financial"
)

type LenderResultResponse struct {
	LenderID        int64                     `json:"lenderId"`
	LenderName      string                    `json:"lenderName"`
	Status          string                    `json:"status"`
	MatchPercentage float64                   `json:"matchPercentage"`
	EstimatedROI    float64                   `json:"estimatedRoi"`
	Confidence      float64                   `json:"confidence"`
	Blacklisted     bool                      `json:"blacklisted"`
	Strengths       []string                  `json:"strengths"`
	Gaps            []string                  `json:"gaps"`
	Recommendations []string                  `json:"recommendations"`
	Breakdown       []eligibility.GroupResult `json:"breakdown,omitempty"`
}

type ProfileResponse struct {
	Course            string             `json:"course"`
	Country           string             `json:"country"`
	LoanAmount        string             `json:"loanAmount"`
	CollateralValue   string             `json:"collateralValue"`
	CoBorrowerID      *int64             `json:"coBorrowerId,omitempty"`
	CompletenessScore int                `json:"completenessScore"`
	FOIR              float64            `json:"foir"`
	Summary           *financial.Summary `json:"financialSummary,omitempty"`
}

type SnapshotResponse struct {
	ID               string                 `json:"id"`
	BorrowerID       int64                  `json:"borrowerId"`
	Profile          ProfileResponse        `json:"profile"`
	EligibleCount    int                    `json:"eligibleCount"`
	BorderlineCount  int                    `json:"borderlineCount"`
	NotEligibleCount int                    `json:"notEligibleCount"`
	Results          []LenderResultResponse `json:"results"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// SnapshotSummaryResponse is the history list entry. Results are omitted.
type SnapshotSummaryResponse struct {
	ID                string    `json:"id"`
	EligibleCount     int       `json:"eligibleCount"`
	BorderlineCount   int       `json:"borderlineCount"`
	NotEligibleCount  int       `json:"notEligibleCount"`
	CompletenessScore int       `json:"completenessScore"`
	CreatedAt         time.Time `json:"createdAt"`
}

type SnapshotPageResponse struct {
	Items    []SnapshotSummaryResponse `json:"items"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"pageSize"`
	Total    int                       `json:"total"`
}

func NewLenderResultResponse(r eligibility.Result, withBreakdown bool) LenderResultResponse {
	resp := LenderResultResponse{
		LenderID:        r.LenderID,
		LenderName:      r.LenderName,
		Status:          string(r.Status),
		MatchPercentage: round2(r.MatchPercentage),
		EstimatedROI:    round2(r.EstimatedROI),
		Confidence:      round2(r.Confidence),
		Blacklisted:     r.Blacklisted,
		Strengths:       nonNil(r.Strengths),
		Gaps:            nonNil(r.Gaps),
		Recommendations: nonNil(r.Recommendations),
	}
	if withBreakdown {
		resp.Breakdown = r.Breakdown
	}
	return resp
}

func NewSnapshotResponse(s *analysis.Snapshot) SnapshotResponse {
	p := s.Profile
	profile := ProfileResponse{
		Course:            p.Course,
		Country:           p.Country,
		LoanAmount:        formatMoney(p.LoanAmount),
		CollateralValue:   formatMoney(p.CollateralValue),
		CompletenessScore: p.Completeness(),
	}
	if p.CoBorrower != nil {
		id := p.CoBorrower.ID
		summary := p.CoBorrower.Summary
		profile.CoBorrowerID = &id
		profile.FOIR = round2(summary.FOIR)
		profile.Summary = &summary
	}

	results := make([]LenderResultResponse, len(s.Results))
	for i, r := range s.Results {
		results[i] = NewLenderResultResponse(r, true)
	}

	return SnapshotResponse{
		ID:               s.ID.String(),
		BorrowerID:       s.BorrowerID,
		Profile:          profile,
		EligibleCount:    s.EligibleCount,
		BorderlineCount:  s.BorderlineCount,
		NotEligibleCount: s.NotEligibleCount,
		Results:          results,
		CreatedAt:        s.CreatedAt,
	}
}

func NewSnapshotPageResponse(p *analysis.Page) SnapshotPageResponse {
	items := make([]SnapshotSummaryResponse, len(p.Items))
	for i, s := range p.Items {
		items[i] = SnapshotSummaryResponse{
			ID:                s.ID.String(),
			EligibleCount:     s.EligibleCount,
			BorderlineCount:   s.BorderlineCount,
			NotEligibleCount:  s.NotEligibleCount,
			CompletenessScore: s.Profile.Completeness(),
			CreatedAt:         s.CreatedAt,
		}
	}
	return SnapshotPageResponse{Items: items, Page: p.Page, PageSize: p.PageSize, Total: p.Total}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
