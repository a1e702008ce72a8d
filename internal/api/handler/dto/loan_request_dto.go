package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/loanrequest"
)

type CreateLoanRequestRequest struct {
	SnapshotID string `json:"snapshotId"`
	LenderID   int64  `json:"lenderId"`
}

func (r *CreateLoanRequestRequest) Validate() error {
	if _, err := uuid.Parse(r.SnapshotID); err != nil {
		return fmt.Errorf("snapshotId must be a valid UUID")
	}
	if r.LenderID <= 0 {
		return fmt.Errorf("lenderId must be a positive number")
	}
	return nil
}

type DecisionRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

const maxNoteLength = 1000

func (r *DecisionRequest) Validate() error {
	if _, ok := loanrequest.Decision(strings.ToLower(r.Decision)).Status(); !ok {
		return fmt.Errorf("decision must be approved or rejected")
	}
	if len(r.Note) > maxNoteLength {
		return fmt.Errorf("note cannot exceed %d characters", maxNoteLength)
	}
	return nil
}

type RationaleResponse struct {
	Status          string   `json:"status"`
	MatchPercentage float64  `json:"matchPercentage"`
	EstimatedROI    float64  `json:"estimatedRoi"`
	Confidence      float64  `json:"confidence"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

type LoanRequestResponse struct {
	ID          string            `json:"id"`
	BorrowerID  int64             `json:"borrowerId"`
	LenderID    int64             `json:"lenderId"`
	LenderName  string            `json:"lenderName"`
	SnapshotID  string            `json:"snapshotId"`
	Status      string            `json:"status"`
	Rationale   RationaleResponse `json:"rationale"`
	LenderNote  string            `json:"lenderNote,omitempty"`
	DecidedAt   *time.Time        `json:"decidedAt,omitempty"`
	AcceptedAt  *time.Time        `json:"acceptedAt,omitempty"`
	CancelledAt *time.Time        `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type AcceptResponse struct {
	Request       LoanRequestResponse   `json:"request"`
	AutoCancelled []LoanRequestResponse `json:"autoCancelled"`
}

func NewLoanRequestResponse(lr *loanrequest.LoanRequest) LoanRequestResponse {
	return LoanRequestResponse{
		ID:         lr.ID.String(),
		BorrowerID: lr.BorrowerID,
		LenderID:   lr.LenderID,
		LenderName: lr.LenderName,
		SnapshotID: lr.SnapshotID.String(),
		Status:     string(lr.Status),
		Rationale: RationaleResponse{
			Status:          string(lr.Rationale.Status),
			MatchPercentage: round2(lr.Rationale.MatchPercentage),
			EstimatedROI:    round2(lr.Rationale.EstimatedROI),
			Confidence:      round2(lr.Rationale.Confidence),
			Strengths:       nonNil(lr.Rationale.Strengths),
			Gaps:            nonNil(lr.Rationale.Gaps),
			Recommendations: nonNil(lr.Rationale.Recommendations),
		},
		LenderNote:  lr.LenderNote,
		DecidedAt:   lr.DecidedAt,
		AcceptedAt:  lr.AcceptedAt,
		CancelledAt: lr.CancelledAt,
		CreatedAt:   lr.CreatedAt,
		UpdatedAt:   lr.UpdatedAt,
	}
}

func NewLoanRequestListResponse(items []loanrequest.LoanRequest) []LoanRequestResponse {
	out := make([]LoanRequestResponse, len(items))
	for i := range items {
		out[i] = NewLoanRequestResponse(&items[i])
	}
	return out
}

func NewAcceptResponse(o *loanrequest.AcceptOutcome) AcceptResponse {
	return AcceptResponse{
		Request:       NewLoanRequestResponse(o.Request),
		AutoCancelled: NewLoanRequestListResponse(o.AutoCancelled),
	}
}
