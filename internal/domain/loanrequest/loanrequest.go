package loanrequest

import (
	"time"

	"github.com/google/uuid"

	"loan-marketplace/internal/domain/eligibility"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusAccepted  Status = "accepted"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved: {StatusAccepted},
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Active requests count towards the one-per-lender limit.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusAccepted:
		return true
	}
	return false
}

type Decision string

const (
	DecisionApprove Decision = "approved"
	DecisionReject  Decision = "rejected"
)

func (d Decision) Status() (Status, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	}
	return "", false
}

// Rationale is copied from the snapshot result when the request is created
// and never changes afterwards.
type Rationale struct {
	Status          eligibility.Status `json:"status"`
	MatchPercentage float64            `json:"matchPercentage"`
	EstimatedROI    float64            `json:"estimatedRoi"`
	Confidence      float64            `json:"confidence"`
	Strengths       []string           `json:"strengths"`
	Gaps            []string           `json:"gaps"`
	Recommendations []string           `json:"recommendations"`
}

func RationaleFrom(r eligibility.Result) Rationale {
	return Rationale{
		Status:          r.Status,
		MatchPercentage: r.MatchPercentage,
		EstimatedROI:    r.EstimatedROI,
		Confidence:      r.Confidence,
		Strengths:       append([]string{}, r.Strengths...),
		Gaps:            append([]string{}, r.Gaps...),
		Recommendations: append([]string{}, r.Recommendations...),
	}
}

type LoanRequest struct {
	ID          uuid.UUID
	BorrowerID  int64
	LenderID    int64
	LenderName  string
	SnapshotID  uuid.UUID
	Status      Status
	Rationale   Rationale
	LenderNote  string
	DecidedAt   *time.Time
	AcceptedAt  *time.Time
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transition describes one conditional status change.
type Transition struct {
	RequestID uuid.UUID
	From      Status
	To        Status
	Note      string
	At        time.Time
}
