package event

import "time"

const routingKeyPrefix = "loan_request."

type LoanRequestEvent struct {
	RequestID  string    `json:"requestId"`
	BorrowerID int64     `json:"borrowerId"`
	LenderID   int64     `json:"lenderId"`
	SnapshotID string    `json:"snapshotId"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus"`
	Note       string    `json:"note,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// RoutingKey is loan_request.<status>, e.g. loan_request.approved.
func (e LoanRequestEvent) RoutingKey() string {
	return routingKeyPrefix + e.ToStatus
}
