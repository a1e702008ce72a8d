package dto

import (
	"time"

	"loan-marketplace/internal/domain/lender"
)

type LenderResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	MinROI        string     `json:"minRoi"`
	MaxROI        string     `json:"maxRoi"`
	TotalRequests int        `json:"totalRequests"`
	ApprovalRate  string     `json:"approvalRate"`
	StatsAsOf     *time.Time `json:"statsAsOf,omitempty"`
}

func NewLenderListResponse(lenders []lender.Lender) []LenderResponse {
	out := make([]LenderResponse, len(lenders))
	for i, l := range lenders {
		out[i] = LenderResponse{
			ID:            l.ID,
			Name:          l.Name,
			MinROI:        formatMoney(l.RateBand.MinROI),
			MaxROI:        formatMoney(l.RateBand.MaxROI),
			TotalRequests: l.Stats.TotalRequests,
			ApprovalRate:  formatMoney(l.Stats.ApprovalRate),
			StatsAsOf:     l.Stats.RefreshedAt,
		}
	}
	return out
}
